package content

import "sync"

// Quantity is the cart counter shared by every checkout action in a single
// parse result. The count never drops below 1 and has no upper bound.
type Quantity struct {
	mu sync.Mutex
	n  int
}

func newQuantity() *Quantity {
	return &Quantity{n: 1}
}

// Increment bumps the count and returns the new value.
func (q *Quantity) Increment() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.n++
	return q.n
}

// Decrement lowers the count, clamped at 1, and returns the new value.
func (q *Quantity) Decrement() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n > 1 {
		q.n--
	}
	return q.n
}

// Value returns the current count.
func (q *Quantity) Value() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}
