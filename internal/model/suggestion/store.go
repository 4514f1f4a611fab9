package suggestion

// Store exposes suggestion retrieval for HTTP handlers.
type Store interface {
	List() []Suggestion
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Suggestion
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied chips.
func NewMemoryStore(items []Suggestion) *MemoryStore {
	return &MemoryStore{items: append([]Suggestion(nil), items...)}
}

// List returns the configured suggestion list.
func (s *MemoryStore) List() []Suggestion {
	return append([]Suggestion(nil), s.items...)
}
