package content

import "fmt"

// Segment is one typed, renderable unit produced from a reply's raw text.
// Segments are never persisted; they are recomputed from the raw content
// on every render.
type Segment interface {
	segment()
}

// Run is a span of line text with an emphasis flag. Runs alternate
// plain/bold in left-to-right order.
type Run struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized"`
}

// Heading is a line that was nothing but a single bold span.
type Heading struct {
	Text string
}

// Bullet is a list item, its marker already stripped.
type Bullet struct {
	Runs []Run
}

// TextLine is any other line of prose. An empty line carries a single
// empty run so vertical spacing survives rendering.
type TextLine struct {
	Runs []Run
}

// ImageGallery holds preview image URLs in their original order.
type ImageGallery struct {
	URLs []string
}

// CheckoutAction is an add-to-cart affordance. Every checkout action from
// one parse result shares the same Quantity cell.
type CheckoutAction struct {
	BaseLink  string
	ProductID string
	Quantity  *Quantity
}

// CheckoutLink renders the cart URL with the current quantity applied.
func (c CheckoutAction) CheckoutLink() string {
	return fmt.Sprintf("%s/cart/%s:%d", c.BaseLink, c.ProductID, c.Quantity.Value())
}

// RawBlock is the fallback for a fenced block that failed to parse or
// matched no recognized schema. It keeps the original inner text.
type RawBlock struct {
	JSON string
}

func (Heading) segment()        {}
func (Bullet) segment()         {}
func (TextLine) segment()       {}
func (ImageGallery) segment()   {}
func (CheckoutAction) segment() {}
func (RawBlock) segment()       {}
