package content

import (
	"encoding/json"
	"strings"
)

const (
	fenceOpen  = "```json"
	fenceClose = "```"

	boldMarker = "**"
)

// Parse splits a raw reply into renderable segments. Fenced ```json blocks
// are extracted first, left to right, non-greedy (first closer wins); the
// text between blocks goes through the line-level heading/bullet/bold
// rules. Parse is total: malformed or unrecognized blocks degrade to
// RawBlock, and identical input always yields identical output.
func Parse(raw string) []Segment {
	qty := newQuantity()

	var segments []Segment
	rest := raw
	for {
		open := strings.Index(rest, fenceOpen)
		if open < 0 {
			break
		}
		after := rest[open+len(fenceOpen):]
		closer := strings.Index(after, fenceClose)
		if closer < 0 {
			// Unterminated fence stays literal text.
			break
		}

		segments = append(segments, parseText(rest[:open])...)
		segments = append(segments, parseBlock(strings.TrimSpace(after[:closer]), qty))
		rest = after[closer+len(fenceClose):]
	}
	segments = append(segments, parseText(rest)...)
	return segments
}

// parseBlock interprets the inner text of one fenced block. Two schemas
// are recognized: an image preview list and a checkout link. Anything
// else, including JSON that does not parse, becomes a RawBlock.
func parseBlock(inner string, qty *Quantity) Segment {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(inner), &payload); err != nil {
		return RawBlock{JSON: inner}
	}

	if rawImages, ok := payload["imagespreview_data"]; ok {
		var items []map[string]any
		if err := json.Unmarshal(rawImages, &items); err == nil {
			urls := make([]string, 0, len(items))
			for _, item := range items {
				if src, ok := item["src"].(string); ok && src != "" {
					urls = append(urls, src)
				}
			}
			return ImageGallery{URLs: urls}
		}
	}

	if rawCheckout, ok := payload["checkout_data"]; ok {
		var checkout struct {
			Link string `json:"link"`
		}
		if err := json.Unmarshal(rawCheckout, &checkout); err == nil && checkout.Link != "" {
			if action, ok := parseCheckoutLink(checkout.Link, qty); ok {
				return action
			}
		}
	}

	return RawBlock{JSON: inner}
}

// parseCheckoutLink splits "<base>/cart/<productID>:<quantity>"; the
// trailing quantity is ignored in favor of the shared counter.
func parseCheckoutLink(link string, qty *Quantity) (CheckoutAction, bool) {
	base, tail, ok := strings.Cut(link, "/cart/")
	if !ok {
		return CheckoutAction{}, false
	}
	productID, _, _ := strings.Cut(tail, ":")
	if productID == "" {
		return CheckoutAction{}, false
	}
	return CheckoutAction{BaseLink: base, ProductID: productID, Quantity: qty}, true
}

func parseText(text string) []Segment {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	segments := make([]Segment, 0, len(lines))
	for _, line := range lines {
		segments = append(segments, parseLine(line))
	}
	return segments
}

func parseLine(line string) Segment {
	trimmed := strings.TrimSpace(line)
	spans := boldSpans(line)

	if len(spans) > 0 {
		if len(spans) == 1 && strings.HasPrefix(trimmed, boldMarker) && strings.HasSuffix(trimmed, boldMarker) {
			return Heading{Text: spans[0]}
		}
		if content, ok := stripBulletMarker(trimmed); ok {
			return Bullet{Runs: runs(content)}
		}
		return TextLine{Runs: runs(line)}
	}

	if content, ok := stripBulletMarker(trimmed); ok {
		return Bullet{Runs: []Run{{Text: content}}}
	}

	return TextLine{Runs: []Run{{Text: line}}}
}

func stripBulletMarker(trimmed string) (string, bool) {
	for _, marker := range []string{"•", "*"} {
		if strings.HasPrefix(trimmed, marker) {
			return strings.TrimSpace(trimmed[len(marker):]), true
		}
	}
	return "", false
}

// runs tokenizes text into alternating plain and emphasized spans. Only
// matched ** pairs emphasize; a dangling opener stays literal. Pairs are
// consumed first-match, left to right, without nesting or overlap.
func runs(text string) []Run {
	var out []Run
	rest := text
	for {
		open := strings.Index(rest, boldMarker)
		if open < 0 {
			break
		}
		closer := strings.Index(rest[open+len(boldMarker):], boldMarker)
		if closer < 0 {
			break
		}

		if open > 0 {
			out = append(out, Run{Text: rest[:open]})
		}
		inner := rest[open+len(boldMarker) : open+len(boldMarker)+closer]
		out = append(out, Run{Text: inner, Emphasized: true})
		rest = rest[open+len(boldMarker)+closer+len(boldMarker):]
	}
	if rest != "" {
		out = append(out, Run{Text: rest})
	}
	return out
}

// boldSpans returns the inner text of every matched ** pair in order.
func boldSpans(text string) []string {
	var spans []string
	rest := text
	for {
		open := strings.Index(rest, boldMarker)
		if open < 0 {
			return spans
		}
		closer := strings.Index(rest[open+len(boldMarker):], boldMarker)
		if closer < 0 {
			return spans
		}
		spans = append(spans, rest[open+len(boldMarker):open+len(boldMarker)+closer])
		rest = rest[open+len(boldMarker)+closer+len(boldMarker):]
	}
}
