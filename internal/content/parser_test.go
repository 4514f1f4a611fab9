package content

import (
	"reflect"
	"testing"
)

func TestParseHeading(t *testing.T) {
	segments := Parse("**Title**")

	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	heading, ok := segments[0].(Heading)
	if !ok {
		t.Fatalf("expected Heading, got %T", segments[0])
	}
	if heading.Text != "Title" {
		t.Fatalf("unexpected heading text: %q", heading.Text)
	}
}

func TestParseBulletWithBold(t *testing.T) {
	segments := Parse("* item **bold** text")

	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	bullet, ok := segments[0].(Bullet)
	if !ok {
		t.Fatalf("expected Bullet, got %T", segments[0])
	}

	want := []Run{
		{Text: "item ", Emphasized: false},
		{Text: "bold", Emphasized: true},
		{Text: " text", Emphasized: false},
	}
	if !reflect.DeepEqual(bullet.Runs, want) {
		t.Fatalf("unexpected runs: %+v", bullet.Runs)
	}
}

func TestParseBulletWithoutBold(t *testing.T) {
	segments := Parse("• just plain text")

	bullet, ok := segments[0].(Bullet)
	if !ok {
		t.Fatalf("expected Bullet, got %T", segments[0])
	}
	want := []Run{{Text: "just plain text"}}
	if !reflect.DeepEqual(bullet.Runs, want) {
		t.Fatalf("unexpected runs: %+v", bullet.Runs)
	}
}

func TestParseTextLineWithBold(t *testing.T) {
	segments := Parse("say **hi** now")

	line, ok := segments[0].(TextLine)
	if !ok {
		t.Fatalf("expected TextLine, got %T", segments[0])
	}
	want := []Run{
		{Text: "say "},
		{Text: "hi", Emphasized: true},
		{Text: " now"},
	}
	if !reflect.DeepEqual(line.Runs, want) {
		t.Fatalf("unexpected runs: %+v", line.Runs)
	}
}

func TestParseUnmatchedBoldStaysLiteral(t *testing.T) {
	segments := Parse("a ** b")

	line, ok := segments[0].(TextLine)
	if !ok {
		t.Fatalf("expected TextLine, got %T", segments[0])
	}
	if len(line.Runs) != 1 || line.Runs[0].Emphasized {
		t.Fatalf("expected single literal run, got %+v", line.Runs)
	}
	if line.Runs[0].Text != "a ** b" {
		t.Fatalf("unexpected text: %q", line.Runs[0].Text)
	}
}

func TestParseEmptyLinePreserved(t *testing.T) {
	segments := Parse("a\n\nb")

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	middle, ok := segments[1].(TextLine)
	if !ok {
		t.Fatalf("expected TextLine, got %T", segments[1])
	}
	if len(middle.Runs) != 1 || middle.Runs[0].Text != "" {
		t.Fatalf("expected single empty run, got %+v", middle.Runs)
	}
}

func TestParseImageGallery(t *testing.T) {
	segments := Parse("```json\n{\"imagespreview_data\":[{\"src\":\"a.png\"}]}\n```")

	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	gallery, ok := segments[0].(ImageGallery)
	if !ok {
		t.Fatalf("expected ImageGallery, got %T", segments[0])
	}
	if !reflect.DeepEqual(gallery.URLs, []string{"a.png"}) {
		t.Fatalf("unexpected urls: %v", gallery.URLs)
	}
}

func TestParseImageGallerySkipsEntriesWithoutSrc(t *testing.T) {
	raw := "```json\n{\"imagespreview_data\":[{\"src\":\"a.png\"},{\"alt\":\"x\"},{\"src\":\"b.png\"}]}\n```"
	segments := Parse(raw)

	gallery, ok := segments[0].(ImageGallery)
	if !ok {
		t.Fatalf("expected ImageGallery, got %T", segments[0])
	}
	if !reflect.DeepEqual(gallery.URLs, []string{"a.png", "b.png"}) {
		t.Fatalf("unexpected urls: %v", gallery.URLs)
	}
}

func TestParseInvalidJSONBlock(t *testing.T) {
	segments := Parse("```json\nnot valid json\n```")

	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	raw, ok := segments[0].(RawBlock)
	if !ok {
		t.Fatalf("expected RawBlock, got %T", segments[0])
	}
	if raw.JSON != "not valid json" {
		t.Fatalf("unexpected inner text: %q", raw.JSON)
	}
}

func TestParseUnrecognizedSchemaBlock(t *testing.T) {
	segments := Parse("```json\n{\"other\":1}\n```")

	if _, ok := segments[0].(RawBlock); !ok {
		t.Fatalf("expected RawBlock, got %T", segments[0])
	}
}

func TestParseCheckoutAction(t *testing.T) {
	raw := "```json\n{\"checkout_data\":{\"link\":\"https://shop.example/cart/123456:1\"}}\n```"
	segments := Parse(raw)

	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	checkout, ok := segments[0].(CheckoutAction)
	if !ok {
		t.Fatalf("expected CheckoutAction, got %T", segments[0])
	}
	if checkout.BaseLink != "https://shop.example" {
		t.Fatalf("unexpected base link: %q", checkout.BaseLink)
	}
	if checkout.ProductID != "123456" {
		t.Fatalf("unexpected product id: %q", checkout.ProductID)
	}
	if got := checkout.Quantity.Value(); got != 1 {
		t.Fatalf("expected initial quantity 1, got %d", got)
	}
	if got := checkout.CheckoutLink(); got != "https://shop.example/cart/123456:1" {
		t.Fatalf("unexpected checkout link: %q", got)
	}

	checkout.Quantity.Increment()
	checkout.Quantity.Increment()
	if got := checkout.CheckoutLink(); got != "https://shop.example/cart/123456:3" {
		t.Fatalf("expected quantity applied to link, got %q", got)
	}
}

func TestParseCheckoutWithoutCartTail(t *testing.T) {
	raw := "```json\n{\"checkout_data\":{\"link\":\"https://shop.example/product/1\"}}\n```"
	segments := Parse(raw)

	if _, ok := segments[0].(RawBlock); !ok {
		t.Fatalf("expected RawBlock for unrecognized link, got %T", segments[0])
	}
}

func TestParseSharedQuantityAcrossBlocks(t *testing.T) {
	raw := "```json\n{\"checkout_data\":{\"link\":\"https://s.example/cart/1:1\"}}\n```" +
		"```json\n{\"checkout_data\":{\"link\":\"https://s.example/cart/2:1\"}}\n```"
	segments := Parse(raw)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	first := segments[0].(CheckoutAction)
	second := segments[1].(CheckoutAction)

	first.Quantity.Increment()
	if got := second.Quantity.Value(); got != 2 {
		t.Fatalf("expected shared quantity cell, got %d", got)
	}
}

func TestParseMixedTextAndBlocks(t *testing.T) {
	raw := "**Results**\n```json\n{\"imagespreview_data\":[{\"src\":\"a.png\"}]}\n```"
	segments := Parse(raw)

	// The newline before the fence yields an empty spacing line.
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if _, ok := segments[0].(Heading); !ok {
		t.Fatalf("expected Heading first, got %T", segments[0])
	}
	if _, ok := segments[1].(TextLine); !ok {
		t.Fatalf("expected spacing TextLine, got %T", segments[1])
	}
	if _, ok := segments[2].(ImageGallery); !ok {
		t.Fatalf("expected ImageGallery last, got %T", segments[2])
	}
}

func TestParseUnterminatedFenceStaysLiteral(t *testing.T) {
	segments := Parse("```json\n{\"a\":1}")

	for _, seg := range segments {
		if _, ok := seg.(TextLine); !ok {
			t.Fatalf("expected only text lines, got %T", seg)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	raw := "**T**\n* a **b** c\n```json\n{\"x\":1}\n```"

	first := Parse(raw)
	second := Parse(raw)

	if len(first) != len(second) {
		t.Fatalf("parse not stable: %d vs %d segments", len(first), len(second))
	}
	for i := range first {
		if reflect.TypeOf(first[i]) != reflect.TypeOf(second[i]) {
			t.Fatalf("segment %d type changed between parses", i)
		}
	}
}
