package viewer

import (
	"context"
	"log/slog"
)

// Slot is the per-page host a rendered surface is injected into. Once
// rendered, further render requests are no-ops until the owning lifecycle is
// torn down.
type Slot struct {
	Page    int
	Element SlotElement

	rendered bool
	pending  bool
}

// Rendered reports whether the slot shows its page.
func (s *Slot) Rendered() bool { return s.rendered }

// lifecycle is one controller instance's lifetime. Everything it owns
// (slots, rendered set) dies with it; async completions carry gen and are
// discarded when it no longer matches.
type lifecycle struct {
	id    string
	gen   uint64
	ctx   context.Context
	doc   Document
	stage Stage
	zoom  float64
	crop  CropSpec
	log   *slog.Logger

	slots    []*Slot
	rendered *RenderedSet
	closed   bool

	// changed is called on the loop after a page was mounted.
	changed func()
}

func (l *lifecycle) current(gen uint64) bool {
	return !l.closed && l.gen == gen
}

// slot returns the slot of page, or nil if it does not exist (yet).
func (l *lifecycle) slot(page int) *Slot {
	if page < 1 || page > len(l.slots) {
		return nil
	}
	return l.slots[page-1]
}

func (l *lifecycle) buildSlots(n int, placeholder Size) []SlotElement {
	l.slots = make([]*Slot, n)
	els := make([]SlotElement, n)
	for i := range n {
		el := l.stage.NewSlot(i+1, placeholder)
		l.slots[i] = &Slot{Page: i + 1, Element: el}
		els[i] = el
	}
	return els
}

// close destroys the slots and discards the rendered set.
func (l *lifecycle) close() {
	if l.closed {
		return
	}
	l.closed = true
	l.stage.Clear()
	l.slots = nil
	l.rendered = NewRenderedSet()
}

// naturalSize fetches the scale-1 viewport of page n.
func naturalSize(ctx context.Context, doc Document, n int) (Size, error) {
	p, err := doc.Page(ctx, n)
	if err != nil {
		return Size{}, &PageRenderError{Page: n, Err: err}
	}
	return p.Viewport(1).Size(), nil
}
