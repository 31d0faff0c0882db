package viewer

import (
	"maps"
	"slices"
)

// RenderedSet records the pages materialised for one (mode, zoom, crop)
// triple. It only grows during a controller lifetime and is discarded, not
// merged, when the lifetime ends.
type RenderedSet struct {
	pages map[int]struct{}
}

// NewRenderedSet returns an empty set.
func NewRenderedSet() *RenderedSet {
	return &RenderedSet{pages: make(map[int]struct{})}
}

// Add records page and reports whether it was new.
func (s *RenderedSet) Add(page int) bool {
	if _, ok := s.pages[page]; ok {
		return false
	}
	s.pages[page] = struct{}{}
	return true
}

func (s *RenderedSet) Has(page int) bool {
	_, ok := s.pages[page]
	return ok
}

func (s *RenderedSet) Len() int { return len(s.pages) }

// Pages returns the recorded pages in ascending order.
func (s *RenderedSet) Pages() []int {
	return slices.Sorted(maps.Keys(s.pages))
}

// Clear empties the set.
func (s *RenderedSet) Clear() {
	clear(s.pages)
}
