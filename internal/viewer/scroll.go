package viewer

import (
	"math"
	"time"
)

// observerThreshold is the visible fraction that counts as intersecting.
const observerThreshold = 0.01

type scrollController struct {
	*lifecycle
	stage    ScrollStage
	render   *RenderService
	dispatch Dispatcher

	margin   float64
	throttle time.Duration
	now      func() time.Time

	ready      bool
	target     int
	observer   VisibilityObserver
	stopScroll func()

	// visible holds pages currently intersecting the (margin-grown) viewport.
	visible map[int]bool

	lastUpdate   time.Time
	trailing     bool
	stopTrailing func()

	// pinned is the page last scrolled to programmatically. It stays the
	// current page until the viewport moves away from pinCenter.
	pinned    int
	pinCenter float64

	onPage func(page int)
}

func (s *scrollController) start(page int) {
	s.target = page
	s.visible = make(map[int]bool)
	gen := s.gen
	s.dispatch.Go(func() {
		// Page 1 stands in for every page so the layout does not need to
		// load the whole document.
		size, err := naturalSize(s.ctx, s.doc, 1)
		s.dispatch.Post(func() { s.init(gen, size, err) })
	})
}

func (s *scrollController) init(gen uint64, natural Size, err error) {
	if !s.current(gen) {
		return
	}
	if err != nil {
		s.log.Warn("scroll mode init failed", "error", err)
		return
	}
	g, err := s.render.calc.Compute(natural, s.zoom, s.crop)
	if err != nil {
		s.log.Error("scroll mode geometry", "error", err)
		return
	}

	els := s.buildSlots(s.doc.NumPages(), g.VisibleSize())
	s.observer = s.stage.NewObserver(ObserverOptions{
		RootMargin: s.margin,
		Threshold:  observerThreshold,
	}, func(page int, visible bool) { s.visibility(gen, page, visible) })
	for _, el := range els {
		s.observer.Observe(el)
	}
	s.ready = true

	s.scrollToPage(s.target)
	s.stopScroll = s.stage.OnScroll(func() { s.scrolled(gen) })
}

func (s *scrollController) visibility(gen uint64, page int, visible bool) {
	if !s.current(gen) || s.slot(page) == nil {
		return
	}
	if !visible {
		delete(s.visible, page)
		return
	}
	s.visible[page] = true
	s.render.Request(s.lifecycle, page, true)
}

// scrolled recomputes the current page at most once per throttle interval,
// with one trailing update so the final position is always picked up.
func (s *scrollController) scrolled(gen uint64) {
	if !s.current(gen) {
		return
	}
	now := s.now()
	if elapsed := now.Sub(s.lastUpdate); elapsed >= s.throttle {
		s.lastUpdate = now
		s.updateCurrent()
		return
	}
	if s.trailing {
		return
	}
	s.trailing = true
	wait := s.throttle - now.Sub(s.lastUpdate)
	s.stopTrailing = s.dispatch.After(wait, func() {
		if !s.current(gen) {
			return
		}
		s.trailing = false
		s.lastUpdate = s.now()
		s.updateCurrent()
	})
}

// updateCurrent picks the visible slot whose centre is nearest the viewport
// centre; ties go to the lower page.
func (s *scrollController) updateCurrent() {
	center := s.stage.ViewportCenter()
	if s.pinned != 0 {
		if math.IsNaN(s.pinCenter) || center == s.pinCenter {
			s.onPage(s.pinned)
			return
		}
		s.pinned = 0
	}
	best, bestDist := 0, math.Inf(1)
	for page := range s.visible {
		slot := s.slot(page)
		if slot == nil {
			continue
		}
		_, cy := slot.Element.Bounds().Center()
		d := math.Abs(cy - center)
		if d < bestDist || (d == bestDist && page < best) {
			best, bestDist = page, d
		}
	}
	if best != 0 {
		s.onPage(best)
	}
}

func (s *scrollController) gotoPage(n int) {
	s.target = n
	if !s.ready {
		return
	}
	s.scrollToPage(n)
}

// scrollToPage brings page n to the top of the viewport and pins it as the
// current page. Hosts may deliver scroll callbacks during ScrollIntoView,
// before the final position is known; those honour the pin unconditionally.
func (s *scrollController) scrollToPage(n int) {
	slot := s.slot(n)
	if slot == nil {
		return
	}
	s.pinned, s.pinCenter = n, math.NaN()
	s.stage.ScrollIntoView(slot.Element)
	s.pinCenter = s.stage.ViewportCenter()
}

func (s *scrollController) teardown() {
	if s.observer != nil {
		s.observer.Disconnect()
		s.observer = nil
	}
	if s.stopScroll != nil {
		s.stopScroll()
		s.stopScroll = nil
	}
	if s.stopTrailing != nil {
		s.stopTrailing()
		s.stopTrailing = nil
	}
	s.ready = false
	s.close()
}

func (s *scrollController) life() *lifecycle { return s.lifecycle }
