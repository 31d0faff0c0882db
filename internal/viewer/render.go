package viewer

import (
	"context"
	"log/slog"
)

// RenderedPage is the result of rendering one page: a full-size surface plus,
// in scroll mode, its text overlay. Hosts clip it to Geometry.VisibleSize and
// shift both layers by (-CropOffsetX, -CropOffsetY).
type RenderedPage struct {
	Page     int
	Geometry PageGeometry
	Viewport Viewport
	Surface  Surface
	Overlay  *TextOverlay
}

// RenderService materialises pages. The blocking methods talk to the engine;
// Request wraps them with the slot guard and generation check.
type RenderService struct {
	calc     Calculator
	dispatch Dispatcher
}

// NewRenderService creates a service rendering at baseScale.
func NewRenderService(baseScale float64, dispatch Dispatcher) *RenderService {
	return &RenderService{calc: Calculator{BaseScale: baseScale}, dispatch: dispatch}
}

// RenderForDisplay draws page n without a text overlay.
func (s *RenderService) RenderForDisplay(ctx context.Context, doc Document, stage Stage, n int, zoom float64, crop CropSpec) (*RenderedPage, error) {
	p, err := loadPage(ctx, doc, n)
	if err != nil {
		return nil, err
	}
	return s.draw(ctx, p, stage, zoom, crop)
}

// RenderWithTextOverlay draws page n and lays out its text on top.
func (s *RenderService) RenderWithTextOverlay(ctx context.Context, doc Document, stage Stage, n int, zoom float64, crop CropSpec) (*RenderedPage, error) {
	p, err := loadPage(ctx, doc, n)
	if err != nil {
		return nil, err
	}
	r, err := s.draw(ctx, p, stage, zoom, crop)
	if err != nil {
		return nil, err
	}
	tc, err := p.TextContent(ctx)
	if err != nil {
		return nil, &PageRenderError{Page: n, Err: err}
	}
	r.Overlay = LayoutTextOverlay(tc, r.Viewport, r.Geometry)
	return r, nil
}

func loadPage(ctx context.Context, doc Document, n int) (Page, error) {
	if doc == nil {
		return nil, &PageRenderError{Page: n, Err: ErrNoDocument}
	}
	p, err := doc.Page(ctx, n)
	if err != nil {
		return nil, &PageRenderError{Page: n, Err: err}
	}
	return p, nil
}

// draw renders the full un-cropped page; crop is applied by the host as a
// clip, never by re-sampling a sub-region.
func (s *RenderService) draw(ctx context.Context, p Page, stage Stage, zoom float64, crop CropSpec) (*RenderedPage, error) {
	n := p.Number()
	g, err := s.calc.Compute(p.Viewport(1).Size(), zoom, crop)
	if err != nil {
		return nil, &PageRenderError{Page: n, Err: err}
	}
	vp := p.Viewport(s.calc.Scale(zoom))
	w, h := g.SurfaceSize()
	surface := stage.NewSurface(w, h)
	if err := p.Draw(ctx, vp, surface); err != nil {
		return nil, &PageRenderError{Page: n, Err: err}
	}
	return &RenderedPage{Page: n, Geometry: g, Viewport: vp, Surface: surface}, nil
}

// Request renders the slot of page within l unless it is rendered or in
// flight. Must be called on the UI loop.
func (s *RenderService) Request(l *lifecycle, page int, withText bool) {
	slot := l.slot(page)
	if slot == nil || slot.rendered || slot.pending {
		return
	}
	slot.pending = true
	gen := l.gen
	s.dispatch.Go(func() {
		var r *RenderedPage
		var err error
		if withText {
			r, err = s.RenderWithTextOverlay(l.ctx, l.doc, l.stage, page, l.zoom, l.crop)
		} else {
			r, err = s.RenderForDisplay(l.ctx, l.doc, l.stage, page, l.zoom, l.crop)
		}
		s.dispatch.Post(func() { s.complete(l, gen, slot, r, err) })
	})
}

func (s *RenderService) complete(l *lifecycle, gen uint64, slot *Slot, r *RenderedPage, err error) {
	if !l.current(gen) || l.slot(slot.Page) != slot {
		l.log.Debug("discard stale render", "page", slot.Page, "gen", gen)
		return
	}
	slot.pending = false
	if err != nil {
		// The placeholder stays; a later geometry reset retries.
		l.log.Warn("render page failed", "page", slot.Page, "error", err)
		return
	}
	slot.Element.Mount(r)
	slot.rendered = true
	l.rendered.Add(slot.Page)
	if l.changed != nil {
		l.changed()
	}
	l.log.Debug("page rendered", slog.Int("page", slot.Page), slog.Bool("text", r.Overlay != nil))
}
