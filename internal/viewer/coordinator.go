package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/inamate/flipbook/internal/typeid"
)

// controller is one presentation mode. Each instance lives for exactly one
// lifecycle; mode switches and geometry changes build a fresh one.
type controller interface {
	start(page int)
	gotoPage(n int)
	teardown()
	life() *lifecycle
}

// Stages are the containers of the two modes.
type Stages struct {
	Flip   FlipStage
	Scroll ScrollStage
}

// Snapshot is a read-only copy of the coordinator state, safe to read from
// any goroutine.
type Snapshot struct {
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
	Zoom       float64  `json:"zoom"`
	Mode       Mode     `json:"mode"`
	Crop       CropSpec `json:"crop"`
	Rendered   []int    `json:"rendered"`
	Generation uint64   `json:"generation"`
	Loaded     bool     `json:"loaded"`
}

// ViewState returns the view fields of the snapshot.
func (s Snapshot) ViewState() ViewState {
	return ViewState{CurrentPage: s.Page, Zoom: s.Zoom, Mode: s.Mode, Crop: s.Crop}
}

// Coordinator holds the canonical ViewState, owns the document and switches
// between the flip and scroll controllers.
//
// Apart from Open, Snapshot and StateJSON, methods must be called on the UI
// loop of the Dispatcher.
type Coordinator struct {
	opts     Options
	engine   Engine
	stages   Stages
	urls     URLStore
	dispatch Dispatcher
	render   *RenderService
	log      *slog.Logger

	ctx    context.Context
	doc    Document
	state  ViewState
	active controller
	gen    uint64

	snapshot atomic.Pointer[Snapshot]
}

// New creates a coordinator. Both stages must be set.
func New(engine Engine, stages Stages, urls URLStore, dispatch Dispatcher, opts Options) *Coordinator {
	opts = opts.withDefaults()
	if urls == nil {
		urls = NewQueryStore(nil)
	}
	c := &Coordinator{
		opts:     opts,
		engine:   engine,
		stages:   stages,
		urls:     urls,
		dispatch: dispatch,
		render:   NewRenderService(opts.BaseScale, dispatch),
		log:      opts.Logger.With("session", typeid.NewViewID()),
		ctx:      context.Background(),
		state:    DecodeQuery(urls.Query(), opts.defaultState()),
	}
	c.publish()
	return c
}

// Open loads source and then attaches it on the UI loop. It blocks for the
// duration of the load and must not be called from the loop itself unless
// the dispatcher is Inline.
func (c *Coordinator) Open(ctx context.Context, source string) error {
	doc, err := c.engine.Load(ctx, source, c.opts.Load)
	if err == nil && doc.NumPages() < 1 {
		doc.Close()
		err = errors.New("document has no pages")
	}
	if err != nil {
		err = &DocumentLoadError{Source: source, Err: err}
		c.log.Error("load document", "source", source, "error", err)
		return err
	}
	c.log.Info("document loaded", "source", source, "pages", doc.NumPages())
	c.dispatch.Post(func() { c.Attach(ctx, doc) })
	return nil
}

// Attach makes doc the current document, replacing any previous one, restores
// the view from the URL and initialises the active mode.
func (c *Coordinator) Attach(ctx context.Context, doc Document) {
	c.Close()
	c.ctx = ctx
	c.doc = doc

	zoom := c.state.Zoom
	c.state = DecodeQuery(c.urls.Query(), c.opts.defaultState())
	c.state.Zoom = zoom
	c.state.CurrentPage = c.clampPage(c.state.CurrentPage)

	c.showStages()
	c.activate()
	c.persist()
}

// Close tears down the active controller and releases the document.
func (c *Coordinator) Close() {
	if c.active != nil {
		c.active.teardown()
		c.active = nil
	}
	if c.doc != nil {
		if err := c.doc.Close(); err != nil {
			c.log.Warn("close document", "error", err)
		}
		c.doc = nil
	}
	c.publish()
}

// Document returns the attached document, or nil.
func (c *Coordinator) Document() Document { return c.doc }

// SetMode switches presentation mode. Nothing carries over between modes:
// the new controller rebuilds every slot.
func (c *Coordinator) SetMode(m Mode) error {
	if _, ok := ParseMode(string(m)); !ok {
		return fmt.Errorf("mode %q: %w", m, ErrInvalidMode)
	}
	if m == c.state.Mode {
		return nil
	}
	if c.active != nil {
		c.active.teardown()
	}
	c.state.Mode = m
	c.log.Info("mode changed", "mode", m)
	if c.doc != nil {
		c.showStages()
		c.activate()
	}
	c.persist()
	return nil
}

// SetZoom adds delta to the zoom, clamped to [MinZoom, MaxZoom], and
// re-initialises the active mode if the zoom changed.
func (c *Coordinator) SetZoom(delta float64) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		c.log.Warn("ignore zoom change", "delta", delta)
		return
	}
	z := c.opts.ClampZoom(c.state.Zoom + delta)
	if z == c.state.Zoom {
		return
	}
	c.state.Zoom = z
	c.reset("zoom")
}

func (c *Coordinator) ZoomIn() { c.SetZoom(c.opts.ZoomStep) }

func (c *Coordinator) ZoomOut() { c.SetZoom(-c.opts.ZoomStep) }

// SetCrop clamps spec, applies it and returns the crop in effect.
func (c *Coordinator) SetCrop(spec CropSpec) CropSpec {
	spec = spec.Clamp()
	if spec == c.state.Crop {
		return spec
	}
	c.state.Crop = spec
	c.reset("crop")
	return spec
}

// GotoPage navigates to page n, clamped to [1, totalPages]. Before a
// document is attached the page is only recorded; Attach clamps it.
func (c *Coordinator) GotoPage(n int) {
	if c.doc == nil {
		c.state.CurrentPage = max(n, 1)
		c.persist()
		return
	}
	n = c.clampPage(n)
	c.state.CurrentPage = n
	c.persist()
	if c.active != nil {
		c.active.gotoPage(n)
	}
}

// NextPage advances by one step: a spread in flip mode, a page in scroll
// mode.
func (c *Coordinator) NextPage() {
	if f, ok := c.active.(*flipController); ok {
		f.next()
		return
	}
	c.GotoPage(c.state.CurrentPage + 1)
}

// PrevPage is the inverse of NextPage.
func (c *Coordinator) PrevPage() {
	if f, ok := c.active.(*flipController); ok {
		f.prev()
		return
	}
	c.GotoPage(c.state.CurrentPage - 1)
}

// State returns the current view state.
func (c *Coordinator) State() ViewState { return c.Snapshot().ViewState() }

// Snapshot returns the latest published state.
func (c *Coordinator) Snapshot() Snapshot { return *c.snapshot.Load() }

// StateJSON returns the snapshot as JSON.
func (c *Coordinator) StateJSON() string {
	data, _ := json.Marshal(c.Snapshot())
	return string(data)
}

// reset rebuilds the active mode from scratch, discarding every rendered
// page: render resolution depends on both zoom and crop.
func (c *Coordinator) reset(reason string) {
	if c.active != nil {
		l := c.active.life()
		c.log.Info("reset rendering", "reason", reason, "discarded", l.rendered.Len(),
			"zoom", c.state.Zoom, "crop", c.state.Crop.String())
		c.active.teardown()
		c.activate()
	}
	c.persist()
}

func (c *Coordinator) activate() {
	c.gen++
	gen := c.gen
	lc := &lifecycle{
		id:       typeid.NewLifecycleID(),
		gen:      gen,
		ctx:      c.ctx,
		doc:      c.doc,
		zoom:     c.state.Zoom,
		crop:     c.state.Crop,
		rendered: NewRenderedSet(),
		changed:  c.publish,
	}
	lc.log = c.log.With("lifecycle", lc.id, "gen", gen, "mode", c.state.Mode)
	onPage := func(p int) { c.pageChanged(gen, p) }

	switch c.state.Mode {
	case ModeScroll:
		lc.stage = c.stages.Scroll
		c.active = &scrollController{
			lifecycle: lc,
			stage:     c.stages.Scroll,
			render:    c.render,
			dispatch:  c.dispatch,
			margin:    c.opts.PreloadMargin,
			throttle:  c.opts.ScrollThrottle,
			now:       c.opts.Now,
			onPage:    onPage,
		}
	default:
		lc.stage = c.stages.Flip
		c.active = &flipController{
			lifecycle: lc,
			stage:     c.stages.Flip,
			render:    c.render,
			dispatch:  c.dispatch,
			onPage:    onPage,
		}
	}
	lc.log.Debug("controller start", "page", c.state.CurrentPage, "zoom", c.state.Zoom)
	c.active.start(c.state.CurrentPage)
	c.publish()
}

// pageChanged records a page reported by the controller of generation gen.
func (c *Coordinator) pageChanged(gen uint64, p int) {
	if gen != c.gen {
		return
	}
	p = c.clampPage(p)
	if p == c.state.CurrentPage {
		return
	}
	c.state.CurrentPage = p
	c.persist()
}

func (c *Coordinator) showStages() {
	c.stages.Flip.SetVisible(c.state.Mode == ModeFlip)
	c.stages.Scroll.SetVisible(c.state.Mode == ModeScroll)
}

func (c *Coordinator) clampPage(n int) int {
	total := 1
	if c.doc != nil {
		total = c.doc.NumPages()
	}
	return min(max(n, 1), total)
}

func (c *Coordinator) persist() {
	c.urls.Replace(EncodeQuery(c.urls.Query(), c.state))
	c.publish()
}

func (c *Coordinator) publish() {
	s := &Snapshot{
		Page:       c.state.CurrentPage,
		Zoom:       c.state.Zoom,
		Mode:       c.state.Mode,
		Crop:       c.state.Crop,
		Rendered:   []int{},
		Generation: c.gen,
		Loaded:     c.doc != nil,
	}
	if c.doc != nil {
		s.TotalPages = c.doc.NumPages()
	}
	if c.active != nil {
		s.Rendered = c.active.life().rendered.Pages()
	}
	c.snapshot.Store(s)
}
