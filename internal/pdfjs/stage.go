//go:build js && wasm

package pdfjs

import (
	"fmt"
	"strconv"
	"syscall/js"

	"github.com/inamate/flipbook/internal/viewer"
)

// NarrowWidth is the window width below which the flip widget uses fixed
// sizing.
const NarrowWidth = 768

// Stage is a DOM container. Scroll stages are the scrolling element
// themselves.
type Stage struct {
	doc      js.Value
	win      js.Value
	el       js.Value
	dispatch viewer.Dispatcher
}

var (
	_ viewer.FlipStage   = (*Stage)(nil)
	_ viewer.ScrollStage = (*Stage)(nil)
)

// NewStage binds the element with the given id.
func NewStage(id string, dispatch viewer.Dispatcher) (*Stage, error) {
	doc := js.Global().Get("document")
	el := doc.Call("getElementById", id)
	if el.IsNull() {
		return nil, fmt.Errorf("element #%s not found", id)
	}
	return &Stage{doc: doc, win: js.Global(), el: el, dispatch: dispatch}, nil
}

func (s *Stage) NewSlot(page int, placeholder viewer.Size) viewer.SlotElement {
	el := s.doc.Call("createElement", "div")
	el.Set("className", "page-slot")
	el.Get("dataset").Set("page", strconv.Itoa(page))
	st := el.Get("style")
	st.Set("width", px(placeholder.Width))
	st.Set("height", px(placeholder.Height))

	ph := s.doc.Call("createElement", "div")
	ph.Set("className", "page-placeholder")
	ph.Set("textContent", fmt.Sprintf("Loading page %d…", page))
	el.Call("appendChild", ph)

	s.el.Call("appendChild", el)
	return &Element{stage: s, el: el, page: page}
}

func (s *Stage) NewSurface(width, height int) viewer.Surface {
	return newCanvas(s.doc, width, height)
}

func (s *Stage) SetVisible(visible bool) {
	display := "none"
	if visible {
		display = ""
	}
	s.el.Get("style").Set("display", display)
}

func (s *Stage) Clear() {
	s.el.Set("innerHTML", "")
}

func (s *Stage) NewFlipWidget(opts viewer.FlipOptions) viewer.FlipWidget {
	return newPageFlip(s, opts)
}

func (s *Stage) Narrow() bool {
	return s.win.Get("innerWidth").Float() < NarrowWidth
}

func (s *Stage) NewObserver(opts viewer.ObserverOptions, fn func(page int, visible bool)) viewer.VisibilityObserver {
	return newObserver(s, opts, fn)
}

func (s *Stage) ScrollIntoView(el viewer.SlotElement) {
	if e, ok := el.(*Element); ok {
		e.el.Call("scrollIntoView", object(map[string]any{"block": "start"}))
	}
}

func (s *Stage) OnScroll(fn func()) func() {
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		s.dispatch.Post(fn)
		return nil
	})
	opts := object(map[string]any{"passive": true})
	s.el.Call("addEventListener", "scroll", cb, opts)
	return func() {
		s.el.Call("removeEventListener", "scroll", cb, opts)
		cb.Release()
	}
}

func (s *Stage) ViewportCenter() float64 {
	return s.el.Get("scrollTop").Float() + s.el.Get("clientHeight").Float()/2
}

// Element is a page slot <div>.
type Element struct {
	stage *Stage
	el    js.Value
	page  int
}

func (e *Element) Page() int { return e.page }

// Bounds uses offset geometry, which is relative to the stage because the
// stage is positioned.
func (e *Element) Bounds() viewer.Rect {
	return viewer.Rect{
		X:      e.el.Get("offsetLeft").Float(),
		Y:      e.el.Get("offsetTop").Float(),
		Width:  e.el.Get("offsetWidth").Float(),
		Height: e.el.Get("offsetHeight").Float(),
	}
}

func (e *Element) Mount(r *viewer.RenderedPage) {
	g := r.Geometry
	doc := e.stage.doc

	st := e.el.Get("style")
	st.Set("width", px(g.VisibleWidth))
	st.Set("height", px(g.VisibleHeight))
	e.el.Set("innerHTML", "")

	clip := doc.Call("createElement", "div")
	clip.Set("className", "page-clip")
	cs := clip.Get("style")
	cs.Set("width", px(g.VisibleWidth))
	cs.Set("height", px(g.VisibleHeight))

	if c, ok := r.Surface.(*Canvas); ok {
		s := c.el.Get("style")
		s.Set("left", px(-g.CropOffsetX))
		s.Set("top", px(-g.CropOffsetY))
		s.Set("width", px(g.RenderWidth))
		s.Set("height", px(g.RenderHeight))
		clip.Call("appendChild", c.el)
	}
	if ov := r.Overlay; ov != nil {
		clip.Call("appendChild", textLayer(doc, ov))
	}
	e.el.Call("appendChild", clip)
	e.el.Get("dataset").Set("rendered", "true")
}

func textLayer(doc js.Value, ov *viewer.TextOverlay) js.Value {
	layer := doc.Call("createElement", "div")
	layer.Set("className", "textLayer")
	ls := layer.Get("style")
	ls.Set("left", px(ov.OffsetX))
	ls.Set("top", px(ov.OffsetY))
	ls.Set("width", px(ov.Width))
	ls.Set("height", px(ov.Height))

	frag := doc.Call("createDocumentFragment")
	for _, sp := range ov.Spans {
		span := doc.Call("createElement", "span")
		span.Set("textContent", sp.Text)
		s := span.Get("style")
		s.Set("left", px(sp.X))
		s.Set("top", px(sp.Y))
		s.Set("fontSize", px(sp.FontSize))
		if sp.Angle != 0 {
			s.Set("transform", "rotate("+strconv.FormatFloat(sp.Angle, 'f', 4, 64)+"rad)")
		}
		frag.Call("appendChild", span)
	}
	layer.Call("appendChild", frag)
	return layer
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "px"
}
