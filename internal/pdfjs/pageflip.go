//go:build js && wasm

package pdfjs

import (
	"syscall/js"

	"github.com/inamate/flipbook/internal/viewer"
)

// pageFlip wraps a St.PageFlip instance.
type pageFlip struct {
	stage *Stage
	pf    js.Value
	fns   []func(int)
	onEvt js.Func
}

func newPageFlip(s *Stage, opts viewer.FlipOptions) *pageFlip {
	container := s.doc.Call("createElement", "div")
	container.Set("className", "flip-book")
	s.el.Call("appendChild", container)

	settings := object(map[string]any{
		"width":               opts.Width,
		"height":              opts.Height,
		"size":                string(opts.Sizing),
		"minWidth":            opts.MinWidth,
		"maxWidth":            opts.MaxWidth,
		"minHeight":           opts.MinHeight,
		"maxHeight":           opts.MaxHeight,
		"showCover":           opts.ShowCover,
		"maxShadowOpacity":    opts.MaxShadowOpacity,
		"mobileScrollSupport": false,
	})
	p := &pageFlip{
		stage: s,
		pf:    js.Global().Get("St").Get("PageFlip").New(container, settings),
	}
	p.onEvt = js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			p.emit(args[0].Get("data").Int())
		}
		return nil
	})
	p.pf.Call("on", "flip", p.onEvt)
	return p
}

func (p *pageFlip) LoadPages(pages []viewer.SlotElement) {
	arr := js.Global().Get("Array").New()
	for _, pg := range pages {
		if e, ok := pg.(*Element); ok {
			arr.Call("push", e.el)
		}
	}
	p.pf.Call("loadFromHTML", arr)
}

// TurnToPage jumps without animation. StPageFlip fires no flip event for
// it, so one is emitted here.
func (p *pageFlip) TurnToPage(index int) {
	before := p.CurrentPageIndex()
	p.pf.Call("turnToPage", index)
	if after := p.CurrentPageIndex(); after != before {
		p.emit(after)
	}
}

func (p *pageFlip) FlipNext() { p.pf.Call("flipNext") }

func (p *pageFlip) FlipPrev() { p.pf.Call("flipPrev") }

func (p *pageFlip) CurrentPageIndex() int {
	return p.pf.Call("getCurrentPageIndex").Int()
}

func (p *pageFlip) OnFlip(fn func(index int)) {
	p.fns = append(p.fns, fn)
}

func (p *pageFlip) Destroy() {
	p.fns = nil
	p.pf.Call("destroy")
	p.onEvt.Release()
}

func (p *pageFlip) emit(index int) {
	fns := p.fns
	p.stage.dispatch.Post(func() {
		for _, fn := range fns {
			fn(index)
		}
	})
}
