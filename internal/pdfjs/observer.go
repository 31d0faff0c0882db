//go:build js && wasm

package pdfjs

import (
	"fmt"
	"strconv"
	"syscall/js"

	"github.com/inamate/flipbook/internal/viewer"
)

type observer struct {
	io js.Value
	cb js.Func
}

// newObserver creates an IntersectionObserver rooted at the stage with the
// margin applied vertically.
func newObserver(s *Stage, opts viewer.ObserverOptions, fn func(page int, visible bool)) *observer {
	o := &observer{}
	o.cb = js.FuncOf(func(_ js.Value, args []js.Value) any {
		entries := args[0]
		for i := range entries.Length() {
			e := entries.Index(i)
			page, err := strconv.Atoi(e.Get("target").Get("dataset").Get("page").String())
			if err != nil {
				continue
			}
			visible := e.Get("isIntersecting").Bool()
			s.dispatch.Post(func() { fn(page, visible) })
		}
		return nil
	})
	o.io = js.Global().Get("IntersectionObserver").New(o.cb, object(map[string]any{
		"root":       s.el,
		"rootMargin": fmt.Sprintf("%gpx 0px", opts.RootMargin),
		"threshold":  opts.Threshold,
	}))
	return o
}

func (o *observer) Observe(el viewer.SlotElement) {
	if e, ok := el.(*Element); ok {
		o.io.Call("observe", e.el)
	}
}

func (o *observer) Disconnect() {
	o.io.Call("disconnect")
	o.cb.Release()
}
