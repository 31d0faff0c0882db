//go:build js && wasm

// Package pdfjs binds the viewer to the browser: pdf.js for documents,
// StPageFlip for the flip widget, IntersectionObserver for scroll
// visibility and the History API for URL state.
//
// Blocking calls (Engine.Load, Document.Page, Page.Draw, Page.TextContent)
// wait on JS promises and must run off the UI loop. DOM callbacks are
// forwarded to the loop through the stage's Dispatcher.
package pdfjs

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"
)

// JSError is a rejected promise.
type JSError struct {
	Name    string
	Message string
}

func (e *JSError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return e.Name + ": " + e.Message
}

func jsError(v js.Value) error {
	if v.Type() == js.TypeObject {
		return &JSError{Name: v.Get("name").String(), Message: v.Get("message").String()}
	}
	return &JSError{Message: fmt.Sprint(v)}
}

// await blocks until p settles or ctx is done.
func await(ctx context.Context, p js.Value) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}
	ch := make(chan result, 1)

	var then, catch js.Func
	then = js.FuncOf(func(_ js.Value, args []js.Value) any {
		v := js.Undefined()
		if len(args) > 0 {
			v = args[0]
		}
		ch <- result{v: v}
		return nil
	})
	catch = js.FuncOf(func(_ js.Value, args []js.Value) any {
		err := errors.New("promise rejected")
		if len(args) > 0 {
			err = jsError(args[0])
		}
		ch <- result{err: err}
		return nil
	})
	release := func() {
		then.Release()
		catch.Release()
	}

	p.Call("then", then, catch)
	select {
	case r := <-ch:
		release()
		return r.v, r.err
	case <-ctx.Done():
		// The callbacks stay alive until the promise settles.
		go func() {
			<-ch
			release()
		}()
		return js.Undefined(), ctx.Err()
	}
}

func object(kv map[string]any) js.Value {
	o := js.Global().Get("Object").New()
	for k, v := range kv {
		o.Set(k, v)
	}
	return o
}
