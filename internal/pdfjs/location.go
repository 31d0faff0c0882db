//go:build js && wasm

package pdfjs

import (
	"net/url"
	"strings"
	"syscall/js"
)

// Location is a viewer.URLStore over window.location and the History API.
// Replace never adds a history entry.
type Location struct{}

func (Location) Query() url.Values {
	search := js.Global().Get("location").Get("search").String()
	q, _ := url.ParseQuery(strings.TrimPrefix(search, "?"))
	return q
}

func (Location) Replace(q url.Values) {
	loc := js.Global().Get("location")
	u := loc.Get("pathname").String()
	if s := q.Encode(); s != "" {
		u += "?" + s
	}
	u += loc.Get("hash").String()
	js.Global().Get("history").Call("replaceState", js.Null(), "", u)
}
