//go:build js && wasm

package pdfjs

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/inamate/flipbook/internal/viewer"
)

// Engine loads documents with the global pdfjsLib.
type Engine struct {
	lib js.Value
}

// NewEngine binds the pdfjsLib global. workerSrc, if set, configures the
// pdf.js worker script.
func NewEngine(workerSrc string) (*Engine, error) {
	lib := js.Global().Get("pdfjsLib")
	if lib.IsUndefined() || lib.IsNull() {
		return nil, errors.New("pdfjsLib is not loaded")
	}
	if workerSrc != "" {
		lib.Get("GlobalWorkerOptions").Set("workerSrc", workerSrc)
	}
	return &Engine{lib: lib}, nil
}

func (e *Engine) Load(ctx context.Context, source string, opts viewer.LoadOptions) (viewer.Document, error) {
	params := object(map[string]any{
		"url":              source,
		"disableAutoFetch": opts.DisableAutoFetch,
		"disableStream":    opts.DisableStream,
	})
	if opts.RangeChunkSize > 0 {
		params.Set("rangeChunkSize", opts.RangeChunkSize)
	}
	task := e.lib.Call("getDocument", params)

	if opts.OnProgress != nil {
		progress := js.FuncOf(func(_ js.Value, args []js.Value) any {
			if len(args) > 0 {
				p := args[0]
				opts.OnProgress(int64(p.Get("loaded").Float()), int64(p.Get("total").Float()))
			}
			return nil
		})
		defer progress.Release()
		task.Set("onProgress", progress)
		defer task.Set("onProgress", js.Null())
	}

	doc, err := await(ctx, task.Get("promise"))
	if err != nil {
		task.Call("destroy")
		return nil, err
	}
	return &Document{doc: doc, pages: doc.Get("numPages").Int()}, nil
}

// Document wraps a PDFDocumentProxy.
type Document struct {
	doc   js.Value
	pages int
}

func (d *Document) NumPages() int { return d.pages }

func (d *Document) Page(ctx context.Context, n int) (viewer.Page, error) {
	if n < 1 || n > d.pages {
		return nil, fmt.Errorf("page %d of %d: %w", n, d.pages, viewer.ErrInvalidPage)
	}
	p, err := await(ctx, d.doc.Call("getPage", n))
	if err != nil {
		return nil, err
	}
	return &Page{page: p, n: n}, nil
}

func (d *Document) Close() error {
	d.doc.Call("destroy")
	return nil
}

// Page wraps a PDFPageProxy.
type Page struct {
	page js.Value
	n    int
}

func (p *Page) Number() int { return p.n }

func (p *Page) Viewport(scale float64) viewer.Viewport {
	vp := p.page.Call("getViewport", object(map[string]any{"scale": scale}))
	return viewer.Viewport{
		Width:     vp.Get("width").Float(),
		Height:    vp.Get("height").Float(),
		Scale:     scale,
		Transform: matrix(vp.Get("transform")),
	}
}

// Draw renders into a Canvas surface.
func (p *Page) Draw(ctx context.Context, vp viewer.Viewport, dst viewer.Surface) error {
	c, ok := dst.(*Canvas)
	if !ok {
		return viewer.ErrUnsupportedSurface
	}
	task := p.page.Call("render", object(map[string]any{
		"canvasContext": c.ctx2d,
		"viewport":      p.page.Call("getViewport", object(map[string]any{"scale": vp.Scale})),
	}))
	if _, err := await(ctx, task.Get("promise")); err != nil {
		task.Call("cancel")
		return err
	}
	return nil
}

func (p *Page) TextContent(ctx context.Context) (viewer.TextContent, error) {
	tc, err := await(ctx, p.page.Call("getTextContent"))
	if err != nil {
		return viewer.TextContent{}, err
	}
	items := tc.Get("items")
	out := viewer.TextContent{Items: make([]viewer.TextItem, 0, items.Length())}
	for i := range items.Length() {
		it := items.Index(i)
		str := it.Get("str")
		// Marked-content entries carry no text.
		if str.Type() != js.TypeString {
			continue
		}
		out.Items = append(out.Items, viewer.TextItem{
			Str:       str.String(),
			Transform: matrix(it.Get("transform")),
			Width:     it.Get("width").Float(),
			Height:    it.Get("height").Float(),
		})
	}
	return out, nil
}

func matrix(v js.Value) viewer.Matrix2D {
	var m viewer.Matrix2D
	if v.Type() != js.TypeObject || v.Length() < 6 {
		return viewer.Identity()
	}
	for i := range m {
		m[i] = v.Index(i).Float()
	}
	return m
}
