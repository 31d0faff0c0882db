//go:build js && wasm

package pdfjs

import (
	"image"
	"image/draw"
	"syscall/js"

	"github.com/inamate/flipbook/internal/viewer"
)

// Canvas is an offscreen <canvas> surface.
type Canvas struct {
	el    js.Value
	ctx2d js.Value
	w, h  int
}

var _ viewer.ImageSurface = (*Canvas)(nil)

func newCanvas(doc js.Value, w, h int) *Canvas {
	el := doc.Call("createElement", "canvas")
	el.Set("width", w)
	el.Set("height", h)
	el.Set("className", "page-canvas")
	return &Canvas{el: el, ctx2d: el.Call("getContext", "2d"), w: w, h: h}
}

func (c *Canvas) Size() (int, int) { return c.w, c.h }

// PutImage copies img onto the canvas. Engines that rasterise in Go, such
// as the sample document, draw through it.
func (c *Canvas) PutImage(img image.Image) error {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	arr := js.Global().Get("Uint8ClampedArray").New(len(rgba.Pix))
	js.CopyBytesToJS(arr, rgba.Pix)
	data := js.Global().Get("ImageData").New(arr, b.Dx(), b.Dy())
	c.ctx2d.Call("putImageData", data, 0, 0)
	return nil
}
