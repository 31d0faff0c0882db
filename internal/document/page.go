package document

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/inamate/flipbook/internal/viewer"
)

const (
	margin    = 72.0
	titleSize = 24.0
	bodySize  = 12.0
	bodyLines = 8
	leading   = 18.0
)

var (
	paper = color.RGBA{0xfd, 0xfb, 0xf5, 0xff}
	frame = color.RGBA{0xc8, 0xc2, 0xb4, 0xff}
	ink   = color.RGBA{0x22, 0x22, 0x22, 0xff}
)

type page struct {
	doc *Document
	n   int
}

func (p *page) Number() int { return p.n }

func (p *page) Viewport(scale float64) viewer.Viewport {
	return viewer.NewViewport(viewer.Rect{Width: p.doc.size.Width, Height: p.doc.size.Height}, scale)
}

func (p *page) Draw(ctx context.Context, vp viewer.Viewport, dst viewer.Surface) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.doc.touch(p.n, p.doc.draws); err != nil {
		return err
	}
	return viewer.Paint(dst, func(img draw.Image) {
		b := img.Bounds()
		draw.Draw(img, b, image.NewUniform(paper), image.Point{}, draw.Src)

		// Frame at the page margin, the part a medium crop leaves intact.
		x0, y0 := vp.Transform.TransformPoint(margin/2, p.doc.size.Height-margin/2)
		x1, y1 := vp.Transform.TransformPoint(p.doc.size.Width-margin/2, margin/2)
		strokeRect(img, image.Rect(int(x0), int(y0), int(x1), int(y1)), frame)

		d := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: basicfont.Face7x13}
		for _, it := range p.items() {
			x, y := vp.Transform.TransformPoint(it.Transform[4], it.Transform[5])
			d.Dot = fixed.P(int(x), int(y))
			d.DrawString(it.Str)
		}
	})
}

func (p *page) TextContent(ctx context.Context) (viewer.TextContent, error) {
	if err := ctx.Err(); err != nil {
		return viewer.TextContent{}, err
	}
	if err := p.doc.touch(p.n, p.doc.texts); err != nil {
		return viewer.TextContent{}, err
	}
	return viewer.TextContent{Items: p.items()}, nil
}

// items lays out a title and a few body lines in PDF user space.
func (p *page) items() []viewer.TextItem {
	top := p.doc.size.Height - margin
	items := []viewer.TextItem{textItem(fmt.Sprintf("Page %d", p.n), margin, top-titleSize, titleSize)}
	y := top - titleSize - 2*leading
	for i := range bodyLines {
		s := fmt.Sprintf("Line %d of page %d of %d.", i+1, p.n, p.doc.pages)
		items = append(items, textItem(s, margin, y, bodySize))
		y -= leading
	}
	return items
}

func textItem(s string, x, y, size float64) viewer.TextItem {
	return viewer.TextItem{
		Str:       s,
		Transform: viewer.Matrix2D{size, 0, 0, size, x, y},
		Width:     float64(len(s)) * size * 0.5,
		Height:    size,
	}
}

func strokeRect(img draw.Image, r image.Rectangle, c color.Color) {
	r = r.Canon().Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}
