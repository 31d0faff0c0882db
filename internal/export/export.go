// Package export turns rendered pages into standalone PNG images.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"

	"github.com/inamate/flipbook/internal/viewer"
)

// Crop copies the visible region of a rendered page out of its full-size
// surface.
func Crop(r *viewer.RenderedPage) (*image.RGBA, error) {
	rs, ok := r.Surface.(viewer.RasterSurface)
	if !ok {
		return nil, fmt.Errorf("page %d: %w", r.Page, viewer.ErrUnsupportedSurface)
	}
	v := r.Geometry.VisibleRect()
	src := image.Rect(
		int(math.Round(v.X)), int(math.Round(v.Y)),
		int(math.Round(v.X+v.Width)), int(math.Round(v.Y+v.Height)),
	).Intersect(rs.Image().Bounds())
	if src.Empty() {
		return nil, fmt.Errorf("page %d: %w", r.Page, viewer.ErrDegenerateGeometry)
	}
	dst := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Copy(dst, image.Point{}, rs.Image(), src, draw.Src, nil)
	return dst, nil
}

// Fit scales img down to at most width pixels wide, keeping the aspect
// ratio. Images already narrow enough are returned unchanged.
func Fit(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	h := max(1, int(math.Round(float64(b.Dy())*float64(width)/float64(b.Dx()))))
	dst := image.NewRGBA(image.Rect(0, 0, width, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WritePNG encodes the visible region of r, scaled to at most width pixels
// when width is positive.
func WritePNG(w io.Writer, r *viewer.RenderedPage, width int) error {
	img, err := Crop(r)
	if err != nil {
		return err
	}
	return png.Encode(w, Fit(img, width))
}
