package viewer

import (
	"fmt"
	"math"
)

// DefaultBaseScale is the render quality multiplier applied on top of the
// display zoom, so that text stays crisp at zoom 1.
const DefaultBaseScale = 1.5

// Size is a width/height pair in CSS pixels (or PDF points at scale 1).
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Overlaps reports whether the vertical extents of r and other intersect.
func (r Rect) Overlaps(top, bottom float64) bool {
	return r.Y < bottom && r.Y+r.Height > top
}

// PageGeometry is the render layout of one page for a given zoom and crop.
// It is derived on demand and never reused across zoom or crop changes.
type PageGeometry struct {
	RenderWidth   float64 `json:"renderWidth"`
	RenderHeight  float64 `json:"renderHeight"`
	CropOffsetX   float64 `json:"cropOffsetX"`
	CropOffsetY   float64 `json:"cropOffsetY"`
	VisibleWidth  float64 `json:"visibleWidth"`
	VisibleHeight float64 `json:"visibleHeight"`
}

// SurfaceSize returns the pixel size of the full, un-cropped surface.
func (g PageGeometry) SurfaceSize() (int, int) {
	return int(math.Ceil(g.RenderWidth)), int(math.Ceil(g.RenderHeight))
}

// VisibleSize returns the size of the clipping slot.
func (g PageGeometry) VisibleSize() Size {
	return Size{Width: g.VisibleWidth, Height: g.VisibleHeight}
}

// VisibleRect returns the visible sub-rectangle in surface coordinates.
func (g PageGeometry) VisibleRect() Rect {
	return Rect{X: g.CropOffsetX, Y: g.CropOffsetY, Width: g.VisibleWidth, Height: g.VisibleHeight}
}

// Calculator converts natural page sizes into render geometry.
// The zero value uses DefaultBaseScale.
type Calculator struct {
	BaseScale float64
}

// Scale returns the effective engine scale for zoom.
func (c Calculator) Scale(zoom float64) float64 {
	base := c.BaseScale
	if base <= 0 {
		base = DefaultBaseScale
	}
	return base * zoom
}

// Compute returns the geometry of a page with the given natural size
// (viewport at scale 1) rendered at zoom with crop applied.
func (c Calculator) Compute(natural Size, zoom float64, crop CropSpec) (PageGeometry, error) {
	if natural.Width <= 0 || natural.Height <= 0 {
		return PageGeometry{}, &ConfigurationError{Field: "size", Err: fmt.Errorf("natural size %gx%g: %w", natural.Width, natural.Height, ErrDegenerateGeometry)}
	}
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return PageGeometry{}, &ConfigurationError{Field: "zoom", Err: fmt.Errorf("zoom %g: %w", zoom, ErrInvalidZoom)}
	}

	scale := c.Scale(zoom)
	rw := natural.Width * scale
	rh := natural.Height * scale
	fx, fy := crop.VisibleFraction()

	g := PageGeometry{
		RenderWidth:   rw,
		RenderHeight:  rh,
		CropOffsetX:   rw * crop.Left / 100,
		CropOffsetY:   rh * crop.Top / 100,
		VisibleWidth:  rw * fx,
		VisibleHeight: rh * fy,
	}
	if !(g.VisibleWidth > 0) || !(g.VisibleHeight > 0) {
		return PageGeometry{}, &ConfigurationError{Field: "crop", Err: fmt.Errorf("crop %s: %w", crop, ErrDegenerateGeometry)}
	}
	return g, nil
}

// ComputeGeometry is Calculator.Compute with DefaultBaseScale.
func ComputeGeometry(natural Size, zoom float64, crop CropSpec) (PageGeometry, error) {
	return Calculator{BaseScale: DefaultBaseScale}.Compute(natural, zoom, crop)
}
