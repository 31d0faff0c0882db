package viewer

import "math"

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// This is the layout used by PDF text matrices and by pdf.js viewports.
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],        // a
		m[1]*other[0] + m[3]*other[1],        // b
		m[0]*other[2] + m[2]*other[3],        // c
		m[1]*other[2] + m[3]*other[3],        // d
		m[0]*other[4] + m[2]*other[5] + m[4], // e
		m[1]*other[4] + m[3]*other[5] + m[5], // f
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// VerticalScale is the length of the transformed unit y vector. For a text
// matrix composed with a viewport this is the rendered font height.
func (m Matrix2D) VerticalScale() float64 {
	return math.Hypot(m[2], m[3])
}

// Angle returns the rotation of the transformed x axis in radians.
func (m Matrix2D) Angle() float64 {
	return math.Atan2(m[1], m[0])
}

// Viewport is an engine page viewport: device size plus the transform from
// PDF user space (y up) to device space (y down, origin top-left).
type Viewport struct {
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Scale     float64  `json:"scale"`
	Transform Matrix2D `json:"transform"`
}

// NewViewport builds the viewport of a page whose box (in PDF user space)
// is box, at the given scale.
func NewViewport(box Rect, scale float64) Viewport {
	return Viewport{
		Width:  box.Width * scale,
		Height: box.Height * scale,
		Scale:  scale,
		// Flip y, then move the box's top-left corner to the origin.
		Transform: Translate(-box.X*scale, (box.Y+box.Height)*scale).Multiply(Scale(scale, -scale)),
	}
}

// Size returns the viewport dimensions.
func (v Viewport) Size() Size {
	return Size{Width: v.Width, Height: v.Height}
}
