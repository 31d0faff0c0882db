package viewer

import (
	"fmt"
	"math"
	"strings"
)

// CropPreset names a crop configuration.
type CropPreset string

const (
	CropNone   CropPreset = "none"
	CropLight  CropPreset = "light"
	CropMedium CropPreset = "medium"
	CropStrong CropPreset = "strong"
	CropCustom CropPreset = "custom"
)

// MaxCropEdge bounds every custom edge, which keeps each axis at or below
// 90% cropped.
const MaxCropEdge = 45.0

var presetMargins = map[CropPreset]float64{
	CropNone:   0,
	CropLight:  2,
	CropMedium: 4,
	CropStrong: 6,
}

// CropSpec holds percentage margins trimmed from each edge of a page.
type CropSpec struct {
	Preset CropPreset `json:"preset"`
	Top    float64    `json:"top"`
	Right  float64    `json:"right"`
	Bottom float64    `json:"bottom"`
	Left   float64    `json:"left"`
}

// ParseCropPreset parses a preset name. Custom is not accepted here because a
// bare name carries no margins.
func ParseCropPreset(s string) (CropPreset, bool) {
	p := CropPreset(strings.ToLower(strings.TrimSpace(s)))
	_, ok := presetMargins[p]
	return p, ok
}

// PresetCrop returns the margins of a named preset.
func PresetCrop(p CropPreset) (CropSpec, bool) {
	m, ok := presetMargins[p]
	if !ok {
		return CropSpec{}, false
	}
	return CropSpec{Preset: p, Top: m, Right: m, Bottom: m, Left: m}, true
}

// CustomCrop returns a clamped custom crop.
func CustomCrop(top, right, bottom, left float64) CropSpec {
	return CropSpec{Preset: CropCustom, Top: top, Right: right, Bottom: bottom, Left: left}.Clamp()
}

// Clamp normalises c. Named presets get their canonical margins; anything
// else becomes a custom crop with every edge in [0, MaxCropEdge].
func (c CropSpec) Clamp() CropSpec {
	if p, ok := PresetCrop(c.Preset); ok {
		return p
	}
	return CropSpec{
		Preset: CropCustom,
		Top:    clampEdge(c.Top),
		Right:  clampEdge(c.Right),
		Bottom: clampEdge(c.Bottom),
		Left:   clampEdge(c.Left),
	}
}

func clampEdge(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, MaxCropEdge)
}

// Validate checks the invariant top+bottom < 100 and left+right < 100.
func (c CropSpec) Validate() error {
	for _, v := range []float64{c.Top, c.Right, c.Bottom, c.Left} {
		if math.IsNaN(v) || v < 0 || v >= 100 {
			return fmt.Errorf("crop %s: edge out of range: %w", c, ErrDegenerateGeometry)
		}
	}
	if c.Top+c.Bottom >= 100 || c.Left+c.Right >= 100 {
		return fmt.Errorf("crop %s: %w", c, ErrDegenerateGeometry)
	}
	return nil
}

// VisibleFraction returns the fraction of width and height left after crop.
func (c CropSpec) VisibleFraction() (float64, float64) {
	return 1 - (c.Left+c.Right)/100, 1 - (c.Top+c.Bottom)/100
}

func (c CropSpec) String() string {
	return fmt.Sprintf("%s(%g,%g,%g,%g)", c.Preset, c.Top, c.Right, c.Bottom, c.Left)
}
