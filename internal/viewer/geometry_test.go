package viewer

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var letter = Size{Width: 612, Height: 792}

func approx() cmp.Option { return cmpopts.EquateApprox(0, 1e-9) }

func TestComputeGeometry(t *testing.T) {
	tests := []struct {
		name string
		zoom float64
		crop CropSpec
		want PageGeometry
	}{
		{
			name: "medium crop at zoom 1",
			zoom: 1,
			crop: mustPreset(t, CropMedium),
			want: PageGeometry{
				RenderWidth: 918, RenderHeight: 1188,
				CropOffsetX: 36.72, CropOffsetY: 47.52,
				VisibleWidth: 844.56, VisibleHeight: 1092.96,
			},
		},
		{
			name: "no crop at zoom 2",
			zoom: 2,
			crop: mustPreset(t, CropNone),
			want: PageGeometry{
				RenderWidth: 1836, RenderHeight: 2376,
				VisibleWidth: 1836, VisibleHeight: 2376,
			},
		},
		{
			name: "asymmetric custom crop",
			zoom: 1,
			crop: CustomCrop(10, 0, 20, 5),
			want: PageGeometry{
				RenderWidth: 918, RenderHeight: 1188,
				CropOffsetX: 45.9, CropOffsetY: 118.8,
				VisibleWidth: 872.1, VisibleHeight: 831.6,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeGeometry(letter, tt.zoom, tt.crop)
			if err != nil {
				t.Fatalf("ComputeGeometry: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, approx()); diff != "" {
				t.Errorf("geometry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeGeometryInvariants(t *testing.T) {
	for _, zoom := range []float64{0.5, 0.75, 1, 1.25, 2.5, 3} {
		for _, p := range []CropPreset{CropNone, CropLight, CropMedium, CropStrong} {
			g, err := ComputeGeometry(letter, zoom, mustPreset(t, p))
			if err != nil {
				t.Fatalf("zoom %v crop %s: %v", zoom, p, err)
			}
			if g.VisibleWidth <= 0 || g.VisibleHeight <= 0 {
				t.Errorf("zoom %v crop %s: empty visible area", zoom, p)
			}
			if g.CropOffsetX+g.VisibleWidth > g.RenderWidth+1e-9 ||
				g.CropOffsetY+g.VisibleHeight > g.RenderHeight+1e-9 {
				t.Errorf("zoom %v crop %s: visible rect exceeds render: %+v", zoom, p, g)
			}
		}
	}
}

func TestComputeGeometryErrors(t *testing.T) {
	tests := []struct {
		name    string
		natural Size
		zoom    float64
		crop    CropSpec
		want    error
	}{
		{"zero width", Size{0, 792}, 1, CropSpec{}, ErrDegenerateGeometry},
		{"zero zoom", letter, 0, CropSpec{}, ErrInvalidZoom},
		{"nan zoom", letter, math.NaN(), CropSpec{}, ErrInvalidZoom},
		{"full crop", letter, 1, CropSpec{Preset: CropCustom, Left: 50, Right: 50}, ErrDegenerateGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeGeometry(tt.natural, tt.zoom, tt.crop)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var cfg *ConfigurationError
			if !errors.As(err, &cfg) {
				t.Errorf("err = %T, want *ConfigurationError", err)
			}
		})
	}
}

func TestSurfaceSizeRoundsUp(t *testing.T) {
	g := PageGeometry{RenderWidth: 844.2, RenderHeight: 1092}
	w, h := g.SurfaceSize()
	if w != 845 || h != 1092 {
		t.Errorf("SurfaceSize = %dx%d, want 845x1092", w, h)
	}
}

func TestNewViewport(t *testing.T) {
	vp := NewViewport(Rect{Width: 612, Height: 792}, 1.5)
	x, y := vp.Transform.TransformPoint(0, 792)
	if x != 0 || y != 0 {
		t.Errorf("top-left maps to (%v, %v), want origin", x, y)
	}
	x, y = vp.Transform.TransformPoint(612, 0)
	if x != 918 || y != 1188 {
		t.Errorf("bottom-right maps to (%v, %v), want (918, 1188)", x, y)
	}

	// A shifted media box starts at its own corner.
	vp = NewViewport(Rect{X: 10, Y: 20, Width: 100, Height: 200}, 1)
	x, y = vp.Transform.TransformPoint(10, 220)
	if x != 0 || y != 0 {
		t.Errorf("shifted top-left maps to (%v, %v)", x, y)
	}
}

func mustPreset(t *testing.T, p CropPreset) CropSpec {
	t.Helper()
	c, ok := PresetCrop(p)
	if !ok {
		t.Fatalf("unknown preset %q", p)
	}
	return c
}
