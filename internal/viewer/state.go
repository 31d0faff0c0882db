package viewer

import (
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Mode is the presentation mode.
type Mode string

const (
	ModeFlip   Mode = "flip"
	ModeScroll Mode = "scroll"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFlip, ModeScroll:
		return m, true
	}
	return "", false
}

// ViewState is the canonical view configuration held by the Coordinator.
type ViewState struct {
	CurrentPage int      `json:"page"`
	Zoom        float64  `json:"zoom"`
	Mode        Mode     `json:"mode"`
	Crop        CropSpec `json:"crop"`
}

// Query parameter names.
const (
	QueryPage = "page"
	QueryMode = "mode"
	QueryCrop = "crop"
)

// EncodeQuery writes page, mode and crop preset of s into a copy of q.
// Other parameters are preserved.
func EncodeQuery(q url.Values, s ViewState) url.Values {
	out := cloneValues(q)
	out.Set(QueryPage, strconv.Itoa(s.CurrentPage))
	out.Set(QueryMode, string(s.Mode))
	out.Set(QueryCrop, string(s.Crop.Preset))
	return out
}

// DecodeQuery restores a ViewState from q. Missing or invalid values fall
// back to the fields of defaults. The page is only checked to be positive;
// the Coordinator clamps it once the page count is known.
func DecodeQuery(q url.Values, defaults ViewState) ViewState {
	s := defaults
	if p, err := strconv.Atoi(q.Get(QueryPage)); err == nil && p > 0 {
		s.CurrentPage = p
	}
	if m, ok := ParseMode(q.Get(QueryMode)); ok {
		s.Mode = m
	}
	if p, ok := ParseCropPreset(q.Get(QueryCrop)); ok {
		s.Crop, _ = PresetCrop(p)
	}
	return s
}

// Options configure a Coordinator.
type Options struct {
	BaseScale float64
	MinZoom   float64
	MaxZoom   float64
	ZoomStep  float64

	// PreloadMargin is the scroll-mode observer margin in pixels.
	PreloadMargin float64
	// ScrollThrottle bounds how often the scroll-mode current page is
	// recomputed.
	ScrollThrottle time.Duration

	DefaultMode Mode
	DefaultCrop CropPreset

	Load LoadOptions

	Logger *slog.Logger
	// Now is the clock used for throttling. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the viewer defaults.
func DefaultOptions() Options {
	return Options{
		BaseScale:      DefaultBaseScale,
		MinZoom:        0.5,
		MaxZoom:        3.0,
		ZoomStep:       0.25,
		PreloadMargin:  200,
		ScrollThrottle: 100 * time.Millisecond,
		DefaultMode:    ModeFlip,
		DefaultCrop:    CropMedium,
		Load: LoadOptions{
			RangeChunkSize:   65536 * 2,
			DisableAutoFetch: true,
			DisableStream:    true,
		},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BaseScale <= 0 {
		o.BaseScale = d.BaseScale
	}
	if o.MinZoom <= 0 {
		o.MinZoom = d.MinZoom
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = math.Max(d.MaxZoom, o.MinZoom)
	}
	if o.ZoomStep <= 0 {
		o.ZoomStep = d.ZoomStep
	}
	if o.PreloadMargin < 0 {
		o.PreloadMargin = 0
	}
	if o.ScrollThrottle <= 0 {
		o.ScrollThrottle = d.ScrollThrottle
	}
	if _, ok := ParseMode(string(o.DefaultMode)); !ok {
		o.DefaultMode = d.DefaultMode
	}
	if _, ok := PresetCrop(o.DefaultCrop); !ok {
		o.DefaultCrop = d.DefaultCrop
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// defaultState is the view before the URL is consulted.
func (o Options) defaultState() ViewState {
	crop, _ := PresetCrop(o.DefaultCrop)
	return ViewState{
		CurrentPage: 1,
		Zoom:        1,
		Mode:        o.DefaultMode,
		Crop:        crop,
	}
}

// ClampZoom rounds z to two decimals and bounds it to [MinZoom, MaxZoom].
// NaN maps to 1.
func (o Options) ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		z = 1
	}
	z = math.Round(z*100) / 100
	return math.Min(math.Max(z, o.MinZoom), o.MaxZoom)
}
