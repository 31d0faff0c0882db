package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/flipbook/internal/viewer"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.BookPath != "./data/book.pdf" {
		t.Errorf("port/book = %d/%q", cfg.Port, cfg.BookPath)
	}
	want := Viewer{
		BaseScale:      1.5,
		MinZoom:        0.5,
		MaxZoom:        3,
		ZoomStep:       0.25,
		PreloadMargin:  200,
		ScrollThrottle: 100 * time.Millisecond,
		DefaultMode:    "flip",
		DefaultCrop:    "medium",
		RangeChunkSize: 131072,
	}
	if diff := cmp.Diff(want, cfg.Viewer); diff != "" {
		t.Errorf("viewer settings (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("VIEWER_DEFAULT_MODE", "scroll")
	t.Setenv("VIEWER_DEFAULT_CROP", "none")
	t.Setenv("VIEWER_SCROLL_THROTTLE", "250ms")
	t.Setenv("VIEWER_MAX_ZOOM", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	opts := cfg.ViewerOptions()
	if opts.DefaultMode != viewer.ModeScroll || opts.DefaultCrop != viewer.CropNone {
		t.Errorf("defaults = %s/%s", opts.DefaultMode, opts.DefaultCrop)
	}
	if opts.ScrollThrottle != 250*time.Millisecond || opts.MaxZoom != 2 {
		t.Errorf("throttle/max = %v/%v", opts.ScrollThrottle, opts.MaxZoom)
	}
	if opts.Load.RangeChunkSize != 131072 || !opts.Load.DisableAutoFetch {
		t.Errorf("load options = %+v", opts.Load)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"VIEWER_DEFAULT_MODE", "grid", "VIEWER_DEFAULT_MODE"},
		{"VIEWER_DEFAULT_CROP", "custom", "VIEWER_DEFAULT_CROP"},
		{"VIEWER_BASE_SCALE", "0", "VIEWER_BASE_SCALE"},
		{"VIEWER_MIN_ZOOM", "4", "zoom range"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	c := Config{AllowedOrigins: " https://a.example , ,https://b.example"}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, c.Origins()); diff != "" {
		t.Error(diff)
	}
}
