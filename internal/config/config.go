package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/flipbook/internal/viewer"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	StaticDir      string `envconfig:"STATIC_DIR" default:"./web"`
	BookPath       string `envconfig:"BOOK_PATH" default:"./data/book.pdf"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	Viewer Viewer `envconfig:"VIEWER"`
}

// Viewer holds the VIEWER_* settings.
type Viewer struct {
	BaseScale      float64       `envconfig:"BASE_SCALE" default:"1.5"`
	MinZoom        float64       `envconfig:"MIN_ZOOM" default:"0.5"`
	MaxZoom        float64       `envconfig:"MAX_ZOOM" default:"3.0"`
	ZoomStep       float64       `envconfig:"ZOOM_STEP" default:"0.25"`
	PreloadMargin  float64       `envconfig:"PRELOAD_MARGIN" default:"200"`
	ScrollThrottle time.Duration `envconfig:"SCROLL_THROTTLE" default:"100ms"`
	DefaultMode    string        `envconfig:"DEFAULT_MODE" default:"flip"`
	DefaultCrop    string        `envconfig:"DEFAULT_CROP" default:"medium"`
	RangeChunkSize int           `envconfig:"RANGE_CHUNK_SIZE" default:"131072"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Viewer.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (v Viewer) validate() error {
	if v.BaseScale <= 0 {
		return fmt.Errorf("VIEWER_BASE_SCALE must be positive, got %v", v.BaseScale)
	}
	if v.MinZoom <= 0 || v.MaxZoom < v.MinZoom {
		return fmt.Errorf("invalid zoom range [%v, %v]", v.MinZoom, v.MaxZoom)
	}
	if v.ZoomStep <= 0 {
		return fmt.Errorf("VIEWER_ZOOM_STEP must be positive, got %v", v.ZoomStep)
	}
	if _, ok := viewer.ParseMode(v.DefaultMode); !ok {
		return fmt.Errorf("VIEWER_DEFAULT_MODE: %w", viewer.ErrInvalidMode)
	}
	if _, ok := viewer.ParseCropPreset(v.DefaultCrop); !ok {
		return fmt.Errorf("VIEWER_DEFAULT_CROP: unknown preset %q", v.DefaultCrop)
	}
	return nil
}

// ViewerOptions converts the settings into coordinator options.
func (c *Config) ViewerOptions() viewer.Options {
	v := c.Viewer
	opts := viewer.DefaultOptions()
	opts.BaseScale = v.BaseScale
	opts.MinZoom = v.MinZoom
	opts.MaxZoom = v.MaxZoom
	opts.ZoomStep = v.ZoomStep
	opts.PreloadMargin = v.PreloadMargin
	opts.ScrollThrottle = v.ScrollThrottle
	opts.DefaultMode, _ = viewer.ParseMode(v.DefaultMode)
	opts.DefaultCrop, _ = viewer.ParseCropPreset(v.DefaultCrop)
	opts.Load.RangeChunkSize = v.RangeChunkSize
	return opts
}
