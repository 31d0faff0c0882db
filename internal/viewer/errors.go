package viewer

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the viewer package.
var (
	// ErrDegenerateGeometry indicates a crop or page size that leaves no
	// visible area. Inputs are clamped before they reach the Calculator, so
	// seeing this error means a configuration bug rather than user input.
	ErrDegenerateGeometry = errors.New("viewer: degenerate page geometry")

	// ErrInvalidZoom indicates a non-positive zoom factor.
	ErrInvalidZoom = errors.New("viewer: invalid zoom")

	// ErrInvalidMode indicates an unknown presentation mode.
	ErrInvalidMode = errors.New("viewer: invalid mode")

	// ErrInvalidPage indicates a page number outside [1, totalPages].
	ErrInvalidPage = errors.New("viewer: page out of range")

	// ErrNoDocument is returned by operations that need a loaded document.
	ErrNoDocument = errors.New("viewer: no document loaded")

	// ErrUnsupportedSurface is returned by engines asked to draw into a
	// surface type they cannot handle.
	ErrUnsupportedSurface = errors.New("viewer: unsupported surface")
)

// DocumentLoadError is fatal to the whole session. The UI answers it with a
// retry prompt.
type DocumentLoadError struct {
	Source string
	Err    error
}

func (e *DocumentLoadError) Error() string {
	return fmt.Sprintf("load document %q: %v", e.Source, e.Err)
}

func (e *DocumentLoadError) Unwrap() error { return e.Err }

// PageRenderError reports a single page that could not be materialised.
// It never leaves the controller that issued the render.
type PageRenderError struct {
	Page int
	Err  error
}

func (e *PageRenderError) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page, e.Err)
}

func (e *PageRenderError) Unwrap() error { return e.Err }

// ConfigurationError reports zoom or crop input that leaves no visible page
// area. The Coordinator clamps its inputs so this only reaches callers that
// use the Calculator directly.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
