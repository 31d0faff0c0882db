package viewer

import (
	"context"
	"image"
	"image/draw"
	"net/url"
)

// Engine loads documents. Implementations wrap a document decoding and
// rendering engine: pdf.js in the browser, seehuhn.de/go/pdf natively.
type Engine interface {
	Load(ctx context.Context, source string, opts LoadOptions) (Document, error)
}

// LoadOptions control progressive loading.
type LoadOptions struct {
	RangeChunkSize   int
	DisableAutoFetch bool
	DisableStream    bool

	// OnProgress, if set, is called with bytes loaded so far and the total
	// (0 when unknown). It may be called from any goroutine.
	OnProgress func(loaded, total int64)
}

// Document is a loaded document. It is read-only and shared by both
// controllers.
type Document interface {
	NumPages() int
	// Page returns page n (1-based).
	Page(ctx context.Context, n int) (Page, error)
	Close() error
}

// Page is a page handle obtained from a Document.
type Page interface {
	Number() int
	// Viewport returns the page viewport at scale; scale 1 is the natural size.
	Viewport(scale float64) Viewport
	// Draw renders the whole page at vp into dst.
	Draw(ctx context.Context, vp Viewport, dst Surface) error
	TextContent(ctx context.Context) (TextContent, error)
}

// Surface is a drawable target created by a Stage.
type Surface interface {
	Size() (width, height int)
}

// RasterSurface is a Surface backed by an in-memory image.
type RasterSurface interface {
	Surface
	Image() draw.Image
}

// ImageSurface accepts a finished image in one call. Browser canvases
// implement it for engines that rasterise in Go.
type ImageSurface interface {
	Surface
	PutImage(img image.Image) error
}

// Paint runs paint against dst's pixels. Raster surfaces are painted in
// place; image surfaces receive a fresh RGBA of their size.
func Paint(dst Surface, paint func(img draw.Image)) error {
	switch s := dst.(type) {
	case RasterSurface:
		paint(s.Image())
		return nil
	case ImageSurface:
		w, h := s.Size()
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		paint(img)
		return s.PutImage(img)
	}
	return ErrUnsupportedSurface
}

// SlotElement is the host element of one page slot.
type SlotElement interface {
	Page() int
	// Mount replaces the placeholder with the rendered page.
	Mount(r *RenderedPage)
	// Bounds is the slot position in scroll-content coordinates.
	Bounds() Rect
}

// Stage is the container a controller builds its slots in.
type Stage interface {
	NewSlot(page int, placeholder Size) SlotElement
	NewSurface(width, height int) Surface
	SetVisible(visible bool)
	// Clear destroys every slot created on the stage.
	Clear()
}

// FlipStage hosts the page-flip widget.
type FlipStage interface {
	Stage
	NewFlipWidget(opts FlipOptions) FlipWidget
	// Narrow reports a mobile-sized viewport.
	Narrow() bool
}

// ScrollStage hosts the continuous-scroll column.
type ScrollStage interface {
	Stage
	NewObserver(opts ObserverOptions, fn func(page int, visible bool)) VisibilityObserver
	ScrollIntoView(el SlotElement)
	// OnScroll registers fn for scroll events and returns a function that
	// removes it.
	OnScroll(fn func()) (stop func())
	// ViewportCenter is the vertical centre of the viewport in the same
	// coordinates as SlotElement.Bounds.
	ViewportCenter() float64
}

// SizingMode is the flip widget's sizing strategy.
type SizingMode string

const (
	SizingFixed   SizingMode = "fixed"
	SizingStretch SizingMode = "stretch"
)

// FlipOptions configure the flip widget.
type FlipOptions struct {
	Width            float64
	Height           float64
	Sizing           SizingMode
	MinWidth         float64
	MaxWidth         float64
	MinHeight        float64
	MaxHeight        float64
	ShowCover        bool
	MaxShadowOpacity float64
}

// FlipWidget is the page-turn widget. Indices are 0-based.
type FlipWidget interface {
	LoadPages(pages []SlotElement)
	TurnToPage(index int)
	FlipNext()
	FlipPrev()
	CurrentPageIndex() int
	// OnFlip registers fn for flip events carrying the new index.
	OnFlip(fn func(index int))
	Destroy()
}

// ObserverOptions configure a visibility observer.
type ObserverOptions struct {
	// RootMargin grows the viewport by this many pixels on each side.
	RootMargin float64
	Threshold  float64
}

// VisibilityObserver reports slots entering and leaving the viewport.
type VisibilityObserver interface {
	Observe(el SlotElement)
	Disconnect()
}

// URLStore reads and replaces the query string of the current location.
type URLStore interface {
	Query() url.Values
	Replace(q url.Values)
}

// QueryStore is an in-memory URLStore.
type QueryStore struct {
	values url.Values
}

// NewQueryStore returns a store holding a copy of q.
func NewQueryStore(q url.Values) *QueryStore {
	return &QueryStore{values: cloneValues(q)}
}

func (s *QueryStore) Query() url.Values { return cloneValues(s.values) }

func (s *QueryStore) Replace(q url.Values) { s.values = cloneValues(q) }

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
