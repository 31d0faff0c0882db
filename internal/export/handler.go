package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/flipbook/internal/htmlhost"
	"github.com/inamate/flipbook/internal/viewer"
)

// maxWidth bounds the width parameter of page exports.
const maxWidth = 4096

// Handler renders single pages of the book as PNG.
type Handler struct {
	engine viewer.Engine
	source string
	opts   viewer.Options
	render *viewer.RenderService
}

func NewHandler(engine viewer.Engine, source string, opts viewer.Options) *Handler {
	return &Handler{
		engine: engine,
		source: source,
		opts:   opts,
		render: viewer.NewRenderService(opts.BaseScale, viewer.Inline{}),
	}
}

// PagePNG handles GET /export/page/{page}.png?zoom=&crop=&width=.
func (h *Handler) PagePNG(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["page"])
	if err != nil || n < 1 {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	q := r.URL.Query()

	zoom := 1.0
	if s := q.Get("zoom"); s != "" {
		if zoom, err = strconv.ParseFloat(s, 64); err != nil {
			http.Error(w, "invalid zoom", http.StatusBadRequest)
			return
		}
	}
	zoom = h.opts.ClampZoom(zoom)

	crop, _ := viewer.PresetCrop(h.opts.DefaultCrop)
	if s := q.Get("crop"); s != "" {
		p, ok := viewer.ParseCropPreset(s)
		if !ok {
			http.Error(w, "invalid crop preset", http.StatusBadRequest)
			return
		}
		crop, _ = viewer.PresetCrop(p)
	}

	width, _ := strconv.Atoi(q.Get("width"))
	width = min(max(width, 0), maxWidth)

	ctx := r.Context()
	doc, err := h.engine.Load(ctx, h.source, h.opts.Load)
	if err != nil {
		slog.Error("export: load book", "error", err, "source", h.source)
		http.Error(w, "book unavailable", http.StatusServiceUnavailable)
		return
	}
	defer doc.Close()

	stage := htmlhost.NewStage("export", viewer.Size{})
	page, err := h.render.RenderForDisplay(ctx, doc, stage, n, zoom, crop)
	if err != nil {
		status := http.StatusInternalServerError
		var cfg *viewer.ConfigurationError
		switch {
		case errors.Is(err, viewer.ErrInvalidPage):
			status = http.StatusNotFound
		case errors.As(err, &cfg):
			status = http.StatusBadRequest
		}
		slog.Warn("export: render page", "error", err, "page", n)
		http.Error(w, err.Error(), status)
		return
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, page, width); err != nil {
		slog.Error("export: encode png", "error", err, "page", n)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="page-%d.png"`, n))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(buf.Bytes())

	slog.Info("export complete", "page", n, "zoom", zoom, "crop", crop.Preset, "size", buf.Len())
}
