package asset

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Handler serves the viewer's static files and the book PDF.
type Handler struct {
	dir  string // static web root (index.html, scripts, wasm)
	book string // path of the PDF served at /book.pdf
}

// NewHandler creates a handler serving static files from dir and the book
// from bookPath.
func NewHandler(dir, bookPath string) *Handler {
	if _, err := os.Stat(dir); err != nil {
		slog.Warn("static dir not readable", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, book: bookPath}
}

// Book serves the PDF with range support. pdf.js fetches it in chunks, so
// Range requests must answer 206 with the requested slice.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.book)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "book not found", http.StatusNotFound)
			return
		}
		slog.Error("open book", "error", err, "path", h.book)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		slog.Error("stat book", "error", err, "path", h.book)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("ETag", fmt.Sprintf(`"%x-%x"`, st.ModTime().UnixNano(), st.Size()))
	http.ServeContent(w, r, filepath.Base(h.book), st.ModTime(), f)
}

// Serve returns an http.Handler for static files. Paths without a file
// extension fall back to index.html so viewer URLs with query state resolve.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean("/" + r.URL.Path)
		if p == "/" || path.Ext(p) == "" {
			h.Index(w, r)
			return
		}
		if strings.HasSuffix(p, ".wasm") {
			w.Header().Set("Content-Type", "application/wasm")
		}
		w.Header().Set("Cache-Control", "public, max-age=300")
		fs.ServeHTTP(w, r)
	})
}

// Index serves index.html without caching; it carries the build's script
// references.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
}
