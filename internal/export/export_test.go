package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/flipbook/internal/document"
	"github.com/inamate/flipbook/internal/htmlhost"
	"github.com/inamate/flipbook/internal/viewer"
)

func renderedPage(t *testing.T) *viewer.RenderedPage {
	t.Helper()
	stage := htmlhost.NewStage("t", viewer.Size{})
	g := viewer.PageGeometry{
		RenderWidth: 100, RenderHeight: 200,
		CropOffsetX: 10, CropOffsetY: 20,
		VisibleWidth: 80, VisibleHeight: 160,
	}
	s := stage.NewSurface(100, 200).(*htmlhost.Surface)
	// Mark the first visible pixel.
	s.RGBA().Set(10, 20, color.RGBA{R: 255, A: 255})
	return &viewer.RenderedPage{Page: 1, Geometry: g, Surface: s}
}

func TestCrop(t *testing.T) {
	img, err := Crop(renderedPage(t))
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 80, 160) {
		t.Errorf("bounds = %v, want 80x160", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("origin pixel = %v, want the marked pixel", got)
	}
}

func TestFit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 160))
	if got := Fit(img, 40).Bounds(); got != image.Rect(0, 0, 40, 80) {
		t.Errorf("Fit(40) = %v", got)
	}
	if Fit(img, 200) != image.Image(img) {
		t.Error("Fit enlarged a narrow image")
	}
}

func TestPagePNG(t *testing.T) {
	e := document.NewEngine()
	h := NewHandler(e, "sample:3", viewer.DefaultOptions())
	r := mux.NewRouter()
	r.HandleFunc("/export/page/{page}.png", h.PagePNG)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/page/2.png?crop=none&width=306", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 306, 396) {
		t.Errorf("bounds = %v, want 306x396", got)
	}

	for path, want := range map[string]int{
		"/export/page/9.png":           http.StatusNotFound,
		"/export/page/1.png?crop=huge": http.StatusBadRequest,
		"/export/page/1.png?zoom=abc":  http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, want)
		}
	}
}
