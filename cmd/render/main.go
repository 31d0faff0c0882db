// Command render opens a book headlessly and writes the resulting viewer
// markup, and optionally one page as PNG.
//
//	render -in book.pdf -mode scroll -page 12 -crop light -out book.html
//	render -in sample:40 -page 3 -png page3.png -width 800
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/inamate/flipbook/internal/document"
	"github.com/inamate/flipbook/internal/export"
	"github.com/inamate/flipbook/internal/htmlhost"
	"github.com/inamate/flipbook/internal/pdfdoc"
	"github.com/inamate/flipbook/internal/viewer"
)

func main() {
	in := flag.String("in", "", "PDF file, or sample:N for a generated book")
	out := flag.String("out", "", "write viewer HTML to this file (default stdout)")
	page := flag.Int("page", 1, "page to open")
	mode := flag.String("mode", string(viewer.ModeFlip), "presentation mode: flip or scroll")
	zoom := flag.Float64("zoom", 1, "zoom factor")
	crop := flag.String("crop", string(viewer.CropMedium), "crop preset: none, light, medium or strong")
	pngOut := flag.String("png", "", "also write the current page as PNG to this file")
	width := flag.Int("width", 0, "PNG width in pixels (0 keeps the render size)")
	size := flag.String("viewport", "1280x900", "viewport size WxH")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(log, *in, *out, *pngOut, *page, *mode, *crop, *zoom, *width, *size); err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, in, out, pngOut string, page int, mode, crop string, zoom float64, width int, size string) error {
	vp, err := parseViewport(size)
	if err != nil {
		return err
	}
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom <= 0 {
		return fmt.Errorf("%w: %v", viewer.ErrInvalidZoom, zoom)
	}
	if _, ok := viewer.ParseMode(mode); !ok {
		return fmt.Errorf("%w: %q", viewer.ErrInvalidMode, mode)
	}
	if _, ok := viewer.ParseCropPreset(crop); !ok {
		return fmt.Errorf("unknown crop preset %q", crop)
	}

	var engine viewer.Engine = pdfdoc.NewEngine(log)
	if strings.HasPrefix(in, document.SamplePrefix) {
		engine = document.NewEngine()
	}

	flip := htmlhost.NewStage("flipbook", vp)
	scroll := htmlhost.NewStage("scroll-container", vp)
	urls := viewer.NewQueryStore(url.Values{
		viewer.QueryPage: {strconv.Itoa(page)},
		viewer.QueryMode: {mode},
		viewer.QueryCrop: {crop},
	})

	opts := viewer.DefaultOptions()
	opts.Logger = log
	c := viewer.New(engine, viewer.Stages{Flip: flip, Scroll: scroll}, urls, viewer.Inline{}, opts)

	ctx := context.Background()
	if err := c.Open(ctx, in); err != nil {
		return err
	}
	defer c.Close()
	if zoom != 1 {
		c.SetZoom(zoom - c.State().Zoom)
	}

	s := c.Snapshot()
	log.Info("opened", "pages", s.TotalPages, "page", s.Page, "mode", s.Mode, "rendered", s.Rendered)

	if err := writeHTML(out, in, flip, scroll); err != nil {
		return err
	}
	if pngOut == "" {
		return nil
	}

	st := c.State()
	svc := viewer.NewRenderService(opts.BaseScale, viewer.Inline{})
	r, err := svc.RenderForDisplay(ctx, c.Document(), htmlhost.NewStage("export", vp), st.CurrentPage, st.Zoom, st.Crop)
	if err != nil {
		return err
	}
	f, err := os.Create(pngOut)
	if err != nil {
		return err
	}
	if err := export.WritePNG(f, r, width); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeHTML(path, title string, stages ...*htmlhost.Stage) error {
	if path == "" {
		return htmlhost.WritePage(os.Stdout, title, stages...)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := htmlhost.WritePage(f, title, stages...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseViewport(s string) (viewer.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return viewer.Size{}, fmt.Errorf("invalid viewport %q", s)
	}
	width, err1 := strconv.ParseFloat(w, 64)
	height, err2 := strconv.ParseFloat(h, 64)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return viewer.Size{}, fmt.Errorf("invalid viewport %q", s)
	}
	return viewer.Size{Width: width, Height: height}, nil
}
