//go:build js && wasm

package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall/js"

	"github.com/inamate/flipbook/internal/config"
	"github.com/inamate/flipbook/internal/document"
	"github.com/inamate/flipbook/internal/pdfjs"
	"github.com/inamate/flipbook/internal/viewer"
)

var (
	loop  *viewer.Loop
	coord *viewer.Coordinator
	ctx   context.Context
)

func main() {
	ctx = context.Background()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	loop = viewer.NewLoop(1024)
	go loop.Run(ctx)

	engines := &router{samples: document.NewEngine()}
	workerSrc := ""
	if v := js.Global().Get("flipbookWorkerSrc"); v.Type() == js.TypeString {
		workerSrc = v.String()
	}
	if pdf, err := pdfjs.NewEngine(workerSrc); err == nil {
		engines.pdf = pdf
	} else {
		log.Warn("pdf.js unavailable, only sample documents can be opened", "error", err)
	}

	flip, err := pdfjs.NewStage("flipbook", loop)
	if err != nil {
		log.Error("flip stage", "error", err)
		return
	}
	scroll, err := pdfjs.NewStage("scroll-container", loop)
	if err != nil {
		log.Error("scroll stage", "error", err)
		return
	}

	// The browser has no environment, so this yields the defaults.
	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		return
	}
	opts := cfg.ViewerOptions()
	opts.Logger = log
	opts.Load.OnProgress = progress

	coord = viewer.New(engines, viewer.Stages{Flip: flip, Scroll: scroll}, pdfjs.Location{}, loop, opts)

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → viewer) ---
	api.Set("open", js.FuncOf(open))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("close", js.FuncOf(closeDocument))
	api.Set("setMode", js.FuncOf(setMode))
	api.Set("setZoom", js.FuncOf(setZoom))
	api.Set("zoomIn", js.FuncOf(zoomIn))
	api.Set("zoomOut", js.FuncOf(zoomOut))
	api.Set("setCrop", js.FuncOf(setCrop))
	api.Set("gotoPage", js.FuncOf(gotoPage))
	api.Set("nextPage", js.FuncOf(nextPage))
	api.Set("prevPage", js.FuncOf(prevPage))

	// --- Queries (frontend ← viewer) ---
	api.Set("getState", js.FuncOf(getState))

	js.Global().Set("flipbookViewer", api)
	js.Global().Set("flipbookWasmReady", js.ValueOf(true))

	select {}
}

// router sends sample sources to the in-memory engine and everything else
// to pdf.js.
type router struct {
	samples *document.Engine
	pdf     *pdfjs.Engine
}

func (r *router) Load(ctx context.Context, source string, opts viewer.LoadOptions) (viewer.Document, error) {
	if strings.HasPrefix(source, document.SamplePrefix) || r.pdf == nil {
		return r.samples.Load(ctx, source, opts)
	}
	return r.pdf.Load(ctx, source, opts)
}

func progress(loaded, total int64) {
	cb := js.Global().Get("flipbookViewer").Get("onProgress")
	if cb.Type() == js.TypeFunction {
		cb.Invoke(float64(loaded), float64(total))
	}
}

// --- Command Handlers ---

// open returns a Promise that settles once the document is loaded. The
// view is attached asynchronously on the loop.
func open(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return js.ValueOf(map[string]interface{}{"error": "missing document URL"})
	}
	return openSource(args[0].String())
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	pages := 24
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		pages = args[0].Int()
	}
	return openSource(document.SamplePrefix + strconv.Itoa(pages))
}

func openSource(source string) js.Value {
	var executor js.Func
	executor = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolve, reject := args[0], args[1]
		go func() {
			defer executor.Release()
			if err := coord.Open(ctx, source); err != nil {
				e := js.Global().Get("Error").New(err.Error())
				e.Set("name", "DocumentLoadError")
				reject.Invoke(e)
				return
			}
			resolve.Invoke(js.ValueOf(true))
		}()
		return nil
	})
	return js.Global().Get("Promise").New(executor)
}

func closeDocument(this js.Value, args []js.Value) interface{} {
	loop.Post(coord.Close)
	return nil
}

func setMode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing mode"})
	}
	m, ok := viewer.ParseMode(args[0].String())
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": viewer.ErrInvalidMode.Error()})
	}
	loop.Post(func() { coord.SetMode(m) })
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setZoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return nil
	}
	delta := args[0].Float()
	loop.Post(func() { coord.SetZoom(delta) })
	return nil
}

func zoomIn(this js.Value, args []js.Value) interface{} {
	loop.Post(coord.ZoomIn)
	return nil
}

func zoomOut(this js.Value, args []js.Value) interface{} {
	loop.Post(coord.ZoomOut)
	return nil
}

// setCrop accepts a preset name or an object with top, right, bottom and
// left percentages.
func setCrop(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing crop"})
	}
	var spec viewer.CropSpec
	switch v := args[0]; v.Type() {
	case js.TypeString:
		p, ok := viewer.ParseCropPreset(v.String())
		if !ok {
			return js.ValueOf(map[string]interface{}{"error": "unknown crop preset " + v.String()})
		}
		spec, _ = viewer.PresetCrop(p)
	case js.TypeObject:
		spec = viewer.CustomCrop(number(v, "top"), number(v, "right"), number(v, "bottom"), number(v, "left"))
	default:
		return js.ValueOf(map[string]interface{}{"error": "invalid crop"})
	}
	loop.Post(func() { coord.SetCrop(spec) })
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func gotoPage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return nil
	}
	page := args[0].Int()
	loop.Post(func() { coord.GotoPage(page) })
	return nil
}

func nextPage(this js.Value, args []js.Value) interface{} {
	loop.Post(coord.NextPage)
	return nil
}

func prevPage(this js.Value, args []js.Value) interface{} {
	loop.Post(coord.PrevPage)
	return nil
}

// --- Query Handlers ---

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(coord.StateJSON())
}

func number(v js.Value, key string) float64 {
	f := v.Get(key)
	if f.Type() != js.TypeNumber {
		return 0
	}
	return f.Float()
}
