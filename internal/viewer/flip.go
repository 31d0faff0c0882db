package viewer

type flipState int

const (
	flipUninitialized flipState = iota
	flipInitializing            // waiting for page 1's natural size
	flipReady
)

// Flip widget bounds, in CSS pixels.
const (
	flipMinWidth  = 300
	flipMaxWidth  = 1000
	flipMinHeight = 400
	flipMaxHeight = 1200
)

// FlipWorkingSet returns the pages kept rendered around the 0-based widget
// index: the current spread plus one page behind and one ahead, clamped to
// [1, total].
func FlipWorkingSet(index, total int) []int {
	var pages []int
	for _, i := range []int{index - 1, index, index + 1, index + 2} {
		if p := i + 1; p >= 1 && p <= total {
			pages = append(pages, p)
		}
	}
	return pages
}

type flipController struct {
	*lifecycle
	stage    FlipStage
	render   *RenderService
	dispatch Dispatcher

	state  flipState
	widget FlipWidget
	target int

	onPage func(page int)
}

func (f *flipController) start(page int) {
	f.state = flipInitializing
	f.target = page
	gen := f.gen
	f.dispatch.Go(func() {
		size, err := naturalSize(f.ctx, f.doc, 1)
		f.dispatch.Post(func() { f.ready(gen, size, err) })
	})
}

func (f *flipController) ready(gen uint64, natural Size, err error) {
	if !f.current(gen) {
		return
	}
	if err != nil {
		f.log.Warn("flip mode init failed", "error", err)
		return
	}
	g, err := f.render.calc.Compute(natural, f.zoom, f.crop)
	if err != nil {
		f.log.Error("flip mode geometry", "error", err)
		return
	}

	els := f.buildSlots(f.doc.NumPages(), g.VisibleSize())

	fx, fy := f.crop.VisibleFraction()
	sizing := SizingStretch
	if f.stage.Narrow() {
		sizing = SizingFixed
	}
	f.widget = f.stage.NewFlipWidget(FlipOptions{
		Width:            natural.Width * fx,
		Height:           natural.Height * fy,
		Sizing:           sizing,
		MinWidth:         flipMinWidth,
		MaxWidth:         flipMaxWidth,
		MinHeight:        flipMinHeight,
		MaxHeight:        flipMaxHeight,
		ShowCover:        true,
		MaxShadowOpacity: 0.5,
	})
	f.widget.LoadPages(els)
	f.state = flipReady

	if f.target > 1 {
		f.widget.TurnToPage(f.target - 1)
	}
	f.widget.OnFlip(func(index int) { f.flipped(gen, index) })
	f.renderWorkingSet(f.widget.CurrentPageIndex())
}

func (f *flipController) flipped(gen uint64, index int) {
	if !f.current(gen) {
		return
	}
	f.onPage(index + 1)
	f.renderWorkingSet(index)
}

func (f *flipController) renderWorkingSet(index int) {
	for _, p := range FlipWorkingSet(index, len(f.slots)) {
		f.render.Request(f.lifecycle, p, false)
	}
}

func (f *flipController) gotoPage(n int) {
	if f.state != flipReady {
		f.target = n
		return
	}
	f.widget.TurnToPage(n - 1)
}

func (f *flipController) next() {
	if f.state == flipReady {
		f.widget.FlipNext()
	}
}

func (f *flipController) prev() {
	if f.state == flipReady {
		f.widget.FlipPrev()
	}
}

func (f *flipController) teardown() {
	if f.widget != nil {
		f.widget.Destroy()
		f.widget = nil
	}
	f.state = flipUninitialized
	f.close()
}

func (f *flipController) life() *lifecycle { return f.lifecycle }
