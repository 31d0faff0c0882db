package viewer_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/flipbook/internal/document"
	"github.com/inamate/flipbook/internal/htmlhost"
	"github.com/inamate/flipbook/internal/viewer"
)

const source = "book.pdf"

var screen = viewer.Size{Width: 1280, Height: 900}

type fixture struct {
	doc    *document.Document
	engine *document.Engine
	flip   *htmlhost.Stage
	scroll *htmlhost.Stage
	urls   *viewer.QueryStore
	c      *viewer.Coordinator
}

type option func(*viewer.Options)

func newFixture(t *testing.T, pages int, query string, dispatch viewer.Dispatcher, opts ...option) *fixture {
	t.Helper()
	return newFixtureOn(t, screen, pages, query, dispatch, opts...)
}

func newFixtureOn(t *testing.T, viewport viewer.Size, pages int, query string, dispatch viewer.Dispatcher, opts ...option) *fixture {
	t.Helper()
	q, err := url.ParseQuery(query)
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		doc:    document.NewSampleDocument(pages),
		engine: document.NewEngine(),
		flip:   htmlhost.NewStage("flipbook", viewport),
		scroll: htmlhost.NewStage("scroll-container", viewport),
		urls:   viewer.NewQueryStore(q),
	}
	f.engine.Add(source, f.doc)

	o := viewer.DefaultOptions()
	o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, fn := range opts {
		fn(&o)
	}
	f.c = viewer.New(f.engine, viewer.Stages{Flip: f.flip, Scroll: f.scroll}, f.urls, dispatch, o)
	return f
}

// open builds a fixture with an inline dispatcher and loads the document.
func open(t *testing.T, pages int, query string, opts ...option) *fixture {
	t.Helper()
	f := newFixture(t, pages, query, viewer.Inline{}, opts...)
	if err := f.c.Open(context.Background(), source); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return f
}

func (f *fixture) rendered() []int { return f.c.Snapshot().Rendered }

func (f *fixture) query(key string) string { return f.urls.Query().Get(key) }

func TestFlipRendersWorkingSetOfRestoredPage(t *testing.T) {
	f := open(t, 60, "page=18")

	if diff := cmp.Diff([]int{17, 18, 19, 20}, f.rendered()); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
	if got := f.c.State().CurrentPage; got != 18 {
		t.Errorf("CurrentPage = %d, want 18", got)
	}
	for _, p := range []int{1, 16, 21, 60} {
		if n := f.doc.DrawCount(p); n != 0 {
			t.Errorf("page %d drawn %d times", p, n)
		}
	}
	for p := 17; p <= 20; p++ {
		if n := f.doc.TextCount(p); n != 0 {
			t.Errorf("flip mode fetched text of page %d", p)
		}
		if f.flip.Slot(p).Mounted() == nil {
			t.Errorf("slot %d not mounted", p)
		}
	}
	if !f.flip.Visible() || f.scroll.Visible() {
		t.Error("only the flip stage should be visible")
	}
}

func TestFlipGotoAddsToRenderedSet(t *testing.T) {
	f := open(t, 60, "")
	if diff := cmp.Diff([]int{1, 2, 3}, f.rendered()); diff != "" {
		t.Fatalf("initial rendered mismatch (-want +got):\n%s", diff)
	}

	f.c.GotoPage(18)
	if diff := cmp.Diff([]int{1, 2, 3, 17, 18, 19, 20}, f.rendered()); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
	if got := f.query("page"); got != "18" {
		t.Errorf("url page = %q, want 18", got)
	}
}

func TestRenderIsIdempotentWithinLifecycle(t *testing.T) {
	f := open(t, 60, "page=18")
	f.c.NextPage()
	f.c.PrevPage()
	f.c.GotoPage(18)

	for p := 17; p <= 22; p++ {
		if n := f.doc.DrawCount(p); n != 1 {
			t.Errorf("page %d drawn %d times, want 1", p, n)
		}
	}
	if got := f.c.State().CurrentPage; got != 18 {
		t.Errorf("CurrentPage = %d, want 18", got)
	}
}

func TestFlipNextReportsPage(t *testing.T) {
	f := open(t, 10, "")
	f.c.NextPage()
	if got := f.c.State().CurrentPage; got != 2 {
		t.Errorf("after cover, CurrentPage = %d, want 2", got)
	}
	f.c.NextPage()
	if got := f.query("page"); got != "4" {
		t.Errorf("url page = %q, want 4", got)
	}
}

func TestScrollRestoresPageWithTextOverlay(t *testing.T) {
	f := open(t, 60, "page=42&mode=scroll")

	if f.flip.Visible() || !f.scroll.Visible() {
		t.Error("only the scroll stage should be visible")
	}
	if diff := cmp.Diff([]int{41, 42}, f.rendered()); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}

	r := f.scroll.Slot(42).Mounted()
	if r == nil {
		t.Fatal("slot 42 not mounted")
	}
	if r.Overlay == nil {
		t.Fatal("scroll mode page has no text overlay")
	}
	want := &viewer.TextOverlay{OffsetX: -36.72, OffsetY: -47.52, Width: 918, Height: 1188}
	if diff := cmp.Diff(want, r.Overlay, cmpopts.IgnoreFields(viewer.TextOverlay{}, "Spans"), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("overlay mismatch (-want +got):\n%s", diff)
	}
	if len(r.Overlay.Spans) == 0 || r.Overlay.Spans[0].Text != "Page 42" {
		t.Errorf("first span = %+v, want the page title", r.Overlay.Spans)
	}
	if got := f.c.State().CurrentPage; got != 42 {
		t.Errorf("CurrentPage = %d, want 42", got)
	}
}

func TestModeSwitchStartsFresh(t *testing.T) {
	f := open(t, 60, "page=18")
	gen := f.c.Snapshot().Generation

	if err := f.c.SetMode(viewer.ModeScroll); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	s := f.c.Snapshot()
	if s.Generation != gen+1 {
		t.Errorf("Generation = %d, want %d", s.Generation, gen+1)
	}
	if diff := cmp.Diff([]int{17, 18}, s.Rendered); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
	if n := f.doc.DrawCount(18); n != 2 {
		t.Errorf("page 18 drawn %d times, want 2", n)
	}
	if len(f.flip.Slots()) != 0 || f.flip.Book() != nil {
		t.Error("flip stage not torn down")
	}
	if got := f.query("mode"); got != "scroll" {
		t.Errorf("url mode = %q", got)
	}

	// Same mode is a no-op.
	if err := f.c.SetMode(viewer.ModeScroll); err != nil {
		t.Fatal(err)
	}
	if f.c.Snapshot().Generation != gen+1 {
		t.Error("same-mode SetMode rebuilt the controller")
	}
	if err := f.c.SetMode("grid"); !errors.Is(err, viewer.ErrInvalidMode) {
		t.Errorf("SetMode(grid) = %v, want ErrInvalidMode", err)
	}
}

func TestZoomInvalidatesRenderedPages(t *testing.T) {
	f := open(t, 60, "")
	f.c.ZoomIn()

	s := f.c.Snapshot()
	if s.Zoom != 1.25 {
		t.Fatalf("Zoom = %v, want 1.25", s.Zoom)
	}
	if n := f.doc.DrawCount(1); n != 2 {
		t.Errorf("page 1 drawn %d times, want 2", n)
	}
	if got := f.flip.Slot(1).Mounted().Geometry.RenderWidth; got != 612*1.5*1.25 {
		t.Errorf("RenderWidth = %v, want %v", got, 612*1.5*1.25)
	}

	gen := s.Generation
	f.c.SetZoom(0)
	if f.c.Snapshot().Generation != gen {
		t.Error("zero zoom delta rebuilt the controller")
	}
	f.c.SetZoom(10)
	if got := f.c.State().Zoom; got != 3 {
		t.Errorf("Zoom = %v, want clamped 3", got)
	}
	f.c.SetZoom(-10)
	f.c.ZoomOut()
	if got := f.c.State().Zoom; got != 0.5 {
		t.Errorf("Zoom = %v, want clamped 0.5", got)
	}
}

func TestNonFiniteZoomIsIgnored(t *testing.T) {
	f := open(t, 10, "")
	gen := f.c.Snapshot().Generation

	for _, delta := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		f.c.SetZoom(delta)
		if got := f.c.State().Zoom; got != 1 {
			t.Errorf("SetZoom(%v): Zoom = %v, want 1", delta, got)
		}
	}
	if f.c.Snapshot().Generation != gen {
		t.Error("ignored zoom change rebuilt the controller")
	}

	f.c.ZoomIn()
	if got := f.c.State().Zoom; got != 1.25 {
		t.Errorf("Zoom after ZoomIn = %v, want 1.25", got)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, f.rendered()); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
	var s viewer.Snapshot
	if err := json.Unmarshal([]byte(f.c.StateJSON()), &s); err != nil {
		t.Fatalf("StateJSON: %v", err)
	}
}

func TestCropIsClampedAndPersisted(t *testing.T) {
	f := open(t, 60, "")
	got := f.c.SetCrop(viewer.CropSpec{Preset: viewer.CropCustom, Top: 60, Right: 10, Bottom: -5, Left: 10})
	want := viewer.CropSpec{Preset: viewer.CropCustom, Top: viewer.MaxCropEdge, Right: 10, Left: 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("crop mismatch (-want +got):\n%s", diff)
	}
	if q := f.query("crop"); q != "custom" {
		t.Errorf("url crop = %q", q)
	}
	g := f.flip.Slot(1).Mounted().Geometry
	if diff := cmp.Diff(918*0.8, g.VisibleWidth, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("VisibleWidth mismatch (-want +got):\n%s", diff)
	}

	gen := f.c.Snapshot().Generation
	f.c.SetCrop(got)
	if f.c.Snapshot().Generation != gen {
		t.Error("unchanged crop rebuilt the controller")
	}
}

func TestGotoPageClamps(t *testing.T) {
	f := open(t, 60, "page=500&mode=scroll")
	if got := f.c.State().CurrentPage; got != 60 {
		t.Errorf("restored page = %d, want 60", got)
	}
	f.c.GotoPage(0)
	if got := f.query("page"); got != "1" {
		t.Errorf("url page = %q, want 1", got)
	}
	f.c.PrevPage()
	if got := f.c.State().CurrentPage; got != 1 {
		t.Errorf("CurrentPage = %d, want 1", got)
	}
	f.c.NextPage()
	if got := f.c.State().CurrentPage; got != 2 {
		t.Errorf("CurrentPage = %d, want 2", got)
	}
}

func TestScrollGotoPageRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		viewport viewer.Size
		zoom     float64
		page     int
	}{
		{"default viewport", screen, 1, 10},
		{"tall viewport", viewer.Size{Width: 1920, Height: 1300}, 0.5, 10},
		{"tall viewport later page", viewer.Size{Width: 1920, Height: 1300}, 0.5, 30},
		{"last page", viewer.Size{Width: 1920, Height: 1300}, 0.5, 60},
		{"first page", viewer.Size{Width: 1920, Height: 1300}, 0.5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureOn(t, tt.viewport, 60, "mode=scroll&page=5", viewer.Inline{})
			if err := f.c.Open(context.Background(), source); err != nil {
				t.Fatal(err)
			}
			f.c.SetZoom(tt.zoom - 1)

			f.c.GotoPage(tt.page)
			if got := f.c.State().CurrentPage; got != tt.page {
				t.Errorf("CurrentPage = %d, want %d", got, tt.page)
			}
			if got := f.query("page"); got != strconv.Itoa(tt.page) {
				t.Errorf("url page = %q, want %d", got, tt.page)
			}
			if f.scroll.Slot(tt.page).Mounted() == nil {
				t.Errorf("page %d not rendered", tt.page)
			}
		})
	}
}

func TestScrollUserScrollReleasesPinnedPage(t *testing.T) {
	f := newFixtureOn(t, viewer.Size{Width: 1920, Height: 1300}, 60, "mode=scroll", viewer.Inline{})
	if err := f.c.Open(context.Background(), source); err != nil {
		t.Fatal(err)
	}
	f.c.GotoPage(10)
	f.scroll.ScrollTo(f.scroll.Slot(20).Bounds().Y)
	if got := f.c.State().CurrentPage; got < 20 {
		t.Errorf("CurrentPage = %d after scrolling to page 20", got)
	}
}

func TestGotoPageBeforeOpen(t *testing.T) {
	f := newFixture(t, 60, "", viewer.Inline{})
	f.c.GotoPage(25)
	if got := f.query("page"); got != "25" {
		t.Errorf("url page = %q, want 25", got)
	}
	if err := f.c.Open(context.Background(), source); err != nil {
		t.Fatal(err)
	}
	if got := f.c.State().CurrentPage; got != 25 {
		t.Errorf("CurrentPage = %d, want 25", got)
	}
	if diff := cmp.Diff([]int{24, 25, 26, 27}, f.rendered()); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderWithoutDocument(t *testing.T) {
	svc := viewer.NewRenderService(viewer.DefaultBaseScale, viewer.Inline{})
	_, err := svc.RenderForDisplay(context.Background(), nil, htmlhost.NewStage("export", screen), 3, 1, viewer.CropSpec{})
	var pe *viewer.PageRenderError
	if !errors.As(err, &pe) || pe.Page != 3 || !errors.Is(err, viewer.ErrNoDocument) {
		t.Fatalf("RenderForDisplay = %v, want PageRenderError wrapping ErrNoDocument", err)
	}
}

func TestPageFailureIsIsolated(t *testing.T) {
	f := newFixture(t, 10, "", viewer.Inline{})
	f.doc.FailPage(2, errors.New("corrupt content stream"))
	if err := f.c.Open(context.Background(), source); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 3}, f.rendered()); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
	if f.flip.Slot(2).Mounted() != nil {
		t.Error("failed page was mounted")
	}

	// A geometry reset retries the page.
	f.doc.FailPage(2, nil)
	f.c.ZoomIn()
	if diff := cmp.Diff([]int{1, 2, 3}, f.rendered()); diff != "" {
		t.Errorf("rendered after retry mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenFailure(t *testing.T) {
	f := newFixture(t, 10, "", viewer.Inline{})
	err := f.c.Open(context.Background(), "missing.pdf")
	var le *viewer.DocumentLoadError
	if !errors.As(err, &le) {
		t.Fatalf("Open = %v, want *DocumentLoadError", err)
	}
	if le.Source != "missing.pdf" || !errors.Is(err, document.ErrNotFound) {
		t.Errorf("unexpected error %v", err)
	}
	if f.c.Snapshot().Loaded {
		t.Error("snapshot reports a loaded document")
	}
}

func TestURLKeepsUnrelatedParams(t *testing.T) {
	f := open(t, 10, "file=book.pdf&page=3")
	want := url.Values{"file": {"book.pdf"}, "page": {"3"}, "mode": {"flip"}, "crop": {"medium"}}
	if diff := cmp.Diff(want, f.urls.Query()); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestStateJSON(t *testing.T) {
	f := open(t, 5, "")
	var s viewer.Snapshot
	if err := json.Unmarshal([]byte(f.c.StateJSON()), &s); err != nil {
		t.Fatalf("StateJSON: %v", err)
	}
	if s.TotalPages != 5 || s.Mode != viewer.ModeFlip || !s.Loaded {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestCloseReleasesDocument(t *testing.T) {
	f := open(t, 5, "")
	f.c.Close()
	if !f.doc.Closed() {
		t.Error("document not closed")
	}
	if s := f.c.Snapshot(); s.Loaded || len(s.Rendered) != 0 {
		t.Errorf("snapshot after Close = %+v", s)
	}
}

// queue defers every task until the test runs it.
type queue struct {
	tasks []func()
}

func (q *queue) Go(work func())  { q.tasks = append(q.tasks, work) }
func (q *queue) Post(fn func())  { q.tasks = append(q.tasks, fn) }
func (q *queue) After(_ time.Duration, fn func()) func() {
	q.tasks = append(q.tasks, fn)
	return func() {}
}

func (q *queue) step() {
	fn := q.tasks[0]
	q.tasks = q.tasks[1:]
	fn()
}

func (q *queue) drain() {
	for len(q.tasks) > 0 {
		q.step()
	}
}

func TestStaleRenderIsDiscarded(t *testing.T) {
	q := &queue{}
	f := newFixture(t, 60, "", q)
	if err := f.c.Open(context.Background(), source); err != nil {
		t.Fatal(err)
	}
	q.step() // attach
	q.step() // natural size
	q.step() // widget ready, renders queued
	if len(q.tasks) != 3 {
		t.Fatalf("%d tasks queued, want 3 page renders", len(q.tasks))
	}

	f.c.ZoomIn()
	q.drain()

	if diff := cmp.Diff([]int{1, 2, 3}, f.rendered()); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
	for p := 1; p <= 3; p++ {
		if n := f.doc.DrawCount(p); n != 2 {
			t.Errorf("page %d drawn %d times, want 2", p, n)
		}
		if got := f.flip.Slot(p).Mounted().Geometry.RenderWidth; got != 612*1.5*1.25 {
			t.Errorf("slot %d shows a stale render of width %v", p, got)
		}
	}
}

// timers runs work inline but holds After callbacks until fired.
type timers struct {
	viewer.Inline
	pending []func()
}

func (d *timers) After(_ time.Duration, fn func()) func() {
	d.pending = append(d.pending, fn)
	return func() {}
}

func (d *timers) fire() {
	p := d.pending
	d.pending = nil
	for _, fn := range p {
		fn()
	}
}

func TestScrollCurrentPageIsThrottled(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := &timers{}
	f := newFixture(t, 60, "mode=scroll", d, func(o *viewer.Options) {
		o.Now = func() time.Time { return now }
	})
	if err := f.c.Open(context.Background(), source); err != nil {
		t.Fatal(err)
	}

	scrollToPage := func(p int) { f.scroll.ScrollTo(f.scroll.Slot(p).Bounds().Y) }

	scrollToPage(5)
	if got := f.c.State().CurrentPage; got != 5 {
		t.Fatalf("CurrentPage = %d, want 5", got)
	}

	scrollToPage(10)
	scrollToPage(12)
	if got := f.c.State().CurrentPage; got != 5 {
		t.Errorf("throttled update leaked: CurrentPage = %d", got)
	}
	if len(d.pending) != 1 {
		t.Fatalf("%d trailing updates scheduled, want 1", len(d.pending))
	}

	now = now.Add(100 * time.Millisecond)
	d.fire()
	if got := f.c.State().CurrentPage; got != 12 {
		t.Errorf("CurrentPage = %d, want 12", got)
	}
	if got := f.query("page"); got != "12" {
		t.Errorf("url page = %q, want 12", got)
	}
	for _, p := range []int{5, 10, 12} {
		if f.scroll.Slot(p).Mounted() == nil {
			t.Errorf("page %d scrolled past but not rendered", p)
		}
	}
}

func TestLoopDispatcher(t *testing.T) {
	loop := viewer.NewLoop(64)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	f := newFixture(t, 30, "page=10", loop)
	if err := f.c.Open(ctx, source); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(f.c.Snapshot().Rendered) < 4 {
		if time.Now().After(deadline) {
			t.Fatalf("rendered = %v after 5s", f.c.Snapshot().Rendered)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if diff := cmp.Diff([]int{9, 10, 11, 12}, f.c.Snapshot().Rendered); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
}
