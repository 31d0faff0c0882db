// Package document provides an in-memory document engine. It backs the
// built-in sample book and lets tests inject page failures and count engine
// calls.
package document

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/inamate/flipbook/internal/viewer"
)

// SamplePrefix selects a generated document: "sample:60" has 60 pages.
const SamplePrefix = "sample:"

// Letter is the page size of generated documents, in PDF points.
var Letter = viewer.Size{Width: 612, Height: 792}

// ErrNotFound is returned by Engine.Load for unknown sources.
var ErrNotFound = errors.New("document not found")

// Engine serves registered documents and generates sample ones on demand.
type Engine struct {
	mu   sync.Mutex
	docs map[string]*Document
}

func NewEngine() *Engine {
	return &Engine{docs: make(map[string]*Document)}
}

// Add registers d under source.
func (e *Engine) Add(source string, d *Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[source] = d
}

func (e *Engine) Load(ctx context.Context, source string, opts viewer.LoadOptions) (viewer.Document, error) {
	e.mu.Lock()
	d, ok := e.docs[source]
	e.mu.Unlock()

	if !ok {
		n, err := parseSample(source)
		if err != nil {
			return nil, err
		}
		d = NewSampleDocument(n)
	}
	if err := d.load(ctx, opts); err != nil {
		return nil, err
	}
	return d, nil
}

func parseSample(source string) (int, error) {
	rest, ok := strings.CutPrefix(source, SamplePrefix)
	if !ok {
		return 0, fmt.Errorf("%q: %w", source, ErrNotFound)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("sample page count %q: must be a positive integer", rest)
	}
	return n, nil
}

// Document is an in-memory document of identical Letter pages.
type Document struct {
	mu      sync.Mutex
	pages   int
	size    viewer.Size
	loadErr error
	fail    map[int]error
	draws   map[int]int
	texts   map[int]int
	closed  bool
}

// bytesPerPage is the nominal encoded size used for load progress.
const bytesPerPage = 48 << 10

func NewSampleDocument(pages int) *Document {
	return &Document{
		pages: pages,
		size:  Letter,
		fail:  make(map[int]error),
		draws: make(map[int]int),
		texts: make(map[int]int),
	}
}

// FailLoad makes the next loads of d fail with err.
func (d *Document) FailLoad(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadErr = err
}

// FailPage makes every draw and text request of page n fail with err. A nil
// err clears the failure.
func (d *Document) FailPage(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.fail, n)
		return
	}
	d.fail[n] = err
}

// DrawCount returns how often page n was drawn.
func (d *Document) DrawCount(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws[n]
}

// TextCount returns how often the text of page n was requested.
func (d *Document) TextCount(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.texts[n]
}

// Closed reports whether Close was called.
func (d *Document) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Document) load(ctx context.Context, opts viewer.LoadOptions) error {
	d.mu.Lock()
	err := d.loadErr
	d.closed = false
	d.mu.Unlock()
	if err != nil {
		return err
	}
	if opts.OnProgress == nil {
		return ctx.Err()
	}
	total := int64(d.pages) * bytesPerPage
	chunk := int64(opts.RangeChunkSize)
	if chunk <= 0 {
		chunk = total
	}
	for loaded := int64(0); loaded < total; {
		if err := ctx.Err(); err != nil {
			return err
		}
		loaded = min(loaded+chunk, total)
		opts.OnProgress(loaded, total)
	}
	return nil
}

func (d *Document) NumPages() int { return d.pages }

func (d *Document) Page(ctx context.Context, n int) (viewer.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > d.pages {
		return nil, fmt.Errorf("page %d of %d: %w", n, d.pages, viewer.ErrInvalidPage)
	}
	return &page{doc: d, n: n}, nil
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// touch records a call against page n and returns its injected failure.
func (d *Document) touch(n int, counts map[int]int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail[n]; err != nil {
		return err
	}
	counts[n]++
	return nil
}
