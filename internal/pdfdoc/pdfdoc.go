// Package pdfdoc opens PDF files with seehuhn.de/go/pdf for headless use.
//
// Page geometry comes from the MediaBox. Text is extracted line by line and
// laid out top-down inside the box, and Draw produces a text-only preview:
// good enough to lay out and inspect a book without a browser, not a
// substitute for pdf.js.
package pdfdoc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"github.com/inamate/flipbook/internal/viewer"
)

// Engine opens PDF files from the local file system.
type Engine struct {
	log *slog.Logger
}

func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

func (e *Engine) Load(ctx context.Context, source string, opts viewer.LoadOptions) (viewer.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fd, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	st, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, err
	}

	var rs io.ReadSeeker = fd
	if opts.OnProgress != nil {
		rs = &progressReader{rs: fd, total: st.Size(), fn: opts.OnProgress}
	}
	r, err := pdf.NewReader(rs, nil)
	if err != nil {
		fd.Close()
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	n, err := pagetree.NumPages(r)
	if err != nil {
		r.Close()
		fd.Close()
		return nil, fmt.Errorf("page tree of %s: %w", source, err)
	}
	if opts.OnProgress != nil {
		opts.OnProgress(st.Size(), st.Size())
	}
	e.log.Debug("pdf opened", "source", source, "pages", n, "bytes", st.Size())
	return &Document{file: fd, r: r, pages: n}, nil
}

// Document is an open PDF file. The reader is not safe for concurrent use,
// so every access holds mu.
type Document struct {
	mu    sync.Mutex
	file  *os.File
	r     *pdf.Reader
	pages int
}

func (d *Document) NumPages() int { return d.pages }

func (d *Document) Page(ctx context.Context, n int) (viewer.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > d.pages {
		return nil, fmt.Errorf("page %d of %d: %w", n, d.pages, viewer.ErrInvalidPage)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, dict, err := pagetree.GetPage(d.r, n-1)
	if err != nil {
		return nil, err
	}
	return &page{doc: d, n: n, box: mediaBox(d.r, dict)}, nil
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.r.Close()
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Letter is used when a page has no usable MediaBox.
var Letter = viewer.Rect{Width: 612, Height: 792}

func mediaBox(r pdf.Getter, dict pdf.Dict) viewer.Rect {
	mb, err := pdf.GetRectangle(r, dict["MediaBox"])
	if err != nil || mb == nil {
		return Letter
	}
	box := viewer.Rect{
		X:      min(mb.LLx, mb.URx),
		Y:      min(mb.LLy, mb.URy),
		Width:  max(mb.URx-mb.LLx, mb.LLx-mb.URx),
		Height: max(mb.URy-mb.LLy, mb.LLy-mb.URy),
	}
	if box.IsEmpty() {
		return Letter
	}
	return box
}

// progressReader reports the furthest offset read so far.
type progressReader struct {
	rs    io.ReadSeeker
	total int64
	pos   int64
	high  int64
	fn    func(loaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.rs.Read(b)
	p.pos += int64(n)
	if p.pos > p.high {
		p.high = p.pos
		p.fn(min(p.high, p.total), p.total)
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.rs.Seek(offset, whence)
	if err == nil {
		p.pos = pos
	}
	return pos, err
}
