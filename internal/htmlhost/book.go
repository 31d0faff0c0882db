package htmlhost

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/inamate/flipbook/internal/viewer"
)

// Book is a headless page-flip widget. In wide viewports it shows the cover
// alone and then two-page spreads; narrow viewports show one page at a time.
type Book struct {
	stage *Stage
	opts  viewer.FlipOptions
	node  *html.Node
	pages []viewer.SlotElement
	index int
	fns   []func(int)
}

var _ viewer.FlipWidget = (*Book)(nil)

func newBook(s *Stage, opts viewer.FlipOptions) *Book {
	b := &Book{
		stage: s,
		opts:  opts,
		node: element(atom.Div, "class", "flip-book",
			"data-sizing", string(opts.Sizing),
			"style", style("width", px(opts.Width), "height", px(opts.Height)),
		),
	}
	s.root.AppendChild(b.node)
	return b
}

// LoadPages moves the slot elements into the book.
func (b *Book) LoadPages(pages []viewer.SlotElement) {
	b.pages = pages
	for _, p := range pages {
		if el, ok := p.(*Element); ok {
			detach(el.node)
			b.node.AppendChild(el.node)
		}
	}
	b.index = 0
	b.sync()
}

// TurnToPage jumps to index and emits a flip event if it changed.
func (b *Book) TurnToPage(index int) {
	b.turn(index)
}

func (b *Book) FlipNext() {
	switch {
	case b.single():
		b.turn(b.index + 1)
	case b.index == 0 && b.opts.ShowCover:
		b.turn(1)
	default:
		b.turn(b.index + 2)
	}
}

func (b *Book) FlipPrev() {
	switch {
	case b.single():
		b.turn(b.index - 1)
	case b.index <= 1 && b.opts.ShowCover:
		b.turn(0)
	default:
		b.turn(b.index - 2)
	}
}

func (b *Book) CurrentPageIndex() int { return b.index }

func (b *Book) OnFlip(fn func(index int)) {
	b.fns = append(b.fns, fn)
}

func (b *Book) Destroy() {
	detach(b.node)
	b.fns = nil
	b.pages = nil
	if b.stage.book == b {
		b.stage.book = nil
	}
}

// Options returns the options the widget was created with.
func (b *Book) Options() viewer.FlipOptions { return b.opts }

func (b *Book) single() bool {
	return b.opts.Sizing == viewer.SizingFixed
}

func (b *Book) turn(index int) {
	if len(b.pages) == 0 {
		return
	}
	index = min(max(index, 0), len(b.pages)-1)
	if index == b.index {
		return
	}
	b.index = index
	b.sync()
	for _, fn := range b.fns {
		fn(index)
	}
}

func (b *Book) sync() {
	setAttr(b.node, "data-current", strconv.Itoa(b.index))
}
