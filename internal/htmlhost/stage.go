package htmlhost

import (
	"image"
	"io"
	"math"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/inamate/flipbook/internal/viewer"
)

// NarrowWidth is the viewport width below which the flip widget switches to
// fixed sizing.
const NarrowWidth = 768

// SlotGap is the vertical space between scroll-mode slots.
const SlotGap = 16

// Stage is a headless container for either presentation mode. It satisfies
// both viewer.FlipStage and viewer.ScrollStage.
type Stage struct {
	root     *html.Node
	viewport viewer.Size
	visible  bool

	slots     []*Element
	scrollTop float64

	observers []*Observer
	scrollFns map[int]func()
	nextFn    int

	book *Book
}

var (
	_ viewer.FlipStage   = (*Stage)(nil)
	_ viewer.ScrollStage = (*Stage)(nil)
)

// NewStage returns a stage with the given element id and viewport size.
func NewStage(id string, viewport viewer.Size) *Stage {
	return &Stage{
		root:      element(atom.Div, "id", id, "class", "stage"),
		viewport:  viewport,
		visible:   true,
		scrollFns: make(map[int]func()),
	}
}

func (s *Stage) NewSlot(page int, placeholder viewer.Size) viewer.SlotElement {
	el := newElement(s, page, placeholder)
	s.slots = append(s.slots, el)
	s.root.AppendChild(el.node)
	return el
}

func (s *Stage) NewSurface(width, height int) viewer.Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (s *Stage) SetVisible(visible bool) {
	s.visible = visible
	if visible {
		setAttr(s.root, "style", "")
	} else {
		setAttr(s.root, "style", style("display", "none"))
	}
}

// Visible reports the last SetVisible value.
func (s *Stage) Visible() bool { return s.visible }

func (s *Stage) Clear() {
	if s.book != nil {
		s.book.Destroy()
	}
	removeChildren(s.root)
	s.slots = nil
	s.scrollTop = 0
}

func (s *Stage) NewFlipWidget(opts viewer.FlipOptions) viewer.FlipWidget {
	s.book = newBook(s, opts)
	return s.book
}

// Book returns the active flip widget, or nil.
func (s *Stage) Book() *Book { return s.book }

func (s *Stage) Narrow() bool { return s.viewport.Width < NarrowWidth }

func (s *Stage) NewObserver(opts viewer.ObserverOptions, fn func(page int, visible bool)) viewer.VisibilityObserver {
	o := &Observer{stage: s, opts: opts, fn: fn, state: make(map[*Element]bool)}
	s.observers = append(s.observers, o)
	return o
}

func (s *Stage) ScrollIntoView(el viewer.SlotElement) {
	s.ScrollTo(el.Bounds().Y)
}

// ScrollTo moves the viewport top to y, clamped to the content, then
// delivers observer and scroll callbacks.
func (s *Stage) ScrollTo(y float64) {
	maxTop := math.Max(s.ContentHeight()-s.viewport.Height, 0)
	s.scrollTop = math.Min(math.Max(y, 0), maxTop)
	for _, o := range append([]*Observer(nil), s.observers...) {
		o.evaluate()
	}
	for id := range s.nextFn {
		if fn, ok := s.scrollFns[id]; ok {
			fn()
		}
	}
}

// ScrollTop is the current scroll offset.
func (s *Stage) ScrollTop() float64 { return s.scrollTop }

func (s *Stage) OnScroll(fn func()) func() {
	id := s.nextFn
	s.nextFn++
	s.scrollFns[id] = fn
	return func() { delete(s.scrollFns, id) }
}

func (s *Stage) ViewportCenter() float64 {
	return s.scrollTop + s.viewport.Height/2
}

// ContentHeight is the height of the slot column including gaps.
func (s *Stage) ContentHeight() float64 {
	var h float64
	for i, el := range s.slots {
		if i > 0 {
			h += SlotGap
		}
		h += el.size.Height
	}
	return h
}

// Slot returns the element of page, or nil.
func (s *Stage) Slot(page int) *Element {
	if page < 1 || page > len(s.slots) {
		return nil
	}
	return s.slots[page-1]
}

// Slots returns the elements in page order.
func (s *Stage) Slots() []*Element { return s.slots }

// top is the y offset of the slot at index i.
func (s *Stage) top(i int) float64 {
	var y float64
	for _, el := range s.slots[:i] {
		y += el.size.Height + SlotGap
	}
	return y
}

func (s *Stage) removeObserver(o *Observer) {
	for i, x := range s.observers {
		if x == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Render writes the stage subtree as HTML.
func (s *Stage) Render(w io.Writer) error {
	return html.Render(w, s.root)
}
