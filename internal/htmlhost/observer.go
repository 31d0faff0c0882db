package htmlhost

import (
	"sort"

	"github.com/inamate/flipbook/internal/viewer"
)

// Observer reports slots crossing the margin-grown viewport. Intersections
// are evaluated whenever the stage scrolls.
type Observer struct {
	stage   *Stage
	opts    viewer.ObserverOptions
	fn      func(page int, visible bool)
	targets []*Element
	state   map[*Element]bool
}

func (o *Observer) Observe(el viewer.SlotElement) {
	if e, ok := el.(*Element); ok {
		o.targets = append(o.targets, e)
	}
}

func (o *Observer) Disconnect() {
	o.stage.removeObserver(o)
	o.targets = nil
	o.state = make(map[*Element]bool)
}

type change struct {
	page    int
	visible bool
}

func (o *Observer) evaluate() {
	s := o.stage
	top := s.scrollTop - o.opts.RootMargin
	bottom := s.scrollTop + s.viewport.Height + o.opts.RootMargin

	var changes []change
	for _, el := range o.targets {
		b := el.Bounds()
		in := !b.IsEmpty() && b.Overlaps(top, bottom)
		if in {
			overlap := min(b.Y+b.Height, bottom) - max(b.Y, top)
			in = overlap/b.Height >= o.opts.Threshold
		}
		if in != o.state[el] {
			o.state[el] = in
			changes = append(changes, change{page: el.page, visible: in})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].page < changes[j].page })
	for _, c := range changes {
		o.fn(c.page, c.visible)
	}
}
