package htmlhost

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/inamate/flipbook/internal/viewer"
)

// Element is one page slot.
type Element struct {
	stage   *Stage
	page    int
	size    viewer.Size
	node    *html.Node
	mounted *viewer.RenderedPage
}

var _ viewer.SlotElement = (*Element)(nil)

func newElement(s *Stage, page int, placeholder viewer.Size) *Element {
	el := &Element{
		stage: s,
		page:  page,
		size:  placeholder,
		node: element(atom.Div,
			"class", "page-slot",
			"data-page", strconv.Itoa(page),
			"style", style("width", px(placeholder.Width), "height", px(placeholder.Height)),
		),
	}
	ph := element(atom.Div, "class", "page-placeholder")
	ph.AppendChild(text(fmt.Sprintf("Loading page %d…", page)))
	el.node.AppendChild(ph)
	return el
}

func (e *Element) Page() int { return e.page }

// Bounds is the slot rectangle in the stage's scroll coordinates.
func (e *Element) Bounds() viewer.Rect {
	return viewer.Rect{
		Y:      e.stage.top(e.page - 1),
		Width:  e.size.Width,
		Height: e.size.Height,
	}
}

// Mount replaces the placeholder with a clip box of the visible size. The
// full-size image and text layer inside are shifted by the crop offset.
func (e *Element) Mount(r *viewer.RenderedPage) {
	g := r.Geometry
	e.mounted = r
	e.size = g.VisibleSize()
	removeChildren(e.node)
	setAttr(e.node, "style", style("width", px(g.VisibleWidth), "height", px(g.VisibleHeight)))
	setAttr(e.node, "data-rendered", "true")

	clip := element(atom.Div, "class", "page-clip",
		"style", style("width", px(g.VisibleWidth), "height", px(g.VisibleHeight)))
	img := element(atom.Img, "class", "page-canvas", "alt", fmt.Sprintf("Page %d", r.Page),
		"style", style(
			"left", px(-g.CropOffsetX), "top", px(-g.CropOffsetY),
			"width", px(g.RenderWidth), "height", px(g.RenderHeight),
		))
	if src, err := dataURI(r.Surface); err == nil {
		setAttr(img, "src", src)
	}
	clip.AppendChild(img)
	if r.Overlay != nil {
		clip.AppendChild(textLayer(r.Overlay))
	}
	e.node.AppendChild(clip)
}

// Mounted returns the rendered page, or nil while the placeholder shows.
func (e *Element) Mounted() *viewer.RenderedPage { return e.mounted }

func textLayer(ov *viewer.TextOverlay) *html.Node {
	layer := element(atom.Div, "class", "textLayer",
		"style", style(
			"left", px(ov.OffsetX), "top", px(ov.OffsetY),
			"width", px(ov.Width), "height", px(ov.Height),
		))
	for _, sp := range ov.Spans {
		kv := []string{"left", px(sp.X), "top", px(sp.Y), "font-size", px(sp.FontSize)}
		if sp.Angle != 0 {
			kv = append(kv, "transform", "rotate("+strconv.FormatFloat(sp.Angle, 'f', 4, 64)+"rad)")
		}
		span := element(atom.Span, "style", style(kv...))
		span.AppendChild(text(sp.Text))
		layer.AppendChild(span)
	}
	return layer
}

func dataURI(s viewer.Surface) (string, error) {
	rs, ok := s.(viewer.RasterSurface)
	if !ok {
		return "", viewer.ErrUnsupportedSurface
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, rs.Image()); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
