package pdfdoc

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/tools/pdf-extract/text"

	"github.com/inamate/flipbook/internal/viewer"
)

// Text layout of extracted lines, in PDF points.
const (
	textMargin  = 54.0
	textSize    = 11.0
	textLeading = 14.0
	// charWidth approximates the advance of one character as a fraction of
	// the font size.
	charWidth = 0.5
)

type page struct {
	doc *Document
	n   int
	box viewer.Rect
}

func (p *page) Number() int { return p.n }

func (p *page) Viewport(scale float64) viewer.Viewport {
	return viewer.NewViewport(p.box, scale)
}

func (p *page) Draw(ctx context.Context, vp viewer.Viewport, dst viewer.Surface) error {
	items, err := p.items(ctx)
	if err != nil {
		return err
	}
	return viewer.Paint(dst, func(img draw.Image) {
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
		d := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: basicfont.Face7x13}
		for _, it := range items {
			x, y := vp.Transform.TransformPoint(it.Transform[4], it.Transform[5])
			d.Dot = fixed.P(int(x), int(y))
			d.DrawString(it.Str)
		}
	})
}

func (p *page) TextContent(ctx context.Context) (viewer.TextContent, error) {
	items, err := p.items(ctx)
	if err != nil {
		return viewer.TextContent{}, err
	}
	return viewer.TextContent{Items: items}, nil
}

func (p *page) items(ctx context.Context) ([]viewer.TextItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := p.extract()
	if err != nil {
		return nil, err
	}
	return LayoutLines(strings.Split(s, "\n"), p.box), nil
}

func (p *page) extract() (string, error) {
	d := p.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	_, dict, err := pagetree.GetPage(d.r, p.n-1)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	ex := text.New(d.r, &buf)
	if err := ex.ExtractPage(dict); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LayoutLines places lines top-down inside box, one text item per line.
// Blank lines advance the cursor; lines below the bottom margin are dropped.
func LayoutLines(lines []string, box viewer.Rect) []viewer.TextItem {
	var items []viewer.TextItem
	x := box.X + textMargin
	y := box.Y + box.Height - textMargin - textSize
	bottom := box.Y + textMargin
	for _, line := range lines {
		if y < bottom {
			break
		}
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) != "" {
			items = append(items, viewer.TextItem{
				Str:       line,
				Transform: viewer.Matrix2D{textSize, 0, 0, textSize, x, y},
				Width:     float64(len([]rune(line))) * textSize * charWidth,
				Height:    textSize,
			})
		}
		y -= textLeading
	}
	return items
}
