package viewer

import "strings"

// TextItem is one run of extracted text in PDF user space.
type TextItem struct {
	Str       string   `json:"str"`
	Transform Matrix2D `json:"transform"`
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
}

// TextContent is the structured text of a page as returned by an engine.
type TextContent struct {
	Items []TextItem `json:"items"`
}

// TextSpan is a positioned run in the overlay, in render pixels relative to
// the top-left corner of the un-cropped surface.
type TextSpan struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
	Width    float64 `json:"width"`
	Angle    float64 `json:"angle,omitempty"`
}

// TextOverlay is the selectable text layer of a page. It is sized to the full
// render dimensions and shifted by the same negative crop offset as the
// surface, so glyph positions stay aligned with the drawn page.
type TextOverlay struct {
	OffsetX float64    `json:"offsetX"`
	OffsetY float64    `json:"offsetY"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Spans   []TextSpan `json:"spans"`
}

// LayoutTextOverlay positions text content for the viewport vp and crop
// geometry g. vp must be the viewport the surface was drawn with.
func LayoutTextOverlay(content TextContent, vp Viewport, g PageGeometry) *TextOverlay {
	ov := &TextOverlay{
		OffsetX: -g.CropOffsetX,
		OffsetY: -g.CropOffsetY,
		Width:   g.RenderWidth,
		Height:  g.RenderHeight,
		Spans:   make([]TextSpan, 0, len(content.Items)),
	}
	for _, item := range content.Items {
		if strings.TrimSpace(item.Str) == "" {
			continue
		}
		tx := vp.Transform.Multiply(item.Transform)
		fontHeight := tx.VerticalScale()
		if fontHeight == 0 {
			continue
		}
		// tx places the baseline; spans are anchored at their top edge.
		ov.Spans = append(ov.Spans, TextSpan{
			Text:     item.Str,
			X:        tx[4],
			Y:        tx[5] - fontHeight,
			FontSize: fontHeight,
			Width:    item.Width * vp.Scale,
			Angle:    tx.Angle(),
		})
	}
	return ov
}
