package htmlhost

import (
	"image"
	"image/draw"

	"github.com/inamate/flipbook/internal/viewer"
)

// Surface is an in-memory raster surface.
type Surface struct {
	img *image.RGBA
}

var _ viewer.RasterSurface = (*Surface)(nil)

func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Surface) Image() draw.Image { return s.img }

// RGBA returns the backing image.
func (s *Surface) RGBA() *image.RGBA { return s.img }
