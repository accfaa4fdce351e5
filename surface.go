package daub

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/esimov/daub/imop"
)

// ErrSurfaceReleased is returned when reading back a surface whose raster
// buffer has already been handed back to the pool.
var ErrSurfaceReleased = errors.New("paint surface released")

// Surface is the writable raster buffer accumulating the brush dabs of a
// single region. It shares the mask coordinate frame. Paint may land
// outside the silhouette, it is clipped away whenever the content is shown
// or baked.
type Surface struct {
	img  *image.NRGBA
	mask *Mask
	op   *imop.Composite
}

// NewSurface allocates a transparent surface sized to the mask.
func NewSurface(mask *Mask) *Surface {
	return newSurface(mask, image.NewNRGBA(mask.Bounds()))
}

// newSurface wraps img, which must be sized to the mask.
func newSurface(mask *Mask, img *image.NRGBA) *Surface {
	return &Surface{
		img:  img,
		mask: mask,
		op:   imop.InitOp(),
	}
}

// Stamp composites the brush tile centered on (x, y) over the existing
// content using the given color.
func (s *Surface) Stamp(b *Brush, x, y float64, c color.NRGBA) {
	s.dab(imop.SrcOver, b, x, y, c)
}

// Erase subtracts the brush tile alpha centered on (x, y) from the content.
func (s *Surface) Erase(b *Brush, x, y float64) {
	s.dab(imop.DstOut, b, x, y, color.NRGBA{A: 0xff})
}

func (s *Surface) dab(cop string, b *Brush, x, y float64, c color.NRGBA) {
	if s.img == nil {
		return
	}
	d := b.Diameter()
	pt := image.Pt(
		int(math.Round(x-float64(d)/2)),
		int(math.Round(y-float64(d)/2)),
	)
	s.draw(cop, image.Rectangle{Min: pt, Max: pt.Add(image.Pt(d, d))}, c, b.Tile())
}

// Fill replaces the whole content with a flat color inside the silhouette.
func (s *Surface) Fill(c color.NRGBA) {
	if s.img == nil {
		return
	}
	s.draw(imop.Copy, s.img.Bounds(), c, s.mask.Support())
}

// clip removes every pixel lying outside the silhouette.
func (s *Surface) clip() {
	s.draw(imop.DstIn, s.img.Bounds(), color.NRGBA{A: 0xff}, s.mask.Support())
}

func (s *Surface) draw(cop string, r image.Rectangle, c color.NRGBA, mask *image.Alpha) {
	if err := s.op.Set(cop); err != nil {
		panic(err)
	}
	s.op.DrawMask(s.img, r, c, mask, image.Point{})
}

// Snapshot reads back a copy of the raw surface content.
func (s *Surface) Snapshot() (*image.NRGBA, error) {
	if s.img == nil {
		return nil, ErrSurfaceReleased
	}
	dst := image.NewNRGBA(s.img.Rect)
	copy(dst.Pix, s.img.Pix)
	return dst, nil
}

// Visible returns the content as it appears on screen: a copy of the
// surface weighted by the silhouette alpha.
func (s *Surface) Visible() (*image.NRGBA, error) {
	img, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return visible(img, s.mask), nil
}

// Released reports whether the raster buffer has been handed back.
func (s *Surface) Released() bool { return s.img == nil }

func (s *Surface) release() { s.img = nil }

// visible clips img in place with the silhouette alpha.
func visible(img *image.NRGBA, mask *Mask) *image.NRGBA {
	op := imop.InitOp()
	_ = op.Set(imop.DstIn)
	op.DrawMask(img, img.Bounds(), color.NRGBA{A: 0xff}, mask.Alpha(), image.Point{})
	return img
}
