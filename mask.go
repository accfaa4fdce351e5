package daub

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrMalformedMask is returned when a region silhouette cannot be built
// from its source cutout or has no opaque area at all.
var ErrMalformedMask = errors.New("malformed region mask")

// Mask is the immutable silhouette of a region, built once from the alpha
// channel of a source cutout. Its bounds always start at the origin and
// share the coordinate frame of the region's paint surface.
type Mask struct {
	alpha   *image.Alpha
	support *image.Alpha
	area    int
}

// NewMask builds a mask from the alpha channel of src, resized by scale.
// A nil or empty source, a non-positive scale and a cutout without any
// opaque pixel are rejected with ErrMalformedMask.
func NewMask(src image.Image, scale float64) (*Mask, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: missing source image", ErrMalformedMask)
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: invalid scale %v", ErrMalformedMask, scale)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty source image", ErrMalformedMask)
	}

	var img *image.NRGBA
	if scale == 1 {
		img = imaging.Clone(src)
	} else {
		w := int(math.Round(float64(b.Dx()) * scale))
		h := int(math.Round(float64(b.Dy()) * scale))
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("%w: scale %v collapses the cutout", ErrMalformedMask, scale)
		}
		img = imaging.Resize(src, w, h, imaging.Lanczos)
	}

	bounds := img.Bounds()
	m := &Mask{
		alpha:   image.NewAlpha(bounds),
		support: image.NewAlpha(bounds),
	}
	for i := range m.alpha.Pix {
		a := img.Pix[i*4+3]
		if a == 0 {
			continue
		}
		m.alpha.Pix[i] = a
		m.support.Pix[i] = 0xff
		m.area++
	}
	if m.area == 0 {
		return nil, fmt.Errorf("%w: the cutout has no opaque pixel", ErrMalformedMask)
	}
	return m, nil
}

// Bounds returns the mask rectangle.
func (m *Mask) Bounds() image.Rectangle { return m.alpha.Bounds() }

// AlphaAt returns the silhouette alpha at (x, y), or 0 outside the mask.
func (m *Mask) AlphaAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(m.alpha.Rect) {
		return 0
	}
	return m.alpha.Pix[m.alpha.PixOffset(x, y)]
}

// Contains reports whether (x, y) lies inside the silhouette.
func (m *Mask) Contains(x, y int) bool {
	return m.AlphaAt(x, y) > 0
}

// Area returns the number of pixels with a non-zero alpha.
func (m *Mask) Area() int { return m.area }

// Alpha returns the silhouette alpha channel. It must not be modified.
func (m *Mask) Alpha() *image.Alpha { return m.alpha }

// Support returns the silhouette as a binary mask: fully opaque wherever
// the alpha is non-zero. It must not be modified.
func (m *Mask) Support() *image.Alpha { return m.support }
