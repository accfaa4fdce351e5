// Package imop implements the Porter-Duff composition operations used
// for laying brush dabs onto a paint surface and for clipping a surface
// against its silhouette.
//
// The image/draw core package implements only the source-over-destination
// and source operations, and works on premultiplied colors. The surfaces
// handled here are non-premultiplied *image.NRGBA buffers which are
// painted with a uniform color weighted by an alpha mask (the brush tile
// or the region silhouette), so the few operations the painting needs
// are implemented directly on the pixel buffer.
package imop

import (
	"errors"
	"image"
	"image/color"

	"github.com/esimov/daub/utils"
)

const (
	// Copy replaces the destination with the masked source color.
	Copy = "copy"
	// SrcOver lays the masked source color over the destination.
	SrcOver = "src_over"
	// DstIn keeps the destination only where the mask is opaque.
	DstIn = "dst_in"
	// DstOut removes the mask alpha from the destination.
	DstOut = "dst_out"
)

// ErrUnsupportedOp is returned when activating an unknown composite operation.
var ErrUnsupportedOp = errors.New("unsupported composite operation")

// Composite holds the currently active composite operation.
type Composite struct {
	current string
	ops     []string
}

// InitOp initializes a new Composite with SrcOver as the active operation.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops:     []string{Copy, SrcOver, DstIn, DstOut},
	}
}

// Set activates one of the supported composite operations.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(op.ops, cop) {
		return ErrUnsupportedOp
	}
	op.current = cop
	return nil
}

// Get returns the currently active composite operation.
func (op *Composite) Get() string {
	return op.current
}

// DrawMask composites the uniform src color onto the dst rectangle r using
// the active operation. The effective source alpha of every pixel is src.A
// weighted by the mask alpha; mp is the mask point aligned with r.Min.
// A nil mask is treated as fully opaque. The rectangle is clipped against
// both the destination and the mask bounds.
func (op *Composite) DrawMask(dst *image.NRGBA, r image.Rectangle, src color.NRGBA, mask *image.Alpha, mp image.Point) {
	orig := r.Min
	r = r.Intersect(dst.Bounds())
	if mask != nil {
		r = r.Intersect(mask.Bounds().Add(orig.Sub(mp)))
	}
	if r.Empty() {
		return
	}
	mp = mp.Add(r.Min.Sub(orig))

	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		mi := -1
		if mask != nil {
			mi = mask.PixOffset(mp.X, mp.Y+y-r.Min.Y)
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			m := uint32(0xff)
			if mi >= 0 {
				m = uint32(mask.Pix[mi])
				mi++
			}
			op.apply(dst.Pix[di:di+4:di+4], src, mul(uint32(src.A), m))
			di += 4
		}
	}
}

// apply composites a single pixel. sa is the effective source alpha.
func (op *Composite) apply(px []uint8, src color.NRGBA, sa uint32) {
	switch op.current {
	case Copy:
		if sa == 0 {
			px[0], px[1], px[2], px[3] = 0, 0, 0, 0
			return
		}
		px[0], px[1], px[2], px[3] = src.R, src.G, src.B, uint8(sa)
	case SrcOver:
		if sa == 0 {
			return
		}
		da := uint32(px[3])
		oa := sa + mul(da, 0xff-sa)
		den := oa * 0xff
		px[0] = uint8((uint32(src.R)*sa*0xff + uint32(px[0])*da*(0xff-sa) + den/2) / den)
		px[1] = uint8((uint32(src.G)*sa*0xff + uint32(px[1])*da*(0xff-sa) + den/2) / den)
		px[2] = uint8((uint32(src.B)*sa*0xff + uint32(px[2])*da*(0xff-sa) + den/2) / den)
		px[3] = uint8(oa)
	case DstIn:
		// Rounded up, so that paint inside the silhouette never vanishes.
		setAlpha(px, (uint32(px[3])*sa+0xfe)/0xff)
	case DstOut:
		setAlpha(px, mul(uint32(px[3]), 0xff-sa))
	}
}

func setAlpha(px []uint8, a uint32) {
	if a == 0 {
		px[0], px[1], px[2] = 0, 0, 0
	}
	px[3] = uint8(a)
}

// mul multiplies two 8 bit alpha values, rounding to the nearest integer.
func mul(a, b uint32) uint32 {
	return (a*b + 0x7f) / 0xff
}
