package daub

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/vector"
)

// kappa is the distance of the control points from the on-curve points
// when a quarter circle is approximated with a cubic Bézier curve.
const kappa = 0.5522847498

// Brush is the pre-rendered stamp laid down for every paint and erase dab.
// The tile is built once and reused, unscaled, for the whole session.
type Brush struct {
	tile     *image.Alpha
	diameter int
	soft     bool
}

// NewBrush renders a square brush tile of the given diameter. A soft brush
// has a radial falloff from an opaque center to a fully transparent edge,
// otherwise the tile holds an anti-aliased hard disc.
// It panics if the diameter is not positive.
func NewBrush(diameter int, soft bool) *Brush {
	if diameter <= 0 {
		panic(fmt.Sprintf("daub: invalid brush diameter %d", diameter))
	}
	b := &Brush{
		tile:     image.NewAlpha(image.Rect(0, 0, diameter, diameter)),
		diameter: diameter,
		soft:     soft,
	}
	if soft {
		b.radial()
	} else {
		b.disc()
	}
	return b
}

// Tile returns the brush tile. The returned image must not be modified.
func (b *Brush) Tile() *image.Alpha { return b.tile }

// Diameter returns the side of the brush tile.
func (b *Brush) Diameter() int { return b.diameter }

// Soft reports whether the brush has a radial falloff.
func (b *Brush) Soft() bool { return b.soft }

// radial fills the tile with a linear falloff, sampled at the pixel centers.
func (b *Brush) radial() {
	r := float64(b.diameter) / 2
	for y := 0; y < b.diameter; y++ {
		dy := float64(y) + 0.5 - r
		for x := 0; x < b.diameter; x++ {
			dx := float64(x) + 0.5 - r
			v := 1 - math.Hypot(dx, dy)/r
			if v <= 0 {
				continue
			}
			b.tile.Pix[b.tile.PixOffset(x, y)] = uint8(math.Round(v * 0xff))
		}
	}
}

// disc rasterizes a filled circle inscribed in the tile.
func (b *Brush) disc() {
	var (
		r = float32(b.diameter) / 2
		c = r
		k = r * kappa
	)
	z := vector.NewRasterizer(b.diameter, b.diameter)
	z.MoveTo(c+r, c)
	z.CubeTo(c+r, c+k, c+k, c+r, c, c+r)
	z.CubeTo(c-k, c+r, c-r, c+k, c-r, c)
	z.CubeTo(c-r, c-k, c-k, c-r, c, c-r)
	z.CubeTo(c+k, c-r, c+r, c-k, c+r, c)
	z.ClosePath()
	z.Draw(b.tile, b.tile.Bounds(), image.Opaque, image.Point{})
}
