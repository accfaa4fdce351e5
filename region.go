package daub

import (
	"image"
	"image/color"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// State is the lifecycle state of a region.
type State int

const (
	// Frozen regions keep their content as a baked image, without a live buffer.
	Frozen State = iota
	// Live is the state of the single region owning a writable surface.
	Live
	// Completed regions reached the coverage threshold. The state is terminal.
	Completed
)

func (s State) String() string {
	switch s {
	case Frozen:
		return "frozen"
	case Live:
		return "live"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Transform maps the shared screen space onto the region's local frame.
type Transform struct {
	// Origin is the screen position of the top left corner of the mask.
	Origin image.Point
	// Scale is the factor applied to the source cutout when the mask was built.
	Scale float64
}

// Local converts a screen coordinate into mask-local coordinates.
func (t Transform) Local(x, y float64) (float64, float64) {
	return x - float64(t.Origin.X), y - float64(t.Origin.Y)
}

// ColorSet is a set of distinct paint colors.
type ColorSet map[color.NRGBA]struct{}

// Add inserts c into the set.
func (s ColorSet) Add(c color.NRGBA) { s[c] = struct{}{} }

// Has reports whether c is part of the set.
func (s ColorSet) Has(c color.NRGBA) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of distinct colors.
func (s ColorSet) Len() int { return len(s) }

// Colors returns the members of the set in a stable order.
func (s ColorSet) Colors() []color.NRGBA {
	colors := maps.Keys(s)
	slices.SortFunc(colors, func(a, b color.NRGBA) int {
		pa, pb := packColor(a), packColor(b)
		switch {
		case pa < pb:
			return -1
		case pa > pb:
			return 1
		}
		return 0
	})
	return colors
}

// Clone returns an independent copy of the set.
func (s ColorSet) Clone() ColorSet {
	return maps.Clone(s)
}

func packColor(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// Region is one independently paintable silhouette-bounded area.
type Region struct {
	id        string
	mask      *Mask
	grid      *cellGrid
	transform Transform
	state     State
	used      ColorSet

	surface *Surface // present while Live and until the completed content is baked
	baked   []byte   // compressed content while Frozen or Completed; nil reads as transparent

	// epoch changes whenever the content or the ownership of the live buffer
	// changes, so that a delayed coverage result can be recognised as stale.
	epoch    uint64
	stroking bool
}

func newRegion(id string, mask *Mask, grid *cellGrid, t Transform) *Region {
	return &Region{
		id:        id,
		mask:      mask,
		grid:      grid,
		transform: t,
		state:     Frozen,
		used:      make(ColorSet),
	}
}

// ID returns the region identifier.
func (r *Region) ID() string { return r.id }

// Mask returns the region silhouette.
func (r *Region) Mask() *Mask { return r.mask }

// Transform returns the screen placement of the region.
func (r *Region) Transform() Transform { return r.transform }

// State returns the lifecycle state of the region.
func (r *Region) State() State { return r.state }

// UsedColors returns a copy of the colors painted on the region since its creation.
func (r *Region) UsedColors() ColorSet { return r.used.Clone() }

// Surface returns the live surface, or nil when the region has no live buffer.
func (r *Region) Surface() *Surface {
	if r.surface == nil || r.surface.Released() {
		return nil
	}
	return r.surface
}

// Image returns the region content as it appears on screen, clipped by
// the silhouette, in mask-local coordinates.
func (r *Region) Image() (*image.NRGBA, error) {
	if s := r.Surface(); s != nil {
		return s.Visible()
	}
	img, err := unbake(r.baked, r.mask.Bounds())
	if err != nil {
		return nil, err
	}
	return visible(img, r.mask), nil
}

// Coverage measures the painted fraction of the live surface.
func (r *Region) Coverage() (float64, error) {
	s := r.Surface()
	if s == nil {
		return 0, ErrSurfaceReleased
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return r.grid.coverage(snap), nil
}
