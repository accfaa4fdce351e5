package daub

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ErrDuplicateRegion is returned when registering a region id twice.
var ErrDuplicateRegion = errors.New("duplicate region id")

// CompletionFunc is notified once for every completed region, with the
// colors painted on it.
type CompletionFunc func(id string, used ColorSet)

// Registry owns the regions of a level and their lifecycle.
type Registry struct {
	cfg        Config
	pool       *Pool
	regions    map[string]*Region
	order      []*Region
	onComplete CompletionFunc
}

// NewRegistry creates an empty registry. onComplete may be nil.
func NewRegistry(cfg Config, onComplete CompletionFunc) *Registry {
	return &Registry{
		cfg:        cfg,
		pool:       NewPool(),
		regions:    make(map[string]*Region),
		onComplete: onComplete,
	}
}

// Config returns the configuration the registry was created with.
func (reg *Registry) Config() Config { return reg.cfg }

// Pool returns the surface pool of the registry.
func (reg *Registry) Pool() *Pool { return reg.pool }

// Register builds a region from its definition and source cutout.
// Regions with a malformed mask are not registered.
func (reg *Registry) Register(def RegionDef, src image.Image) (*Region, error) {
	if def.ID == "" {
		return nil, errors.New("region id is empty")
	}
	if _, ok := reg.regions[def.ID]; ok {
		return nil, fmt.Errorf("region %q: %w", def.ID, ErrDuplicateRegion)
	}
	scale := def.Scale
	if scale == 0 {
		scale = 1
	}
	mask, err := NewMask(src, scale)
	if err != nil {
		return nil, fmt.Errorf("region %q: %w", def.ID, err)
	}
	grid := maskCells(mask, reg.cfg.GridSize)
	if grid.total == 0 {
		return nil, fmt.Errorf("region %q: %w: the silhouette is too thin for a %dx%d coverage grid",
			def.ID, ErrMalformedMask, reg.cfg.GridSize, reg.cfg.GridSize)
	}

	r := newRegion(def.ID, mask, grid, Transform{Origin: def.Offset, Scale: scale})
	reg.regions[r.id] = r
	reg.order = append(reg.order, r)
	return r, nil
}

// Build registers every region of the level, resolving the cutouts through
// assets. The regions which could be built are registered even if others fail.
func (reg *Registry) Build(lvl *Level, assets AssetSource) error {
	var errs []error
	for _, def := range lvl.Regions {
		src, err := assets.Open(def.Mask)
		if err != nil {
			errs = append(errs, fmt.Errorf("region %q: %w", def.ID, err))
			continue
		}
		if _, err := reg.Register(def, src); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Region returns the region registered under id.
func (reg *Registry) Region(id string) (*Region, bool) {
	r, ok := reg.regions[id]
	return r, ok
}

func (reg *Registry) mustRegion(id string) *Region {
	r, ok := reg.regions[id]
	if !ok {
		panic(fmt.Sprintf("daub: unknown region %q", id))
	}
	return r
}

// Regions returns every region in registration order.
func (reg *Registry) Regions() []*Region {
	return append([]*Region(nil), reg.order...)
}

// Unfinished returns the regions which are not completed, in registration order.
func (reg *Registry) Unfinished() []*Region {
	return reg.filter(func(r *Region) bool { return r.state != Completed })
}

// Finished returns the completed regions, in registration order.
func (reg *Registry) Finished() []*Region {
	return reg.filter(func(r *Region) bool { return r.state == Completed })
}

func (reg *Registry) filter(keep func(*Region) bool) []*Region {
	var res []*Region
	for _, r := range reg.order {
		if keep(r) {
			res = append(res, r)
		}
	}
	return res
}

// Progress returns the number of completed regions and the number of regions.
func (reg *Registry) Progress() (finished, total int) {
	return len(reg.Finished()), len(reg.order)
}

// IsLevelComplete reports whether every region is completed.
func (reg *Registry) IsLevelComplete() bool {
	finished, total := reg.Progress()
	return finished == total
}

// HitTest returns the topmost region whose silhouette covers the screen
// point (x, y). Regions registered later are on top.
func (reg *Registry) HitTest(x, y float64) *Region {
	for i := len(reg.order) - 1; i >= 0; i-- {
		r := reg.order[i]
		lx, ly := r.transform.Local(x, y)
		if r.mask.Contains(int(math.Floor(lx)), int(math.Floor(ly))) {
			return r
		}
	}
	return nil
}

// Activate makes the region live, freezing the previously live one.
// It panics if id is unknown.
func (reg *Registry) Activate(id string) error {
	return reg.pool.Activate(reg.mustRegion(id))
}

// Evaluate measures the coverage of the live surface of the region and
// completes it when the coverage exceeds the win threshold. Completed
// regions are skipped without any image work. A surface which cannot be
// read back, or a region with a stroke still open, skips the evaluation;
// the region is evaluated again on the next stroke end. It panics if id is
// unknown.
func (reg *Registry) Evaluate(id string) bool {
	r := reg.mustRegion(id)
	if r.state == Completed {
		return false
	}
	if r.stroking {
		Logger().Warn("coverage evaluation skipped", "region", id, "error", ErrRegionBusy)
		return false
	}
	cov, err := r.Coverage()
	if err != nil {
		Logger().Warn("coverage evaluation skipped", "region", id, "error", err)
		return false
	}
	return reg.settle(r, cov)
}

// OnStrokeEnded evaluates the region after a paint stroke and reports
// whether the stroke completed it.
func (reg *Registry) OnStrokeEnded(id string) bool {
	return reg.Evaluate(id)
}

// settle completes r if the measured coverage exceeds the win threshold.
func (reg *Registry) settle(r *Region, cov float64) bool {
	Logger().Debug("coverage measured", "region", r.id, "coverage", cov)
	if r.state == Completed || cov <= reg.cfg.WinThreshold {
		return false
	}
	reg.complete(r)
	return true
}

// Render composes the visible content of every region at its screen
// position over a background of the given color.
func (reg *Registry) Render(bounds image.Rectangle, bg color.Color) (*image.NRGBA, error) {
	dst := imaging.New(bounds.Dx(), bounds.Dy(), bg)
	for _, r := range reg.order {
		img, err := r.Image()
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", r.id, err)
		}
		dst = imaging.Overlay(dst, img, r.transform.Origin.Sub(bounds.Min), 1)
	}
	return dst, nil
}
