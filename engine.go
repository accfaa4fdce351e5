package daub

import (
	"context"
	"errors"
	"image/color"
	"math"

	"github.com/esimov/daub/utils"
)

// ErrStrokeInProgress is returned by Flush while a stroke is captured.
var ErrStrokeInProgress = errors.New("stroke in progress")

// Tool is the active brush tool: paint with Color, or erase.
type Tool struct {
	Eraser bool
	Color  color.NRGBA
}

// Engine turns pointer motion into brush dabs laid on the live surface of
// the targeted region. All methods must be called from the same goroutine.
type Engine struct {
	cfg   Config
	reg   *Registry
	brush *Brush
	tool  Tool

	stroke  *stroke
	pending []*measurement
	stamps  int
}

type stroke struct {
	region       *Region
	tool         Tool
	lastX, lastY float64
}

// measurement is a coverage evaluation running off the event goroutine.
type measurement struct {
	region   *Region
	epoch    uint64
	coverage float64
	done     chan struct{}
}

// NewEngine creates a stroke engine painting on the regions of reg, using
// the registry configuration. The default tool paints in opaque black.
func NewEngine(reg *Registry) *Engine {
	cfg := reg.Config()
	return &Engine{
		cfg:   cfg,
		reg:   reg,
		brush: NewBrush(cfg.BrushDiameter, cfg.SoftBrush),
		tool:  Tool{Color: color.NRGBA{A: 0xff}},
	}
}

// Registry returns the registry the engine paints on.
func (e *Engine) Registry() *Registry { return e.reg }

// Brush returns the brush used for every dab.
func (e *Engine) Brush() *Brush { return e.brush }

// SetColor selects the paint tool with color c. The tool of a stroke in
// progress is unchanged.
func (e *Engine) SetColor(c color.NRGBA) {
	e.tool = Tool{Color: c}
}

// SetEraser selects the eraser. The tool of a stroke in progress is unchanged.
func (e *Engine) SetEraser() {
	e.tool = Tool{Eraser: true, Color: e.tool.Color}
}

// Tool returns the selected tool.
func (e *Engine) Tool() Tool { return e.tool }

// IsPainting reports whether a stroke is captured.
func (e *Engine) IsPainting() bool { return e.stroke != nil }

// HandlePointerDown starts a stroke on the topmost region under the screen
// point (x, y). It reports whether a stroke was started.
func (e *Engine) HandlePointerDown(x, y float64) bool {
	if e.stroke != nil {
		return false
	}
	r := e.reg.HitTest(x, y)
	if r == nil {
		return false
	}
	lx, ly := r.transform.Local(x, y)
	return e.BeginStroke(r.id, lx, ly)
}

// HandlePointerMove continues the captured stroke to the screen point (x, y).
func (e *Engine) HandlePointerMove(x, y float64) {
	if e.stroke == nil {
		return
	}
	e.ContinueStroke(e.stroke.region.transform.Local(x, y))
}

// HandlePointerUp ends the captured stroke.
func (e *Engine) HandlePointerUp() {
	e.EndStroke()
}

// BeginStroke makes the region live and lays a first dab at the local
// point (lx, ly). Completed regions are ignored and false is returned.
// A stroke still in progress is ended first. It panics if id is unknown.
func (e *Engine) BeginStroke(id string, lx, ly float64) bool {
	r := e.reg.mustRegion(id)
	if r.state == Completed {
		return false
	}
	if e.stroke != nil {
		e.EndStroke()
	}
	if err := e.reg.pool.Activate(r); err != nil {
		Logger().Warn("could not activate the region", "region", id, "error", err)
		return false
	}

	r.stroking = true
	r.epoch++
	e.stroke = &stroke{
		region: r,
		tool:   e.tool,
		lastX:  lx,
		lastY:  ly,
	}
	if !e.tool.Eraser {
		r.used.Add(e.tool.Color)
	}
	e.dab(lx, ly)
	return true
}

// ContinueStroke lays dabs along the segment from the last point to the
// local point (lx, ly), oldest first, ending exactly on the new point.
// Moves shorter than the configured minimal distance are ignored.
func (e *Engine) ContinueStroke(lx, ly float64) {
	s := e.stroke
	if s == nil || !s.paintable() {
		return
	}
	dx, dy := lx-s.lastX, ly-s.lastY
	dist := math.Hypot(dx, dy)
	if dist < e.cfg.MinDistance || dist == 0 {
		return
	}

	n := int(math.Ceil(dist / e.cfg.stepSize()))
	n = utils.Clamp(n, 1, e.cfg.MaxStamps)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		e.dab(s.lastX+dx*t, s.lastY+dy*t)
	}
	s.lastX, s.lastY = lx, ly
}

// paintable reports whether the stroke region still owns a live buffer.
// A region completed while the stroke is open takes no more dabs.
func (s *stroke) paintable() bool {
	return s.region.state != Completed && s.region.Surface() != nil
}

func (e *Engine) dab(x, y float64) {
	s := e.stroke
	if !s.paintable() {
		return
	}
	surf := s.region.surface
	if s.tool.Eraser {
		surf.Erase(e.brush, x, y)
	} else {
		surf.Stamp(e.brush, x, y, s.tool.Color)
	}
	e.stamps++
}

// EndStroke releases the captured stroke. A paint stroke triggers the
// coverage evaluation of its region: immediately, or off the event
// goroutine when the coverage is measured asynchronously. Erase strokes
// are never evaluated.
func (e *Engine) EndStroke() {
	s := e.stroke
	if s == nil {
		return
	}
	e.stroke = nil
	r := s.region
	r.stroking = false

	if s.tool.Eraser {
		return
	}
	if !e.cfg.AsyncCoverage {
		e.reg.OnStrokeEnded(r.id)
		return
	}

	surf := r.Surface()
	if surf == nil {
		Logger().Warn("coverage evaluation skipped", "region", r.id, "error", ErrSurfaceReleased)
		return
	}
	snap, err := surf.Snapshot()
	if err != nil {
		Logger().Warn("coverage evaluation skipped", "region", r.id, "error", err)
		return
	}
	m := &measurement{
		region: r,
		epoch:  r.epoch,
		done:   make(chan struct{}),
	}
	go func(grid *cellGrid) {
		defer close(m.done)
		m.coverage = grid.coverage(snap)
	}(r.grid)
	e.pending = append(e.pending, m)
}

// Pending returns the number of coverage evaluations not committed yet.
func (e *Engine) Pending() int { return len(e.pending) }

// Poll commits the finished coverage evaluations in stroke order, without
// blocking. Nothing is committed while a stroke is in progress. It returns
// the number of regions completed.
func (e *Engine) Poll() int {
	var completed int
	for e.stroke == nil && len(e.pending) > 0 {
		m := e.pending[0]
		select {
		case <-m.done:
		default:
			return completed
		}
		e.pending = e.pending[1:]
		if e.commit(m) {
			completed++
		}
	}
	return completed
}

// Flush waits for every pending coverage evaluation and commits them in
// stroke order. It fails while a stroke is in progress.
func (e *Engine) Flush(ctx context.Context) error {
	if e.stroke != nil {
		return ErrStrokeInProgress
	}
	for len(e.pending) > 0 {
		m := e.pending[0]
		select {
		case <-m.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		e.pending = e.pending[1:]
		e.commit(m)
	}
	return nil
}

// commit applies a measured coverage, unless the region content or its
// live buffer changed since the snapshot was taken.
func (e *Engine) commit(m *measurement) bool {
	r := m.region
	if r.epoch != m.epoch || r.state != Live {
		Logger().Debug("stale coverage discarded", "region", r.id)
		return false
	}
	return e.reg.settle(r, m.coverage)
}
