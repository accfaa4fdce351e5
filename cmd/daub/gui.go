package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"github.com/esimov/daub"
	"github.com/esimov/daub/utils"
)

const (
	maxScreenX = 1366
	maxScreenY = 768
)

// palette holds the colors selectable with the digit keys.
var palette = map[string]color.NRGBA{
	"1": {R: 0xe5, G: 0x39, B: 0x35, A: 0xff},
	"2": {R: 0xfb, G: 0x8c, B: 0x00, A: 0xff},
	"3": {R: 0xfd, G: 0xd8, B: 0x35, A: 0xff},
	"4": {R: 0x43, G: 0xa0, B: 0x47, A: 0xff},
	"5": {R: 0x00, G: 0xac, B: 0xc1, A: 0xff},
	"6": {R: 0x1e, G: 0x88, B: 0xe5, A: 0xff},
	"7": {R: 0x8e, G: 0x24, B: 0xaa, A: 0xff},
	"8": {R: 0xd8, G: 0x1b, B: 0x60, A: 0xff},
	"9": {R: 0x6d, G: 0x4c, B: 0x41, A: 0xff},
	"0": {A: 0xff},
}

// shortcuts lists the keys delivered to the window key handler. Without a
// focused handler, key events only reach handlers accepting them.
const shortcuts = key.Set(key.NameEscape + "|E|0|1|2|3|4|5|6|7|8|9")

// Gui is the interactive paint window. Pointer events are forwarded to the
// engine and the composed level is redrawn whenever it changes.
type Gui struct {
	engine *daub.Engine
	bounds image.Rectangle
	bg     color.NRGBA
	title  string

	frame    paint.ImageOp
	dirty    bool
	finished int
}

// NewGUI prepares the window for painting a level.
func NewGUI(engine *daub.Engine, bounds image.Rectangle, bg color.NRGBA, title string) *Gui {
	return &Gui{
		engine: engine,
		bounds: bounds,
		bg:     bg,
		title:  title,
		dirty:  true,
	}
}

// windowSize returns the window dimension, keeping the aspect ratio of
// levels larger than the predefined screen.
func (g *Gui) windowSize() (float64, float64) {
	w, h := float64(g.bounds.Dx()), float64(g.bounds.Dy())
	if w > maxScreenX || h > maxScreenY {
		r := math.Min(maxScreenX/w, maxScreenY/h)
		w, h = w*r, h*r
	}
	return w, h
}

// Run is the core method of the Gio application. It returns when the
// window is closed.
func (g *Gui) Run() error {
	width, height := g.windowSize()
	w := app.NewWindow(
		app.Title(g.title),
		app.Size(unit.Dp(width), unit.Dp(height)),
	)

	var ops op.Ops
	for e := range w.Events() {
		switch e := e.(type) {
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)
			g.handleKeys(w, gtx)
			g.handlePointer(gtx)
			if g.engine.Poll() > 0 {
				g.dirty = true
			}
			g.updateTitle(w)
			g.draw(gtx)
			e.Frame(gtx.Ops)
		case system.DestroyEvent:
			return e.Err
		}
	}
	return nil
}

// scale returns the factor mapping the level canvas onto the window.
func (g *Gui) scale(gtx layout.Context) float32 {
	sx := float32(gtx.Constraints.Max.X) / float32(g.bounds.Dx())
	sy := float32(gtx.Constraints.Max.Y) / float32(g.bounds.Dy())
	return utils.Min(sx, sy)
}

func (g *Gui) handleKeys(w *app.Window, gtx layout.Context) {
	for _, ev := range gtx.Events(&g.title) {
		e, ok := ev.(key.Event)
		if !ok || e.State != key.Press {
			continue
		}
		switch e.Name {
		case key.NameEscape:
			w.Perform(system.ActionClose)
		case "E":
			g.engine.SetEraser()
		default:
			if c, ok := palette[e.Name]; ok {
				g.engine.SetColor(c)
			}
		}
	}
}

func (g *Gui) handlePointer(gtx layout.Context) {
	for _, ev := range gtx.Events(g) {
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		// Positions are delivered in canvas space, the scale transform is
		// active when the input handler is registered.
		x := float64(e.Position.X) + float64(g.bounds.Min.X)
		y := float64(e.Position.Y) + float64(g.bounds.Min.Y)

		switch e.Type {
		case pointer.Press:
			g.engine.HandlePointerDown(x, y)
		case pointer.Drag:
			g.engine.HandlePointerMove(x, y)
		case pointer.Release, pointer.Cancel:
			g.engine.HandlePointerUp()
		}
		g.dirty = true
	}
}

func (g *Gui) draw(gtx layout.Context) {
	if g.dirty {
		img, err := g.engine.Registry().Render(g.bounds, g.bg)
		if err != nil {
			log.Print(utils.DecorateText(fmt.Sprintf("could not render the level: %v", err), utils.ErrorMessage))
		} else {
			g.frame = paint.NewImageOp(img)
		}
		g.dirty = false
	}
	key.InputOp{Tag: &g.title, Keys: shortcuts}.Add(gtx.Ops)

	s := g.scale(gtx)
	defer op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(s, s))).Push(gtx.Ops).Pop()
	defer clip.Rect{Max: g.bounds.Size()}.Push(gtx.Ops).Pop()

	g.frame.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)

	pointer.InputOp{
		Tag:   g,
		Grab:  true,
		Types: pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
	}.Add(gtx.Ops)

	if g.engine.Pending() > 0 {
		op.InvalidateOp{}.Add(gtx.Ops)
	}
}

// updateTitle shows the level progress once a region gets completed.
func (g *Gui) updateTitle(w *app.Window) {
	finished, total := g.engine.Registry().Progress()
	if finished == g.finished {
		return
	}
	g.finished = finished

	title := fmt.Sprintf("%s (%d/%d)", g.title, finished, total)
	if finished == total {
		title = fmt.Sprintf("%s - done, you may close this window!", g.title)
	}
	w.Option(app.Title(title))
}
