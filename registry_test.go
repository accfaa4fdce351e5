package daub

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

type completion struct {
	id   string
	used ColorSet
}

// cutout returns a fully opaque w×h source image.
func cutout(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	return img
}

// testConfig uses a small hard brush, so that the painted area is easy to predict.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BrushDiameter = 20
	cfg.SoftBrush = false
	return cfg
}

// newTestRegistry registers a 100×100 opaque square at every offset, with
// the ids "A", "B", ... in order.
func newTestRegistry(t *testing.T, cfg Config, offsets ...image.Point) (*Registry, *[]completion) {
	t.Helper()

	var done []completion
	reg := NewRegistry(cfg, func(id string, used ColorSet) {
		done = append(done, completion{id: id, used: used})
	})
	for i, off := range offsets {
		_, err := reg.Register(RegionDef{ID: string(rune('A' + i)), Offset: off}, cutout(100, 100))
		require.NoError(t, err)
	}
	return reg, &done
}

// paintRows lays a horizontal stroke every 10 pixels between the rows y0
// and y1, both included, going from x0 to x1.
func paintRows(e *Engine, x0, x1, y0, y1 float64) {
	for y := y0; ; y += 10 {
		if y > y1 {
			y = y1
		}
		e.HandlePointerDown(x0, y)
		e.HandlePointerMove(x1, y)
		e.HandlePointerUp()
		if y == y1 {
			return
		}
	}
}

func TestRegistry_Register(t *testing.T) {
	assert := assert.New(t)
	reg := NewRegistry(DefaultConfig(), nil)

	r, err := reg.Register(RegionDef{ID: "barn", Offset: image.Pt(10, 20), Scale: 0.5}, cutout(100, 60))
	assert.NoError(err)
	assert.Equal("barn", r.ID())
	assert.Equal(Frozen, r.State())
	assert.Equal(image.Rect(0, 0, 50, 30), r.Mask().Bounds())
	assert.Equal(Transform{Origin: image.Pt(10, 20), Scale: 0.5}, r.Transform())
	assert.Nil(r.Surface())

	_, err = reg.Register(RegionDef{ID: "barn"}, cutout(10, 10))
	assert.ErrorIs(err, ErrDuplicateRegion)

	_, err = reg.Register(RegionDef{}, cutout(10, 10))
	assert.Error(err)

	assert.Len(reg.Regions(), 1)
}

func TestRegistry_MalformedMaskIsNotRegistered(t *testing.T) {
	assert := assert.New(t)
	reg := NewRegistry(DefaultConfig(), nil)

	_, err := reg.Register(RegionDef{ID: "empty"}, image.NewNRGBA(image.Rect(0, 0, 50, 50)))
	assert.ErrorIs(err, ErrMalformedMask)

	_, err = reg.Register(RegionDef{ID: "missing"}, nil)
	assert.ErrorIs(err, ErrMalformedMask)

	// A one pixel line is never sampled by the 32×32 coverage grid.
	line := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(line, image.Rect(0, 50, 100, 51), &image.Uniform{color.White}, image.Point{}, draw.Src)
	_, err = reg.Register(RegionDef{ID: "line"}, line)
	assert.ErrorIs(err, ErrMalformedMask)

	assert.Empty(reg.Regions())
	_, ok := reg.Region("empty")
	assert.False(ok)
}

func TestRegistry_Build(t *testing.T) {
	assert := assert.New(t)
	reg := NewRegistry(DefaultConfig(), nil)

	lvl := &Level{Regions: []RegionDef{
		{ID: "sun", Mask: "sun.png"},
		{ID: "ghost", Mask: "ghost.png"},
		{ID: "cloud", Mask: "missing.png"},
	}}
	assets := AssetMap{
		"sun.png":   cutout(40, 40),
		"ghost.png": image.NewNRGBA(image.Rect(0, 0, 40, 40)),
	}

	err := reg.Build(lvl, assets)
	assert.Error(err)
	assert.ErrorIs(err, ErrMalformedMask)
	assert.Contains(err.Error(), "cloud")

	assert.Len(reg.Regions(), 1)
	_, ok := reg.Region("sun")
	assert.True(ok)
}

func TestRegistry_HitTest(t *testing.T) {
	assert := assert.New(t)
	reg, _ := newTestRegistry(t, testConfig(), image.Pt(0, 0), image.Pt(50, 50))

	// A transparent cutout corner lets the pointer reach the region below.
	holed := cutout(100, 100)
	draw.Draw(holed, image.Rect(0, 0, 20, 20), image.Transparent, image.Point{}, draw.Src)
	_, err := reg.Register(RegionDef{ID: "C", Offset: image.Pt(60, 60)}, holed)
	assert.NoError(err)

	assert.Equal("A", reg.HitTest(10, 10).ID())
	assert.Equal("B", reg.HitTest(55, 55).ID())
	assert.Equal("B", reg.HitTest(65, 65).ID())
	assert.Equal("C", reg.HitTest(85, 85).ID())
	assert.Nil(reg.HitTest(-1, 10))
	assert.Nil(reg.HitTest(300, 300))
}

func TestRegistry_UnknownRegionPanics(t *testing.T) {
	reg, _ := newTestRegistry(t, testConfig(), image.Pt(0, 0))

	assert.Panics(t, func() { _ = reg.Activate("nope") })
	assert.Panics(t, func() { reg.Evaluate("nope") })
	assert.Panics(t, func() { NewEngine(reg).BeginStroke("nope", 0, 0) })
}

func TestRegistry_EvaluateWithoutLiveSurfaceIsSkipped(t *testing.T) {
	assert := assert.New(t)
	reg, done := newTestRegistry(t, testConfig(), image.Pt(0, 0))

	assert.False(reg.Evaluate("A"))
	r, _ := reg.Region("A")
	assert.Equal(Frozen, r.State())
	assert.Empty(*done)
}

func TestRegistry_Partitions(t *testing.T) {
	assert := assert.New(t)
	reg, done := newTestRegistry(t, testConfig(), image.Pt(0, 0), image.Pt(200, 0))
	e := NewEngine(reg)

	assert.Len(reg.Unfinished(), 2)
	assert.Empty(reg.Finished())
	assert.False(reg.IsLevelComplete())

	e.SetColor(red)
	paintRows(e, 0, 99, 0, 99)

	assert.Len(*done, 1)
	assert.Equal("A", (*done)[0].id)

	ids := func(rs []*Region) []string {
		var res []string
		for _, r := range rs {
			res = append(res, r.ID())
		}
		return res
	}
	assert.Equal([]string{"B"}, ids(reg.Unfinished()))
	assert.Equal([]string{"A"}, ids(reg.Finished()))
	finished, total := reg.Progress()
	assert.Equal(1, finished)
	assert.Equal(2, total)
	assert.False(reg.IsLevelComplete())

	paintRows(e, 200, 299, 0, 99)
	assert.Len(*done, 2)
	assert.Empty(reg.Unfinished())
	assert.True(reg.IsLevelComplete())
}

func TestRegistry_Render(t *testing.T) {
	assert := assert.New(t)
	reg, _ := newTestRegistry(t, testConfig(), image.Pt(10, 10))

	require.NoError(t, reg.Activate("A"))
	r, _ := reg.Region("A")
	r.Surface().Fill(red)

	bg := color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	img, err := reg.Render(image.Rect(0, 0, 120, 120), bg)
	assert.NoError(err)
	assert.Equal(image.Rect(0, 0, 120, 120), img.Bounds())
	assert.EqualValues(bg, img.At(5, 5))
	assert.EqualValues(red, img.At(50, 50))
	assert.EqualValues(bg, img.At(115, 115))

	// Frozen content is rendered the same way.
	assert.NoError(reg.Pool().Freeze(r))
	img, err = reg.Render(image.Rect(0, 0, 120, 120), bg)
	assert.NoError(err)
	assert.EqualValues(red, img.At(50, 50))

	// A corrupt bake surfaces as a render error.
	r.baked = []byte("not a zstd frame")
	_, err = reg.Render(image.Rect(0, 0, 120, 120), bg)
	assert.True(errors.Is(err, ErrCorruptBake))
}
