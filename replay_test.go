package daub

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_Strokes(t *testing.T) {
	assert := assert.New(t)
	reg, done := newTestRegistry(t, testConfig(), image.Pt(0, 0), image.Pt(200, 0))
	e := NewEngine(reg)

	var script []Action
	script = append(script, Action{Op: OpColor, Color: "#0000ff"})
	for y := 0.0; y <= 100; y += 10 {
		script = append(script,
			Action{Op: OpDown, X: 200, Y: y},
			Action{Op: OpMove, X: 299, Y: y},
			Action{Op: OpUp},
		)
	}
	script = append(script,
		Action{Op: OpEraser},
		Action{Op: OpDown, X: 10, Y: 10},
		Action{Op: OpMove, X: 50, Y: 10},
	)

	require.NoError(t, Replay(e, script))
	assert.False(e.IsPainting())
	assert.True(e.Tool().Eraser)
	assert.Equal(blue, e.Tool().Color)

	require.Len(t, *done, 1)
	assert.Equal("B", (*done)[0].id)
	assert.True((*done)[0].used.Has(blue))

	a, _ := reg.Region("A")
	assert.Zero(a.UsedColors().Len())
}

func TestReplay_InvalidAction(t *testing.T) {
	reg, _ := newTestRegistry(t, testConfig(), image.Pt(0, 0))
	e := NewEngine(reg)

	err := Replay(e, []Action{{Op: OpDown, X: 10, Y: 10}, {Op: "jump"}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "#1")

	err = Replay(e, []Action{{Op: OpColor, Color: "#12"}})
	assert.Error(t, err)
}
