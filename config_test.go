package daub

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Default(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.InDelta(t, 100/3.5, cfg.stepSize(), 1e-9)
}

func TestConfig_Load(t *testing.T) {
	assert := assert.New(t)

	cfg, err := LoadConfig(strings.NewReader(`
brush_diameter = 40
soft_brush = false
win_threshold = 0.75
async_coverage = true
`))
	require.NoError(t, err)
	assert.Equal(40, cfg.BrushDiameter)
	assert.False(cfg.SoftBrush)
	assert.Equal(0.75, cfg.WinThreshold)
	assert.True(cfg.AsyncCoverage)

	def := DefaultConfig()
	assert.Equal(def.GridSize, cfg.GridSize)
	assert.Equal(def.MaxStamps, cfg.MaxStamps)
	assert.Equal(def.StepDivisor, cfg.StepDivisor)
}

func TestConfig_LoadRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("brush_size = 40\n"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.BrushDiameter = 0
	cfg.WinThreshold = 1
	cfg.GridSize = -2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(err.Error(), "brush diameter")
	assert.Contains(err.Error(), "win threshold")
	assert.Contains(err.Error(), "grid size")

	_, err = LoadConfig(strings.NewReader("step_divisor = 0.5\n"))
	assert.ErrorContains(err, "step divisor")
}
