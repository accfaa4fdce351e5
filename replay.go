package daub

import (
	"fmt"

	"github.com/esimov/daub/utils"
)

// The stroke script operations.
const (
	OpDown   = "down"
	OpMove   = "move"
	OpUp     = "up"
	OpColor  = "color"
	OpEraser = "eraser"
)

// Action is one step of a stroke script. Coordinates are in screen space.
type Action struct {
	Op    string  `yaml:"op"`
	X     float64 `yaml:"x,omitempty"`
	Y     float64 `yaml:"y,omitempty"`
	Color string  `yaml:"color,omitempty"`
}

func (a Action) validate() error {
	switch a.Op {
	case OpDown, OpMove, OpUp, OpEraser:
		return nil
	case OpColor:
		_, err := utils.HexToRGBA(a.Color)
		return err
	}
	return fmt.Errorf("unknown operation %q", a.Op)
}

// Replay feeds the actions to the engine the same way a host forwards
// pointer events and tool selections. A stroke left open by the script is
// ended. Replay stops at the first invalid action.
func Replay(e *Engine, actions []Action) error {
	for i, a := range actions {
		switch a.Op {
		case OpDown:
			e.HandlePointerDown(a.X, a.Y)
		case OpMove:
			e.HandlePointerMove(a.X, a.Y)
		case OpUp:
			e.HandlePointerUp()
		case OpEraser:
			e.SetEraser()
		case OpColor:
			c, err := utils.HexToRGBA(a.Color)
			if err != nil {
				return fmt.Errorf("action #%d: %w", i, err)
			}
			e.SetColor(c)
		default:
			return fmt.Errorf("action #%d: unknown operation %q", i, a.Op)
		}
	}
	e.HandlePointerUp()
	return nil
}
