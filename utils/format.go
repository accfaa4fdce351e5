package utils

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
)

// MessageType is a custom type used as a placeholder for various message types.
type MessageType int

// The message types used accross the CLI application.
const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
)

// stderr is the terminal the CLI messages are decorated for. On a non-terminal
// writer termenv degrades to the plain ASCII profile and strips the colors.
var stderr = termenv.NewOutput(os.Stderr)

// DecorateText shows the message types in different colors.
func DecorateText(s string, msgType MessageType) string {
	style := stderr.String(s)
	switch msgType {
	case StatusMessage:
		style = style.Foreground(termenv.ANSICyan)
	case SuccessMessage:
		style = style.Foreground(termenv.ANSIGreen)
	case ErrorMessage:
		style = style.Foreground(termenv.ANSIRed)
	default:
		return s
	}
	return style.String()
}

// FormatTime formats time.Duration output to a human readable value.
func FormatTime(d time.Duration) string {
	if d.Seconds() < 60.0 {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d.Minutes() < 60.0 {
		return fmt.Sprintf("%dm %.2fs", int64(d.Minutes()), math.Mod(d.Seconds(), 60))
	}
	return fmt.Sprintf("%dh %dm %.2fs",
		int64(d.Hours()), int64(math.Mod(d.Minutes(), 60)), math.Mod(d.Seconds(), 60))
}

// HexToRGBA converts a color expressed as a hexadecimal string to a color.NRGBA.
// The accepted forms are "#rgb", "#rrggbb", "#rrggbbaa" and the "0x" prefixed
// variants of the last two. Missing alpha means fully opaque.
func HexToRGBA(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// RGBAToHex is the inverse of HexToRGBA. The alpha component is omitted
// for opaque colors.
func RGBAToHex(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
