package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUtils_MinMaxClamp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5, Max(2, 5))
	assert.Equal(0.5, Clamp(0.5, 0, 1))
	assert.Equal(1.0, Clamp(3.0, 0, 1))
	assert.Equal(0, Clamp(-4, 0, 10))
	assert.Equal(3, Abs(-3))
}

func TestUtils_HexToRGBA(t *testing.T) {
	testCases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{R: 0xff, A: 0xff}},
		{"0x00ff00", color.NRGBA{G: 0xff, A: 0xff}},
		{"#00f", color.NRGBA{B: 0xff, A: 0xff}},
		{"#11223380", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			c, err := HexToRGBA(tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, c)
		})
	}

	_, err := HexToRGBA("#12345")
	assert.Error(t, err)
	_, err = HexToRGBA("#gggggg")
	assert.Error(t, err)
}

func TestUtils_RGBAToHex(t *testing.T) {
	assert.Equal(t, "#ff0000", RGBAToHex(color.NRGBA{R: 0xff, A: 0xff}))
	assert.Equal(t, "#11223380", RGBAToHex(color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}))
}

func TestUtils_FormatTime(t *testing.T) {
	assert.Equal(t, "1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal(t, "2m 5.00s", FormatTime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))
}

func TestUtils_ShouldDetectImageFile(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2)))
	assert.NoError(t, err)

	imgPath := filepath.Join(dir, "cutout.png")
	assert.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0644))
	assert.NoError(t, IsImage(imgPath))

	txtPath := filepath.Join(dir, "notes.txt")
	assert.NoError(t, os.WriteFile(txtPath, []byte("not an image"), 0644))
	assert.Error(t, IsImage(txtPath))
}

func TestUtils_Contains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]int{1, 2}, 3))
}

func TestUtils_DecorateTextKeepsMessage(t *testing.T) {
	assert.Equal(t, "plain", DecorateText("plain", DefaultMessage))
	assert.Contains(t, DecorateText("done", SuccessMessage), "done")
}

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "working", time.Millisecond)
	s.StopMsg = "finished"
	s.Start()
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	s.Stop()

	assert.Contains(t, buf.String(), "finished")
}
