package daub

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_EncodeToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, cutout(8, 6)))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestImage_EncodeByExtension(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		name  string
		magic []byte
	}{
		{name: "out.png", magic: []byte("\x89PNG")},
		{name: "out.jpg", magic: []byte{0xff, 0xd8}},
		{name: "out.JPEG", magic: []byte{0xff, 0xd8}},
		{name: "out.bmp", magic: []byte("BM")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			f, err := os.Create(path)
			require.NoError(t, err)
			require.NoError(t, Encode(f, cutout(8, 8)))
			require.NoError(t, f.Close())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, tc.magic))
		})
	}
}

func TestImage_UnsupportedFormat(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.gif"))
	require.NoError(t, err)
	defer f.Close()

	assert.ErrorIs(t, Encode(f, cutout(8, 8)), ErrUnsupportedFormat)
}
