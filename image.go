package daub

import (
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned when encoding to an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Encode writes img to w. The format is selected by the extension of the
// file behind w; other writers receive a PNG stream.
func Encode(w io.Writer, img image.Image) error {
	ext := ".png"
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		ext = strings.ToLower(filepath.Ext(f.Name()))
	}
	return encodeExt(w, img, ext)
}

func encodeExt(w io.Writer, img image.Image, ext string) error {
	switch ext {
	case "", ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case ".bmp":
		return bmp.Encode(w, img)
	default:
		return ErrUnsupportedFormat
	}
}
