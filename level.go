package daub

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/esimov/daub/utils"
	"gopkg.in/yaml.v3"

	_ "golang.org/x/image/webp" // register the webp decoder for cutouts
)

// RegionDef describes a region to be built at level creation.
type RegionDef struct {
	// ID is unique within the level.
	ID string `yaml:"id"`
	// Mask is the asset key of the cutout the silhouette is built from.
	Mask string `yaml:"mask"`
	// Offset is the screen position of the cutout top left corner.
	Offset image.Point `yaml:"offset"`
	// Scale resizes the cutout. Zero means 1.
	Scale float64 `yaml:"scale"`
}

// Level is a set of regions painted on a shared canvas.
type Level struct {
	Name       string      `yaml:"name"`
	Width      int         `yaml:"width"`
	Height     int         `yaml:"height"`
	Background string      `yaml:"background"`
	Regions    []RegionDef `yaml:"regions"`
	// Strokes is an optional script replayed by hosts without a pointer device.
	Strokes []Action `yaml:"strokes"`
}

// LoadLevel decodes a YAML level definition.
func LoadLevel(r io.Reader) (*Level, error) {
	lvl := new(Level)

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(lvl); err != nil {
		return nil, fmt.Errorf("could not decode the level: %w", err)
	}
	if err := lvl.validate(); err != nil {
		return nil, err
	}
	return lvl, nil
}

// LoadLevelFile decodes the YAML level definition stored in path.
func LoadLevelFile(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the level file: %w", err)
	}
	defer f.Close()

	return LoadLevel(f)
}

func (l *Level) validate() error {
	var errs []error
	if l.Width < 0 || l.Height < 0 {
		errs = append(errs, fmt.Errorf("invalid canvas size %dx%d", l.Width, l.Height))
	}
	if len(l.Regions) == 0 {
		errs = append(errs, errors.New("the level has no region"))
	}
	for i, def := range l.Regions {
		if def.ID == "" {
			errs = append(errs, fmt.Errorf("region #%d has no id", i))
		}
		if def.Mask == "" {
			errs = append(errs, fmt.Errorf("region #%d has no mask", i))
		}
	}
	for i, a := range l.Strokes {
		if err := a.validate(); err != nil {
			errs = append(errs, fmt.Errorf("stroke action #%d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Bounds returns the canvas rectangle. A level without an explicit size
// spans the union of its region rectangles once they are registered.
func (l *Level) Bounds(reg *Registry) image.Rectangle {
	if l.Width > 0 && l.Height > 0 {
		return image.Rect(0, 0, l.Width, l.Height)
	}
	var b image.Rectangle
	for _, r := range reg.Regions() {
		b = b.Union(r.Mask().Bounds().Add(r.Transform().Origin))
	}
	return b
}

// AssetSource resolves the mask keys of region definitions to images.
type AssetSource interface {
	Open(key string) (image.Image, error)
}

// DirAssets resolves asset keys to image files relative to a directory.
type DirAssets string

// Open decodes the image file named by key.
func (d DirAssets) Open(key string) (image.Image, error) {
	path := filepath.Join(string(d), filepath.FromSlash(key))
	if err := utils.IsImage(path); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not decode the cutout %q: %w", key, err)
	}
	return img, nil
}

// AssetMap is an in-memory AssetSource.
type AssetMap map[string]image.Image

// Open returns the image registered under key.
func (m AssetMap) Open(key string) (image.Image, error) {
	img, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("unknown asset %q", key)
	}
	return img, nil
}
