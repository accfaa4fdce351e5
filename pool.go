package daub

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrRegionCompleted is returned when activating a completed region.
	ErrRegionCompleted = errors.New("region is completed")
	// ErrRegionBusy reports a region frozen or evaluated in the middle of a stroke.
	ErrRegionBusy = errors.New("region is being painted")
	// ErrNotLive is returned when freezing a region without a live surface.
	ErrNotLive = errors.New("region is not live")
	// ErrCorruptBake is returned when a baked image cannot be restored.
	ErrCorruptBake = errors.New("corrupt baked image")
)

// PoolStats describes the resources held by a Pool.
type PoolStats struct {
	// LiveSurfaces is the number of allocated raster buffers: 0 or 1.
	LiveSurfaces int
	// LiveBytes is the size of the live raster buffer.
	LiveBytes int
	// BakedBytes is the compressed size of every baked image.
	BakedBytes int
	// Freezes and Thaws count the transitions since the pool was created.
	Freezes, Thaws int
}

// Pool makes sure at most one region owns a writable surface at a time.
// Every other touched region is frozen into a compressed baked image.
type Pool struct {
	live  *Region
	stats PoolStats
}

// NewPool creates an empty surface pool.
func NewPool() *Pool {
	return &Pool{}
}

// Live returns the region currently owning the live surface, if any.
func (p *Pool) Live() *Region { return p.live }

// Stats returns the current resource usage.
func (p *Pool) Stats() PoolStats {
	st := p.stats
	st.LiveSurfaces, st.LiveBytes = 0, 0
	if p.live != nil && p.live.surface != nil && !p.live.surface.Released() {
		st.LiveSurfaces = 1
		st.LiveBytes = len(p.live.surface.img.Pix)
	}
	return st
}

// Activate makes r the live region, freezing the previous one first.
// Activating the live region is a no-op.
func (p *Pool) Activate(r *Region) error {
	switch {
	case r.state == Completed:
		return fmt.Errorf("cannot activate %q: %w", r.id, ErrRegionCompleted)
	case p.live == r:
		return nil
	}
	if p.live != nil {
		if err := p.Freeze(p.live); err != nil {
			return err
		}
	}
	return p.Thaw(r)
}

// Freeze bakes the content of the live region r clipped to its silhouette
// and releases the raster buffer.
func (p *Pool) Freeze(r *Region) error {
	switch {
	case r.stroking:
		return fmt.Errorf("cannot freeze %q: %w", r.id, ErrRegionBusy)
	case r.state != Live || r.Surface() == nil:
		return fmt.Errorf("cannot freeze %q: %w", r.id, ErrNotLive)
	}
	p.bake(r)
	r.state = Frozen
	r.epoch++
	p.stats.Freezes++

	Logger().Debug("region frozen", "region", r.id, "baked_bytes", len(r.baked))
	return nil
}

// Thaw allocates a new live surface for r, restoring the baked content.
// It fails while another region is live; Activate switches regions.
func (p *Pool) Thaw(r *Region) error {
	switch {
	case r.state == Completed:
		return fmt.Errorf("cannot thaw %q: %w", r.id, ErrRegionCompleted)
	case r.state == Live:
		return nil
	case p.live != nil:
		return fmt.Errorf("cannot thaw %q: %q is live", r.id, p.live.id)
	}
	img, err := unbake(r.baked, r.mask.Bounds())
	if err != nil {
		return fmt.Errorf("cannot thaw %q: %w", r.id, err)
	}
	s := newSurface(r.mask, img)

	p.stats.BakedBytes -= len(r.baked)
	r.baked = nil
	r.surface = s
	r.state = Live
	r.epoch++
	p.live = r
	p.stats.Thaws++

	Logger().Debug("region thawed", "region", r.id)
	return nil
}

// Retire bakes the content of a completed region and releases its buffer.
// Retiring a region without a live buffer is a no-op.
func (p *Pool) Retire(r *Region) error {
	if r.state != Completed {
		return fmt.Errorf("cannot retire %q: region is %s", r.id, r.state)
	}
	if r.Surface() == nil {
		return nil
	}
	p.bake(r)
	r.epoch++
	return nil
}

// bake clips and compresses the live content of r, then releases the buffer.
func (p *Pool) bake(r *Region) {
	s := r.surface
	s.clip()
	r.baked = compress(s.img.Pix)
	s.release()
	r.surface = nil

	p.stats.BakedBytes += len(r.baked)
	if p.live == r {
		p.live = nil
	}
}

// unbake restores a baked image. Missing content reads as transparent.
func unbake(baked []byte, bounds image.Rectangle) (*image.NRGBA, error) {
	img := image.NewNRGBA(bounds)
	if len(baked) == 0 {
		return img, nil
	}
	pix, err := decompress(baked, img.Pix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBake, err)
	}
	if len(pix) != len(img.Pix) {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrCorruptBake, len(pix), len(img.Pix))
	}
	img.Pix = pix
	return img, nil
}

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

func compress(data []byte) []byte {
	enc := zstdEncPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, nil)
	zstdEncPool.Put(enc)
	return out
}

func decompress(data, dst []byte) ([]byte, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, dst[:0])
	zstdDecPool.Put(dec)
	return out, err
}
