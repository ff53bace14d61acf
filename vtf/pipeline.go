package vtf

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// ImageLibrary is the handle-based imaging library the decode pipeline
// drives. Implementations keep a single bound image, so a whole
// create/bind/load/convert sequence must run under the library's own
// lock. Decoder holds it for every decode, which serializes all Decoders
// sharing one library.
type ImageLibrary interface {
	sync.Locker

	Initialize() error
	CreateImage() (uint32, error)
	BindImage(handle uint32) error
	DeleteImage(handle uint32)

	// Load parses a whole VTF file into the bound image.
	Load(data []byte) error

	Width() int
	Height() int
	Format() ImageFormat
	// Data returns the raw bytes of one image of the bound file.
	Data(frame, face, slice, mip int) ([]byte, error)

	Convert(src, dst []byte, w, h int, from, to ImageFormat) error
	LastError() string
}

// Stats counts decode outcomes.
type Stats struct {
	Decodes   uint64
	Failures  uint64
	CacheHits uint64
}

// Decoder runs the VTF decode pipeline. Decodes are serialized on the
// library lock, so any number of Decoders may share one ImageLibrary.
type Decoder struct {
	mu    sync.Mutex
	lib   ImageLibrary
	ready bool
	pool  BufferPool
	cache *Cache
	log   *log.Logger
	stats Stats
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the sink for per-file diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(d *Decoder) { d.log = l }
}

// WithPool sets the pool destination buffers are taken from.
func WithPool(p BufferPool) Option {
	return func(d *Decoder) { d.pool = p }
}

// WithCache enables the decoded buffer cache.
func WithCache(c *Cache) Option {
	return func(d *Decoder) { d.cache = c }
}

func NewDecoder(lib ImageLibrary, opts ...Option) *Decoder {
	d := &Decoder{
		lib:  lib,
		pool: NewBufferPool(),
		log:  log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Stats returns a snapshot of the decode counters.
func (d *Decoder) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// DecodeFile reads path and decodes it as a VTF file.
func (d *Decoder) DecodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return d.Decode(data)
}

// Decode converts a whole VTF file to an RGB888 image. The returned image
// is owned by the caller; on error no image is returned.
func (d *Decoder) Decode(data []byte) (*Image, error) {
	h, err := ParseHeader(data)
	if err != nil {
		d.mu.Lock()
		d.stats.Failures++
		d.mu.Unlock()
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.log.Printf("%s flags=%s", h, h.Flags)
	if d.cache != nil {
		if img, ok := d.cache.Get(data); ok {
			d.stats.CacheHits++
			return img, nil
		}
	}

	img, err := d.decodeLocked(h, data)
	if err != nil {
		d.stats.Failures++
		d.log.Printf("decode failed: %v", err)
		return nil, err
	}
	d.stats.Decodes++
	if d.cache != nil {
		if err := d.cache.Put(data, img); err != nil {
			d.log.Printf("cache: %v", err)
		}
	}
	return img, nil
}

func (d *Decoder) decodeLocked(h *Header, data []byte) (*Image, error) {
	d.lib.Lock()
	defer d.lib.Unlock()

	if !d.ready {
		if err := d.lib.Initialize(); err != nil {
			return nil, &LoadError{Msg: d.lastError(err)}
		}
		d.ready = true
	}

	handle, err := d.lib.CreateImage()
	if err != nil {
		return nil, &LoadError{Msg: d.lastError(err)}
	}
	defer d.lib.DeleteImage(handle)
	if err := d.lib.BindImage(handle); err != nil {
		return nil, &LoadError{Msg: d.lastError(err)}
	}
	if err := d.lib.Load(data); err != nil {
		return nil, &LoadError{Msg: d.lastError(err)}
	}

	w, hgt, from := d.lib.Width(), d.lib.Height(), d.lib.Format()
	if w != int(h.Width) || hgt != int(h.Height) {
		return nil, &ConversionError{Msg: fmt.Sprintf("library reports %dx%d, header %dx%d", w, hgt, h.Width, h.Height)}
	}
	src, err := d.lib.Data(0, 0, 0, 0)
	if err != nil {
		return nil, &ConversionError{Msg: d.lastError(err)}
	}
	n := ComputeImageSize(w, hgt, 1, FormatRGB888)
	dst := d.pool.Get(n)
	if err := d.lib.Convert(src, dst, w, hgt, from, FormatRGB888); err != nil {
		d.pool.Put(dst)
		return nil, &ConversionError{Msg: d.lastError(err)}
	}
	return NewImage(dst, int(h.Width), int(h.Height)), nil
}

func (d *Decoder) lastError(err error) string {
	if msg := d.lib.LastError(); msg != "" {
		return msg
	}
	return err.Error()
}
