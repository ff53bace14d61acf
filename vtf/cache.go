package vtf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"sync"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CacheCodec selects how cached pixel buffers are compressed.
type CacheCodec uint8

const (
	CacheNone CacheCodec = 0
	CacheZlib CacheCodec = 1
	CacheZstd CacheCodec = 2
	CacheLZ4  CacheCodec = 3
)

func (c CacheCodec) String() string {
	switch c {
	case CacheNone:
		return "none"
	case CacheZlib:
		return "zlib"
	case CacheZstd:
		return "zstd"
	case CacheLZ4:
		return "lz4"
	}
	return fmt.Sprintf("CacheCodec(%d)", uint8(c))
}

// ParseCacheCodec parses a codec name as printed by CacheCodec.String.
func ParseCacheCodec(s string) (CacheCodec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CacheNone, nil
	case "zlib":
		return CacheZlib, nil
	case "zstd":
		return CacheZstd, nil
	case "lz4":
		return CacheLZ4, nil
	}
	return 0, fmt.Errorf("unknown cache codec %q", s)
}

type cacheEntry struct {
	w, h int
	n    int // uncompressed length
	data []byte
}

// Cache keeps decoded images keyed by the xxhash of the source file,
// compressed with the configured codec. The oldest entry is evicted once
// the cache holds max entries.
type Cache struct {
	mu      sync.Mutex
	codec   CacheCodec
	max     int
	entries map[uint64]cacheEntry
	order   []uint64

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCache returns a cache holding up to size entries (at least 1).
func NewCache(codec CacheCodec, size int) (*Cache, error) {
	if size < 1 {
		size = 1
	}
	c := &Cache{codec: codec, max: size, entries: make(map[uint64]cacheEntry)}
	switch codec {
	case CacheNone, CacheZlib, CacheLZ4:
	case CacheZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			enc.Close()
			return nil, err
		}
		c.enc, c.dec = enc, dec
	default:
		return nil, fmt.Errorf("cache codec not supported: %d", codec)
	}
	return c, nil
}

// Close releases codec state.
func (c *Cache) Close() {
	if c.enc != nil {
		c.enc.Close()
	}
	if c.dec != nil {
		c.dec.Close()
	}
}

// Key returns the cache key of a source file.
func Key(src []byte) uint64 { return xxhash.Sum64(src) }

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get returns a fresh copy of the image decoded from src, if cached.
func (c *Cache) Get(src []byte) (*Image, bool) {
	key := Key(src)
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	pix, err := c.decompress(e.data, e.n)
	if err != nil || len(pix) != 3*e.w*e.h {
		return nil, false
	}
	return NewImage(pix, e.w, e.h), true
}

// Put stores img as the decoded form of src.
func (c *Cache) Put(src []byte, img *Image) error {
	data, err := c.compress(img.Pix)
	if err != nil {
		return err
	}
	key := Key(src)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{w: img.Width, h: img.Height, n: len(img.Pix), data: data}
	for len(c.order) > c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	return nil
}

func (c *Cache) compress(pix []byte) ([]byte, error) {
	switch c.codec {
	case CacheNone:
		return bytes.Clone(pix), nil
	case CacheZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
		if _, err := zw.Write(pix); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CacheZstd:
		return c.enc.EncodeAll(pix, nil), nil
	case CacheLZ4:
		var buf bytes.Buffer
		lw := lz4.NewWriter(&buf)
		if _, err := lw.Write(pix); err != nil {
			return nil, err
		}
		if err := lw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("cache codec not supported: %d", c.codec)
}

func (c *Cache) decompress(data []byte, n int) ([]byte, error) {
	switch c.codec {
	case CacheNone:
		return bytes.Clone(data), nil
	case CacheZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return readN(zr, n)
	case CacheZstd:
		return c.dec.DecodeAll(data, make([]byte, 0, n))
	case CacheLZ4:
		return readN(lz4.NewReader(bytes.NewReader(data)), n)
	}
	return nil, fmt.Errorf("cache codec not supported: %d", c.codec)
}

func readN(r io.Reader, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
