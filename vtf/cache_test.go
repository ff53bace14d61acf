package vtf

import (
	"bytes"
	"testing"
)

func gradient(w, h int) *Image {
	pix := make([]byte, 3*w*h)
	for i := range pix {
		pix[i] = byte(i * 7)
	}
	return NewImage(pix, w, h)
}

func TestCacheCodecs(t *testing.T) {
	for _, codec := range []CacheCodec{CacheNone, CacheZlib, CacheZstd, CacheLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			c, err := NewCache(codec, 2)
			if err != nil {
				t.Fatalf("new cache: %v", err)
			}
			defer c.Close()

			src := []byte("source file bytes")
			img := gradient(32, 16)
			if _, ok := c.Get(src); ok {
				t.Fatal("hit on empty cache")
			}
			if err := c.Put(src, img); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, ok := c.Get(src)
			if !ok {
				t.Fatal("miss after put")
			}
			if got.Width != 32 || got.Height != 16 || !bytes.Equal(got.Pix, img.Pix) {
				t.Fatal("cached image differs")
			}
			got.Pix[0] ^= 0xff
			again, _ := c.Get(src)
			if again.Pix[0] != img.Pix[0] {
				t.Fatal("Get returned shared storage")
			}
		})
	}
}

func TestCacheEviction(t *testing.T) {
	c, err := NewCache(CacheNone, 2)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	img := gradient(4, 4)
	for _, src := range []string{"a", "b", "a", "c"} {
		if err := c.Put([]byte(src), img); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	if _, ok := c.Get([]byte("a")); ok {
		t.Fatal("oldest entry not evicted")
	}
	for _, src := range []string{"b", "c"} {
		if _, ok := c.Get([]byte(src)); !ok {
			t.Fatalf("%s evicted", src)
		}
	}
}

func TestParseCacheCodec(t *testing.T) {
	for in, want := range map[string]CacheCodec{"": CacheNone, "ZSTD": CacheZstd, " lz4 ": CacheLZ4, "zlib": CacheZlib} {
		got, err := ParseCacheCodec(in)
		if err != nil || got != want {
			t.Fatalf("ParseCacheCodec(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCacheCodec("brotli"); err == nil {
		t.Fatal("expected error for unknown codec")
	}
	if _, err := NewCache(CacheCodec(9), 1); err == nil {
		t.Fatal("expected error for unknown codec value")
	}
}
