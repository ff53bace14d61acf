package vtf

import (
	"image"
	"image/color"
	"sync"
)

// Image is a decoded RGB888 buffer: Width*Height triplets, row-major,
// with no padding between rows. HasAlpha is always false.
type Image struct {
	Pix           []byte
	Width         int
	Height        int
	Stride        int
	BitsPerSample int
	HasAlpha      bool
}

// NewImage wraps pix as a w x h RGB888 image. pix must hold at least
// 3*w*h bytes.
func NewImage(pix []byte, w, h int) *Image {
	return &Image{
		Pix:           pix[:3*w*h],
		Width:         w,
		Height:        h,
		Stride:        3 * w,
		BitsPerSample: 8,
	}
}

func (m *Image) ColorModel() color.Model { return color.RGBAModel }

func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

func (m *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.RGBA{}
	}
	i := y*m.Stride + 3*x
	return color.RGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xff}
}

// RGBA returns an opaque *image.RGBA copy of m.
func (m *Image) RGBA() *image.RGBA {
	dst := image.NewRGBA(m.Bounds())
	for y := 0; y < m.Height; y++ {
		src := m.Pix[y*m.Stride : y*m.Stride+m.Stride]
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < m.Width; x++ {
			row[4*x+0] = src[3*x+0]
			row[4*x+1] = src[3*x+1]
			row[4*x+2] = src[3*x+2]
			row[4*x+3] = 0xff
		}
	}
	return dst
}

// BufferPool hands out destination buffers to the decode pipeline. A
// buffer taken with Get is either returned to the caller inside an Image
// or given back with Put, never both.
type BufferPool interface {
	Get(n int) []byte
	Put(b []byte)
}

type syncPool struct {
	p sync.Pool
}

// NewBufferPool returns a BufferPool backed by sync.Pool.
func NewBufferPool() BufferPool { return &syncPool{} }

func (s *syncPool) Get(n int) []byte {
	if v, ok := s.p.Get().(*[]byte); ok && cap(*v) >= n {
		return (*v)[:n]
	}
	return make([]byte, n)
}

func (s *syncPool) Put(b []byte) {
	b = b[:0]
	s.p.Put(&b)
}
