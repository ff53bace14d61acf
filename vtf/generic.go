package vtf

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeGeneric decodes a non-VTF image with the registered image
// decoders (png, jpeg, gif, bmp, tiff, webp). It returns the format name
// reported by the decoder.
func DecodeGeneric(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, format, &DecodeError{Format: format, Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, &DecodeError{Format: format, Err: err}
	}
	return img, format, nil
}

// ToRGB flattens any image into an RGB888 Image, dropping alpha.
func ToRGB(src image.Image) *Image {
	if m, ok := src.(*Image); ok {
		return m
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return fromRGBA(rgba)
}

// Scale resizes src to fit within size x size, keeping the aspect ratio.
func Scale(src image.Image, size int) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h && w > size {
		h = max(1, h*size/w)
		w = size
	} else if h > w && h > size {
		w = max(1, w*size/h)
		h = size
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(rgba, rgba.Bounds(), src, b, draw.Src, nil)
	return fromRGBA(rgba)
}

func fromRGBA(m *image.RGBA) *Image {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	pix := make([]byte, 3*w*h)
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride:]
		out := pix[3*w*y:]
		for x := 0; x < w; x++ {
			out[3*x+0] = row[4*x+0]
			out[3*x+1] = row[4*x+1]
			out[3*x+2] = row[4*x+2]
		}
	}
	return NewImage(pix, w, h)
}
