package vtflib

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mauserzjeh/dxt"

	"github.com/bsoldiers/vtview/vtf"
)

var packedFormats = map[vtf.ImageFormat]packed{
	vtf.FormatRGB565:   {bits: [4]uint8{5, 6, 5}, dest: [4]int{0, 1, 2, -1}},
	vtf.FormatBGR565:   {bits: [4]uint8{5, 6, 5}, dest: [4]int{2, 1, 0, -1}},
	vtf.FormatBGRX5551: {bits: [4]uint8{5, 5, 5, 1}, dest: [4]int{2, 1, 0, -1}},
	vtf.FormatBGRA5551: {bits: [4]uint8{5, 5, 5, 1}, dest: [4]int{2, 1, 0, 3}},
	vtf.FormatBGRA4444: {bits: [4]uint8{4, 4, 4, 4}, dest: [4]int{2, 1, 0, 3}},
}

// byte order of 8-bit-per-channel formats as indexes into RGBA. A -1
// byte is padding: dropped when decoding, written as 0xff when encoding.
var byteFormats = map[vtf.ImageFormat][]int{
	vtf.FormatRGBA8888: {0, 1, 2, 3},
	vtf.FormatABGR8888: {3, 2, 1, 0},
	vtf.FormatRGB888:   {0, 1, 2},
	vtf.FormatBGR888:   {2, 1, 0},
	vtf.FormatARGB8888: {3, 0, 1, 2},
	vtf.FormatBGRA8888: {2, 1, 0, 3},
	vtf.FormatBGRX8888: {2, 1, 0, -1},
	vtf.FormatUV88:     {0, 1},
	vtf.FormatUVWQ8888: {0, 1, 2, 3},
	vtf.FormatUVLX8888: {0, 1, 2, -1},
}

// toRGBA decodes one w x h image in format f into RGBA8888.
func toRGBA(src []byte, w, h int, f vtf.ImageFormat) ([]byte, error) {
	need := vtf.ComputeImageSize(w, h, 1, f)
	if need == 0 {
		return nil, fmt.Errorf("unsupported source format %s", f)
	}
	if len(src) < need {
		return nil, fmt.Errorf("source holds %d bytes, %s %dx%d needs %d", len(src), f, w, h, need)
	}
	if f.Compressed() {
		return decodeBlocks(src[:need], w, h, f)
	}

	n := w * h
	out := make([]byte, 4*n)
	if order, ok := byteFormats[f]; ok {
		bpp := len(order)
		for i := 0; i < n; i++ {
			px := out[4*i : 4*i+4]
			px[3] = 0xff
			for c, dst := range order {
				if dst >= 0 {
					px[dst] = src[bpp*i+c]
				}
			}
		}
		return out, nil
	}
	if p, ok := packedFormats[f]; ok {
		if err := p.unpack(src, out, n); err != nil {
			return nil, err
		}
		return out, nil
	}

	switch f {
	case vtf.FormatI8:
		for i := 0; i < n; i++ {
			v := src[i]
			out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = v, v, v, 0xff
		}
	case vtf.FormatIA88:
		for i := 0; i < n; i++ {
			v := src[2*i]
			out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = v, v, v, src[2*i+1]
		}
	case vtf.FormatA8:
		for i := 0; i < n; i++ {
			out[4*i+3] = src[i]
		}
	case vtf.FormatRGB888Bluescreen, vtf.FormatBGR888Bluescreen:
		r, b := 0, 2
		if f == vtf.FormatBGR888Bluescreen {
			r, b = 2, 0
		}
		for i := 0; i < n; i++ {
			px := out[4*i : 4*i+4]
			px[0], px[1], px[2], px[3] = src[3*i+r], src[3*i+1], src[3*i+b], 0xff
			if px[0] == 0 && px[1] == 0 && px[2] == 0xff {
				px[0], px[1], px[2], px[3] = 0, 0, 0, 0
			}
		}
	case vtf.FormatRGBA16161616:
		for i := 0; i < 4*n; i++ {
			out[i] = byte(binary.LittleEndian.Uint16(src[2*i:]) >> 8)
		}
	case vtf.FormatRGBA16161616F:
		for i := 0; i < 4*n; i++ {
			out[i] = unitToByte(halfToFloat(binary.LittleEndian.Uint16(src[2*i:])))
		}
	default:
		return nil, fmt.Errorf("unsupported source format %s", f)
	}
	return out, nil
}

// decodeBlocks decodes DXT data. Images smaller than a block are decoded
// at block size and cropped.
func decodeBlocks(src []byte, w, h int, f vtf.ImageFormat) ([]byte, error) {
	bw, bh := (w+3)&^3, (h+3)&^3
	var (
		rgba []byte
		err  error
	)
	switch f {
	case vtf.FormatDXT1, vtf.FormatDXT1OneBitAlpha:
		rgba, err = dxt.DecodeDXT1(src, uint(bw), uint(bh))
	case vtf.FormatDXT3:
		rgba, err = dxt.DecodeDXT3(src, uint(bw), uint(bh))
	case vtf.FormatDXT5:
		rgba, err = dxt.DecodeDXT5(src, uint(bw), uint(bh))
	default:
		return nil, fmt.Errorf("unsupported block format %s", f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f, err)
	}
	if len(rgba) < 4*bw*bh {
		return nil, fmt.Errorf("%s: decoded %d bytes, want %d", f, len(rgba), 4*bw*bh)
	}
	if bw == w && bh == h {
		return rgba[:4*w*h], nil
	}
	out := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		copy(out[4*w*y:4*w*(y+1)], rgba[4*bw*y:])
	}
	return out, nil
}

// fromRGBA packs RGBA8888 pixels into dst in format f.
func fromRGBA(rgba, dst []byte, w, h int, f vtf.ImageFormat) error {
	need := vtf.ComputeImageSize(w, h, 1, f)
	if need == 0 || f.Compressed() {
		return fmt.Errorf("unsupported target format %s", f)
	}
	if len(dst) < need {
		return fmt.Errorf("destination holds %d bytes, %s %dx%d needs %d", len(dst), f, w, h, need)
	}
	order, ok := byteFormats[f]
	if !ok || f == vtf.FormatUV88 {
		return fmt.Errorf("unsupported target format %s", f)
	}
	bpp := len(order)
	for i := 0; i < w*h; i++ {
		px := rgba[4*i : 4*i+4]
		for c, src := range order {
			if src >= 0 {
				dst[bpp*i+c] = px[src]
			} else {
				dst[bpp*i+c] = 0xff
			}
		}
	}
	return nil
}

func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff
	switch {
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal
		f := float32(frac) / 1024 / (1 << 14)
		if sign != 0 {
			return -f
		}
		return f
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
}

func unitToByte(f float32) byte {
	switch {
	case f != f || f <= 0:
		return 0
	case f >= 1:
		return 0xff
	}
	return byte(f*255 + 0.5)
}
