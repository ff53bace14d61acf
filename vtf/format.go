package vtf

import "strconv"

// ImageFormat is the VTF pixel-format enumeration. It is stored on disk as an
// unsigned 32-bit value; FormatNone is 0xFFFFFFFF.
type ImageFormat int32

const (
	FormatNone ImageFormat = -1

	FormatRGBA8888 ImageFormat = iota - 1
	FormatABGR8888
	FormatRGB888
	FormatBGR888
	FormatRGB565
	FormatI8
	FormatIA88
	FormatP8
	FormatA8
	FormatRGB888Bluescreen
	FormatBGR888Bluescreen
	FormatARGB8888
	FormatBGRA8888
	FormatDXT1
	FormatDXT3
	FormatDXT5
	FormatBGRX8888
	FormatBGR565
	FormatBGRX5551
	FormatBGRA4444
	FormatDXT1OneBitAlpha
	FormatBGRA5551
	FormatUV88
	FormatUVWQ8888
	FormatRGBA16161616F
	FormatRGBA16161616
	FormatUVLX8888

	formatCount
)

type formatInfo struct {
	name  string
	bpp   int // bytes per pixel, 0 for block compressed
	block int // bytes per 4x4 block
	alpha bool
}

var formats = [formatCount]formatInfo{
	FormatRGBA8888:         {"RGBA8888", 4, 0, true},
	FormatABGR8888:         {"ABGR8888", 4, 0, true},
	FormatRGB888:           {"RGB888", 3, 0, false},
	FormatBGR888:           {"BGR888", 3, 0, false},
	FormatRGB565:           {"RGB565", 2, 0, false},
	FormatI8:               {"I8", 1, 0, false},
	FormatIA88:             {"IA88", 2, 0, true},
	FormatP8:               {"P8", 1, 0, false},
	FormatA8:               {"A8", 1, 0, true},
	FormatRGB888Bluescreen: {"RGB888_BLUESCREEN", 3, 0, true},
	FormatBGR888Bluescreen: {"BGR888_BLUESCREEN", 3, 0, true},
	FormatARGB8888:         {"ARGB8888", 4, 0, true},
	FormatBGRA8888:         {"BGRA8888", 4, 0, true},
	FormatDXT1:             {"DXT1", 0, 8, false},
	FormatDXT3:             {"DXT3", 0, 16, true},
	FormatDXT5:             {"DXT5", 0, 16, true},
	FormatBGRX8888:         {"BGRX8888", 4, 0, false},
	FormatBGR565:           {"BGR565", 2, 0, false},
	FormatBGRX5551:         {"BGRX5551", 2, 0, false},
	FormatBGRA4444:         {"BGRA4444", 2, 0, true},
	FormatDXT1OneBitAlpha:  {"DXT1_ONEBITALPHA", 0, 8, true},
	FormatBGRA5551:         {"BGRA5551", 2, 0, true},
	FormatUV88:             {"UV88", 2, 0, false},
	FormatUVWQ8888:         {"UVWQ8888", 4, 0, false},
	FormatRGBA16161616F:    {"RGBA16161616F", 8, 0, true},
	FormatRGBA16161616:     {"RGBA16161616", 8, 0, true},
	FormatUVLX8888:         {"UVLX8888", 4, 0, false},
}

// FormatFromWire converts the on-disk value of a format field.
func FormatFromWire(v uint32) ImageFormat { return ImageFormat(int32(v)) }

// Wire returns the on-disk value of f.
func (f ImageFormat) Wire() uint32 { return uint32(int32(f)) }

// Valid reports whether f is a known format other than FormatNone.
func (f ImageFormat) Valid() bool { return f >= 0 && f < formatCount }

func (f ImageFormat) String() string {
	if f == FormatNone {
		return "NONE"
	}
	if !f.Valid() {
		return "ImageFormat(" + strconv.Itoa(int(f)) + ")"
	}
	return formats[f].name
}

// BytesPerPixel is 0 for block-compressed and unknown formats.
func (f ImageFormat) BytesPerPixel() int {
	if !f.Valid() {
		return 0
	}
	return formats[f].bpp
}

// Compressed reports whether f is one of the DXT block formats.
func (f ImageFormat) Compressed() bool {
	return f.Valid() && formats[f].block > 0
}

// HasAlpha reports whether f carries an alpha (or bluescreen) channel.
func (f ImageFormat) HasAlpha() bool {
	return f.Valid() && formats[f].alpha
}

// ComputeImageSize returns the byte size of a w x h x d image in format f.
// Block formats round each dimension up to a whole 4x4 block.
func ComputeImageSize(w, h, d int, f ImageFormat) int {
	if !f.Valid() || w <= 0 || h <= 0 || d <= 0 {
		return 0
	}
	info := formats[f]
	if info.block > 0 {
		bw := (w + 3) / 4
		bh := (h + 3) / 4
		return bw * bh * info.block * d
	}
	return w * h * d * info.bpp
}

// MipDimension returns the size of dim at mip level (minimum 1).
func MipDimension(dim, mip int) int {
	dim >>= uint(mip)
	if dim < 1 {
		return 1
	}
	return dim
}
