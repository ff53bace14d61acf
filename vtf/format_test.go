package vtf

import "testing"

func TestComputeImageSize(t *testing.T) {
	tests := []struct {
		w, h, d int
		f       ImageFormat
		want    int
	}{
		{256, 256, 1, FormatRGB888, 256 * 256 * 3},
		{256, 256, 1, FormatBGRA8888, 256 * 256 * 4},
		{16, 16, 4, FormatRGB565, 16 * 16 * 4 * 2},
		{64, 64, 1, FormatDXT1, 16 * 16 * 8},
		{64, 64, 1, FormatDXT5, 16 * 16 * 16},
		{1, 1, 1, FormatDXT1, 8},
		{2, 8, 1, FormatDXT3, 2 * 16},
		{8, 8, 1, FormatRGBA16161616F, 8 * 8 * 8},
		{8, 8, 1, FormatNone, 0},
		{0, 8, 1, FormatRGB888, 0},
	}
	for _, tt := range tests {
		if got := ComputeImageSize(tt.w, tt.h, tt.d, tt.f); got != tt.want {
			t.Fatalf("ComputeImageSize(%d, %d, %d, %s) = %d, want %d", tt.w, tt.h, tt.d, tt.f, got, tt.want)
		}
	}
}

func TestImageFormatWire(t *testing.T) {
	if f := FormatFromWire(0xFFFFFFFF); f != FormatNone {
		t.Fatalf("0xFFFFFFFF = %v, want NONE", f)
	}
	if FormatNone.Wire() != 0xFFFFFFFF {
		t.Fatalf("NONE wire = %#x", FormatNone.Wire())
	}
	if FormatDXT5 != 15 || FormatUVLX8888 != 26 {
		t.Fatalf("enumeration shifted: DXT5=%d UVLX8888=%d", FormatDXT5, FormatUVLX8888)
	}
	if s := FormatFromWire(99).String(); s != "ImageFormat(99)" {
		t.Fatalf("unknown format string %q", s)
	}
	if !FormatDXT1OneBitAlpha.Compressed() || FormatBGR888.Compressed() {
		t.Fatal("compressed flags wrong")
	}
}

func TestMipDimension(t *testing.T) {
	if MipDimension(256, 0) != 256 || MipDimension(256, 3) != 32 || MipDimension(256, 12) != 1 {
		t.Fatal("unexpected mip dimensions")
	}
}
