package vtf

import "testing"

func TestSniff(t *testing.T) {
	vtfBytes := []byte("VTF\x00\x07\x00\x00\x00")
	pngBytes := []byte("\x89PNG\r\n\x1a\n")
	tests := []struct {
		name string
		file string
		data []byte
		want Kind
	}{
		{"signature wins over extension", "image.png", vtfBytes, VtfImage},
		{"vtf with signature", "brick.vtf", vtfBytes, VtfImage},
		{"spoofed extension", "brick.vtf", pngBytes, GenericImage},
		{"png", "photo.png", []byte{1, 2, 3, 4, 5, 6}, GenericImage},
		{"upper case extension without data", "BRICK.VTF", nil, VtfImage},
		{"vtf extension with short data", "brick.vtf", []byte("VT"), VtfImage},
		{"no extension", "README", nil, GenericImage},
		{"no extension with data", "README", pngBytes, GenericImage},
		{"empty name", "", nil, GenericImage},
		{"trailing dot", "brick.", nil, GenericImage},
		{"vtf directory, other ext", "materials.vtf/brick.tga", nil, GenericImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.file, tt.data); got != tt.want {
				t.Fatalf("Sniff(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	for name, want := range map[string]string{
		"a.VTF":        ".vtf",
		"dir/b.png":    ".png",
		"noext":        "",
		"":             "",
		"archive.t.gz": ".gz",
	} {
		if got := Extension(name); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", name, got, want)
		}
	}
}
