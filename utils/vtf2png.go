package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bsoldiers/vtview/api"
)

// RunVTF2PNG converts a texture (VTF or any generic image) to PNG.
func RunVTF2PNG(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	out, err := api.ToPNG(inPath, data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	return os.WriteFile(outPath, out, 0644)
}

// RunThumb writes a PNG preview that fits in size x size.
func RunThumb(inPath, outPath, size string) error {
	n, err := strconv.Atoi(size)
	if err != nil {
		return fmt.Errorf("invalid size '%s': %w", size, err)
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	out, err := api.Thumbnail(inPath, data, n)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	return os.WriteFile(outPath, out, 0644)
}
