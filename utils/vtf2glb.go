package utils

import (
	"fmt"
	"os"

	"github.com/bsoldiers/vtview/api"
)

// RunVTF2GLB writes a .glb with one quad textured by the input image.
func RunVTF2GLB(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	out, err := api.ToGLB(inPath, data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	return os.WriteFile(outPath, out, 0644)
}
