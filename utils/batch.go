package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bsoldiers/vtview/api"
)

// RunBatchVTF2PNG converts every input to outDir/<name>.png. Files are
// read and written in parallel; decoding is serialized by the shared
// decoder. The first error is returned after all inputs are processed.
func RunBatchVTF2PNG(outDir string, inputs []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	start := time.Now()

	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := inputs[i]
			data, err := os.ReadFile(in)
			if err != nil {
				errs[i] = err
				return
			}
			out, err := api.ToPNG(in, data)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", in, err)
				return
			}
			base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			errs[i] = os.WriteFile(filepath.Join(outDir, base+".png"), out, 0644)
		}(i)
	}
	wg.Wait()

	failed := 0
	var first error
	for _, err := range errs {
		if err != nil {
			failed++
			if first == nil {
				first = err
			}
		}
	}
	fmt.Printf("Converted %d/%d files in %s\n", len(inputs)-failed, len(inputs), time.Since(start).Round(time.Millisecond))
	return first
}
