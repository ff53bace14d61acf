package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/bsoldiers/vtview/vtf"
)

// NoiseSize is the edge length of generated noise textures.
const NoiseSize = 64

// generateNoiseTexture builds a 7.2 BGR888 file with a full mip chain where
// the given percentage of top-level pixels hold a random color and the
// rest are black. Smaller mips are filled with gray.
func generateNoiseTexture(percentage float64, r *rand.Rand) ([]byte, error) {
	percentage = min(max(percentage, 0), 100)
	total := NoiseSize * NoiseSize
	want := int(float64(total)*(percentage/100.0) + 0.5)

	mips := 1
	for NoiseSize>>mips > 0 {
		mips++
	}
	h := vtf.Header{
		Version:            [2]uint32{7, 2},
		HeaderSize:         vtf.HeaderSize,
		Width:              NoiseSize,
		Height:             NoiseSize,
		Flags:              vtf.FlagNoLOD,
		Frames:             1,
		BumpmapScale:       1,
		HighResImageFormat: vtf.FormatBGR888,
		MipmapCount:        uint8(mips),
		LowResImageFormat:  vtf.FormatNone,
		Depth:              1,
	}
	out, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	for m := mips - 1; m > 0; m-- {
		d := vtf.MipDimension(NoiseSize, m)
		for i := 0; i < d*d*3; i++ {
			out = append(out, 0x80)
		}
	}

	// partial Fisher-Yates over pixel indexes
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	top := make([]byte, total*3)
	for k := 0; k < want; k++ {
		p := idx[k] * 3
		top[p], top[p+1], top[p+2] = byte(r.Intn(256)), byte(r.Intn(256)), byte(r.Intn(256))
	}
	return append(out, top...), nil
}

// RunGenerateNoiseVTF creates amount .vtf files named 0.vtf..(amount-1).vtf
// in outDir, each with the same fill percentage.
func RunGenerateNoiseVTF(percentage float64, amount int, outDir string) error {
	return RunGenerateNoiseVTFRange(percentage, percentage, amount, outDir)
}

// RunGenerateNoiseVTFRange generates amount .vtf files with a fill
// percentage sampled uniformly in [percentageMin, percentageMax] per file.
func RunGenerateNoiseVTFRange(percentageMin, percentageMax float64, amount int, outDir string) error {
	if amount < 0 {
		amount = 0
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	percentageMin = max(percentageMin, 0)
	percentageMax = min(percentageMax, 100)
	if percentageMax < percentageMin {
		percentageMin, percentageMax = percentageMax, percentageMin
	}

	baseSeed := uint64(time.Now().UnixNano())
	for i := 0; i < amount; i++ {
		const weyl = uint64(0x9e3779b97f4a7c15)
		seed := baseSeed ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(seed & 0x7fffffffffffffff)))

		perc := percentageMin
		if percentageMax > percentageMin {
			perc = percentageMin + r.Float64()*(percentageMax-percentageMin)
		}
		data, err := generateNoiseTexture(perc, r)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d.vtf", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
