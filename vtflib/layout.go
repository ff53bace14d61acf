package vtflib

import (
	"fmt"

	"github.com/bsoldiers/vtview/vtf"
)

var _ vtf.ImageLibrary = (*Library)(nil)

type layout struct {
	highRes int
	lowRes  int
}

// locate finds the thumbnail and the high resolution mip chain. Files
// before 7.3 store them back to back after the header; later files point
// at them from the resource dictionary.
func locate(data []byte, h *vtf.Header) (layout, error) {
	lay := layout{lowRes: -1}
	lowSize := 0
	if h.LowResImageFormat.Valid() && h.LowResImageWidth > 0 && h.LowResImageHeight > 0 {
		lowSize = vtf.ComputeImageSize(int(h.LowResImageWidth), int(h.LowResImageHeight), 1, h.LowResImageFormat)
	}

	if h.AtLeast(7, 3) {
		res, err := vtf.ParseResources(data, h)
		if err != nil {
			return lay, err
		}
		hi, ok := vtf.FindResource(res, vtf.TagHighResImage)
		if !ok || hi.Inline() {
			return lay, fmt.Errorf("no high resolution image resource")
		}
		lay.highRes = int(hi.Data)
		if lo, ok := vtf.FindResource(res, vtf.TagLowResImage); ok && !lo.Inline() && lowSize > 0 {
			lay.lowRes = int(lo.Data)
		}
	} else {
		off := int(h.HeaderSize)
		if off < vtf.HeaderSize {
			return lay, fmt.Errorf("header size %d is smaller than %d", h.HeaderSize, vtf.HeaderSize)
		}
		if lowSize > 0 {
			lay.lowRes = off
			off += lowSize
		}
		lay.highRes = off
	}

	if !h.HighResImageFormat.Valid() {
		return lay, fmt.Errorf("unknown high resolution format %s", h.HighResImageFormat)
	}
	total := chainSize(h)
	if lay.highRes < vtf.HeaderSize || lay.highRes+total > len(data) {
		return lay, fmt.Errorf("image data truncated: %d bytes at %d, file is %d", total, lay.highRes, len(data))
	}
	return lay, nil
}

// mipSize is the size of every frame, face and slice of one mip level.
func mipSize(h *vtf.Header, mip int) int {
	w := vtf.MipDimension(int(h.Width), mip)
	ht := vtf.MipDimension(int(h.Height), mip)
	d := vtf.MipDimension(h.SliceCount(), mip)
	return h.FrameCount() * h.Faces() * vtf.ComputeImageSize(w, ht, d, h.HighResImageFormat)
}

func chainSize(h *vtf.Header) int {
	n := 0
	for m := 0; m < h.MipCount(); m++ {
		n += mipSize(h, m)
	}
	return n
}

// imageOffset returns the position and size of one slice. Mips are stored
// smallest first; inside a mip frames, then faces, then slices.
func imageOffset(h *vtf.Header, base, frame, face, slice, mip int) (int, int, error) {
	switch {
	case mip < 0 || mip >= h.MipCount():
		return 0, 0, fmt.Errorf("mip %d out of range [0,%d)", mip, h.MipCount())
	case frame < 0 || frame >= h.FrameCount():
		return 0, 0, fmt.Errorf("frame %d out of range [0,%d)", frame, h.FrameCount())
	case face < 0 || face >= h.Faces():
		return 0, 0, fmt.Errorf("face %d out of range [0,%d)", face, h.Faces())
	}
	d := vtf.MipDimension(h.SliceCount(), mip)
	if slice < 0 || slice >= d {
		return 0, 0, fmt.Errorf("slice %d out of range [0,%d)", slice, d)
	}

	off := base
	for m := h.MipCount() - 1; m > mip; m-- {
		off += mipSize(h, m)
	}
	w := vtf.MipDimension(int(h.Width), mip)
	ht := vtf.MipDimension(int(h.Height), mip)
	sliceSize := vtf.ComputeImageSize(w, ht, 1, h.HighResImageFormat)
	faceSize := sliceSize * d
	off += (frame*h.Faces()+face)*faceSize + slice*sliceSize
	return off, sliceSize, nil
}
