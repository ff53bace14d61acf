package vtf

import (
	"encoding/binary"
	"fmt"
)

// MaxResources is the largest resource dictionary accepted.
const MaxResources = 32

const resourceEntrySize = 8

// ResourceTag identifies a resource dictionary entry.
type ResourceTag [3]byte

var (
	TagLowResImage      = ResourceTag{0x01, 0x00, 0x00}
	TagHighResImage     = ResourceTag{0x30, 0x00, 0x00}
	TagAnimatedParticle = ResourceTag{0x10, 0x00, 0x00}
	TagCRC              = ResourceTag{'C', 'R', 'C'}
	TagLODControl       = ResourceTag{'L', 'O', 'D'}
	TagTextureSettings  = ResourceTag{'T', 'S', 'O'}
	TagKeyValues        = ResourceTag{'K', 'V', 'D'}
)

func (t ResourceTag) String() string {
	switch t {
	case TagLowResImage:
		return "lowres"
	case TagHighResImage:
		return "highres"
	case TagAnimatedParticle:
		return "particle"
	}
	return fmt.Sprintf("%q", t[:])
}

// ResourceNoData marks entries whose Data field holds the value inline
// instead of a file offset.
const ResourceNoData = 0x02

// Resource is one entry of the 7.3+ resource dictionary.
type Resource struct {
	Tag   ResourceTag
	Flags uint8
	Data  uint32
}

// Inline reports whether Data is the resource value rather than an offset.
func (r Resource) Inline() bool { return r.Flags&ResourceNoData != 0 }

// ParseResources reads the resource dictionary that follows the fixed
// header. Files older than 7.3 have none and return a nil slice.
func ParseResources(b []byte, h *Header) ([]Resource, error) {
	if !h.AtLeast(7, 3) || h.NumResources == 0 {
		return nil, nil
	}
	if h.NumResources > MaxResources {
		return nil, malformed("%d resources, max is %d", h.NumResources, MaxResources)
	}
	end := HeaderSize + int(h.NumResources)*resourceEntrySize
	if len(b) < end {
		return nil, malformed("resource dictionary needs %d bytes, got %d", end, len(b))
	}
	res := make([]Resource, h.NumResources)
	for i := range res {
		off := HeaderSize + i*resourceEntrySize
		copy(res[i].Tag[:], b[off:off+3])
		res[i].Flags = b[off+3]
		res[i].Data = binary.LittleEndian.Uint32(b[off+4:])
	}
	return res, nil
}

// MarshalResources encodes a resource dictionary to append after the header.
func MarshalResources(res []Resource) []byte {
	b := make([]byte, len(res)*resourceEntrySize)
	for i, r := range res {
		off := i * resourceEntrySize
		copy(b[off:], r.Tag[:])
		b[off+3] = r.Flags
		binary.LittleEndian.PutUint32(b[off+4:], r.Data)
	}
	return b
}

// FindResource returns the first entry with the given tag.
func FindResource(res []Resource, tag ResourceTag) (Resource, bool) {
	for _, r := range res {
		if r.Tag == tag {
			return r, true
		}
	}
	return Resource{}, false
}
