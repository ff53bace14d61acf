package vtf

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Signature is the four byte tag at offset 0 of every VTF file.
const Signature = "VTF\x00"

// HeaderSize is the size of the fixed header that precedes the optional
// resource dictionary. Buffers shorter than this are never parsed.
const HeaderSize = 80

// Flags is the VTF texture flag bitfield.
type Flags uint32

const (
	FlagPointSample       Flags = 0x00000001
	FlagTrilinear         Flags = 0x00000002
	FlagClampS            Flags = 0x00000004
	FlagClampT            Flags = 0x00000008
	FlagAnisotropic       Flags = 0x00000010
	FlagHintDXT5          Flags = 0x00000020
	FlagPWLCorrected      Flags = 0x00000040
	FlagNormal            Flags = 0x00000080
	FlagNoMip             Flags = 0x00000100
	FlagNoLOD             Flags = 0x00000200
	FlagAllMips           Flags = 0x00000400
	FlagProcedural        Flags = 0x00000800
	FlagOneBitAlpha       Flags = 0x00001000
	FlagEightBitAlpha     Flags = 0x00002000
	FlagEnvMap            Flags = 0x00004000
	FlagRenderTarget      Flags = 0x00008000
	FlagDepthRenderTarget Flags = 0x00010000
	FlagNoDebugOverride   Flags = 0x00020000
	FlagSingleCopy        Flags = 0x00040000
	FlagSRGB              Flags = 0x00080000
	FlagNoDepthBuffer     Flags = 0x00800000
	FlagClampU            Flags = 0x02000000
	FlagVertexTexture     Flags = 0x04000000
	FlagSSBump            Flags = 0x08000000
	FlagBorder            Flags = 0x20000000
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{FlagPointSample, "POINTSAMPLE"},
	{FlagTrilinear, "TRILINEAR"},
	{FlagClampS, "CLAMPS"},
	{FlagClampT, "CLAMPT"},
	{FlagAnisotropic, "ANISOTROPIC"},
	{FlagHintDXT5, "HINT_DXT5"},
	{FlagPWLCorrected, "PWL_CORRECTED"},
	{FlagNormal, "NORMAL"},
	{FlagNoMip, "NOMIP"},
	{FlagNoLOD, "NOLOD"},
	{FlagAllMips, "ALL_MIPS"},
	{FlagProcedural, "PROCEDURAL"},
	{FlagOneBitAlpha, "ONEBITALPHA"},
	{FlagEightBitAlpha, "EIGHTBITALPHA"},
	{FlagEnvMap, "ENVMAP"},
	{FlagRenderTarget, "RENDERTARGET"},
	{FlagDepthRenderTarget, "DEPTHRENDERTARGET"},
	{FlagNoDebugOverride, "NODEBUGOVERRIDE"},
	{FlagSingleCopy, "SINGLECOPY"},
	{FlagSRGB, "SRGB"},
	{FlagNoDepthBuffer, "NODEPTHBUFFER"},
	{FlagClampU, "CLAMPU"},
	{FlagVertexTexture, "VERTEXTEXTURE"},
	{FlagSSBump, "SSBUMP"},
	{FlagBorder, "BORDER"},
}

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	rest := f
	for _, n := range flagNames {
		if f&n.f != 0 {
			names = append(names, n.name)
			rest &^= n.f
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// Header is the fixed-layout record at the start of a VTF file.
// Depth is only read from files of version 7.2 or later and NumResources
// from 7.3 or later; otherwise they hold 1 and 0.
type Header struct {
	Signature          [4]byte
	Version            [2]uint32
	HeaderSize         uint32
	Width              uint16
	Height             uint16
	Flags              Flags
	Frames             uint16
	FirstFrame         uint16
	Reflectivity       [3]float32
	BumpmapScale       float32
	HighResImageFormat ImageFormat
	MipmapCount        uint8
	LowResImageFormat  ImageFormat
	LowResImageWidth   uint8
	LowResImageHeight  uint8
	Depth              uint16
	NumResources       uint32
}

// field offsets of the on-disk header
const (
	offSignature    = 0
	offVersion      = 4
	offHeaderSize   = 12
	offWidth        = 16
	offHeight       = 18
	offFlags        = 20
	offFrames       = 24
	offFirstFrame   = 26
	offReflectivity = 32
	offBumpmapScale = 48
	offHighResFmt   = 52
	offMipmapCount  = 56
	offLowResFmt    = 57
	offLowResWidth  = 61
	offLowResHeight = 62
	offDepth        = 63
	offNumResources = 68
)

func isPowerOfTwo(v uint16) bool {
	return v != 0 && v&(v-1) == 0
}

// ParseHeader decodes and validates the fixed header at the start of b.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, malformed("header is %d bytes long, got %d bytes", HeaderSize, len(b))
	}
	if string(b[offSignature:offSignature+4]) != Signature {
		return nil, malformed("file does not start with VTF signature, found %q", b[offSignature:offSignature+4])
	}

	le := binary.LittleEndian
	h := &Header{}
	copy(h.Signature[:], b[offSignature:offSignature+4])
	h.Version[0] = le.Uint32(b[offVersion:])
	h.Version[1] = le.Uint32(b[offVersion+4:])
	h.HeaderSize = le.Uint32(b[offHeaderSize:])
	h.Width = le.Uint16(b[offWidth:])
	h.Height = le.Uint16(b[offHeight:])
	h.Flags = Flags(le.Uint32(b[offFlags:]))
	h.Frames = le.Uint16(b[offFrames:])
	h.FirstFrame = le.Uint16(b[offFirstFrame:])
	for i := range h.Reflectivity {
		h.Reflectivity[i] = math.Float32frombits(le.Uint32(b[offReflectivity+4*i:]))
	}
	h.BumpmapScale = math.Float32frombits(le.Uint32(b[offBumpmapScale:]))
	h.HighResImageFormat = FormatFromWire(le.Uint32(b[offHighResFmt:]))
	h.MipmapCount = b[offMipmapCount]
	h.LowResImageFormat = FormatFromWire(le.Uint32(b[offLowResFmt:]))
	h.LowResImageWidth = b[offLowResWidth]
	h.LowResImageHeight = b[offLowResHeight]

	h.Depth = 1
	if h.AtLeast(7, 2) {
		h.Depth = le.Uint16(b[offDepth:])
	}
	if h.AtLeast(7, 3) {
		h.NumResources = le.Uint32(b[offNumResources:])
	}

	if !isPowerOfTwo(h.Width) || !isPowerOfTwo(h.Height) {
		return nil, malformed("dimensions %dx%d are not powers of two", h.Width, h.Height)
	}
	return h, nil
}

// MarshalBinary encodes h into the 80 byte on-disk layout. Depth and
// NumResources are only written when the version carries them.
func (h *Header) MarshalBinary() ([]byte, error) {
	if !isPowerOfTwo(h.Width) || !isPowerOfTwo(h.Height) {
		return nil, malformed("dimensions %dx%d are not powers of two", h.Width, h.Height)
	}
	le := binary.LittleEndian
	b := make([]byte, HeaderSize)
	copy(b[offSignature:], Signature)
	le.PutUint32(b[offVersion:], h.Version[0])
	le.PutUint32(b[offVersion+4:], h.Version[1])
	le.PutUint32(b[offHeaderSize:], h.HeaderSize)
	le.PutUint16(b[offWidth:], h.Width)
	le.PutUint16(b[offHeight:], h.Height)
	le.PutUint32(b[offFlags:], uint32(h.Flags))
	le.PutUint16(b[offFrames:], h.Frames)
	le.PutUint16(b[offFirstFrame:], h.FirstFrame)
	for i, r := range h.Reflectivity {
		le.PutUint32(b[offReflectivity+4*i:], math.Float32bits(r))
	}
	le.PutUint32(b[offBumpmapScale:], math.Float32bits(h.BumpmapScale))
	le.PutUint32(b[offHighResFmt:], h.HighResImageFormat.Wire())
	b[offMipmapCount] = h.MipmapCount
	le.PutUint32(b[offLowResFmt:], h.LowResImageFormat.Wire())
	b[offLowResWidth] = h.LowResImageWidth
	b[offLowResHeight] = h.LowResImageHeight
	if h.AtLeast(7, 2) {
		le.PutUint16(b[offDepth:], h.Depth)
	}
	if h.AtLeast(7, 3) {
		le.PutUint32(b[offNumResources:], h.NumResources)
	}
	return b, nil
}

// AtLeast reports whether the header version is major.minor or newer.
func (h *Header) AtLeast(major, minor uint32) bool {
	if h.Version[0] != major {
		return h.Version[0] > major
	}
	return h.Version[1] >= minor
}

// VersionString returns the version as "major.minor".
func (h *Header) VersionString() string {
	return fmt.Sprintf("%d.%d", h.Version[0], h.Version[1])
}

// Faces returns the number of faces per frame: 1 for plain textures and
// 6 for environment maps. Environment maps before 7.5 also store a
// spheremap as a seventh face unless firstFrame is 0xFFFF.
func (h *Header) Faces() int {
	if h.Flags&FlagEnvMap == 0 {
		return 1
	}
	if !h.AtLeast(7, 5) && h.FirstFrame != 0xFFFF {
		return 7
	}
	return 6
}

// FrameCount is Frames, treating 0 as a single frame.
func (h *Header) FrameCount() int {
	if h.Frames == 0 {
		return 1
	}
	return int(h.Frames)
}

// MipCount is MipmapCount, treating 0 as a single level.
func (h *Header) MipCount() int {
	if h.MipmapCount == 0 {
		return 1
	}
	return int(h.MipmapCount)
}

// SliceCount is Depth, treating 0 as a single slice.
func (h *Header) SliceCount() int {
	if h.Depth == 0 {
		return 1
	}
	return int(h.Depth)
}

// String is the one-line diagnostic printed when a VTF file is opened.
func (h *Header) String() string {
	return fmt.Sprintf("vtf %s header=%d %dx%d format=%s mips=%d",
		h.VersionString(), h.HeaderSize, h.Width, h.Height, h.HighResImageFormat, h.MipmapCount)
}
