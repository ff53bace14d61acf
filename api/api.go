package api

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/bsoldiers/vtview/vtf"
	"github.com/bsoldiers/vtview/vtflib"
)

var (
	decoderMu sync.Mutex
	decoder   = vtf.NewDecoder(vtflib.Default())
)

// SetDecoder replaces the decoder used for VTF data. Decoders over the
// same library, including vtflib.Default, are serialized by that
// library's lock.
func SetDecoder(d *vtf.Decoder) {
	decoderMu.Lock()
	decoder = d
	decoderMu.Unlock()
}

// Decoder returns the shared VTF decoder.
func Decoder() *vtf.Decoder {
	decoderMu.Lock()
	defer decoderMu.Unlock()
	return decoder
}

// Sniff classifies a file by content, using name only for short data.
func Sniff(name string, data []byte) vtf.Kind {
	return vtf.Sniff(name, data)
}

// Open decodes VTF data through the shared decoder and anything else
// through the standard image decoders.
func Open(name string, data []byte) (image.Image, error) {
	if vtf.Sniff(name, data) == vtf.VtfImage {
		img, err := Decoder().Decode(data)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	img, _, err := vtf.DecodeGeneric(data)
	return img, err
}

// Info describes a VTF header and its resource dictionary.
func Info(data []byte) (string, error) {
	h, err := vtf.ParseHeader(data)
	if err != nil {
		return "", err
	}
	res, err := vtf.ParseResources(data, h)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "signature:   %q\n", h.Signature[:])
	fmt.Fprintf(&b, "version:     %s\n", h.VersionString())
	fmt.Fprintf(&b, "header size: %d\n", h.HeaderSize)
	fmt.Fprintf(&b, "size:        %dx%d depth %d\n", h.Width, h.Height, h.SliceCount())
	fmt.Fprintf(&b, "format:      %s\n", h.HighResImageFormat)
	fmt.Fprintf(&b, "flags:       %s\n", h.Flags)
	fmt.Fprintf(&b, "frames:      %d (first %d)\n", h.FrameCount(), h.FirstFrame)
	fmt.Fprintf(&b, "faces:       %d\n", h.Faces())
	fmt.Fprintf(&b, "mipmaps:     %d\n", h.MipCount())
	if h.LowResImageFormat.Valid() {
		fmt.Fprintf(&b, "thumbnail:   %s %dx%d\n", h.LowResImageFormat, h.LowResImageWidth, h.LowResImageHeight)
	} else {
		fmt.Fprintf(&b, "thumbnail:   none\n")
	}
	fmt.Fprintf(&b, "reflectivity: %.3f %.3f %.3f\n", h.Reflectivity[0], h.Reflectivity[1], h.Reflectivity[2])
	fmt.Fprintf(&b, "bumpmap scale: %g\n", h.BumpmapScale)
	for _, r := range res {
		if r.Inline() {
			fmt.Fprintf(&b, "resource %s: value 0x%08x\n", r.Tag, r.Data)
		} else {
			fmt.Fprintf(&b, "resource %s: offset %d\n", r.Tag, r.Data)
		}
	}
	return b.String(), nil
}

// ToPNG decodes any supported input and encodes it as PNG.
func ToPNG(name string, data []byte) ([]byte, error) {
	img, err := Open(name, data)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// Thumbnail decodes the input and scales it to fit in size x size.
func Thumbnail(name string, data []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %d", size)
	}
	img, err := Open(name, data)
	if err != nil {
		return nil, err
	}
	return encodePNG(vtf.Scale(img, size))
}

func encodePNG(img image.Image) ([]byte, error) {
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// ToGLB decodes the input and returns a .glb holding a single quad
// textured with the image, sized to its aspect ratio with height 1.
func ToGLB(name string, data []byte) ([]byte, error) {
	img, err := Open(name, data)
	if err != nil {
		return nil, err
	}
	pngBytes, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	hw := float32(bounds.Dx()) / float32(bounds.Dy()) / 2
	positions := [][3]float32{{-hw, -0.5, 0}, {hw, -0.5, 0}, {hw, 0.5, 0}, {-hw, 0.5, 0}}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	uvs := [][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "vtview"
	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	uvAccessor := modeler.WriteTextureCoord(doc, uvs)
	indicesAccessor := modeler.WriteIndices(doc, indices)
	imageIdx, err := modeler.WriteImage(doc, name+".png", "image/png", bytes.NewReader(pngBytes))
	if err != nil {
		return nil, err
	}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(uint32(imageIdx))}}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor:  &[4]float32{1, 1, 1, 1},
		BaseColorTexture: &gltf.TextureInfo{Index: 0},
		MetallicFactor:   gltf.Float(0),
		RoughnessFactor:  gltf.Float(1),
	}
	material := &gltf.Material{Name: name, PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}
	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		material.AlphaMode = gltf.AlphaBlend
	}
	doc.Materials = []*gltf.Material{material}

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION:   uint32(posAccessor),
			gltf.NORMAL:     uint32(normalAccessor),
			gltf.TEXCOORD_0: uint32(uvAccessor),
		},
		Indices:  gltf.Index(uint32(indicesAccessor)),
		Material: gltf.Index(0),
	}
	doc.Meshes = []*gltf.Mesh{{Name: "Texture", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
