package vtf

import (
	"path/filepath"
	"strings"
)

// Kind is the result of sniffing a file.
type Kind int

const (
	GenericImage Kind = iota
	VtfImage
)

func (k Kind) String() string {
	if k == VtfImage {
		return "vtf"
	}
	return "generic"
}

// Extension returns the lower-cased extension of name including the dot,
// or "" when name has none.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Sniff classifies a file by its signature bytes, falling back to the
// extension only when data is too short to decide. A .vtf name whose data
// does not start with the signature is treated as a generic image.
func Sniff(name string, data []byte) Kind {
	if len(data) >= len(Signature) {
		if string(data[:len(Signature)]) == Signature {
			return VtfImage
		}
		return GenericImage
	}
	if Extension(name) == ".vtf" {
		return VtfImage
	}
	return GenericImage
}
