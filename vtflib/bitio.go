package vtflib

import "io"

// bitReader reads LSB-first bit fields, the packing used by the 16-bit
// pixel formats (a BGR565 pixel is 5 bits of blue, 6 of green, 5 of red
// starting from bit 0 of a little-endian word).
type bitReader struct {
	data []byte
	acc  uint64
	n    uint8
	pos  int
}

func newBitReader(b []byte) *bitReader { return &bitReader{data: b} }

func (r *bitReader) readBits(bits uint8) (uint64, error) {
	for r.n < bits {
		if r.pos >= len(r.data) {
			return 0, io.ErrUnexpectedEOF
		}
		r.acc |= uint64(r.data[r.pos]) << r.n
		r.n += 8
		r.pos++
	}
	mask := uint64((1 << bits) - 1)
	v := r.acc & mask
	r.acc >>= bits
	r.n -= bits
	return v, nil
}

// expand scales an n-bit channel value to 8 bits.
func expand(v uint64, bits uint8) byte {
	top := uint64(1)<<bits - 1
	return byte((v*255 + top/2) / top)
}

// packed describes a 16-bit format as channel widths in bit order.
// Channel indexes are 0=R 1=G 2=B 3=A; -1 skips the field.
type packed struct {
	bits [4]uint8
	dest [4]int
}

func (p packed) unpack(src []byte, dst []byte, pixels int) error {
	br := newBitReader(src)
	for i := 0; i < pixels; i++ {
		px := dst[4*i : 4*i+4]
		px[3] = 0xff
		for f := 0; f < 4 && p.bits[f] > 0; f++ {
			v, err := br.readBits(p.bits[f])
			if err != nil {
				return err
			}
			if c := p.dest[f]; c >= 0 {
				px[c] = expand(v, p.bits[f])
			}
		}
	}
	return nil
}
