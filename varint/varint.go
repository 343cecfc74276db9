// Package varint implements the corpus's BER-like variable-length integer
// stream (spec §4.1): each integer is encoded most-significant-byte first,
// seven data bits per byte, with the high bit marking "more bytes follow".
// This is NOT the same bit layout as encoding/binary's Uvarint (which is
// little-endian with the continuation bit on the low-order end), so it
// can't be built on the stdlib helper.
package varint

import "github.com/worldofcode/wocread/wocerr"

// Decode unpacks buf into the list of non-negative integers it encodes.
// Empty input yields an empty, non-nil slice.
func Decode(buf []byte) ([]uint64, error) {
	out := make([]uint64, 0)
	var acc uint64
	inProgress := false
	for _, b := range buf {
		acc = (acc << 7) | uint64(b&0x7f)
		inProgress = true
		if b&0x80 == 0 {
			out = append(out, acc)
			acc = 0
			inProgress = false
		}
	}
	if inProgress {
		return nil, wocerr.ErrDecodeCorrupt
	}
	return out, nil
}

// Encode packs vals into the wire format Decode reads back.
func Encode(vals []uint64) []byte {
	out := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		out = append(out, encodeOne(v)...)
	}
	return out
}

func encodeOne(v uint64) []byte {
	// Collect 7-bit groups, least significant first, then emit MSB-first.
	var groups [10]byte
	n := 0
	groups[n] = byte(v & 0x7f)
	n++
	v >>= 7
	for v > 0 {
		groups[n] = byte(v & 0x7f)
		n++
		v >>= 7
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b := groups[n-1-i]
		if i < n-1 {
			b |= 0x80
		}
		out[i] = b
	}
	return out
}
