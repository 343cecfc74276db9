package lzf

import (
	"fmt"

	"github.com/worldofcode/wocread/wocerr"
)

// Unframe parses the corpus's LZF frame dialect (spec §4.2) and returns the
// decompressed payload.
//
// The header's bit layout is non-obvious and must be reproduced exactly:
// the first length-extension shift is by two bits, every subsequent shift
// is by one. This differs from a naive reading of the upstream Perl
// dialect (see spec §9).
func Unframe(r []byte) ([]byte, error) {
	if len(r) == 0 {
		return nil, nil
	}
	if r[0] == 0 {
		return r[1:], nil
	}

	start, usize, err := LengthHeader(r)
	if err != nil {
		return nil, err
	}
	if usize == 0 {
		return nil, fmt.Errorf("lzf: frame header claims zero length: %w", wocerr.ErrDecodeCorrupt)
	}

	out, err := Decompress(r[start:], int(usize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), wocerr.ErrDecodeCorrupt)
	}
	return out, nil
}

// TryUnframe attempts §4.2 framing and falls back to the original bytes
// verbatim if the header (or the LZF primitive) reports corruption — the
// "maybe compressed" contract used by the tree/commit/blob read paths
// (spec §4.9, §7).
func TryUnframe(r []byte) []byte {
	out, err := Unframe(r)
	if err != nil {
		return r
	}
	return out
}

// LengthHeader parses just the §4.2 length header, returning the number of
// header bytes consumed and the encoded uncompressed size. It mirrors the
// literal scenarios in spec §8 (lzf_length), which exercise the header
// parser in isolation from decompression.
func LengthHeader(r []byte) (headerLen int, usize uint64, err error) {
	if len(r) == 0 || r[0] == 0 {
		return 0, 0, fmt.Errorf("lzf: no length header: %w", wocerr.ErrDecodeCorrupt)
	}
	lower := r[0]
	mask := byte(0x80)
	start := 1
	for mask != 0 && start < len(r) && lower&mask != 0 {
		if mask == 0x80 {
			mask >>= 2
		} else {
			mask >>= 1
		}
		start++
	}
	// Corrupt iff every length bit of the first byte asked for another
	// extension byte until the mask ran out (mask == 0, after seven
	// extension bytes; shorter headers of up to seven bytes pass), or
	// the header still demands another extension byte (lower&mask != 0)
	// that the buffer can't supply (start >= len(r)).
	if mask == 0 || (lower&mask != 0 && start >= len(r)) {
		return 0, 0, fmt.Errorf("lzf: corrupt frame header: %w", wocerr.ErrDecodeCorrupt)
	}

	u := uint64(lower) & uint64(mask-1)
	for _, b := range r[1:start] {
		u = u<<6 | uint64(b&0x3f)
	}
	return start, u, nil
}
