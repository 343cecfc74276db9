// Package decode implements the family of value decoders dispatched on a
// map's out-dtype tag (spec §4.6), plus the tree (§4.7) and commit (§4.8)
// object decoders and the decode_str charset fallback they share.
package decode

import (
	"fmt"
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/worldofcode/wocread/lzf"
	"github.com/worldofcode/wocread/varint"
	"github.com/worldofcode/wocread/wocerr"
)

// ShRecord is the decoded form of an "sh" tag value: a time;author text
// record followed by a trailing 20-byte hash.
type ShRecord struct {
	Time    string
	Author  string
	HashHex string
}

// Pointer is the decoded form of an "r" tag value: a stacked-blob pointer.
type Pointer struct {
	HashHex string
	Offset  uint64
	Length  uint64
}

// Value decodes raw bytes per the out-dtype tag (spec §4.6). The returned
// value's concrete type depends on tag:
//
//	"h"    -> []string (hex hashes)
//	"s"    -> []string
//	"cs"   -> []string
//	"cs3"  -> [][3]string
//	"sh"   -> ShRecord
//	"r"    -> Pointer
//	"c?"   -> []byte (raw, caller decodes further — tree/commit)
//
// "hhwww" and any unrecognized tag return wocerr.ErrUnsupported.
func Value(raw []byte, tag string) (any, error) {
	switch tag {
	case "h":
		return hashList(raw)
	case "sh":
		return shRecord(raw)
	case "cs3":
		return triples(raw)
	case "cs":
		return compressedStringList(raw)
	case "s":
		return stringList(raw), nil
	case "r":
		return pointer(raw)
	case "c?":
		return raw, nil
	case "hhwww":
		return nil, wocerr.ErrUnsupported
	default:
		return nil, wocerr.ErrUnsupported
	}
}

func hexOf(b []byte) string {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	fmt.Fprintf(bb, "%x", b)
	return bb.String()
}

func hashList(raw []byte) ([]string, error) {
	if len(raw)%20 != 0 {
		return nil, fmt.Errorf("hash list length %d not a multiple of 20: %w", len(raw), wocerr.ErrDecodeCorrupt)
	}
	out := make([]string, 0, len(raw)/20)
	for i := 0; i < len(raw); i += 20 {
		out = append(out, hexOf(raw[i:i+20]))
	}
	return out, nil
}

func shRecord(raw []byte) (ShRecord, error) {
	// value[:-21] is the observed prefix boundary (one separator byte sits
	// between the prefix and the 20-byte tail) — reproduced exactly per
	// spec §9, not "corrected" to value[:-20].
	if len(raw) < 21 {
		return ShRecord{}, fmt.Errorf("sh value shorter than hash+separator: %w", wocerr.ErrDecodeCorrupt)
	}
	prefix := raw[:len(raw)-21]
	tail := raw[len(raw)-20:]

	fields := strings.SplitN(decodeStr(prefix), ";", 2)
	if len(fields) != 2 {
		return ShRecord{}, fmt.Errorf("sh prefix has %d fields, want 2: %w", len(fields), wocerr.ErrDecodeCorrupt)
	}
	return ShRecord{Time: fields[0], Author: fields[1], HashHex: hexOf(tail)}, nil
}

func triples(raw []byte) ([][3]string, error) {
	plain, err := lzf.Unframe(raw)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(decodeStr(plain), ";")
	if len(fields)%3 != 0 {
		return nil, fmt.Errorf("cs3 field count %d not a multiple of 3: %w", len(fields), wocerr.ErrDecodeCorrupt)
	}
	out := make([][3]string, 0, len(fields)/3)
	for i := 0; i < len(fields); i += 3 {
		out = append(out, [3]string{fields[i], fields[i+1], fields[i+2]})
	}
	return out, nil
}

func compressedStringList(raw []byte) ([]string, error) {
	plain, err := lzf.Unframe(raw)
	if err != nil {
		return nil, err
	}
	return filteredStringList(plain), nil
}

// filteredStringList implements the "cs" split rule: split on ';', drop
// empty fragments and the literal "EMPTY".
func filteredStringList(raw []byte) []string {
	out := make([]string, 0)
	for _, part := range splitBytes(raw, ';') {
		if len(part) == 0 {
			continue
		}
		s := decodeStr(part)
		if s == "EMPTY" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func stringList(raw []byte) []string {
	out := make([]string, 0)
	for _, part := range splitBytes(raw, ';') {
		out = append(out, decodeStr(part))
	}
	return out
}

func splitBytes(raw []byte, sep byte) [][]byte {
	out := make([][]byte, 0)
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == sep {
			out = append(out, raw[start:i])
			start = i + 1
		}
	}
	out = append(out, raw[start:])
	if len(raw) == 0 {
		return [][]byte{raw}
	}
	return out
}

// BlobText renders a fetched blob's raw bytes as text via the decode_str
// fallback chain (spec §4.9: "attempt LZF decompression, then UTF-8-decode").
func BlobText(raw []byte) string {
	return decodeStr(raw)
}

func pointer(raw []byte) (Pointer, error) {
	if len(raw) < 20 {
		return Pointer{}, fmt.Errorf("r value shorter than 20-byte hash: %w", wocerr.ErrDecodeCorrupt)
	}
	hash := raw[:20]
	nums, err := varint.Decode(raw[20:])
	if err != nil {
		return Pointer{}, err
	}
	if len(nums) != 2 {
		return Pointer{}, fmt.Errorf("r value decoded %d integers, want 2: %w", len(nums), wocerr.ErrDecodeCorrupt)
	}
	return Pointer{HashHex: hexOf(hash), Offset: nums[0], Length: nums[1]}, nil
}
