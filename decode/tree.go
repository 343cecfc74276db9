package decode

import (
	"bytes"
	"fmt"

	"github.com/valyala/bytebufferpool"

	"github.com/worldofcode/wocread/wocerr"
)

// TreeEntry is one parsed entry of a git tree object (spec §3, §4.7).
type TreeEntry struct {
	Mode     string
	Filename string
	HashHex  string
}

// Tree decodes a concatenated buffer of `mode SP filename NUL hash20`
// entries (spec §4.7) into ordered TreeEntry values. It scans linearly
// with byte-search primitives rather than per-byte loops, per the
// "must not allocate per-byte" requirement, following the buffer-walking
// style of the teacher's compactindexsized query path.
func Tree(buf []byte) ([]TreeEntry, error) {
	entries := make([]TreeEntry, 0)

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	for len(buf) > 0 {
		spaceIdx := bytes.IndexByte(buf, ' ')
		if spaceIdx < 0 {
			return nil, fmt.Errorf("tree entry missing mode separator: %w", wocerr.ErrDecodeCorrupt)
		}
		mode := string(buf[:spaceIdx])
		rest := buf[spaceIdx+1:]

		nulIdx := bytes.IndexByte(rest, 0)
		if nulIdx < 0 {
			return nil, fmt.Errorf("tree entry missing filename terminator: %w", wocerr.ErrDecodeCorrupt)
		}
		filename := decodeStr(rest[:nulIdx])
		rest = rest[nulIdx+1:]

		if len(rest) < 20 {
			return nil, fmt.Errorf("tree entry truncated hash: %w", wocerr.ErrDecodeCorrupt)
		}
		bb.Reset()
		fmt.Fprintf(bb, "%x", rest[:20])

		entries = append(entries, TreeEntry{
			Mode:     mode,
			Filename: filename,
			HashHex:  bb.String(),
		})
		buf = rest[20:]
	}

	return entries, nil
}
