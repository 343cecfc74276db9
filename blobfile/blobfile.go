// Package blobfile reads fixed-offset ranges out of a stacked blob.bin
// shard (spec §4.9, §6): an append-only raw binary file addressed by
// (offset, length) pointers. Unlike hash-table shards, these handles are
// opened per call and released at end of call (§5), so no pooling applies.
package blobfile

import (
	"fmt"
	"io"
	"os"

	"github.com/worldofcode/wocread/wocerr"
)

// ReadAt opens path and reads exactly length bytes starting at offset.
func ReadAt(path string, offset, length uint64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob shard %q: %w", path, wocerr.ErrShardMissing)
		}
		return nil, fmt.Errorf("opening blob shard %q: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, int64(offset))
	if n < len(buf) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading blob shard %q at offset %d: %w", path, offset, err)
	}
	return buf, nil
}
