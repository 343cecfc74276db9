// Package largefile implements the spill reader for oversized values (spec
// §4.5, §6): values too large for a hash-table shard's per-key limit are
// written to a companion file named in the map's larges table.
package largefile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/worldofcode/wocread/readahead"
	"github.com/worldofcode/wocread/wocerr"
)

// shaHeaderLen is the fixed-length content SHA1 prefixed to every hash-list
// spill file.
const shaHeaderLen = 20

// headerScanLen bounds how far Read scans a text-list spill for its
// optional header-line newline.
const headerScanLen = 256

// Read returns the effective payload bytes of a spill file at path, given
// the map's out-dtype tag. Per §4.5:
//
//   - tag "h": the file is raw bytes; skip the leading 20-byte content SHA1
//     and return the remainder (a concatenation of 20-byte hashes).
//   - any other tag: the file is a gzip stream; decompress fully, then trim
//     an optional header line (if a newline appears in the first 256 bytes).
//
// Read also returns the effective out-dtype tag to decode with: "cs"
// degrades to "s" for spill payloads, since the spill is already
// uncompressed text; every other tag is unchanged.
func Read(path string, outDtype string) (payload []byte, effectiveDtype string, err error) {
	if outDtype == "h" {
		b, err := readHashList(path)
		if err != nil {
			return nil, "", err
		}
		return b, outDtype, nil
	}

	b, err := readTextList(path)
	if err != nil {
		return nil, "", err
	}
	if outDtype == "cs" {
		return b, "s", nil
	}
	return b, outDtype, nil
}

func readHashList(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapOpenErr(path, err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading hash-list spill %q: %w", path, err)
	}
	if len(buf) < shaHeaderLen {
		return nil, fmt.Errorf("hash-list spill %q shorter than SHA1 header: %w", path, wocerr.ErrDecodeCorrupt)
	}
	return buf[shaHeaderLen:], nil
}

func readTextList(path string) ([]byte, error) {
	cr, err := readahead.NewCachingReader(path, 0)
	if err != nil {
		return nil, wrapOpenErr(path, err)
	}
	defer cr.Close()

	gz, err := gzip.NewReader(bufio.NewReader(cr))
	if err != nil {
		return nil, fmt.Errorf("opening gzip text-list spill %q: %w", path, err)
	}
	defer gz.Close()

	buf, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompressing text-list spill %q: %w", path, err)
	}

	scanLen := headerScanLen
	if scanLen > len(buf) {
		scanLen = len(buf)
	}
	if i := bytes.IndexByte(buf[:scanLen], '\n'); i >= 0 {
		return buf[i+1:], nil
	}
	return buf, nil
}

func wrapOpenErr(path string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("spill file %q: %w", path, wocerr.ErrShardMissing)
	}
	return fmt.Errorf("opening spill file %q: %w", path, err)
}
