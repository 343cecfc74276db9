package decode

import (
	"bytes"
	"fmt"

	"github.com/worldofcode/wocread/wocerr"
)

// Identity is a parsed author/committer field: the identity string before
// the trailing "timestamp timezone" pair, and those two trailing fields.
type Identity struct {
	Name      string
	Timestamp string
	Timezone  string
}

// Commit is a fully decoded git commit object (spec §3, §4.8).
type Commit struct {
	Tree      string
	Parents   []string
	Author    Identity
	Committer Identity
	Message   string
}

// CommitDecode decodes a commit object body per spec §4.8.
func CommitDecode(buf []byte) (*Commit, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("empty commit body: %w", wocerr.ErrDecodeCorrupt)
	}

	sep := bytes.Index(buf, []byte("\n\n"))
	if sep < 0 {
		return nil, fmt.Errorf("commit body missing header/message separator: %w", wocerr.ErrDecodeCorrupt)
	}
	header := buf[:sep]
	message := buf[sep+2:]

	c := &Commit{Parents: make([]string, 0)}
	encodingName := ""
	var rawAuthor, rawCommitter []byte
	var authorTS, authorTZ, committerTS, committerTZ string

	inPGPBlock := false
	for _, line := range bytes.Split(header, []byte("\n")) {
		if inPGPBlock {
			if string(line) == "-----END PGP SIGNATURE-----" {
				inPGPBlock = false
			}
			continue
		}

		spaceIdx := bytes.IndexByte(line, ' ')
		if spaceIdx < 0 {
			continue // lines with no space are skipped
		}
		key := string(line[:spaceIdx])
		value := line[spaceIdx+1:]

		switch key {
		case "tree":
			c.Tree = string(value)
		case "parent":
			c.Parents = append(c.Parents, string(value))
		case "author":
			rawAuthor, authorTS, authorTZ = splitIdentityLine(value)
		case "committer":
			rawCommitter, committerTS, committerTZ = splitIdentityLine(value)
		case "gpgsig":
			inPGPBlock = true
		case "encoding":
			encodingName = string(value)
		default:
			// ignored
		}
	}

	c.Author = Identity{Name: decodeWithEncoding(rawAuthor, encodingName), Timestamp: authorTS, Timezone: authorTZ}
	c.Committer = Identity{Name: decodeWithEncoding(rawCommitter, encodingName), Timestamp: committerTS, Timezone: committerTZ}
	c.Message = decodeWithEncoding(message, encodingName)

	return c, nil
}

// splitIdentityLine implements the author/committer tie-break in spec
// §4.8/§9: the value ends in "... SP timestamp SP timezone"; the final
// space marks the timezone start, the next-to-last marks the timestamp
// start, found by scanning right-to-left across the whole value rather
// than just the trailing field. A line with fewer than two trailing
// spaces is skipped (both fields stay empty) — preserved verbatim, not
// tightened, per §9's explicit instruction.
func splitIdentityLine(value []byte) (name []byte, timestamp, timezone string) {
	lastSpace := bytes.LastIndexByte(value, ' ')
	if lastSpace < 0 {
		return value, "", ""
	}
	secondLastSpace := bytes.LastIndexByte(value[:lastSpace], ' ')
	if secondLastSpace < 0 {
		return value, "", ""
	}
	return value[:secondLastSpace], string(value[secondLastSpace+1 : lastSpace]), string(value[lastSpace+1:])
}
