package decode

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeStr implements the decode_str contract (spec §4.6): try strict
// UTF-8 first; on failure, fall back to charset detection and decode with
// the U+FFFD replacement character standing in for residual errors.
//
// Grounded on golang.org/x/net/html/charset + golang.org/x/text/encoding,
// both present in the teacher's module graph (x/text as an indirect
// dependency, pulled in for exactly this kind of best-effort text
// decoding elsewhere in the ecosystem).
func decodeStr(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	enc, _, _ := charset.DetermineEncoding(b, "")
	if enc == nil || enc == encoding.Nop {
		return strictOrReplace(b)
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil || !utf8.Valid(out) {
		return strictOrReplace(b)
	}
	return string(out)
}

// decodeWithEncoding implements commit-header decoding per spec §4.8: the
// identity and message bytes are decoded "using the recorded encoding
// (default UTF-8)". An empty or "utf-8" name falls back to decodeStr's
// strict-then-detect chain; any other IANA-registered name is resolved
// with golang.org/x/text/encoding/htmlindex.
func decodeWithEncoding(b []byte, encName string) string {
	name := strings.TrimSpace(strings.ToLower(encName))
	if name == "" || name == "utf-8" || name == "utf8" {
		return decodeStr(b)
	}

	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return decodeStr(b)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return decodeStr(b)
	}
	return string(out)
}

// strictOrReplace is the last-resort path when charset detection can't
// produce valid UTF-8 either: re-decode rune by rune, substituting
// utf8.RuneError (rendered as U+FFFD) for any invalid byte.
func strictOrReplace(b []byte) string {
	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		out = append(out, r)
		b = b[size:]
	}
	return string(out)
}
