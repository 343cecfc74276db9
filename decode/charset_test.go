package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeStr_ValidUTF8Passthrough(t *testing.T) {
	assert.Equal(t, "héllo wörld", decodeStr([]byte("héllo wörld")))
}

func TestDecodeStr_InvalidBytesFallBackToDetectedCharset(t *testing.T) {
	// 0xff is never valid UTF-8. With no BOM and no meta tag, charset
	// detection falls back to its windows-1252 default, so the bytes decode
	// without panicking or erroring and the ASCII 'a' survives.
	out := decodeStr([]byte{0xff, 0xff, 'a'})
	assert.Contains(t, out, "a")
}

func TestDecodeWithEncoding_EmptyNameUsesUTF8Path(t *testing.T) {
	assert.Equal(t, "plain ascii", decodeWithEncoding([]byte("plain ascii"), ""))
}

func TestDecodeWithEncoding_UnknownNameFallsBackToDecodeStr(t *testing.T) {
	assert.Equal(t, "abc", decodeWithEncoding([]byte("abc"), "not-a-real-encoding"))
}
