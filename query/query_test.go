package query

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/worldofcode/wocread/decode"
	"github.com/worldofcode/wocread/lzf"
	"github.com/worldofcode/wocread/profile"
	"github.com/worldofcode/wocread/varint"
	"github.com/worldofcode/wocread/wocerr"
)

func hash20(b byte) []byte {
	h := make([]byte, 20)
	for i := range h {
		h[i] = b
	}
	return h
}

func putKV(t *testing.T, dir, name string, kv map[string][]byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	db, err := leveldb.OpenFile(path, nil)
	require.NoError(t, err)
	defer db.Close()
	for k, v := range kv {
		require.NoError(t, db.Put([]byte(k), v, nil))
	}
	return path
}

// frame wraps plain (<128 bytes) payloads in a minimal single-byte-header
// LZF frame, guaranteeing deterministic successful decompression on the
// show_content "try decompress" path.
func frame(t *testing.T, plain []byte) []byte {
	t.Helper()
	require.Less(t, len(plain), 0x80)
	packed := lzf.Compress(plain)
	out := make([]byte, 0, len(packed)+1)
	out = append(out, byte(len(plain)))
	out = append(out, packed...)
	return out
}

func TestGetValues_HashKeyedMap(t *testing.T) {
	dir := t.TempDir()
	hashHex := hex.EncodeToString(hash20(0x42))
	values := append(hash20(0x01), hash20(0x02)...)
	shard := putKV(t, dir, "shard0", map[string][]byte{
		string(hash20(0x42)): values,
	})

	p := &profile.Profile{
		SchemaVersion: 1,
		Maps: map[string][]profile.MapDescriptor{
			"P2c": {{Dtypes: [2]string{"h", "h"}, ShardingBits: 0, Shards: []string{shard}}},
		},
	}

	eng := New(p)
	out, err := eng.GetValues("P2c", hashHex)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0101010101010101010101010101010101010101",
		"0202020202020202020202020202020202020202",
	}, out)
}

func TestGetValues_StringKeyedMap(t *testing.T) {
	dir := t.TempDir()
	key := "user2589_minicms"
	shard := putKV(t, dir, "shard0", map[string][]byte{
		key: []byte("05cf84081b63cda822ee407e688269b494a642de"),
	})

	p := &profile.Profile{
		SchemaVersion: 1,
		Maps: map[string][]profile.MapDescriptor{
			"proj2commit": {{Dtypes: [2]string{"s", "s"}, ShardingBits: 0, Shards: []string{shard}}},
		},
	}

	eng := New(p)
	out, err := eng.GetValues("proj2commit", key)
	require.NoError(t, err)
	assert.Contains(t, out, "05cf84081b63cda822ee407e688269b494a642de")
}

func TestGetValues_NotFound(t *testing.T) {
	dir := t.TempDir()
	shard := putKV(t, dir, "shard0", map[string][]byte{})

	p := &profile.Profile{
		SchemaVersion: 1,
		Maps: map[string][]profile.MapDescriptor{
			"P2c": {{Dtypes: [2]string{"h", "h"}, ShardingBits: 0, Shards: []string{shard}}},
		},
	}

	eng := New(p)
	_, err := eng.GetValues("P2c", hex.EncodeToString(hash20(0x99)))
	assert.ErrorIs(t, err, wocerr.ErrNotFound)
}

func TestGetValues_UnknownMap(t *testing.T) {
	eng := New(&profile.Profile{SchemaVersion: 1, Maps: map[string][]profile.MapDescriptor{}})
	_, err := eng.GetValues("nope", "x")
	assert.ErrorIs(t, err, wocerr.ErrUnknownMap)
}

func TestShowContent_Tree(t *testing.T) {
	dir := t.TempDir()
	plainTree := []byte("100644 .gitignore\x00" + string(hash20(0x8e)))
	treeHashHex := hex.EncodeToString(hash20(0x11))
	shard := putKV(t, dir, "tree0", map[string][]byte{
		string(hash20(0x11)): frame(t, plainTree),
	})

	p := &profile.Profile{
		SchemaVersion: 1,
		Objects: map[string]profile.MapDescriptor{
			"tree.tch": {ShardingBits: 0, Shards: []string{shard}},
		},
	}

	eng := New(p)
	out, err := eng.ShowContent("tree", treeHashHex)
	require.NoError(t, err)
	entries := out.([]decode.TreeEntry)
	require.Len(t, entries, 1)
	assert.Equal(t, ".gitignore", entries[0].Filename)
}

func TestShowContent_Commit(t *testing.T) {
	dir := t.TempDir()
	plainCommit := []byte("tree abc\nauthor a b c\ncommitter a b c\n\nhi")
	commitHashHex := hex.EncodeToString(hash20(0x22))
	shard := putKV(t, dir, "commit0", map[string][]byte{
		string(hash20(0x22)): frame(t, plainCommit),
	})

	p := &profile.Profile{
		SchemaVersion: 1,
		Objects: map[string]profile.MapDescriptor{
			"commit.tch": {ShardingBits: 0, Shards: []string{shard}},
		},
	}

	eng := New(p)
	out, err := eng.ShowContent("commit", commitHashHex)
	require.NoError(t, err)
	c := out.(*decode.Commit)
	assert.Equal(t, "abc", c.Tree)
	assert.Equal(t, "hi", c.Message)
}

func TestShowContent_Blob(t *testing.T) {
	dir := t.TempDir()

	blobHash := hash20(0x33)
	blobBinPath := filepath.Join(dir, "blob0.bin")
	blobPlain := []byte("package main\n")
	framedBlob := frame(t, blobPlain)
	require.NoError(t, os.WriteFile(blobBinPath, append([]byte("leading-padding-"), framedBlob...), 0o644))

	ptrBytes := append(append([]byte{}, blobHash...), varint.Encode([]uint64{uint64(len("leading-padding-")), uint64(len(framedBlob))})...)
	ptrShard := putKV(t, dir, "sha1blob0", map[string][]byte{
		string(blobHash): ptrBytes,
	})

	p := &profile.Profile{
		SchemaVersion: 1,
		Objects: map[string]profile.MapDescriptor{
			"sha1.blob.tch": {ShardingBits: 0, Shards: []string{ptrShard}},
			"blob.bin":      {ShardingBits: 0, Shards: []string{blobBinPath}},
		},
	}

	eng := New(p)
	out, err := eng.ShowContent("blob", hex.EncodeToString(blobHash))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", out)
}

func TestShowContent_ReservedTagsUnsupported(t *testing.T) {
	eng := New(&profile.Profile{SchemaVersion: 1})
	for _, name := range []string{"tkns", "tag", "bdiff"} {
		_, err := eng.ShowContent(name, "x")
		assert.ErrorIs(t, err, wocerr.ErrUnsupported)
	}
}
