// Package query implements the get_values and show_content entry points
// (spec §4.9): the facade that normalizes a caller's key, consults the
// profile, checks for a large-file spill, otherwise routes to a shard, and
// decodes the fetched bytes. Grounded on the teacher's Epoch type
// (epoch.go), reshaped from "one CAR epoch" to "one profile-bound engine".
package query

import (
	"encoding/hex"
	"fmt"

	"github.com/worldofcode/wocread/blobfile"
	"github.com/worldofcode/wocread/decode"
	"github.com/worldofcode/wocread/enginepool"
	"github.com/worldofcode/wocread/largefile"
	"github.com/worldofcode/wocread/lzf"
	"github.com/worldofcode/wocread/profile"
	"github.com/worldofcode/wocread/shardroute"
	"github.com/worldofcode/wocread/wocerr"
)

// Engine is the query facade bound to one loaded profile and handle pool.
type Engine struct {
	profile *profile.Profile
	pool    *enginepool.Pool
}

// New returns an Engine over an already-loaded profile, opening shard
// handles lazily via its own pool.
func New(p *profile.Profile) *Engine {
	return &Engine{profile: p, pool: enginepool.NewPool()}
}

// normalizedKey is a key after §4.9 step 3 normalization.
type normalizedKey struct {
	hexForm string // hex(raw) for hash keys, hex(FNV1a(bytes)) for string keys
	lookup  []byte // the bytes the engine is actually queried with
}

func normalizeKey(desc profile.MapDescriptor, key any) (normalizedKey, error) {
	if desc.InDtype() == "h" {
		raw, err := toRawHash(key)
		if err != nil {
			return normalizedKey{}, err
		}
		return normalizedKey{hexForm: hex.EncodeToString(raw), lookup: raw}, nil
	}

	s, ok := key.(string)
	if !ok {
		return normalizedKey{}, fmt.Errorf("key for string-keyed map must be a string: %w", wocerr.ErrBadKey)
	}
	b := []byte(s)
	sum := shardroute.FNV1a(b)
	return normalizedKey{hexForm: fmt.Sprintf("%08x", sum), lookup: b}, nil
}

func toRawHash(key any) ([]byte, error) {
	switch v := key.(type) {
	case []byte:
		if len(v) != 20 {
			return nil, fmt.Errorf("hash key has %d bytes, want 20: %w", len(v), wocerr.ErrBadKey)
		}
		return v, nil
	case string:
		if len(v) != 40 {
			return nil, fmt.Errorf("hash key string has %d chars, want 40: %w", len(v), wocerr.ErrBadKey)
		}
		raw, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("hash key %q not valid hex: %w", v, wocerr.ErrBadKey)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("hash key must be []byte or hex string: %w", wocerr.ErrBadKey)
	}
}

// GetValues implements get_values(map_name, key) (§4.9).
func (e *Engine) GetValues(mapName string, key any) (any, error) {
	desc, err := e.profile.Resolve(mapName)
	if err != nil {
		return nil, err
	}

	nk, err := normalizeKey(desc, key)
	if err != nil {
		return nil, err
	}

	raw, outDtype, err := e.fetch(mapName, desc, nk)
	if err != nil {
		return nil, err
	}

	return decode.Value(raw, outDtype)
}

// fetch resolves the raw bytes for a normalized key: either via the larges
// spill table (§4.5) or via shard routing (§4.3, §4.4). It also applies the
// §6 bb2cf hex-keyed-store quirk and returns the effective out-dtype tag
// (which a spill read may have degraded from "cs" to "s").
func (e *Engine) fetch(mapName string, desc profile.MapDescriptor, nk normalizedKey) ([]byte, string, error) {
	if spillPath, ok := desc.Larges[nk.hexForm]; ok {
		return largefile.Read(spillPath, desc.OutDtype())
	}

	lookupKey := nk.lookup
	if profile.HexEncodedKeys(mapName) {
		lookupKey = []byte(hex.EncodeToString(nk.lookup))
	}

	idx := shardroute.Shard(nk.lookup, desc.ShardingBits, desc.FNVKeyed())
	if int(idx) >= len(desc.Shards) {
		return nil, "", fmt.Errorf("shard index %d out of range for map %q: %w", idx, mapName, wocerr.ErrShardMissing)
	}
	path := desc.Shards[idx]

	handle, err := e.pool.Get(path)
	if err != nil {
		return nil, "", err
	}

	val, found, err := handle.Get(lookupKey)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", fmt.Errorf("key not found in %q: %w", mapName, wocerr.ErrNotFound)
	}
	return val, desc.OutDtype(), nil
}

// ShowContent implements show_content(object_name, key) (§4.9).
func (e *Engine) ShowContent(objectName string, key any) (any, error) {
	switch objectName {
	case "tree":
		raw, err := e.rawObjectBytes("tree", key)
		if err != nil {
			return nil, err
		}
		return decode.Tree(lzf.TryUnframe(raw))
	case "commit":
		raw, err := e.rawObjectBytes("commit", key)
		if err != nil {
			return nil, err
		}
		return decode.CommitDecode(lzf.TryUnframe(raw))
	case "blob":
		return e.showBlob(key)
	case "tkns", "tag", "bdiff":
		return nil, wocerr.ErrUnsupported
	default:
		return nil, wocerr.ErrUnsupported
	}
}

func (e *Engine) rawObjectBytes(objectName string, key any) ([]byte, error) {
	desc, err := e.profile.Resolve(objectName)
	if err != nil {
		return nil, err
	}
	nk, err := normalizeKey(desc, key)
	if err != nil {
		return nil, err
	}
	raw, _, err := e.fetch(objectName, desc, nk)
	return raw, err
}

// showBlob implements the §4.9 blob path: a pointer lookup in sha1.blob.tch
// followed by a first-byte-routed read from the matching blob.bin shard.
func (e *Engine) showBlob(key any) (string, error) {
	ptrDesc, err := e.profile.Resolve("blob")
	if err != nil {
		return "", err
	}
	nk, err := normalizeKey(ptrDesc, key)
	if err != nil {
		return "", err
	}
	rawPtr, _, err := e.fetch("blob", ptrDesc, nk)
	if err != nil {
		return "", err
	}
	ptrAny, err := decode.Value(rawPtr, "r")
	if err != nil {
		return "", err
	}
	ptr := ptrAny.(decode.Pointer)

	hashRaw, err := hex.DecodeString(ptr.HashHex)
	if err != nil {
		return "", fmt.Errorf("blob pointer hash %q not valid hex: %w", ptr.HashHex, wocerr.ErrDecodeCorrupt)
	}

	blobBinDesc, ok := e.profile.Objects["blob.bin"]
	if !ok {
		return "", fmt.Errorf("blob.bin: %w", wocerr.ErrUnknownMap)
	}
	idx := shardroute.Shard(hashRaw, blobBinDesc.ShardingBits, false)
	if int(idx) >= len(blobBinDesc.Shards) {
		return "", fmt.Errorf("blob.bin shard index %d out of range: %w", idx, wocerr.ErrShardMissing)
	}

	raw, err := blobfile.ReadAt(blobBinDesc.Shards[idx], ptr.Offset, ptr.Length)
	if err != nil {
		return "", err
	}

	return decode.BlobText(lzf.TryUnframe(raw)), nil
}
