// Package shardroute computes which physical shard file a key belongs to
// (spec §4.3): hash keys route on their first raw byte, string keys route
// on FNV-1a of their UTF-8 bytes. Grounded on the teacher's
// compactindexsized bucket-hashing shape (hash the key, mask to the
// bucket count) but reimplemented against the spec-pinned FNV-1a-32
// variant instead of xxhash, since §4.3/§8 fix both the algorithm and the
// truncation-to-low-byte behavior exactly.
package shardroute

import "hash/fnv"

// FNV1a returns the 32-bit FNV-1a hash of b.
func FNV1a(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b) //nolint:errcheck // hash.Hash32.Write never errors
	return h.Sum32()
}

// Shard returns the index in [0, 2^bits) that key routes to.
//
// If fnvKeyed is true, key is an arbitrary string and routes on the low
// byte of FNV1a(key). Otherwise key is a 20-byte content hash and routes
// on its first byte.
func Shard(key []byte, bits uint, fnvKeyed bool) uint {
	var p byte
	if fnvKeyed {
		p = byte(FNV1a(key))
	} else if len(key) > 0 {
		p = key[0]
	}
	mask := uint(1)<<bits - 1
	return uint(p) & mask
}
