// Package wocerr defines the sentinel error kinds surfaced by the query
// engine. Callers distinguish them with errors.Is; wrapped errors carry a
// human-readable message alongside the sentinel.
package wocerr

import "errors"

var (
	// ErrProfileMissing means no profile document was found in any searched path.
	ErrProfileMissing = errors.New("wocread: no profile found")

	// ErrProfileUnsupported means the profile's schema_version is not supported,
	// or it declares no maps.
	ErrProfileUnsupported = errors.New("wocread: unsupported profile")

	// ErrUnknownMap means the requested map or object name is not in the profile.
	ErrUnknownMap = errors.New("wocread: unknown map")

	// ErrBadKey means the key's shape does not match the map's in-dtype.
	ErrBadKey = errors.New("wocread: bad key")

	// ErrShardMissing means the profile references a shard path that does not exist.
	ErrShardMissing = errors.New("wocread: shard file missing")

	// ErrNotFound means the lookup reached the correct shard but the key is absent.
	ErrNotFound = errors.New("wocread: not found")

	// ErrDecodeCorrupt means a decoder's structural invariants failed.
	ErrDecodeCorrupt = errors.New("wocread: corrupt encoding")

	// ErrUnsupported means the tag or object kind is reserved but not implemented.
	ErrUnsupported = errors.New("wocread: unsupported")
)
