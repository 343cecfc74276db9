// Package profile loads the profile document that binds logical map and
// object-store names to physical shard files (spec §3, §6), following the
// teacher's tools.go load-by-extension pattern (isJSONFile/loadFromJSON,
// isYAMLFile/loadFromYAML) and config.go's LoadConfig/Validate shape.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/worldofcode/wocread/wocerr"
)

// supportedSchemaVersions is the fixed set of schema_version values this
// reader accepts (Open Question decision: only version 1 is defined).
var supportedSchemaVersions = map[int]bool{1: true}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// MapDescriptor is one generation of a logical map's on-disk layout (§3).
type MapDescriptor struct {
	Dtypes      [2]string         `json:"dtypes" yaml:"dtypes"`
	ShardingBits uint             `json:"sharding_bits" yaml:"sharding_bits"`
	Shards      []string          `json:"shards" yaml:"shards"`
	Larges      map[string]string `json:"larges" yaml:"larges"`
}

// InDtype returns the map's in-key dtype tag, defaulting to "h".
func (d MapDescriptor) InDtype() string {
	if d.Dtypes[0] == "" {
		return "h"
	}
	return d.Dtypes[0]
}

// OutDtype returns the map's out-value dtype tag, defaulting to "c?".
func (d MapDescriptor) OutDtype() string {
	if d.Dtypes[1] == "" {
		return "c?"
	}
	return d.Dtypes[1]
}

// ShardCount is the expected 2^sharding_bits shard count.
func (d MapDescriptor) ShardCount() int {
	return 1 << d.ShardingBits
}

// Validate checks the §3 invariant len(shards) == 2^sharding_bits.
func (d MapDescriptor) Validate(name string) error {
	if len(d.Shards) != d.ShardCount() {
		return fmt.Errorf("map %q: %d shards configured, want 2^%d=%d: %w",
			name, len(d.Shards), d.ShardingBits, d.ShardCount(), wocerr.ErrProfileUnsupported)
	}
	return nil
}

// FNVKeyed reports whether this map's keys route via FNV-1a (string-keyed)
// rather than by first hash byte (in_dtype != "h").
func (d MapDescriptor) FNVKeyed() bool {
	return d.InDtype() != "h"
}

// hexKeyedMaps is the small allowlist implementing §6's bb2cf quirk: maps
// whose keys are stored as lowercase ASCII hex rather than raw bytes.
var hexKeyedMaps = map[string]bool{
	"bb2cf": true,
}

// HexEncodedKeys reports whether name is a map storing keys as ASCII hex.
func HexEncodedKeys(name string) bool {
	return hexKeyedMaps[name]
}

// Profile is the loaded, immutable profile document (§3).
type Profile struct {
	SchemaVersion int                        `json:"schema_version" yaml:"schema_version"`
	Maps          map[string][]MapDescriptor `json:"maps" yaml:"maps"`
	Objects       map[string]MapDescriptor   `json:"objects" yaml:"objects"`
}

// objectAliases maps the facade's logical object names to their backing
// object-store descriptor name (§4.9 step 1).
var objectAliases = map[string]string{
	"tree":   "tree.tch",
	"commit": "commit.tch",
	"blob":   "sha1.blob.tch",
}

// Resolve looks up name first in maps (taking the first generation), then
// in objects via the tree/commit/blob aliases, per §4.9 step 1.
func (p *Profile) Resolve(name string) (MapDescriptor, error) {
	if descs, ok := p.Maps[name]; ok && len(descs) > 0 {
		return descs[0], nil
	}
	objName := name
	if aliased, ok := objectAliases[name]; ok {
		objName = aliased
	}
	if desc, ok := p.Objects[objName]; ok {
		return desc, nil
	}
	return MapDescriptor{}, fmt.Errorf("%q: %w", name, wocerr.ErrUnknownMap)
}

// Validate enforces schema_version membership and a non-empty maps set
// (§7 ProfileUnsupported).
func (p *Profile) Validate() error {
	if !supportedSchemaVersions[p.SchemaVersion] {
		return fmt.Errorf("schema_version %d not supported: %w", p.SchemaVersion, wocerr.ErrProfileUnsupported)
	}
	if len(p.Maps) == 0 {
		return fmt.Errorf("profile has no maps: %w", wocerr.ErrProfileUnsupported)
	}
	for name, descs := range p.Maps {
		if len(descs) == 0 {
			continue
		}
		if err := descs[0].Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// discoveryPaths returns the §6 search order, given zero or more explicit
// paths supplied by the caller.
func discoveryPaths(explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	paths := []string{"wocprofile.json"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".wocprofile.json"))
	}
	paths = append(paths, "/etc/wocprofile.json")
	return paths
}

// Load discovers and parses the profile document, trying each path in
// discoveryPaths order until one exists. explicit, when non-empty, is tried
// exclusively (§6 discovery order item 1). Returns wocerr.ErrProfileMissing
// if no candidate path exists.
func Load(explicit ...string) (*Profile, error) {
	var lastErr error
	for _, path := range discoveryPaths(explicit) {
		if _, err := os.Stat(path); err != nil {
			lastErr = err
			continue
		}
		p, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("no profile found (last: %v): %w", lastErr, wocerr.ErrProfileMissing)
}

func loadFile(path string) (*Profile, error) {
	var p Profile
	switch {
	case isJSONFile(path):
		if err := loadFromJSON(path, &p); err != nil {
			return nil, err
		}
	case isYAMLFile(path):
		if err := loadFromYAML(path, &p); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("profile file %q must be JSON or YAML", path)
	}
	return &p, nil
}

func isJSONFile(path string) bool {
	return strings.HasSuffix(path, ".json")
}

func isYAMLFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

func loadFromJSON(path string, dst any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open profile file: %w", err)
	}
	defer file.Close()
	return jsonAPI.NewDecoder(file).Decode(dst)
}

func loadFromYAML(path string, dst any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open profile file: %w", err)
	}
	defer file.Close()
	return yaml.NewDecoder(file).Decode(dst)
}
