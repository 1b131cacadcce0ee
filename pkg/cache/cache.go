// Package cache provides caching for computed layouts and rendered artifacts.
//
// Computing a frame layout is cheap, but rendering artifacts (PNG conversion
// shells out to rsvg-convert) is not, and the HTTP API benefits from not
// recomputing anything at all. The Cache interface abstracts the backend:
//
//   - FileCache: directory-based cache for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: caching disabled
//
// Keys are derived from content hashes of the inputs plus the options that
// influence the output, so a changed spec or render option never hits a stale
// entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache TTLs per entry kind.
const (
	// TTLLayout applies to computed frame layouts. Layouts are pure
	// functions of the spec, so the TTL only bounds disk usage.
	TTLLayout = 30 * 24 * time.Hour

	// TTLArtifact applies to rendered outputs (SVG, PNG, JSON).
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores byte blobs under string keys with optional expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the inputs that influence a computed layout beyond the
// spec itself.
type LayoutKeyOpts struct {
	// RiderHash fingerprints the rider's measurements, empty when the
	// layout is computed without a rider. Two riders with different
	// values must never share a layout entry.
	RiderHash string
}

// ArtifactKeyOpts are the render options that influence an artifact.
type ArtifactKeyOpts struct {
	Format string
	Grid   bool
	Legend bool
	Wheels bool
	Scale  float64
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey keys a computed layout by the spec content hash.
	LayoutKey(specHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the layout-set content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(specHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", specHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes a SHA-256 content hash of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
