// Package cache provides caching for pipeline artifacts.
//
// Pipeline stages are pure functions of their input files and options, so
// their outputs are cached under keys derived from content hashes. Three
// backends are provided:
//   - FileCache: filesystem-backed, for CLI usage (~/.cache/warpviz/)
//   - RedisCache: shared cache for lab servers running the HTTP API
//   - NullCache: no-op, for tests and --no-cache
//
// Keys are generated by a Keyer so that CLI and API produce identical keys
// for identical work. ScopedKeyer adds a prefix for namespacing a shared
// Redis instance.
package cache

import (
	"context"
	"time"
)

// TTLs per artifact class. Volumes are large but cheap to invalidate;
// transforms are expensive to recompute and kept longest.
const (
	// TTLVolume is the lifetime of cached checkerboard and label volumes.
	TTLVolume = 7 * 24 * time.Hour

	// TTLTransform is the lifetime of cached registration transforms.
	TTLTransform = 30 * 24 * time.Hour

	// TTLTable is the lifetime of cached color tables.
	TTLTable = 30 * 24 * time.Hour

	// TTLSurface is the lifetime of cached surface meshes.
	TTLSurface = 7 * 24 * time.Hour
)

// Cache is the interface for artifact cache backends.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A non-positive TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// CheckerKeyOpts are the option fields that distinguish checkerboard runs.
type CheckerKeyOpts struct {
	GridSize int
	Axis     int
	Mode     string
	Colors   int
}

// ColormapKeyOpts are the option fields that distinguish color tables.
type ColormapKeyOpts struct {
	Dim        int
	Bright     float64
	Downsample int
}

// TransformKeyOpts are the option fields that distinguish registrations.
type TransformKeyOpts struct {
	Tool string // registration tool identity, e.g. "ants"
}

// Keyer generates cache keys for pipeline artifacts.
type Keyer interface {
	// SegmentKey keys a segmentation by the anatomical volume's hash.
	SegmentKey(anatHash string) string

	// CheckerKey keys a checkerboard by the label volume's hash and options.
	CheckerKey(labelHash string, opts CheckerKeyOpts) string

	// ColormapKey keys a color table by its options.
	ColormapKey(opts ColormapKeyOpts) string

	// TransformKey keys a registration by the fixed and moving hashes.
	TransformKey(fixedHash, movingHash string, opts TransformKeyOpts) string

	// WarpKey keys a deformed checkerboard by the checkerboard and
	// transform hashes.
	WarpKey(checkerHash, transformHash string) string

	// SurfaceKey keys a surface mesh by the label and deformed hashes.
	SurfaceKey(labelHash, deformedHash string) string
}

// DefaultKeyer generates hash-based keys with type prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SegmentKey generates a key for segmentation results.
func (k *DefaultKeyer) SegmentKey(anatHash string) string {
	return hashKey("segment", anatHash)
}

// CheckerKey generates a key for checkerboard volumes.
func (k *DefaultKeyer) CheckerKey(labelHash string, opts CheckerKeyOpts) string {
	return hashKey("checker", labelHash, opts)
}

// ColormapKey generates a key for color tables.
func (k *DefaultKeyer) ColormapKey(opts ColormapKeyOpts) string {
	return hashKey("colormap", opts)
}

// TransformKey generates a key for registration transforms.
func (k *DefaultKeyer) TransformKey(fixedHash, movingHash string, opts TransformKeyOpts) string {
	return hashKey("transform", fixedHash, movingHash, opts)
}

// WarpKey generates a key for deformed checkerboard volumes.
func (k *DefaultKeyer) WarpKey(checkerHash, transformHash string) string {
	return hashKey("warp", checkerHash, transformHash)
}

// SurfaceKey generates a key for surface meshes.
func (k *DefaultKeyer) SurfaceKey(labelHash, deformedHash string) string {
	return hashKey("surface", labelHash, deformedHash)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
