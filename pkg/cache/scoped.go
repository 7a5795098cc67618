package cache

// ScopedKeyer wraps a Keyer with a prefix for namespacing. This is useful
// when several labs or studies share one Redis instance and need separate
// cache namespaces.
//
// Example usage:
//
//	studyKeyer := NewScopedKeyer(NewDefaultKeyer(), "study:adni3:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SegmentKey generates a prefixed key for segmentation results.
func (k *ScopedKeyer) SegmentKey(anatHash string) string {
	return k.prefix + k.inner.SegmentKey(anatHash)
}

// CheckerKey generates a prefixed key for checkerboard volumes.
func (k *ScopedKeyer) CheckerKey(labelHash string, opts CheckerKeyOpts) string {
	return k.prefix + k.inner.CheckerKey(labelHash, opts)
}

// ColormapKey generates a prefixed key for color tables.
func (k *ScopedKeyer) ColormapKey(opts ColormapKeyOpts) string {
	return k.prefix + k.inner.ColormapKey(opts)
}

// TransformKey generates a prefixed key for registration transforms.
func (k *ScopedKeyer) TransformKey(fixedHash, movingHash string, opts TransformKeyOpts) string {
	return k.prefix + k.inner.TransformKey(fixedHash, movingHash, opts)
}

// WarpKey generates a prefixed key for deformed checkerboard volumes.
func (k *ScopedKeyer) WarpKey(checkerHash, transformHash string) string {
	return k.prefix + k.inner.WarpKey(checkerHash, transformHash)
}

// SurfaceKey generates a prefixed key for surface meshes.
func (k *ScopedKeyer) SurfaceKey(labelHash, deformedHash string) string {
	return k.prefix + k.inner.SurfaceKey(labelHash, deformedHash)
}
