package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before Set
	if _, hit, _ := c.Get(ctx, "checker:abc"); hit {
		t.Error("unexpected hit before Set")
	}

	// Round trip
	if err := c.Set(ctx, "checker:abc", []byte("volume-bytes"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "checker:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != "volume-bytes" {
		t.Errorf("Get = %q, want %q", data, "volume-bytes")
	}

	// Delete
	if err := c.Delete(ctx, "checker:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "checker:abc"); hit {
		t.Error("hit after Delete")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Negative TTL stores without expiry per the Cache contract
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Error("non-positive TTL should mean no expiry")
	}

	if err := c.Set(ctx, "short", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheSizeAndClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	fc := c.(*FileCache)

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte("data"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	entries, bytes, err := fc.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if entries != 3 || bytes == 0 {
		t.Errorf("Size = (%d, %d), want 3 entries and nonzero bytes", entries, bytes)
	}

	if err := fc.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _, err = fc.Size()
	if err != nil {
		t.Fatalf("Size after Clear: %v", err)
	}
	if entries != 0 {
		t.Errorf("entries after Clear = %d, want 0", entries)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// CheckerKey should include options in hash
	ck1 := k.CheckerKey("labelhash", CheckerKeyOpts{GridSize: 10, Axis: 0, Mode: "binary"})
	ck2 := k.CheckerKey("labelhash", CheckerKeyOpts{GridSize: 20, Axis: 0, Mode: "binary"})
	if ck1 == ck2 {
		t.Error("Different CheckerKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ck1, "checker:") {
		t.Errorf("CheckerKey should carry type prefix: %s", ck1)
	}

	// ColormapKey
	mk1 := k.ColormapKey(ColormapKeyOpts{Dim: 512, Bright: 0.6, Downsample: 16})
	mk2 := k.ColormapKey(ColormapKeyOpts{Dim: 512, Bright: 0.7, Downsample: 16})
	if mk1 == mk2 {
		t.Error("Different ColormapKeyOpts should produce different keys")
	}

	// TransformKey
	tk1 := k.TransformKey("fixed", "moving", TransformKeyOpts{Tool: "ants"})
	tk2 := k.TransformKey("fixed", "other", TransformKeyOpts{Tool: "ants"})
	if tk1 == tk2 {
		t.Error("Different moving hashes should produce different keys")
	}

	// SurfaceKey
	sk1 := k.SurfaceKey("label", "deformed")
	sk2 := k.SurfaceKey("label", "deformed2")
	if sk1 == sk2 {
		t.Error("Different deformed hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "study:adni3:")

	// All keys should be prefixed
	key := scoped.SegmentKey("anat")
	if !strings.HasPrefix(key, "study:adni3:segment:") {
		t.Errorf("ScopedKeyer SegmentKey should be prefixed: %s", key)
	}

	ck := scoped.CheckerKey("label", CheckerKeyOpts{GridSize: 10})
	if !strings.HasPrefix(ck, "study:adni3:") {
		t.Errorf("ScopedKeyer CheckerKey should be prefixed: %s", ck)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.SegmentKey("anat")
	if !strings.HasPrefix(key, "prefix:segment:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
