package volume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tbruckner/warpviz/pkg/errors"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.nii.gz")

	v, err := New(4, 3, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v.SetAt(0, 0, 0, 1)
	v.SetAt(3, 2, 1, 7)
	v.SetAt(1, 2, 0, 2.5)

	if err := v.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// The file must land exactly at the requested path, not a variant of it.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved volume missing at %s: %v", path, err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Dim(0) != 4 || got.Dim(1) != 3 || got.Dim(2) != 2 {
		t.Fatalf("dims = %dx%dx%d, want 4x3x2", got.Dim(0), got.Dim(1), got.Dim(2))
	}
	checks := []struct {
		x, y, z int
		want    float32
	}{
		{0, 0, 0, 1},
		{3, 2, 1, 7},
		{1, 2, 0, 2.5},
		{2, 1, 1, 0},
	}
	for _, c := range checks {
		if got.At(c.x, c.y, c.z) != c.want {
			t.Errorf("At(%d,%d,%d) = %v, want %v", c.x, c.y, c.z, got.At(c.x, c.y, c.z), c.want)
		}
	}
}

func TestSaveReusesReferenceHeader(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "anat.nii.gz")

	ref, err := New(5, 5, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ref.SetAt(2, 2, 2, 3)
	if err := ref.Save(refPath); err != nil {
		t.Fatalf("Save reference: %v", err)
	}

	loaded, err := Load(refPath)
	if err != nil {
		t.Fatalf("Load reference: %v", err)
	}

	// A volume derived via Like inherits the reference grid and must save
	// and reload on it.
	derived := Like(loaded)
	derived.SetAt(1, 1, 1, 9)
	outPath := filepath.Join(dir, "derived.nii.gz")
	if err := derived.Save(outPath); err != nil {
		t.Fatalf("Save derived: %v", err)
	}

	got, err := Load(outPath)
	if err != nil {
		t.Fatalf("Load derived: %v", err)
	}
	if got.Dim(0) != 5 || got.Dim(1) != 5 || got.Dim(2) != 5 {
		t.Fatalf("dims = %dx%dx%d, want 5x5x5", got.Dim(0), got.Dim(1), got.Dim(2))
	}
	if got.At(1, 1, 1) != 9 {
		t.Errorf("At(1,1,1) = %v, want 9", got.At(1, 1, 1))
	}
	if got.At(2, 2, 2) != 0 {
		t.Errorf("At(2,2,2) = %v, want 0 (derived volume starts empty)", got.At(2, 2, 2))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.nii.gz"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load of missing file: %v, want FILE_NOT_FOUND", err)
	}
}
