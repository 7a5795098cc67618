// Package volume provides the 3D volume model shared by all pipeline stages.
//
// A Volume is a dense 3D scalar grid loaded from (and saved to) NIfTI files.
// Voxel data is stored as float32 in NIfTI memory order (x fastest), matching
// the layout used by the underlying nifti library. Label volumes carry integer
// tissue-class values in their float32 voxels; zero means "outside the region
// of interest".
package volume

import (
	"github.com/tbruckner/warpviz/pkg/errors"
)

// Volume is a dense 3D scalar grid.
type Volume struct {
	nx, ny, nz int
	data       []float32

	// refPath remembers the NIfTI file this volume was loaded from, so
	// derived volumes can be saved on the same subject grid (header reuse).
	refPath string
}

// New creates a zero-filled volume with the given dimensions.
func New(nx, ny, nz int) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "volume dimensions must be positive, got %dx%dx%d", nx, ny, nz)
	}
	return &Volume{
		nx:   nx,
		ny:   ny,
		nz:   nz,
		data: make([]float32, nx*ny*nz),
	}, nil
}

// Dims returns the volume dimensions (nx, ny, nz).
func (v *Volume) Dims() (int, int, int) {
	return v.nx, v.ny, v.nz
}

// Dim returns the size along a single axis (0, 1 or 2).
func (v *Volume) Dim(axis int) int {
	switch axis {
	case 0:
		return v.nx
	case 1:
		return v.ny
	case 2:
		return v.nz
	}
	return 0
}

// At returns the voxel value at (x, y, z). Coordinates must be in range.
func (v *Volume) At(x, y, z int) float32 {
	return v.data[(z*v.ny+y)*v.nx+x]
}

// SetAt stores a voxel value at (x, y, z). Coordinates must be in range.
func (v *Volume) SetAt(x, y, z int, val float32) {
	v.data[(z*v.ny+y)*v.nx+x] = val
}

// Len returns the total number of voxels.
func (v *Volume) Len() int {
	return len(v.data)
}

// Data returns the raw voxel slice in NIfTI memory order (x fastest).
// The slice is shared with the volume; callers must not resize it.
func (v *Volume) Data() []float32 {
	return v.data
}

// RefPath returns the NIfTI file this volume was loaded from, or "" if the
// volume was created in memory.
func (v *Volume) RefPath() string {
	return v.refPath
}

// Like creates a zero-filled volume with the same dimensions and reference
// header as v.
func Like(v *Volume) *Volume {
	return &Volume{
		nx:      v.nx,
		ny:      v.ny,
		nz:      v.nz,
		data:    make([]float32, len(v.data)),
		refPath: v.refPath,
	}
}

// SameShape reports whether two volumes have identical dimensions.
func SameShape(a, b *Volume) bool {
	return a.nx == b.nx && a.ny == b.ny && a.nz == b.nz
}

// CheckSameShape returns a structured error when a and b differ in shape.
func CheckSameShape(a, b *Volume) error {
	if !SameShape(a, b) {
		return errors.New(errors.ErrCodeShapeMismatch,
			"volume shapes differ: %dx%dx%d vs %dx%dx%d", a.nx, a.ny, a.nz, b.nx, b.ny, b.nz)
	}
	return nil
}
