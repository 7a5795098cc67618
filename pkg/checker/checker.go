// Package checker generates synthetic checkerboard volumes used as visual
// deformation tracers.
//
// Given a label volume (a tissue segmentation where zero marks background),
// the generator paints a checkerboard pattern into the labeled region. The
// pattern lives in the 2D plane orthogonal to a chosen view axis: the two
// in-plane coordinates are divided by the grid size to obtain a 2D cell
// coordinate, and the cell determines the voxel value. Warping the result
// through an inverse deformation field makes the registration's local
// distortion visible on a surface rendering.
//
// Two modes are supported:
//
//   - ModeBinary: classic checkerboard parity, values in {0, 1}
//   - ModeMulti: every cell gets its own value in {1..Colors}, assigned by
//     row-major cell index and wrapping modulo Colors. Combined with a 2D
//     colormap this gives each cell a distinct color.
//
// Generation is deterministic: identical inputs always produce an identical
// output volume.
package checker

import (
	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/volume"
)

// Mode selects how grid cells map to voxel values.
type Mode string

// Recognized pattern modes.
const (
	ModeBinary Mode = "binary"
	ModeMulti  Mode = "multi"
)

// ParseMode parses a pattern mode from a CLI/API value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBinary, ModeMulti:
		return Mode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "invalid mode: %q (must be binary or multi)", s)
}

// Options configures checkerboard generation.
type Options struct {
	// GridSize is the side length, in voxels, of each square grid cell in
	// the viewing plane. Must be positive. A trailing partial cell is
	// assigned a value by the same rule as full cells.
	GridSize int `json:"grid_size"`

	// Axis is the depth axis, excluded from the 2D grid.
	Axis volume.Axis `json:"axis"`

	// Mode selects binary parity or multi-value cell indexing.
	Mode Mode `json:"mode"`

	// Colors bounds the value range in multi mode; cell indices wrap
	// modulo Colors. Ignored in binary mode.
	Colors int `json:"colors,omitempty"`
}

// Validate checks the options and fills mode-dependent defaults.
func (o *Options) Validate() error {
	if o.GridSize <= 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "grid size must be positive, got %d", o.GridSize)
	}
	if !o.Axis.Valid() {
		return errors.New(errors.ErrCodeInvalidAxis, "invalid view axis: %d", o.Axis)
	}
	if o.Mode == "" {
		o.Mode = ModeBinary
	}
	if o.Mode != ModeBinary && o.Mode != ModeMulti {
		return errors.New(errors.ErrCodeInvalidMode, "invalid mode: %q (must be binary or multi)", o.Mode)
	}
	if o.Mode == ModeMulti && o.Colors <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "colors must be positive in multi mode, got %d", o.Colors)
	}
	return nil
}

// Generate produces a checkerboard volume with the same shape as label.
// Voxels where the label is zero stay zero; every other voxel is assigned
// the value of its grid cell.
func Generate(label *volume.Volume, opts Options) (*volume.Volume, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rowAxis, colAxis := opts.Axis.Plane()
	// cellCols is the number of cells per row, counting the trailing
	// partial cell. It fixes the row-major linearization in multi mode.
	cellCols := (label.Dim(colAxis) + opts.GridSize - 1) / opts.GridSize

	out := volume.Like(label)
	nx, ny, nz := label.Dims()

	var pos [3]int
	for z := 0; z < nz; z++ {
		pos[2] = z
		for y := 0; y < ny; y++ {
			pos[1] = y
			for x := 0; x < nx; x++ {
				pos[0] = x
				if label.At(x, y, z) == 0 {
					continue
				}
				cellRow := pos[rowAxis] / opts.GridSize
				cellCol := pos[colAxis] / opts.GridSize

				var val int
				if opts.Mode == ModeBinary {
					val = (cellRow + cellCol) % 2
				} else {
					val = (cellRow*cellCols+cellCol)%opts.Colors + 1
				}
				out.SetAt(x, y, z, float32(val))
			}
		}
	}
	return out, nil
}
