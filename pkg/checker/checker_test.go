package checker

import (
	"testing"

	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/volume"
)

// fullLabel creates a volume of the given dimensions with every voxel set to 1.
func fullLabel(t *testing.T, nx, ny, nz int) *volume.Volume {
	t.Helper()
	v, err := volume.New(nx, ny, nz)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				v.SetAt(x, y, z, 1)
			}
		}
	}
	return v
}

func TestGenerateBinaryPattern(t *testing.T) {
	// 4x4x4 all-ones label, grid 2, axial depth: each x-slice must show
	// 2x2 blocks of alternating 0s and 1s.
	label := fullLabel(t, 4, 4, 4)

	out, err := Generate(label, Options{GridSize: 2, Axis: volume.Axial, Mode: ModeBinary})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := [4][4]float32{
		{0, 0, 1, 1},
		{0, 0, 1, 1},
		{1, 1, 0, 0},
		{1, 1, 0, 0},
	}
	for x := 0; x < 4; x++ { // slices along the depth axis are identical
		for y := 0; y < 4; y++ {
			for z := 0; z < 4; z++ {
				if got := out.At(x, y, z); got != want[y][z] {
					t.Fatalf("out[%d][%d][%d] = %v, want %v", x, y, z, got, want[y][z])
				}
			}
		}
	}
}

func TestGenerateMasking(t *testing.T) {
	label, err := volume.New(6, 6, 6)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Only one octant is labeled.
	for z := 0; z < 3; z++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				label.SetAt(x, y, z, 2)
			}
		}
	}

	for _, mode := range []Mode{ModeBinary, ModeMulti} {
		out, err := Generate(label, Options{GridSize: 2, Axis: volume.Coronal, Mode: mode, Colors: 5})
		if err != nil {
			t.Fatalf("Generate(%s): %v", mode, err)
		}
		for z := 0; z < 6; z++ {
			for y := 0; y < 6; y++ {
				for x := 0; x < 6; x++ {
					got := out.At(x, y, z)
					if label.At(x, y, z) == 0 && got != 0 {
						t.Fatalf("mode %s: unmasked voxel (%d,%d,%d) = %v, want 0", mode, x, y, z, got)
					}
				}
			}
		}
	}
}

func TestGenerateBinaryRange(t *testing.T) {
	label := fullLabel(t, 5, 7, 3)
	out, err := Generate(label, Options{GridSize: 3, Axis: volume.Sagittal, Mode: ModeBinary})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, val := range out.Data() {
		if val != 0 && val != 1 {
			t.Fatalf("binary value out of range: %v", val)
		}
	}
}

func TestGenerateMultiRange(t *testing.T) {
	label := fullLabel(t, 9, 9, 9)
	const colors = 4
	out, err := Generate(label, Options{GridSize: 2, Axis: volume.Axial, Mode: ModeMulti, Colors: colors})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	seen := map[float32]bool{}
	for _, val := range out.Data() {
		if val < 1 || val > colors {
			t.Fatalf("multi value out of range [1,%d]: %v", colors, val)
		}
		seen[val] = true
	}
	// Enough cells to wrap: every value should occur.
	for want := 1; want <= colors; want++ {
		if !seen[float32(want)] {
			t.Errorf("value %d never assigned", want)
		}
	}
}

func TestGenerateMultiRowMajor(t *testing.T) {
	// With a large color budget, cell values enumerate cells in row-major
	// order: value = cellRow*cellCols + cellCol + 1.
	label := fullLabel(t, 1, 4, 6)
	out, err := Generate(label, Options{GridSize: 2, Axis: volume.Axial, Mode: ModeMulti, Colors: 512})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for y := 0; y < 4; y++ {
		for z := 0; z < 6; z++ {
			want := float32((y/2)*3 + z/2 + 1)
			if got := out.At(0, y, z); got != want {
				t.Fatalf("out[0][%d][%d] = %v, want %v", y, z, got, want)
			}
		}
	}
}

func TestGenerateSingleCell(t *testing.T) {
	// Grid size covering the whole plane: one cell, constant inside mask.
	label := fullLabel(t, 3, 4, 4)
	out, err := Generate(label, Options{GridSize: 4, Axis: volume.Axial, Mode: ModeBinary})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, val := range out.Data() {
		if val != 0 {
			t.Fatalf("single-cell checkerboard should be constant 0, got %v", val)
		}
	}
}

func TestGenerateDeterminism(t *testing.T) {
	label := fullLabel(t, 8, 8, 8)
	opts := Options{GridSize: 3, Axis: volume.Coronal, Mode: ModeMulti, Colors: 7}

	a, err := Generate(label, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(label, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, val := range a.Data() {
		if b.Data()[i] != val {
			t.Fatalf("outputs differ at voxel %d: %v vs %v", i, val, b.Data()[i])
		}
	}
}

func TestGeneratePartialCells(t *testing.T) {
	// 5-wide plane with grid 2 leaves a trailing 1-wide cell; it follows
	// the same parity rule.
	label := fullLabel(t, 1, 5, 5)
	out, err := Generate(label, Options{GridSize: 2, Axis: volume.Axial, Mode: ModeBinary})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for y := 0; y < 5; y++ {
		for z := 0; z < 5; z++ {
			want := float32((y/2 + z/2) % 2)
			if got := out.At(0, y, z); got != want {
				t.Fatalf("out[0][%d][%d] = %v, want %v", y, z, got, want)
			}
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"zero grid", Options{GridSize: 0, Axis: volume.Axial}, errors.ErrCodeInvalidGrid},
		{"negative grid", Options{GridSize: -2, Axis: volume.Axial}, errors.ErrCodeInvalidGrid},
		{"bad axis", Options{GridSize: 2, Axis: volume.Axis(3)}, errors.ErrCodeInvalidAxis},
		{"bad mode", Options{GridSize: 2, Axis: volume.Axial, Mode: "rainbow"}, errors.ErrCodeInvalidMode},
		{"multi without colors", Options{GridSize: 2, Axis: volume.Axial, Mode: ModeMulti}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode("binary"); err != nil {
		t.Errorf("ParseMode(binary): %v", err)
	}
	if _, err := ParseMode("multi"); err != nil {
		t.Errorf("ParseMode(multi): %v", err)
	}
	if _, err := ParseMode("plaid"); err == nil {
		t.Error("ParseMode(plaid) should fail")
	}
}
