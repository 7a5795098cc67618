package volume

import (
	"testing"

	"github.com/tbruckner/warpviz/pkg/errors"
)

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in   string
		want Axis
	}{
		{"0", Axial},
		{"axial", Axial},
		{"AXIAL", Axial},
		{"1", Coronal},
		{"coronal", Coronal},
		{"2", Sagittal},
		{" sagittal ", Sagittal},
	}
	for _, tt := range tests {
		got, err := ParseAxis(tt.in)
		if err != nil {
			t.Errorf("ParseAxis(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAxis(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAxisInvalid(t *testing.T) {
	for _, in := range []string{"", "3", "-1", "diagonal", "x"} {
		if _, err := ParseAxis(in); !errors.Is(err, errors.ErrCodeInvalidAxis) {
			t.Errorf("ParseAxis(%q) error = %v, want %v", in, err, errors.ErrCodeInvalidAxis)
		}
	}
}

func TestAxisPlane(t *testing.T) {
	tests := []struct {
		axis     Axis
		row, col int
	}{
		{Axial, 1, 2},
		{Coronal, 0, 2},
		{Sagittal, 0, 1},
	}
	for _, tt := range tests {
		row, col := tt.axis.Plane()
		if row != tt.row || col != tt.col {
			t.Errorf("%v.Plane() = %d,%d, want %d,%d", tt.axis, row, col, tt.row, tt.col)
		}
	}
}

func TestAxisString(t *testing.T) {
	if Axial.String() != "axial" || Coronal.String() != "coronal" || Sagittal.String() != "sagittal" {
		t.Error("axis names should match anatomical terms")
	}
	if Axis(9).String() != "9" {
		t.Errorf("unknown axis String() = %q, want 9", Axis(9).String())
	}
}

func TestAxisValid(t *testing.T) {
	for _, a := range []Axis{Axial, Coronal, Sagittal} {
		if !a.Valid() {
			t.Errorf("%v.Valid() = false", a)
		}
	}
	if Axis(3).Valid() || Axis(-1).Valid() {
		t.Error("out-of-range axes should be invalid")
	}
}
