package volume

import (
	"strconv"
	"strings"

	"github.com/tbruckner/warpviz/pkg/errors"
)

// Axis selects which volume axis is treated as "depth" and excluded from the
// 2D checkerboard grid. The remaining two axes, in ascending order, form the
// (row, col) plane.
type Axis int

// Recognized view axes. Axial treats the first volume axis as depth.
const (
	Axial    Axis = 0
	Coronal  Axis = 1
	Sagittal Axis = 2
)

// ParseAxis parses an axis from a CLI/API value. It accepts the numeric form
// ("0", "1", "2") and the anatomical names ("axial", "coronal", "sagittal"),
// case-insensitively.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "axial":
		return Axial, nil
	case "1", "coronal":
		return Coronal, nil
	case "2", "sagittal":
		return Sagittal, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidAxis,
		"invalid view axis: %q (must be 0/axial, 1/coronal, or 2/sagittal)", s)
}

// Valid reports whether the axis is one of the three recognized values.
func (a Axis) Valid() bool {
	return a == Axial || a == Coronal || a == Sagittal
}

// Plane returns the two in-plane axes orthogonal to a, in ascending order.
// These are the (row, col) axes of the checkerboard grid.
func (a Axis) Plane() (row, col int) {
	switch a {
	case Axial:
		return 1, 2
	case Coronal:
		return 0, 2
	default:
		return 0, 1
	}
}

// String returns the anatomical name of the axis.
func (a Axis) String() string {
	switch a {
	case Axial:
		return "axial"
	case Coronal:
		return "coronal"
	case Sagittal:
		return "sagittal"
	}
	return strconv.Itoa(int(a))
}
