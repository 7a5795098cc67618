// Package tools wraps the external binaries the pipeline delegates to:
// ANTs for registration, FSL for skull-stripping and tissue segmentation,
// and a surface converter for mesh extraction.
//
// Each tool sits behind a narrow interface so the pipeline's sequencing
// logic is testable without the real binaries installed; tests use fakes.
// The real implementations are file-to-file: they consume paths, invoke the
// binary, and report the paths of the outputs. Tool internals are opaque -
// a nonzero exit is terminal for the invocation, with no retry.
package tools

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// Transform holds the file outputs of a registration: an affine matrix and
// a nonlinear warp field, plus the inverse warp mapping atlas-space
// coordinates back to subject space.
type Transform struct {
	AffinePath      string `json:"affine_path"`
	WarpPath        string `json:"warp_path"`
	InverseWarpPath string `json:"inverse_warp_path"`
}

// Registrator computes and applies spatial transforms between volumes.
type Registrator interface {
	// Register aligns moving to fixed, writing transform files under
	// outPrefix and returning their paths.
	Register(ctx context.Context, fixed, moving, outPrefix string) (Transform, error)

	// ApplyInverse resamples input through the inverse transform onto the
	// reference grid, writing the result to output. Nearest-neighbor
	// interpolation is used: the inputs are discrete label volumes.
	ApplyInverse(ctx context.Context, t Transform, input, reference, output string) error
}

// Segmenter produces a tissue-class label volume from a raw anatomical scan.
type Segmenter interface {
	// Segment skull-strips and segments anat, writing outputs under
	// outPrefix and returning the label volume's path.
	Segment(ctx context.Context, anat, outPrefix string) (string, error)
}

// Mesher extracts a colored surface mesh from a label volume and a
// co-registered deformed checkerboard volume.
type Mesher interface {
	// Mesh writes a polygonal surface file to output.
	Mesh(ctx context.Context, label, deformed, output string) error
}

// Toolchain bundles the external collaborators used by a pipeline run.
type Toolchain struct {
	Registrator Registrator
	Segmenter   Segmenter
	Mesher      Mesher
}

// discard returns l, or a silent logger when l is nil.
func discard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return l
}
