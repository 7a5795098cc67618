package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ANTs output naming convention for a two-stage (affine + SyN) registration.
const (
	antsAffineSuffix      = "0GenericAffine.mat"
	antsWarpSuffix        = "1Warp.nii.gz"
	antsInverseWarpSuffix = "1InverseWarp.nii.gz"
)

// ANTS implements Registrator by shelling out to antsRegistration and
// antsApplyTransforms.
type ANTS struct {
	// BinDir is the directory containing the ANTs binaries. Empty means
	// they are resolved from PATH.
	BinDir string

	// Threads limits ANTs' internal parallelism (0 = tool default).
	Threads int

	Logger *log.Logger
}

// NewANTS creates an ANTs-backed registrator.
func NewANTS(binDir string, threads int, logger *log.Logger) *ANTS {
	return &ANTS{BinDir: binDir, Threads: threads, Logger: logger}
}

// Register runs an affine + SyN registration of moving onto fixed. Transform
// files are written under outPrefix following the ANTs naming convention.
func (a *ANTS) Register(ctx context.Context, fixed, moving, outPrefix string) (Transform, error) {
	args := []string{
		"--dimensionality", "3",
		"--output", outPrefix,
		"--interpolation", "Linear",
		"--transform", "Affine[0.1]",
		"--metric", fmt.Sprintf("MI[%s,%s,1,32,Regular,0.25]", fixed, moving),
		"--convergence", "[1000x500x250x100,1e-6,10]",
		"--shrink-factors", "8x4x2x1",
		"--smoothing-sigmas", "3x2x1x0vox",
		"--transform", "SyN[0.1,3,0]",
		"--metric", fmt.Sprintf("CC[%s,%s,1,4]", fixed, moving),
		"--convergence", "[100x70x50x20,1e-6,10]",
		"--shrink-factors", "8x4x2x1",
		"--smoothing-sigmas", "3x2x1x0vox",
	}
	if a.Threads > 0 {
		args = append(args, "--threads", fmt.Sprint(a.Threads))
	}

	if err := run(ctx, a.Logger, a.bin("antsRegistration"), args...); err != nil {
		return Transform{}, err
	}
	return Transform{
		AffinePath:      outPrefix + antsAffineSuffix,
		WarpPath:        outPrefix + antsWarpSuffix,
		InverseWarpPath: outPrefix + antsInverseWarpSuffix,
	}, nil
}

// ApplyInverse resamples input back into subject space through the inverse
// warp and inverted affine. Nearest-neighbor interpolation keeps the
// checkerboard's discrete values intact.
func (a *ANTS) ApplyInverse(ctx context.Context, t Transform, input, reference, output string) error {
	args := []string{
		"--dimensionality", "3",
		"--input", input,
		"--reference-image", reference,
		"--output", output,
		"--interpolation", "NearestNeighbor",
		"--transform", t.InverseWarpPath,
		"--transform", fmt.Sprintf("[%s,1]", t.AffinePath),
	}
	return run(ctx, a.Logger, a.bin("antsApplyTransforms"), args...)
}

func (a *ANTS) bin(name string) string {
	if a.BinDir == "" {
		return name
	}
	return filepath.Join(a.BinDir, name)
}

// Ensure ANTS implements Registrator.
var _ Registrator = (*ANTS)(nil)
