package tools

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
)

// FSL implements Segmenter by shelling out to bet (skull-stripping) and
// fast (tissue segmentation).
type FSL struct {
	// BinDir is the directory containing the FSL binaries. Empty means
	// they are resolved from PATH.
	BinDir string

	// Classes is the number of tissue classes fast should produce.
	// The usual value for T1 anatomy is 3 (CSF, grey matter, white matter).
	Classes int

	Logger *log.Logger
}

// NewFSL creates an FSL-backed segmenter.
func NewFSL(binDir string, classes int, logger *log.Logger) *FSL {
	if classes <= 0 {
		classes = 3
	}
	return &FSL{BinDir: binDir, Classes: classes, Logger: logger}
}

// Segment skull-strips anat with bet, segments the brain with fast, and
// returns the path of the resulting label volume. All outputs land next to
// outPrefix.
func (f *FSL) Segment(ctx context.Context, anat, outPrefix string) (string, error) {
	brain := outPrefix + "_brain.nii.gz"
	if err := run(ctx, f.Logger, f.bin("bet"), anat, brain, "-R"); err != nil {
		return "", err
	}

	if err := run(ctx, f.Logger, f.bin("fast"),
		"-n", strconv.Itoa(f.Classes),
		"-t", "1", // T1-weighted input
		"-o", outPrefix,
		brain,
	); err != nil {
		return "", err
	}

	// fast writes the discrete segmentation as <prefix>_seg.nii.gz.
	return outPrefix + "_seg.nii.gz", nil
}

func (f *FSL) bin(name string) string {
	if f.BinDir == "" {
		return name
	}
	return filepath.Join(f.BinDir, name)
}

// Ensure FSL implements Segmenter.
var _ Segmenter = (*FSL)(nil)
