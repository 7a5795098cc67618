// Package pipeline provides the deformation-visualization pipeline for warpviz.
//
// This package implements the complete segment → checkerboard → register →
// warp → surface pipeline that can be used by the CLI and the HTTP API. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of five stages plus an independent colormap stage:
//
//  1. Segment: skull-strip and segment the anatomical scan (FSL)
//  2. Checkerboard: paint the pattern into the label volume
//  3. Register: compute atlas ↔ subject transforms (ANTs)
//  4. Warp: pull the checkerboard back through the inverse warp (ANTs)
//  5. Surface: extract a colored mesh from label + deformed checkerboard
//
// The colormap stage has no volume inputs and runs independently.
// Each stage can be run on its own or as part of the complete pipeline;
// every stage is a pure function of its input files and options, so stage
// outputs are cached under content-hash keys.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger, toolchain)
//	opts := pipeline.Options{
//	    Anat:    "sub-01_T1w.nii.gz",
//	    Atlas:   "mni152.nii.gz",
//	    WorkDir: "work/sub-01",
//	    OutDir:  "out/sub-01",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.SurfacePath)
package pipeline

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/tbruckner/warpviz/pkg/checker"
	"github.com/tbruckner/warpviz/pkg/colormap"
	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/tools"
	"github.com/tbruckner/warpviz/pkg/volume"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultGridSize is the default checkerboard cell side in voxels.
	DefaultGridSize = 10

	// DefaultColors is the default multi-mode color budget; cell indices
	// wrap modulo this value.
	DefaultColors = 512

	// DefaultBright is the default CIELAB lightness for the color table.
	DefaultBright = 0.6

	// DefaultDownsample is the default colormap stride.
	DefaultDownsample = 16
)

// Stage names, in execution order.
const (
	StageSegment  = "segment"
	StageChecker  = "checkerboard"
	StageColormap = "colormap"
	StageRegister = "register"
	StageWarp     = "warp"
	StageSurface  = "surface"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Inputs
	Anat  string `json:"anat,omitempty"`  // subject anatomical volume
	Atlas string `json:"atlas,omitempty"` // atlas template volume
	Label string `json:"label,omitempty"` // precomputed label volume (skips segment)

	// Precomputed transform files (skip the register stage)
	Affine      string `json:"affine,omitempty"`
	InverseWarp string `json:"inverse_warp,omitempty"`

	// Checkerboard options
	GridSize int          `json:"grid_size,omitempty"`
	Axis     volume.Axis  `json:"axis,omitempty"`
	Mode     checker.Mode `json:"mode,omitempty"`
	Colors   int          `json:"colors,omitempty"`

	// Colormap options
	Dim        int     `json:"dim,omitempty"`
	Bright     float64 `json:"bright,omitempty"`
	Downsample int     `json:"downsample,omitempty"`

	// Directories
	WorkDir string `json:"work_dir,omitempty"` // intermediate files
	OutDir  string `json:"out_dir,omitempty"`  // final artifacts

	// Refresh bypasses the cache for every stage.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Anat == "" && o.Label == "" {
		return errors.New(errors.ErrCodeInvalidInput, "anat or label volume is required")
	}
	if o.Anat == "" {
		return errors.New(errors.ErrCodeInvalidInput, "anat volume is required (warp reference grid)")
	}
	if o.Atlas == "" && !o.HasTransform() {
		return errors.New(errors.ErrCodeInvalidInput, "atlas is required unless a precomputed transform is given")
	}
	o.SetCheckerDefaults()
	o.SetColormapDefaults()
	cko := o.CheckerOptions()
	if err := cko.Validate(); err != nil {
		return err
	}
	co := o.ColormapOptions()
	if err := co.Validate(); err != nil {
		return err
	}
	if o.WorkDir == "" {
		o.WorkDir = "work"
	}
	if o.OutDir == "" {
		o.OutDir = "out"
	}
	o.validated = true
	return nil
}

// SetCheckerDefaults sets default values for checkerboard generation.
func (o *Options) SetCheckerDefaults() {
	if o.GridSize == 0 {
		o.GridSize = DefaultGridSize
	}
	if o.Mode == "" {
		o.Mode = checker.ModeBinary
	}
	if o.Mode == checker.ModeMulti && o.Colors == 0 {
		o.Colors = DefaultColors
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetColormapDefaults sets default values for color table generation.
func (o *Options) SetColormapDefaults() {
	if o.Dim == 0 {
		o.Dim = colormap.DefaultDim
	}
	if o.Bright == 0 {
		o.Bright = DefaultBright
	}
	if o.Downsample == 0 {
		o.Downsample = DefaultDownsample
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// HasTransform reports whether a precomputed transform was supplied, which
// skips the register stage.
func (o *Options) HasTransform() bool {
	return o.Affine != "" && o.InverseWarp != ""
}

// Transform builds the precomputed transform file set.
func (o *Options) Transform() tools.Transform {
	return tools.Transform{
		AffinePath:      o.Affine,
		InverseWarpPath: o.InverseWarp,
	}
}

// CheckerOptions builds the checkerboard generator options.
func (o *Options) CheckerOptions() checker.Options {
	return checker.Options{
		GridSize: o.GridSize,
		Axis:     o.Axis,
		Mode:     o.Mode,
		Colors:   o.Colors,
	}
}

// ColormapOptions builds the color table generator options.
func (o *Options) ColormapOptions() colormap.Options {
	return colormap.Options{
		Dim:        o.Dim,
		Bright:     o.Bright,
		Downsample: o.Downsample,
	}
}

// workPath joins a filename onto the working directory.
func (o *Options) workPath(name string) string {
	return filepath.Join(o.WorkDir, name)
}

// outPath joins a filename onto the output directory.
func (o *Options) outPath(name string) string {
	return filepath.Join(o.OutDir, name)
}
