package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbruckner/warpviz/pkg/checker"
	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/pipeline"
	"github.com/tbruckner/warpviz/pkg/volume"
)

// runFlags holds the command-line flags for the run command.
type runFlags struct {
	manifest    string
	label       string
	affine      string
	inverseWarp string
	gridSize    int
	axisStr     string
	modeStr     string
	colors      int
	dim         int
	bright      float64
	downsample  int
	workDir     string
	outDir      string
	refresh     bool
	noCache     bool
}

// runCommand creates the full-pipeline command.
func (c *CLI) runCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [anat.nii.gz] [atlas.nii.gz]",
		Short: "Run the complete deformation-visualization pipeline",
		Long: `Run the complete deformation-visualization pipeline.

Stages: segment the anatomical volume, paint a checkerboard into the labels,
generate the color table, register atlas to subject, pull the checkerboard
through the inverse warp, and extract a colored surface mesh.

Stage outputs are cached by content hash, so re-runs with the same inputs
and options are fast.

Examples:
  warpviz run sub-01_T1w.nii.gz mni152.nii.gz
  warpviz run sub-01_T1w.nii.gz mni152.nii.gz --mode multi --grid 8
  warpviz run sub-01_T1w.nii.gz --label sub-01_seg.nii.gz --affine a.mat --inverse-warp iw.nii.gz
  warpviz run --manifest study.yaml --out-dir out/`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.manifest != "" {
				return c.runBatch(cmd.Context(), flags)
			}
			if len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "anat volume or --manifest is required")
			}
			opts, err := c.pipelineOptions(flags)
			if err != nil {
				return err
			}
			opts.Anat = args[0]
			if len(args) > 1 {
				opts.Atlas = args[1]
			}
			return c.runPipeline(cmd.Context(), opts, flags.noCache)
		},
	}

	cmd.Flags().StringVar(&flags.manifest, "manifest", "", "batch manifest (YAML) instead of positional inputs")
	cmd.Flags().StringVar(&flags.label, "label", "", "precomputed label volume (skips segmentation)")
	cmd.Flags().StringVar(&flags.affine, "affine", "", "precomputed affine transform (with --inverse-warp, skips registration)")
	cmd.Flags().StringVar(&flags.inverseWarp, "inverse-warp", "", "precomputed inverse warp field")
	cmd.Flags().IntVarP(&flags.gridSize, "grid", "g", 0, "checkerboard cell side in voxels")
	cmd.Flags().StringVarP(&flags.axisStr, "axis", "a", "", "constant axis: axial, coronal, sagittal")
	cmd.Flags().StringVarP(&flags.modeStr, "mode", "m", "", "pattern mode: binary, multi")
	cmd.Flags().IntVar(&flags.colors, "colors", 0, "color budget for multi mode")
	cmd.Flags().IntVar(&flags.dim, "dim", 0, "colormap chroma plane side length")
	cmd.Flags().Float64Var(&flags.bright, "bright", 0, "colormap CIELAB lightness in [0,1]")
	cmd.Flags().IntVar(&flags.downsample, "downsample", 0, "colormap sampling stride")
	cmd.Flags().StringVar(&flags.workDir, "work-dir", "work", "directory for intermediate files")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "out", "directory for final artifacts")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "bypass the cache for every stage")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

// pipelineOptions merges run flags with config defaults.
func (c *CLI) pipelineOptions(flags runFlags) (pipeline.Options, error) {
	opts := c.baseOptions()
	opts.Label = flags.label
	opts.Affine = flags.affine
	opts.InverseWarp = flags.inverseWarp
	opts.WorkDir = flags.workDir
	opts.OutDir = flags.outDir
	opts.Refresh = flags.refresh

	if flags.gridSize != 0 {
		opts.GridSize = flags.gridSize
	}
	if flags.colors != 0 {
		opts.Colors = flags.colors
	}
	if flags.dim != 0 {
		opts.Dim = flags.dim
	}
	if flags.bright != 0 {
		opts.Bright = flags.bright
	}
	if flags.downsample != 0 {
		opts.Downsample = flags.downsample
	}

	axisStr := flags.axisStr
	if axisStr == "" {
		axisStr = c.Config.Checkerboard.Axis
	}
	axis, err := volume.ParseAxis(axisStr)
	if err != nil {
		return opts, err
	}
	opts.Axis = axis

	modeStr := flags.modeStr
	if modeStr == "" {
		modeStr = c.Config.Checkerboard.Mode
	}
	mode, err := checker.ParseMode(modeStr)
	if err != nil {
		return opts, err
	}
	opts.Mode = mode

	return opts, nil
}

// runPipeline executes the pipeline for a single subject and reports results.
func (c *CLI) runPipeline(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	start := time.Now()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	printSuccess("Pipeline complete (%s)", time.Since(start).Round(time.Millisecond))
	printStage(pipeline.StageSegment, result.CacheInfo.SegmentHit)
	printStage(pipeline.StageChecker, result.CacheInfo.CheckerHit)
	printStage(pipeline.StageColormap, result.CacheInfo.ColormapHit)
	printStage(pipeline.StageRegister, result.CacheInfo.RegisterHit)
	printStage(pipeline.StageWarp, result.CacheInfo.WarpHit)
	printStage(pipeline.StageSurface, result.CacheInfo.SurfaceHit)
	printFile(result.DeformedPath)
	printFile(result.ColormapPath)
	printFile(result.SurfacePath)
	return nil
}

// runBatch processes every subject of a manifest sequentially, with an
// interactive progress display.
func (c *CLI) runBatch(ctx context.Context, flags runFlags) error {
	manifest, err := pipeline.LoadManifest(flags.manifest)
	if err != nil {
		return err
	}

	base, err := c.pipelineOptions(flags)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	progress := newBatchProgress(manifest.Subjects)
	progress.Start()

	failed := 0
	for _, subject := range manifest.Subjects {
		if ctx.Err() != nil {
			progress.Finish()
			return ctx.Err()
		}
		progress.SubjectStarted(subject.ID)

		opts := manifest.Options(subject, base)
		_, err := runner.Execute(ctx, opts)
		progress.SubjectFinished(subject.ID, err)
		if err != nil {
			failed++
			c.Logger.Error("subject failed", "subject", subject.ID, "error", err)
		}
	}
	progress.Finish()

	if failed > 0 {
		return errors.New(errors.ErrCodeInternal, "%d of %d subjects failed", failed, len(manifest.Subjects))
	}
	printSuccess("Processed %d subjects", len(manifest.Subjects))
	return nil
}
