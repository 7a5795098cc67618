package cli

import (
	"github.com/spf13/cobra"

	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/tools"
)

// warpCommand creates the inverse-warp command.
func (c *CLI) warpCommand() *cobra.Command {
	var (
		affine      string
		inverseWarp string
	)

	cmd := &cobra.Command{
		Use:   "warp <checkerboard.nii.gz> <reference.nii.gz> <output.nii.gz>",
		Short: "Pull a checkerboard through the inverse warp (ANTs)",
		Long: `Pull a checkerboard through the inverse warp.

Runs antsApplyTransforms with nearest-neighbor interpolation so that the
discrete cell values survive resampling. The reference volume defines the
output grid; use the subject's anatomical volume.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if affine == "" || inverseWarp == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--affine and --inverse-warp are required")
			}
			t := tools.Transform{
				AffinePath:      affine,
				InverseWarpPath: inverseWarp,
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Warping...")
			spinner.Start()

			if err := c.toolchain().Registrator.ApplyInverse(cmd.Context(), t, args[0], args[1], args[2]); err != nil {
				spinner.StopWithError("Warp failed")
				return err
			}
			spinner.Stop()

			printSuccess("Checkerboard warped")
			printFile(args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&affine, "affine", "", "affine transform file (required)")
	cmd.Flags().StringVar(&inverseWarp, "inverse-warp", "", "inverse warp field (required)")

	return cmd
}
