package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// segmentCommand creates the segmentation command.
func (c *CLI) segmentCommand() *cobra.Command {
	var outPrefix string

	cmd := &cobra.Command{
		Use:   "segment <anat.nii.gz>",
		Short: "Skull-strip and segment an anatomical volume (FSL)",
		Long: `Skull-strip and segment an anatomical volume.

Runs FSL bet to remove the skull, then fast to produce a tissue label
volume. The label volume is the input for the checkerboard stage.

Requires FSL on the PATH (or tools.fsl_bin_dir in the config).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := outPrefix
			if prefix == "" {
				prefix = strings.TrimSuffix(strings.TrimSuffix(args[0], ".gz"), ".nii")
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Segmenting...")
			spinner.Start()

			label, err := c.toolchain().Segmenter.Segment(cmd.Context(), args[0], prefix)
			if err != nil {
				spinner.StopWithError("Segmentation failed")
				return err
			}
			spinner.Stop()

			printSuccess("Segmentation complete")
			printFile(label)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPrefix, "out-prefix", "o", "", "output prefix (default: input without extension)")

	return cmd
}
