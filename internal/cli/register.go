package cli

import (
	"github.com/spf13/cobra"
)

// registerCommand creates the registration command.
func (c *CLI) registerCommand() *cobra.Command {
	var outPrefix string

	cmd := &cobra.Command{
		Use:   "register <atlas.nii.gz> <anat.nii.gz>",
		Short: "Compute the atlas-to-subject transform (ANTs)",
		Long: `Compute the atlas-to-subject transform.

Runs antsRegistration with an affine stage followed by SyN to produce the
affine matrix, the forward warp field and the inverse warp field. The
inverse warp is what the warp stage pulls the checkerboard through.

Requires ANTs on the PATH (or tools.ants_bin_dir in the config).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spinner := newSpinnerWithContext(cmd.Context(), "Registering (this can take a while)...")
			spinner.Start()

			t, err := c.toolchain().Registrator.Register(cmd.Context(), args[0], args[1], outPrefix)
			if err != nil {
				spinner.StopWithError("Registration failed")
				return err
			}
			spinner.Stop()

			printSuccess("Registration complete")
			printFile(t.AffinePath)
			printFile(t.WarpPath)
			printFile(t.InverseWarpPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPrefix, "out-prefix", "o", "xfm_", "output prefix for transform files")

	return cmd
}
