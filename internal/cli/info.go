package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbruckner/warpviz/pkg/volume"
)

// infoCommand creates the volume inspection command.
func (c *CLI) infoCommand() *cobra.Command {
	var npyPath string

	cmd := &cobra.Command{
		Use:   "info <volume.nii.gz>",
		Short: "Print volume dimensions and intensity statistics",
		Long: `Print volume dimensions and intensity statistics.

Useful for sanity-checking intermediate pipeline artifacts: a checkerboard
with mean 0 was painted into an empty label volume; a deformed checkerboard
with non-integer values was resampled with the wrong interpolation.

With --npy, the voxel data is also exported as a NumPy array (z,y,x order)
for inspection in Python.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(args[0], npyPath)
		},
	}

	cmd.Flags().StringVar(&npyPath, "npy", "", "also export voxel data as a .npy file")

	return cmd
}

func (c *CLI) runInfo(path, npyPath string) error {
	v, err := volume.Load(path)
	if err != nil {
		return err
	}

	nx, ny, nz := v.Dims()
	stats := v.Summarize()

	printKeyValue("path", path)
	printKeyValue("dims", fmt.Sprintf("%d × %d × %d", nx, ny, nz))
	printKeyValue("voxels", fmt.Sprintf("%d", stats.Total))
	printKeyValue("nonzero", fmt.Sprintf("%d (%.1f%%)", stats.Nonzero,
		100*float64(stats.Nonzero)/float64(stats.Total)))
	printKeyValue("min", fmt.Sprintf("%g", stats.Min))
	printKeyValue("max", fmt.Sprintf("%g", stats.Max))
	printKeyValue("mean", fmt.Sprintf("%.4f", stats.Mean))
	printKeyValue("std", fmt.Sprintf("%.4f", stats.StdDev))

	if npyPath != "" {
		if err := v.WriteNpy(npyPath); err != nil {
			return err
		}
		printFile(npyPath)
	}
	return nil
}
