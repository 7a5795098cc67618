package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbruckner/warpviz/pkg/colormap"
)

// colormapCommand creates the color table generation command.
func (c *CLI) colormapCommand() *cobra.Command {
	var (
		dim        int
		bright     float64
		downsample int
		output     string
	)

	cmd := &cobra.Command{
		Use:   "colormap",
		Short: "Generate a CIELAB color lookup table",
		Long: `Generate a CIELAB color lookup table.

The table sweeps the a/b chroma plane at a fixed lightness and converts each
sampled point to sRGB. Downsampling with a stride keeps the table small enough
to embed in surface viewers.

Examples:
  warpviz colormap -o colormap.json
  warpviz colormap --dim 1024 --bright 0.5 --downsample 32`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dim == 0 {
				dim = c.Config.Colormap.Dim
			}
			if bright == 0 {
				bright = c.Config.Colormap.Bright
			}
			if downsample == 0 {
				downsample = c.Config.Colormap.Downsample
			}
			return c.runColormap(colormap.Options{
				Dim:        dim,
				Bright:     bright,
				Downsample: downsample,
			}, output)
		},
	}

	cmd.Flags().IntVar(&dim, "dim", 0, "side length of the sampled chroma plane")
	cmd.Flags().Float64Var(&bright, "bright", 0, "CIELAB lightness in [0,1]")
	cmd.Flags().IntVar(&downsample, "downsample", 0, "sampling stride")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runColormap(opts colormap.Options, output string) error {
	table, err := colormap.Generate(opts)
	if err != nil {
		return err
	}

	if output == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	}
	if err := table.WriteFile(output); err != nil {
		return err
	}

	printSuccess("Color table written")
	printFile(output)
	printDetail("%d entries · dim %d · stride %d · bright %g",
		table.Len(), table.Dim, table.Downsample, table.Bright)
	return nil
}
