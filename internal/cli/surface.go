package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/tools"
)

// surfaceCommand creates the surface extraction command.
func (c *CLI) surfaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surface <label> <deformed> <output>",
		Short: "Extract colored surface meshes",
		Long: `Extract colored surface meshes.

Invokes the configured mesher binary (tools.mesher in the config) with a
label volume, a deformed checkerboard, and the output path. The mesher
builds the cortical surface from the label volume and colors it by sampling
the deformed checkerboard.

When all three arguments are directories, every label volume is paired with
the same-named deformed volume and meshed into the output directory.

Examples:
  warpviz surface seg.nii.gz deformed.nii.gz surface.vtk
  warpviz surface labels/ deformed/ meshes/`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := c.toolchain()
			if tc.Mesher == nil {
				return errors.New(errors.ErrCodeToolNotFound, "no mesher configured (set tools.mesher in the config)")
			}
			if isDir(args[0]) {
				return c.runSurfaceBatch(cmd.Context(), tc.Mesher, args[0], args[1], args[2])
			}
			return c.runSurface(cmd.Context(), tc.Mesher, args[0], args[1], args[2])
		},
	}

	return cmd
}

func (c *CLI) runSurface(ctx context.Context, mesher tools.Mesher, label, deformed, output string) error {
	spinner := newSpinnerWithContext(ctx, "Extracting surface...")
	spinner.Start()

	if err := mesher.Mesh(ctx, label, deformed, output); err != nil {
		spinner.StopWithError("Surface extraction failed")
		return err
	}
	spinner.Stop()

	printSuccess("Surface written")
	printFile(output)
	return nil
}

// runSurfaceBatch meshes every label volume in labelDir against the
// same-named deformed volume in deformedDir.
func (c *CLI) runSurfaceBatch(ctx context.Context, mesher tools.Mesher, labelDir, deformedDir, outDir string) error {
	if !isDir(deformedDir) {
		return errors.New(errors.ErrCodeInvalidInput, "%s is a directory but %s is not", labelDir, deformedDir)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create output directory %s", outDir)
	}

	entries, err := os.ReadDir(labelDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read label directory %s", labelDir)
	}

	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".nii.gz") {
			continue
		}
		deformed := filepath.Join(deformedDir, name)
		if _, err := os.Stat(deformed); err != nil {
			fmt.Println("  " + StyleWarning.Render(fmt.Sprintf("skipping %s: no matching deformed volume", name)))
			continue
		}
		output := filepath.Join(outDir, strings.TrimSuffix(name, ".nii.gz")+".vtk")

		c.Logger.Info("meshing", "label", name)
		if err := mesher.Mesh(ctx, filepath.Join(labelDir, name), deformed, output); err != nil {
			return err
		}
		printFile(output)
		count++
	}
	if count == 0 {
		return errors.New(errors.ErrCodeNotFound, "no label/deformed volume pairs found in %s and %s", labelDir, deformedDir)
	}

	printSuccess("Extracted %d surfaces", count)
	return nil
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
