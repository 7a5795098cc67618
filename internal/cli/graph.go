package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/pipeline"
)

// graphCommand creates the stage-graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the pipeline stage graph",
		Long: `Show the pipeline stage graph.

Prints the stage dependency graph in Graphviz DOT format, or renders it to
SVG with --format svg. Optional stages (skippable via precomputed inputs)
are drawn dashed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dot := stageDOT(pipeline.Graph())

			switch format {
			case "dot":
				return writeOutput([]byte(dot), output)
			case "svg":
				svg, err := renderDOT(cmd.Context(), dot)
				if err != nil {
					return err
				}
				return writeOutput(svg, output)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// stageDOT converts the stage graph to Graphviz DOT format.
func stageDOT(nodes []pipeline.StageNode) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pipeline {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		if n.Optional {
			fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", n.Name)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", n.Name)
		}
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, dep := range n.Deps {
			fmt.Fprintf(&buf, "  %q -> %q;\n", dep, n.Name)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// renderDOT renders DOT text to SVG using Graphviz.
func renderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to path, or stdout if path is empty.
func writeOutput(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	printFile(path)
	return nil
}
