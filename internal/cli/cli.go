// Package cli implements the warpviz command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tbruckner/warpviz/pkg/buildinfo"
	"github.com/tbruckner/warpviz/pkg/cache"
	"github.com/tbruckner/warpviz/pkg/config"
	"github.com/tbruckner/warpviz/pkg/pipeline"
	"github.com/tbruckner/warpviz/pkg/tools"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "warpviz",
		Short:        "Warpviz visualizes nonlinear registration deformations",
		Long: `Warpviz makes nonlinear registration deformations visible by painting a
checkerboard pattern into a subject's brain, warping it through the
atlas-to-subject transform, and extracting a colored surface mesh. A bent
checkerboard line is a deformation you can see.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/warpviz/config.toml)")

	// Register all subcommands
	root.AddCommand(c.checkerboardCommand())
	root.AddCommand(c.colormapCommand())
	root.AddCommand(c.segmentCommand())
	root.AddCommand(c.registerCommand())
	root.AddCommand(c.warpCommand())
	root.AddCommand(c.surfaceCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope := c.Config.Cache.Scope; scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope+":")
	}
	return pipeline.NewRunner(store, keyer, c.Logger, c.toolchain()), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
	}
	dir, err := c.Config.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// toolchain builds the external tool wrappers from the config.
func (c *CLI) toolchain() tools.Toolchain {
	tc := tools.Toolchain{
		Registrator: tools.NewANTS(c.Config.Tools.ANTsBinDir, c.Config.Tools.ANTsThreads, c.Logger),
		Segmenter:   tools.NewFSL(c.Config.Tools.FSLBinDir, c.Config.Tools.FSLClasses, c.Logger),
	}
	if c.Config.Tools.Mesher != "" {
		tc.Mesher = tools.NewExecMesher(c.Config.Tools.Mesher, c.Logger)
	}
	return tc
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions seeds pipeline options from the config file defaults.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		GridSize:   c.Config.Checkerboard.GridSize,
		Colors:     c.Config.Checkerboard.Colors,
		Dim:        c.Config.Colormap.Dim,
		Bright:     c.Config.Colormap.Bright,
		Downsample: c.Config.Colormap.Downsample,
		Logger:     c.Logger,
	}
}
