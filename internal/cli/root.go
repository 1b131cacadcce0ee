package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cschone/bikefit/pkg/buildinfo"
	"github.com/cschone/bikefit/pkg/cache"
	"github.com/cschone/bikefit/pkg/pipeline"
)

const appName = "bikefit"

// Execute runs the bikefit CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (compute,
// render, compare, cache, serve, completion), configures logging based on
// the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "bikefit computes and draws bicycle frame geometry",
		Long:         `bikefit derives the full 2D geometry of a bicycle frame from a handful of published measurements, draws it, and compares bikes side by side.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cliConfig = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newComputeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

// =============================================================================
// Shared Helpers
// =============================================================================

// cacheDir returns the cache directory: bikefit.toml's cache_dir when set,
// otherwise XDG standard (~/.cache/bikefit/).
func cacheDir() (string, error) {
	if cliConfig.CacheDir != "" {
		return cliConfig.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// newCache builds the file cache, degrading to a null cache when disabled or
// when no cache directory can be resolved.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// parseFormats parses a comma-separated format string into a slice, falling
// back to the config file's formats and finally to SVG.
func parseFormats(s string) []string {
	if s == "" {
		if len(cliConfig.Formats) > 0 {
			return cliConfig.Formats
		}
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
