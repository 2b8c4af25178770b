package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/buildinfo"
	"github.com/matzehuels/tooltree/pkg/cache"
	"github.com/matzehuels/tooltree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tooltree"

	// defaultAddr is the listen address of "tooltree serve".
	defaultAddr = ":8080"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tooltree turns tabular data into hierarchical treemaps",
		Long:         `Tooltree groups a table by one or more columns, prunes the hierarchy to the largest groups, and renders it as an interactive treemap with rich tooltips.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.levelsCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	for _, cmd := range root.Commands() {
		registerCompletions(cmd)
	}

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

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

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tooltree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// basePath derives the base output path from the output and input file
// paths. Known format extensions are stripped from either.
func basePath(output, input string) string {
	p := output
	if p == "" {
		p = input
	}
	if strings.HasSuffix(p, treemapExt) && len(p) > len(treemapExt) {
		return strings.TrimSuffix(p, treemapExt)
	}
	best := ""
	for _, ext := range pipeline.Extensions {
		if strings.HasSuffix(p, ext) && len(ext) > len(best) && len(p) > len(ext) {
			best = ext
		}
	}
	if best == "" {
		best = filepath.Ext(p)
	}
	return strings.TrimSuffix(p, best)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
