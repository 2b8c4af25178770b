package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	pkgio "github.com/matzehuels/tooltree/pkg/io"
	"github.com/matzehuels/tooltree/pkg/pipeline"
)

// treemapExt is appended to the input's base name by "tooltree build".
const treemapExt = ".treemap.json"

// buildCommand creates the build command for computing treemap data.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "build [table.csv|table.json]",
		Short: "Build treemap data from a table",
		Long: `Build treemap data from a table.

The build command groups the table by the given levels, sums the metric per
group, prunes each parent's children to the largest ones, and writes the
resulting ids, labels, parents, sizes and tooltips as JSON.

Options are read from ./tooltree.toml (or --config) and overridden by flags.
Results are cached locally for faster subsequent runs.

Examples:
  tooltree build costs.csv -l team,service -m cost
  tooltree build costs.csv -l team -l service -m cost --max-children 10 -o -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args)
			if err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>"+treemapExt+")")

	return cmd
}

// runBuild builds the treemap and writes it as JSON.
func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	built, cacheHit, err := c.build(ctx, opts, noCache)
	if err != nil {
		return err
	}

	if output == "-" {
		return pkgio.WriteJSON(built.Data, os.Stdout)
	}
	if output == "" {
		output = basePath("", opts.Input) + treemapExt
	}
	if err := pkgio.ExportJSON(built.Data, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Treemap built")
	printFile(output)
	printStats(built.Data.Len(), len(built.Levels), cacheHit)
	printLevelLines(built.Levels, built.Data.TotalSize)
	printNewline()
	printNextStep("Render", appName+" render "+opts.Input)
	return nil
}

// build loads the input table and builds its treemap through a cached
// runner.
func (c *CLI) build(ctx context.Context, opts pipeline.Options, noCache bool) (pipeline.Built, bool, error) {
	opts.Logger = c.Logger
	if err := opts.ValidateForBuild(); err != nil {
		return pipeline.Built{}, false, err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return pipeline.Built{}, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sp := startSpinner(ctx, spinnerOut, loadStage(opts.Input))
	defer sp.stop()

	built, cacheHit, err := c.buildWith(ctx, runner, opts, sp)
	if err != nil {
		return pipeline.Built{}, false, err
	}
	sp.stop()
	warnEmptyLevels(built.Levels)
	return built, cacheHit, nil
}

// buildWith loads the input and builds its treemap, showing each stage on
// sp. Options must already be validated for building.
func (c *CLI) buildWith(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, sp *spinner) (pipeline.Built, bool, error) {
	opts.Logger = c.Logger
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	in, err := pipeline.Load(opts)
	if err != nil {
		sp.fail("Load failed")
		return pipeline.Built{}, false, fmt.Errorf("load %s: %w", opts.Input, err)
	}
	logger.Debug("loaded input", "path", opts.Input, "rows", in.Frame.Len(), "columns", len(in.Frame.Columns()))

	sp.stage(buildStage(in.Frame.Len(), opts.Levels))
	built, cacheHit, err := runner.BuildWithCacheInfo(ctx, in, opts)
	if err != nil {
		sp.fail("Build failed")
		return pipeline.Built{}, false, fmt.Errorf("build: %w", err)
	}
	if ctx.Err() != nil {
		return pipeline.Built{}, false, ctx.Err()
	}
	prog.done(fmt.Sprintf("Built %d nodes from %d rows", built.Data.Len(), in.Frame.Len()))
	return built, cacheHit, nil
}

// warnEmptyLevels flags levels whose groups were all pruned.
func warnEmptyLevels(levels []treemap.LevelStats) {
	for _, s := range levels {
		if s.Candidates > 0 && s.Kept == 0 {
			printWarning("Level %q kept none of its %d groups", s.Column, s.Candidates)
		}
	}
}
