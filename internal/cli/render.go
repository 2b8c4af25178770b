package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/pipeline"
)

// renderCommand creates the render command (table -> visual outputs).
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      pipelineFlags
		output     string
		formatsStr string
		title      string
		height     int
		width      int
		maxDepth   int
		rootColor  string
	)

	cmd := &cobra.Command{
		Use:   "render [table.csv|table.json]",
		Short: "Render a table as a treemap",
		Long: `Render a table as a treemap.

The render command runs the full pipeline: it loads the table, builds the
treemap, and writes one file per requested format:

  html    standalone interactive page (default)
  plotly  plotly figure JSON
  json    treemap data
  dot     Graphviz node-link hierarchy
  svg     node-link hierarchy as SVG
  png     SVG rasterized with rsvg-convert
  pdf     SVG converted with rsvg-convert

Results are cached locally for faster subsequent runs.

Examples:
  tooltree render costs.csv -l team,service -m cost
  tooltree render costs.csv -l team -m cost -f html,svg -o out/costs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args)
			if err != nil {
				return err
			}
			if formats := parseFormats(formatsStr); len(formats) > 0 {
				opts.Formats = formats
			}
			changed := cmd.Flags().Changed
			if changed("title") {
				opts.Title = title
			}
			if changed("height") {
				opts.Plotly.Height = height
			}
			if changed("width") {
				opts.Plotly.Width = width
			}
			if changed("max-depth") {
				opts.Plotly.MaxDepth = maxDepth
				opts.Nodelink.MaxDepth = maxDepth
			}
			if changed("root-color") {
				opts.Plotly.RootColor = rootColor
				opts.Colors.Root = rootColor
			}
			return c.runRender(cmd.Context(), opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), plotly, json, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&title, "title", "", "HTML page title")
	cmd.Flags().IntVar(&height, "height", 0, "figure height in pixels")
	cmd.Flags().IntVar(&width, "width", 0, "figure width in pixels")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "levels visible at once (0: all)")
	cmd.Flags().StringVar(&rootColor, "root-color", "", "root tile color")

	return cmd
}

// runRender builds the treemap and writes one artifact per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sp := startSpinner(ctx, spinnerOut, loadStage(opts.Input))
	defer sp.stop()

	built, buildHit, err := c.buildWith(ctx, runner, opts, sp)
	if err != nil {
		return err
	}

	sp.stage(renderStage(opts.Formats))
	prog := newProgress(loggerFromContext(ctx))
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, built.Data, opts)
	if err != nil {
		sp.fail("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	sp.stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.Join(opts.Formats, ", ")))
	warnEmptyLevels(built.Levels)

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     opts.Input,
		output:    output,
		built:     built,
		cacheHit:  buildHit && renderHit,
	})
}

// artifactWriteParams holds parameters for writing rendered artifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	built     pipeline.Built
	cacheHit  bool
}

// writeArtifacts writes one file per format. A single format with an
// explicit output is written to exactly that path; otherwise files are
// named after the base path and the format's extension.
func writeArtifacts(p artifactWriteParams) error {
	paths, err := artifactPaths(p.formats, p.input, p.output)
	if err != nil {
		return err
	}
	for i, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("missing %s output", format)
		}
		if err := os.WriteFile(paths[i], data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[i], err)
		}
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.built.Data.Len(), len(p.built.Levels), p.cacheHit)
	printLevelLines(p.built.Levels, p.built.Data.TotalSize)
	return nil
}

// artifactPaths returns the output path of each format, in order.
func artifactPaths(formats []string, input, output string) ([]string, error) {
	if len(formats) == 1 && output != "" {
		return []string{output}, nil
	}
	base := basePath(output, input)
	paths := make([]string, len(formats))
	for i, format := range formats {
		ext, ok := pipeline.Extensions[format]
		if !ok {
			return nil, pipeline.ValidateFormat(format)
		}
		if format == pipeline.FormatJSON {
			ext = treemapExt
		}
		paths[i] = base + ext
	}
	return paths, nil
}
