package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/errors"
	"github.com/matzehuels/tooltree/pkg/format"
	"github.com/matzehuels/tooltree/pkg/pipeline"
)

// pipelineFlags binds the treemap options shared by the build, render,
// levels, stats and browse commands. Flags that were set on the command line
// override values read from the config file.
type pipelineFlags struct {
	config      string
	inputFormat string

	levels []string
	metric string
	extras []string
	root   string

	rootMax  int
	rootMin  float64
	childMax int
	childMin float64

	prefix     string
	postfix    string
	decimals   int
	percentage bool
	magnitude  bool

	colorColumn string
	colorAgg    string
	colorScale  string

	noCache bool
	refresh bool
}

// register adds the flags to cmd.
func (f *pipelineFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()

	// Input
	fl.StringVarP(&f.config, "config", "c", "", "config file (default: ./"+pipeline.DefaultConfigFile+" if present)")
	fl.StringVar(&f.inputFormat, "input-format", "", "input format: csv, json (default: from file extension)")

	// Hierarchy
	fl.StringSliceVarP(&f.levels, "level", "l", nil, "grouping column, outermost first (repeatable or comma-separated)")
	fl.StringVarP(&f.metric, "metric", "m", "", "numeric column that sizes the nodes")
	fl.StringSliceVar(&f.extras, "extra", nil, "extra tooltip metric as column or column:agg (sum, mean, min, max, count)")
	fl.StringVar(&f.root, "root", "", "root node label")

	// Pruning
	fl.IntVar(&f.rootMax, "max-root-children", 0, "keep at most this many top-level nodes (default: no limit)")
	fl.Float64Var(&f.rootMin, "min-root-fraction", 0, "drop top-level nodes below this share of the total")
	fl.IntVar(&f.childMax, "max-children", 0, "keep at most this many children per node (default: no limit)")
	fl.Float64Var(&f.childMin, "min-fraction", 0, "drop children below this share of their parent")

	// Metric formatting
	fl.StringVar(&f.prefix, "prefix", "", "metric prefix in tooltips, e.g. $")
	fl.StringVar(&f.postfix, "postfix", "", "metric postfix in tooltips, e.g. ms")
	fl.IntVar(&f.decimals, "decimals", 0, "metric decimal places in tooltips")
	fl.BoolVar(&f.percentage, "percentage", false, "print the metric as a percentage")
	fl.BoolVar(&f.magnitude, "magnitude", false, "abbreviate the metric (1.2K, 3.4M)")

	// Colors
	fl.StringVar(&f.colorColumn, "color-column", "", "color nodes by an aggregate of this column")
	fl.StringVar(&f.colorAgg, "color-agg", "", "aggregation for --color-column (default: mean, unless the column is the metric or an --extra)")
	fl.StringVar(&f.colorScale, "colorscale", "", "continuous color scale name, e.g. Viridis")

	// Cache
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fl.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// options resolves the pipeline options for cmd: config file first, then
// the input argument, then explicitly set flags.
func (f *pipelineFlags) options(cmd *cobra.Command, args []string) (pipeline.Options, error) {
	var opts pipeline.Options

	path := f.config
	if path == "" {
		if _, err := os.Stat(pipeline.DefaultConfigFile); err == nil {
			path = pipeline.DefaultConfigFile
		}
	}
	if path != "" {
		cfg, err := pipeline.LoadConfig(path)
		if err != nil {
			return opts, fmt.Errorf("load config: %w", err)
		}
		opts = cfg
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}
	if opts.Input == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "no input: pass a table file or set input in %s", pipeline.DefaultConfigFile)
	}

	changed := cmd.Flags().Changed
	if changed("input-format") {
		opts.InputFormat = f.inputFormat
	}
	if changed("level") {
		opts.Levels = f.levels
	}
	if changed("metric") {
		opts.Metric = f.metric
	}
	if changed("extra") {
		extras, err := parseExtras(f.extras)
		if err != nil {
			return opts, err
		}
		opts.ExtraMetrics = extras
	}
	if changed("root") {
		opts.Root = f.root
	}

	if changed("max-root-children") {
		opts.RootLimits.MaxChildren = treemap.MaxChildren(f.rootMax)
	}
	if changed("min-root-fraction") {
		opts.RootLimits.MinFraction = f.rootMin
	}
	if changed("max-children") {
		opts.ChildLimits.MaxChildren = treemap.MaxChildren(f.childMax)
	}
	if changed("min-fraction") {
		opts.ChildLimits.MinFraction = f.childMin
	}

	if changed("prefix") {
		opts.MetricFormat.Prefix = f.prefix
	}
	if changed("postfix") {
		opts.MetricFormat.Postfix = f.postfix
	}
	if changed("decimals") {
		opts.MetricFormat.Decimals = format.Decimals(f.decimals)
	}
	if changed("percentage") {
		opts.MetricFormat.Percentage = f.percentage
	}
	if changed("magnitude") {
		opts.MetricFormat.OrderOfMagnitude = f.magnitude
	}

	if changed("color-column") {
		opts.Colors.Column = f.colorColumn
	}
	if changed("color-agg") {
		opts.Colors.Agg = treemap.Agg(f.colorAgg)
	}
	if changed("colorscale") {
		opts.Colors.Scale.Name = f.colorScale
	}

	opts.Refresh = f.refresh
	return opts, nil
}

// parseExtras parses "column" and "column:agg" extra metric flags. The
// aggregation is checked by the build.
func parseExtras(specs []string) ([]treemap.Metric, error) {
	var out []treemap.Metric
	for _, s := range specs {
		col, agg, _ := strings.Cut(s, ":")
		if col == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid extra metric %q", s)
		}
		out = append(out, treemap.Metric{Column: col, Agg: treemap.Agg(agg)})
	}
	return out, nil
}
