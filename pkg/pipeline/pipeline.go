// Package pipeline provides the treemap pipeline shared by the CLI and the
// API server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the source table from a CSV or JSON records file
//  2. Build: Aggregate, prune and label the table into treemap data
//  3. Render: Produce outputs (treemap JSON, plotly figure, HTML page,
//     DOT, SVG, PNG, PDF)
//
// Build and render results are cached by the [Runner] under content-derived
// keys, so re-running with the same input and options is cheap.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "costs.csv",
//	    Levels:  []string{"team", "service"},
//	    Metric:  "cost",
//	    Formats: []string{"html"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts["html"]
//
// Options can also be read from a TOML file with [LoadConfig].
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tooltree/pkg/cache"
	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/errors"
	"github.com/matzehuels/tooltree/pkg/format"
	"github.com/matzehuels/tooltree/pkg/render/nodelink"
	"github.com/matzehuels/tooltree/pkg/render/plotly"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPNGScale is the rasterization scale for PNG output.
	DefaultPNGScale = 2.0

	// DefaultTitle is the HTML page title when none is given.
	DefaultTitle = "tooltree"

	// PathSeparator separates level values in node color path keys, as in
	// "web/frontend".
	PathSeparator = "/"
)

// Format constants for output formats.
const (
	FormatJSON   = "json"
	FormatPlotly = "plotly"
	FormatHTML   = "html"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatPDF    = "pdf"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatHTML

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:   true,
	FormatPlotly: true,
	FormatHTML:   true,
	FormatDOT:    true,
	FormatSVG:    true,
	FormatPNG:    true,
	FormatPDF:    true,
}

// Extensions maps output formats to file extensions.
var Extensions = map[string]string{
	FormatJSON:   ".json",
	FormatPlotly: ".plotly.json",
	FormatHTML:   ".html",
	FormatDOT:    ".dot",
	FormatSVG:    ".svg",
	FormatPNG:    ".png",
	FormatPDF:    ".pdf",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the treemap pipeline.
// This struct supports JSON serialization for API requests and TOML for
// config files.
type Options struct {
	// Input options
	Input       string `json:"input,omitempty" toml:"input"`
	InputFormat string `json:"input_format,omitempty" toml:"input_format"` // csv or json; inferred from Input when empty

	// Build options
	Levels       []string         `json:"levels" toml:"levels"`
	Metric       string           `json:"metric" toml:"metric"`
	ExtraMetrics []treemap.Metric `json:"extra_metrics,omitempty" toml:"extra_metrics"`
	MetricFormat format.Options   `json:"metric_format" toml:"metric_format"`
	Root         string           `json:"root,omitempty" toml:"root"`
	RootLimits   treemap.Limits   `json:"root_limits" toml:"root_limits"`
	ChildLimits  treemap.Limits   `json:"child_limits" toml:"child_limits"`

	// Color options
	Colors ColorOptions `json:"colors" toml:"colors"`

	// Render options
	Formats  []string         `json:"formats,omitempty" toml:"formats"`
	Title    string           `json:"title,omitempty" toml:"title"`
	Plotly   plotly.Options   `json:"plotly" toml:"plotly"`
	Nodelink nodelink.Options `json:"nodelink" toml:"nodelink"`
	PNGScale float64          `json:"png_scale,omitempty" toml:"png_scale"`

	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ColorOptions selects how the treemap is colored. Node coloring (Column or
// Nodes) and branch coloring (Branches or BranchMap) are mutually exclusive.
// With nothing set, branches take the default palette.
type ColorOptions struct {
	// Column colors each node by an aggregate of this column.
	Column string      `json:"column,omitempty" toml:"column"`
	Agg    treemap.Agg `json:"agg,omitempty" toml:"agg"`

	// Nodes maps node values, or level values joined by PathSeparator, to
	// colors. Path keys win over value keys.
	Nodes map[string]treemap.Color `json:"nodes,omitempty" toml:"nodes"`

	// Branches colors level-0 nodes in order, largest first.
	Branches []treemap.Color `json:"branches,omitempty" toml:"branches"`

	// BranchMap colors level-0 nodes by value. Unmapped branches get
	// BranchDefault, or light grey.
	BranchMap     map[string]treemap.Color `json:"branch_map,omitempty" toml:"branch_map"`
	BranchDefault treemap.Color            `json:"branch_default" toml:"branch_default"`

	// Root colors the root node in node mode and, unless plotly.root_color
	// is set, the root tile of plotly figures.
	Root string `json:"root,omitempty" toml:"root"`

	// Scale configures numeric colors.
	Scale treemap.ColorScale `json:"scale" toml:"scale"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, plotly, html, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks the fields needed to build a treemap.
func (o *Options) ValidateForBuild() error {
	if len(o.Levels) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one level is required")
	}
	if err := errors.ValidateColumnNames(o.Levels); err != nil {
		return err
	}
	if err := errors.ValidateColumnName(o.Metric); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "metric")
	}
	if o.RootLimits.MinFraction < 0 || o.ChildLimits.MinFraction < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min_fraction must not be negative")
	}
	for _, m := range []*int{o.RootLimits.MaxChildren, o.ChildLimits.MaxChildren} {
		if m != nil && *m < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "max_children must not be negative")
		}
	}
	if err := o.Colors.validate(); err != nil {
		return err
	}
	o.setColorDefaults()
	o.setLogger()
	return nil
}

// setColorDefaults averages a color column that is neither the metric nor
// an extra metric.
func (o *Options) setColorDefaults() {
	c := &o.Colors
	if c.Column == "" || c.Agg != "" || c.Column == o.Metric {
		return
	}
	for _, m := range o.ExtraMetrics {
		if m.OutputName() == c.Column {
			return
		}
	}
	c.Agg = treemap.AggMean
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Plotly.RootColor == "" {
		o.Plotly.RootColor = o.Colors.Root
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := o.Colors.validate(); err != nil {
		return err
	}
	o.setColorDefaults()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// TreemapOptions converts o into builder options.
func (o *Options) TreemapOptions() treemap.Options {
	return treemap.Options{
		Levels:       o.Levels,
		Metric:       o.Metric,
		ExtraMetrics: o.ExtraMetrics,
		MetricFormat: o.MetricFormat,
		Root:         o.Root,
		RootLimits:   o.RootLimits,
		ChildLimits:  o.ChildLimits,
		NodeColors:   o.Colors.nodeColoring(),
		RootColor:    o.Colors.Root,
	}
}

// ColorRequest converts o into a color resolution request.
func (o *Options) ColorRequest() treemap.ColorRequest {
	return treemap.ColorRequest{
		Branches: o.Colors.branchColoring(),
		Nodes:    o.Colors.nodeColoring(),
		Scale:    o.Colors.Scale,
	}
}

// buildKeyOpts is the part of the options that determines treemap data.
type buildKeyOpts struct {
	Levels       []string         `json:"levels"`
	Metric       string           `json:"metric"`
	ExtraMetrics []treemap.Metric `json:"extra_metrics"`
	MetricFormat format.Options   `json:"metric_format"`
	Root         string           `json:"root"`
	RootLimits   treemap.Limits   `json:"root_limits"`
	ChildLimits  treemap.Limits   `json:"child_limits"`
	ColorColumn  string           `json:"color_column"`
	ColorAgg     treemap.Agg      `json:"color_agg"`
	NodeColors   map[string]any   `json:"node_colors"`
	RootColor    string           `json:"root_color"`
}

// BuildKeyOpts returns cache key options for treemap building.
func (o *Options) BuildKeyOpts() any {
	k := buildKeyOpts{
		Levels:       o.Levels,
		Metric:       o.Metric,
		ExtraMetrics: o.ExtraMetrics,
		MetricFormat: o.MetricFormat,
		Root:         o.Root,
		RootLimits:   o.RootLimits,
		ChildLimits:  o.ChildLimits,
		ColorColumn:  o.Colors.Column,
		ColorAgg:     o.Colors.Agg,
		RootColor:    o.Colors.Root,
	}
	if len(o.Colors.Nodes) > 0 {
		k.NodeColors = make(map[string]any, len(o.Colors.Nodes))
		for name, c := range o.Colors.Nodes {
			k.NodeColors[name] = c.Value()
		}
	}
	return k
}

// renderKeyOpts is the part of the options that determines an artifact.
type renderKeyOpts struct {
	Colors   ColorOptions     `json:"colors"`
	Title    string           `json:"title"`
	Plotly   plotly.Options   `json:"plotly"`
	Nodelink nodelink.Options `json:"nodelink"`
	PNGScale float64          `json:"png_scale"`
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Options: renderKeyOpts{
			Colors:   o.Colors,
			Title:    o.Title,
			Plotly:   o.Plotly,
			Nodelink: o.Nodelink,
			PNGScale: o.PNGScale,
		},
	}
}

// =============================================================================
// Color Options
// =============================================================================

func (c ColorOptions) nodeMode() bool {
	return c.Column != "" || len(c.Nodes) > 0
}

func (c ColorOptions) branchMode() bool {
	return len(c.Branches) > 0 || len(c.BranchMap) > 0 || c.BranchDefault.IsSet()
}

func (c ColorOptions) validate() error {
	if c.Column != "" && len(c.Nodes) > 0 {
		return errors.New(errors.ErrCodeInvalidColorSpec, "color column and node color map are mutually exclusive")
	}
	if len(c.Branches) > 0 && len(c.BranchMap) > 0 {
		return errors.New(errors.ErrCodeInvalidColorSpec, "branch color list and branch color map are mutually exclusive")
	}
	if c.nodeMode() && c.branchMode() {
		return errors.New(errors.ErrCodeInvalidColorSpec, "node and branch coloring are mutually exclusive")
	}
	if c.Agg != "" && c.Column == "" {
		return errors.New(errors.ErrCodeInvalidColorSpec, "color aggregation %q given without a color column", c.Agg)
	}
	for key := range c.Nodes {
		if key == "" {
			return errors.New(errors.ErrCodeInvalidColorSpec, "node color key cannot be empty")
		}
	}
	return nil
}

func (c ColorOptions) nodeColoring() treemap.NodeColoring {
	switch {
	case c.Column != "":
		return treemap.ColorColumn{Column: c.Column, Agg: c.Agg}
	case len(c.Nodes) > 0:
		m := treemap.NewColorMap()
		for key, color := range c.Nodes {
			if strings.Contains(key, PathSeparator) {
				m.SetPath(treemap.Path(strings.Split(key, PathSeparator)), color)
			} else {
				m.SetName(key, color)
			}
		}
		return m
	}
	return nil
}

func (c ColorOptions) branchColoring() treemap.BranchColoring {
	switch {
	case len(c.Branches) > 0:
		return treemap.Palette(c.Branches)
	case len(c.BranchMap) > 0 || c.BranchDefault.IsSet():
		return treemap.ByBranch{Colors: c.BranchMap, Default: c.BranchDefault}
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// Data is the built treemap.
	Data *treemap.Data

	// DataHash is the content hash of Data.
	DataHash string

	// Levels reports pruning per level.
	Levels []treemap.LevelStats

	// Summary describes the shape of the treemap.
	Summary treemap.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	NodeCount  int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether treemap data came from cache
	RenderHit bool // Whether all artifacts came from cache
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rows -> %d nodes (load %s, build %s, render %s)",
		s.Rows, s.NodeCount, s.LoadTime.Round(time.Millisecond),
		s.BuildTime.Round(time.Millisecond), s.RenderTime.Round(time.Millisecond))
}
