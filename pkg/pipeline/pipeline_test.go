package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/tooltree/pkg/cache"
	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/errors"
	"github.com/matzehuels/tooltree/pkg/observability"
)

const sampleCSV = `region,item,value,cost
A,x,10,100
A,y,5,200
B,x,3,300
`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"plotly", false},
		{"html", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "html"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Input: "x.csv", Levels: []string{"region"}, Metric: "value"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats = %v, want [%s]", opts.Formats, DefaultFormat)
	}
	if opts.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", opts.Title, DefaultTitle)
	}
	if opts.PNGScale != DefaultPNGScale {
		t.Errorf("PNGScale = %v, want %v", opts.PNGScale, DefaultPNGScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	// Idempotent
	opts.Formats = []string{"bogus"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op, got %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	base := func() Options {
		return Options{Input: "x.csv", Levels: []string{"region"}, Metric: "value"}
	}
	tests := []struct {
		name   string
		modify func(*Options)
		code   errors.Code
	}{
		{"no input", func(o *Options) { o.Input = "" }, errors.ErrCodeInvalidInput},
		{"no levels", func(o *Options) { o.Levels = nil }, errors.ErrCodeInvalidInput},
		{"duplicate level", func(o *Options) { o.Levels = []string{"a", "a"} }, errors.ErrCodeInvalidInput},
		{"no metric", func(o *Options) { o.Metric = "" }, errors.ErrCodeInvalidInput},
		{"negative fraction", func(o *Options) { o.ChildLimits.MinFraction = -0.1 }, errors.ErrCodeInvalidInput},
		{"negative max children", func(o *Options) { o.RootLimits.MaxChildren = treemap.MaxChildren(-1) }, errors.ErrCodeInvalidInput},
		{"bad format", func(o *Options) { o.Formats = []string{"gif"} }, errors.ErrCodeInvalidFormat},
		{"column and map", func(o *Options) {
			o.Colors.Column = "value"
			o.Colors.Nodes = map[string]treemap.Color{"A": treemap.Str("red")}
		}, errors.ErrCodeInvalidColorSpec},
		{"node and branch", func(o *Options) {
			o.Colors.Column = "value"
			o.Colors.Branches = []treemap.Color{treemap.Str("red")}
		}, errors.ErrCodeInvalidColorSpec},
		{"branch list and map", func(o *Options) {
			o.Colors.Branches = []treemap.Color{treemap.Str("red")}
			o.Colors.BranchMap = map[string]treemap.Color{"A": treemap.Str("red")}
		}, errors.ErrCodeInvalidColorSpec},
		{"agg without column", func(o *Options) { o.Colors.Agg = treemap.AggMean }, errors.ErrCodeInvalidColorSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base()
			tt.modify(&opts)
			err := opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestColorAggDefault(t *testing.T) {
	tests := []struct {
		name   string
		colors ColorOptions
		extras []treemap.Metric
		want   treemap.Agg
	}{
		{"other column", ColorOptions{Column: "cost"}, nil, treemap.AggMean},
		{"metric", ColorOptions{Column: "value"}, nil, ""},
		{"extra metric", ColorOptions{Column: "cost"}, []treemap.Metric{treemap.Sum("cost")}, ""},
		{"named extra", ColorOptions{Column: "max cost"}, []treemap.Metric{{Column: "cost", Agg: treemap.AggMax}}, ""},
		{"explicit", ColorOptions{Column: "cost", Agg: treemap.AggMax}, nil, treemap.AggMax},
		{"no column", ColorOptions{}, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Levels: []string{"region"}, Metric: "value", ExtraMetrics: tt.extras, Colors: tt.colors}
			if err := opts.ValidateForBuild(); err != nil {
				t.Fatalf("ValidateForBuild: %v", err)
			}
			if opts.Colors.Agg != tt.want {
				t.Errorf("Colors.Agg = %q, want %q", opts.Colors.Agg, tt.want)
			}
		})
	}
}

func TestBuildColorColumnWithoutAgg(t *testing.T) {
	in, err := LoadBytes([]byte(sampleCSV), "csv")
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{
		Levels: []string{"region", "item"},
		Metric: "value",
		Colors: ColorOptions{Column: "cost"},
	}
	built, _, err := NewRunner(nil, nil, nil).BuildWithCacheInfo(context.Background(), in, opts)
	if err != nil {
		t.Fatalf("BuildWithCacheInfo: %v", err)
	}
	for i, id := range built.Data.IDs {
		if id == "A" {
			if got := built.Data.Colors[i].Float(); got != 150 {
				t.Errorf("color of A = %v, want mean cost 150", got)
			}
			return
		}
	}
	t.Errorf("node A not found in %v", built.Data.IDs)
}

func TestColorOptionsNodeMap(t *testing.T) {
	c := ColorOptions{Nodes: map[string]treemap.Color{
		"x":   treemap.Str("blue"),
		"A/x": treemap.Str("red"),
	}}
	m, ok := c.nodeColoring().(*treemap.ColorMap)
	if !ok {
		t.Fatalf("nodeColoring() = %T, want *treemap.ColorMap", c.nodeColoring())
	}
	if got := m.ByPath[treemap.Path{"A", "x"}.Key()]; got.String() != "red" {
		t.Errorf("path color = %v, want red", got)
	}
	if got := m.ByName["x"]; got.String() != "blue" {
		t.Errorf("name color = %v, want blue", got)
	}
}

func TestColorOptionsBranches(t *testing.T) {
	if b := (ColorOptions{}).branchColoring(); b != nil {
		t.Errorf("branchColoring() = %v, want nil for the default palette", b)
	}
	p := ColorOptions{Branches: []treemap.Color{treemap.Str("red")}}.branchColoring()
	if _, ok := p.(treemap.Palette); !ok {
		t.Errorf("branchColoring() = %T, want treemap.Palette", p)
	}
	m := ColorOptions{BranchDefault: treemap.Str("grey")}.branchColoring()
	if by, ok := m.(treemap.ByBranch); !ok || by.Default.String() != "grey" {
		t.Errorf("branchColoring() = %#v, want ByBranch with default", m)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	config := `
input  = "data/costs.csv"
levels = ["region", "item"]
metric = "value"
root   = "all"
formats = ["json", "html"]

[[extra_metrics]]
column = "cost"
agg    = "max"

[root_limits]
max_children = 3

[child_limits]
min_fraction = 0.1

[colors.nodes]
"A/x" = "red"
B     = 2.5

[plotly]
height = 800
`
	path := filepath.Join(dir, "tooltree.toml")
	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.Input != filepath.Join(dir, "data/costs.csv") {
		t.Errorf("Input = %q, want path relative to the config file", opts.Input)
	}
	if strings.Join(opts.Levels, ",") != "region,item" || opts.Metric != "value" || opts.Root != "all" {
		t.Errorf("build options = %v %q %q", opts.Levels, opts.Metric, opts.Root)
	}
	if len(opts.ExtraMetrics) != 1 || opts.ExtraMetrics[0].Agg != treemap.AggMax {
		t.Errorf("ExtraMetrics = %+v", opts.ExtraMetrics)
	}
	if m := opts.RootLimits.MaxChildren; m == nil || *m != 3 || opts.ChildLimits.MinFraction != 0.1 {
		t.Errorf("limits = %+v %+v", opts.RootLimits, opts.ChildLimits)
	}
	if c := opts.Colors.Nodes["A/x"]; c.String() != "red" {
		t.Errorf("node color A/x = %v, want red", c)
	}
	if c := opts.Colors.Nodes["B"]; !c.IsNumber() || c.Float() != 2.5 {
		t.Errorf("node color B = %v, want 2.5", c)
	}
	if opts.Plotly.Height != 800 {
		t.Errorf("Plotly.Height = %d, want 800", opts.Plotly.Height)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}

	path := filepath.Join(dir, "bad.toml")
	os.WriteFile(path, []byte("levles = [\"a\"]\n"), 0644)
	if _, err := LoadConfig(path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown key error = %v, want INVALID_INPUT", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		Input:        writeInput(t, sampleCSV),
		Levels:       []string{"region", "item"},
		Metric:       "value",
		ExtraMetrics: []treemap.Metric{treemap.Sum("cost")},
		Formats:      []string{FormatJSON, FormatPlotly, FormatHTML, FormatDOT},
	}
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Stats.Rows != 3 || result.Stats.NodeCount != 6 {
		t.Errorf("Stats = %+v, want 3 rows and 6 nodes", result.Stats)
	}
	if result.Data.TotalSize != 18 {
		t.Errorf("TotalSize = %v, want 18", result.Data.TotalSize)
	}
	if len(result.Levels) != 2 || result.Levels[0].Kept != 2 {
		t.Errorf("Levels = %+v", result.Levels)
	}
	if result.CacheInfo.BuildHit || result.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	for _, f := range opts.Formats {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("artifact %s is empty", f)
		}
	}
	if !strings.Contains(string(result.Artifacts[FormatHTML]), "Plotly.newPlot") {
		t.Error("html artifact should embed the plotly figure")
	}
	var fig map[string]any
	if err := json.Unmarshal(result.Artifacts[FormatPlotly], &fig); err != nil {
		t.Errorf("plotly artifact is not JSON: %v", err)
	}

	again, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.BuildHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", again.CacheInfo)
	}
	if again.DataHash != result.DataHash {
		t.Error("cached treemap should hash identically")
	}

	opts.Refresh = true
	fresh, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.BuildHit {
		t.Error("Refresh should bypass the build cache")
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	_, err := runner.Execute(ctx, Options{
		Input:  writeInput(t, "region,value\nA,1\nB,-2\n"),
		Levels: []string{"region"},
		Metric: "value",
	})
	if !errors.Is(err, errors.ErrCodeNegativeMetric) {
		t.Errorf("negative metric error = %v, want NEGATIVE_METRIC", err)
	}

	_, err = runner.Execute(ctx, Options{
		Input:  filepath.Join(t.TempDir(), "missing.csv"),
		Levels: []string{"region"},
		Metric: "value",
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRenderNodeColors(t *testing.T) {
	ctx := context.Background()
	in, err := LoadBytes([]byte(sampleCSV), "csv")
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{
		Levels:  []string{"region", "item"},
		Metric:  "value",
		Colors:  ColorOptions{Column: "cost", Agg: treemap.AggMean, Scale: treemap.ColorScale{ShowBar: true}},
		Formats: []string{FormatPlotly},
	}
	runner := NewRunner(nil, nil, nil)
	result, err := runner.ExecuteInput(ctx, in, opts)
	if err != nil {
		t.Fatalf("ExecuteInput: %v", err)
	}
	fig := string(result.Artifacts[FormatPlotly])
	for _, want := range []string{`"colorscale":"Viridis"`, `"text":"cost"`, `"white"`} {
		if !strings.Contains(fig, want) {
			t.Errorf("figure missing %s:\n%s", want, fig)
		}
	}
}

func TestRootColorReachesFigure(t *testing.T) {
	ctx := context.Background()
	in, err := LoadBytes([]byte(sampleCSV), "csv")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name       string
		root       string
		plotlyRoot string
		want       string
	}{
		{"from colors", "black", "", `"root":{"color":"black"}`},
		{"plotly wins", "black", "grey", `"root":{"color":"grey"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{
				Levels:  []string{"region", "item"},
				Metric:  "value",
				Colors:  ColorOptions{Root: tt.root},
				Formats: []string{FormatPlotly},
			}
			opts.Plotly.RootColor = tt.plotlyRoot
			result, err := NewRunner(nil, nil, nil).ExecuteInput(ctx, in, opts)
			if err != nil {
				t.Fatalf("ExecuteInput: %v", err)
			}
			if fig := string(result.Artifacts[FormatPlotly]); !strings.Contains(fig, tt.want) {
				t.Errorf("figure missing %s:\n%s", tt.want, fig)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	builds  int
	renders []string
}

func (h *recordingHooks) OnBuildComplete(context.Context, []string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builds++
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, format)
}

func TestRunnerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	in, err := LoadBytes([]byte(sampleCSV), "csv")
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewRunner(nil, nil, nil).ExecuteInput(context.Background(), in, Options{
		Levels:  []string{"region"},
		Metric:  "value",
		Formats: []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatal(err)
	}
	if hooks.builds != 1 {
		t.Errorf("build hooks = %d, want 1", hooks.builds)
	}
	if strings.Join(hooks.renders, ",") != "json,dot" {
		t.Errorf("render hooks = %v, want [json dot]", hooks.renders)
	}
}
