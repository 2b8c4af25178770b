package plotly

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/matzehuels/tooltree/pkg/core/frame"
	"github.com/matzehuels/tooltree/pkg/core/treemap"
)

func buildData(t *testing.T, opts treemap.Options) *treemap.Data {
	t.Helper()
	f, err := frame.FromColumns(
		[]string{"region", "item", "value", "score"},
		[]any{
			[]string{"A", "A", "B"},
			[]string{"x", "y", "x"},
			[]int{10, 5, 3},
			[]float64{0.5, 1.5, 3},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	opts.Levels = []string{"region", "item"}
	opts.Metric = "value"
	d, err := treemap.Build(f, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func decode(t *testing.T, fig *Figure) map[string]any {
	t.Helper()
	b, err := fig.JSON()
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewFigureBranchColors(t *testing.T) {
	d := buildData(t, treemap.Options{})
	c, err := treemap.ResolveColors(d, treemap.ColorRequest{})
	if err != nil {
		t.Fatal(err)
	}
	fig := NewFigure(d, c, Options{Height: 600, MaxDepth: 2})

	tr := fig.Data[0]
	if tr.Type != "treemap" || tr.BranchValues != "total" {
		t.Errorf("trace type/branchvalues = %s/%s", tr.Type, tr.BranchValues)
	}
	if !reflect.DeepEqual(tr.IDs, d.IDs) || !reflect.DeepEqual(tr.CustomData, d.Tooltips) {
		t.Error("trace does not mirror the treemap data")
	}
	if tr.Marker.Colors != nil || tr.Marker.ColorScale != "" {
		t.Error("branch mode should not set marker colors or a color scale")
	}

	m := decode(t, fig)
	layout := m["layout"].(map[string]any)
	if layout["height"] != 600.0 {
		t.Errorf("height = %v, want 600", layout["height"])
	}
	if n := len(layout["treemapcolorway"].([]any)); n != len(treemap.DefaultPalette) {
		t.Errorf("colorway has %d colors, want %d", n, len(treemap.DefaultPalette))
	}
	trace := m["data"].([]any)[0].(map[string]any)
	if trace["hovertemplate"] != "%{customdata}<extra></extra>" {
		t.Errorf("hovertemplate = %v", trace["hovertemplate"])
	}
	if trace["maxdepth"] != 2.0 {
		t.Errorf("maxdepth = %v, want 2", trace["maxdepth"])
	}
}

func TestNewFigureNodeColorScale(t *testing.T) {
	nodes := treemap.ColorColumn{Column: "score", Agg: treemap.AggMax}
	d := buildData(t, treemap.Options{NodeColors: nodes})
	c, err := treemap.ResolveColors(d, treemap.ColorRequest{
		Nodes: nodes,
		Scale: treemap.ColorScale{Name: "RdBu", ShowBar: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	fig := NewFigure(d, c, Options{})
	mk := fig.Data[0].Marker
	if mk.ColorScale != "RdBu" || *mk.CMin != 0.5 || *mk.CMax != 3 || mk.CMid != nil {
		t.Errorf("scale = %s [%v, %v, %v]", mk.ColorScale, mk.CMin, mk.CMid, mk.CMax)
	}
	if !mk.ShowScale || mk.ColorBar.Title.Text != "score" {
		t.Errorf("color bar = %+v", mk.ColorBar)
	}
	if mk.Colors[0] != treemap.DefaultRootColor {
		t.Errorf("root marker color = %v, want %s", mk.Colors[0], treemap.DefaultRootColor)
	}
	if fig.Layout.Colorway != nil {
		t.Error("node mode should not set a colorway")
	}
}

func TestHTML(t *testing.T) {
	d := buildData(t, treemap.Options{Root: "<all>"})
	page, err := HTML(NewFigure(d, nil, Options{}), "Costs & Values")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{ScriptURL, "Plotly.newPlot", "<title>Costs &amp; Values</title>", `"branchvalues":"total"`} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("page missing %q", want)
		}
	}
}
