package treemap

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/matzehuels/tooltree/pkg/errors"
)

func TestColorJSON(t *testing.T) {
	in := []Color{Str("red"), Num(2.5), {}}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["red",2.5,null]` {
		t.Errorf("Marshal = %s", b)
	}
	var out []Color
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("Unmarshal = %v, want %v", out, in)
	}
	var bad Color
	if err := json.Unmarshal([]byte(`{"a":1}`), &bad); err == nil {
		t.Error("object should not decode as a color")
	}
}

func TestResolveColorsDefault(t *testing.T) {
	d, err := Build(regionFrame(t), regionOptions())
	if err != nil {
		t.Fatal(err)
	}
	c, err := ResolveColors(d, ColorRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.Colorway, []Color(DefaultPalette)) {
		t.Errorf("Colorway = %v, want default palette", c.Colorway)
	}
	if c.Numeric() {
		t.Error("string palette should not use a color scale")
	}
}

func TestResolveColorsByBranch(t *testing.T) {
	d, err := Build(regionFrame(t), regionOptions())
	if err != nil {
		t.Fatal(err)
	}
	c, err := ResolveColors(d, ColorRequest{
		Branches: ByBranch{Colors: map[string]Color{"B": Str("green")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []Color{Str(DefaultBranchColor), Str("green")}
	if !reflect.DeepEqual(c.Colorway, want) {
		t.Errorf("Colorway = %v, want %v", c.Colorway, want)
	}
}

func TestResolveColorsNumericPalette(t *testing.T) {
	d, err := Build(regionFrame(t), regionOptions())
	if err != nil {
		t.Fatal(err)
	}
	mid := 2.0
	c, err := ResolveColors(d, ColorRequest{
		Branches: Palette{Num(1), Num(4)},
		Scale:    ColorScale{Mid: &mid},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !c.Numeric() {
		t.Fatal("numeric palette should use a color scale")
	}
	if c.Scale.Name != DefaultColorScale || *c.Scale.Min != 1 || *c.Scale.Mid != 2 || *c.Scale.Max != 4 {
		t.Errorf("Scale = %+v", c.Scale)
	}
}

func TestResolveColorsNodes(t *testing.T) {
	opts := regionOptions()
	opts.NodeColors = ColorColumn{Column: "cost", Agg: AggMax}
	d, err := Build(regionFrame(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ResolveColors(d, ColorRequest{Nodes: opts.NodeColors, Scale: ColorScale{ShowBar: true}})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.NodeColors) != d.Len() || c.Colorway != nil {
		t.Fatalf("node mode: NodeColors %d, Colorway %v", len(c.NodeColors), c.Colorway)
	}
	if !c.Numeric() {
		t.Fatal("numeric node colors should use a color scale")
	}
	if *c.Scale.Min != 40 || *c.Scale.Max != 2500 {
		t.Errorf("bounds = [%v, %v], want [40, 2500]", *c.Scale.Min, *c.Scale.Max)
	}
	if c.Scale.BarTitle != "cost" {
		t.Errorf("BarTitle = %q, want cost", c.Scale.BarTitle)
	}
}

func TestResolveColorsErrors(t *testing.T) {
	plain, err := Build(regionFrame(t), regionOptions())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		req  ColorRequest
	}{
		{"both modes", ColorRequest{Branches: DefaultPalette, Nodes: ColorColumn{Column: "value"}}},
		{"mixed palette", ColorRequest{Branches: Palette{Str("red"), Num(1)}}},
		{"nodes not built", ColorRequest{Nodes: ColorColumn{Column: "value"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveColors(plain, tt.req)
			if !errors.Is(err, errors.ErrCodeInvalidColorSpec) {
				t.Errorf("ResolveColors() error = %v, want INVALID_COLOR_SPEC", err)
			}
		})
	}
}

func TestColorOf(t *testing.T) {
	tests := []struct {
		in   any
		want Color
		ok   bool
	}{
		{nil, Color{}, true},
		{"red", Str("red"), true},
		{3, Num(3), true},
		{int64(4), Num(4), true},
		{json.Number("1.5"), Num(1.5), true},
		{[]int{1}, Color{}, false},
	}
	for _, tt := range tests {
		got, err := ColorOf(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ColorOf(%v) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ColorOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
