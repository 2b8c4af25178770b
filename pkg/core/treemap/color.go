package treemap

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/tooltree/pkg/errors"
)

// Default colors.
const (
	DefaultRootColor   = "white"
	DefaultBranchColor = "lightgrey"
	DefaultColorScale  = "Viridis"
)

// DefaultPalette is the branch palette used when no coloring is requested.
var DefaultPalette = Palette{
	Str("#636efa"), Str("#ef553b"), Str("#00cc96"), Str("#ab63fa"), Str("#ffa15a"),
	Str("#19d3f3"), Str("#ff6692"), Str("#b6e880"), Str("#ff97ff"), Str("#fecb52"),
}

type colorKind uint8

const (
	colorNone colorKind = iota
	colorString
	colorNumber
)

// Color is a literal color string, a numeric value placed on a color scale,
// or unset. The zero value is unset.
type Color struct {
	kind colorKind
	s    string
	n    float64
}

// Str returns a literal color such as "red" or "#ff0000".
func Str(s string) Color { return Color{kind: colorString, s: s} }

// Num returns a numeric color value.
func Num(x float64) Color { return Color{kind: colorNumber, n: x} }

// ColorOf converts a decoded scalar (string, number or nil) into a Color.
func ColorOf(v any) (Color, error) {
	switch v := v.(type) {
	case nil:
		return Color{}, nil
	case Color:
		return v, nil
	case string:
		return Str(v), nil
	case float64:
		if math.IsNaN(v) {
			return Color{}, nil
		}
		return Num(v), nil
	case float32:
		return Num(float64(v)), nil
	case int:
		return Num(float64(v)), nil
	case int64:
		return Num(float64(v)), nil
	case json.Number:
		x, err := v.Float64()
		if err != nil {
			return Color{}, errors.New(errors.ErrCodeInvalidColorSpec, "invalid color %q", v.String())
		}
		return Num(x), nil
	}
	return Color{}, errors.New(errors.ErrCodeInvalidColorSpec, "invalid color %v (%T)", v, v)
}

// IsSet reports whether c holds a value.
func (c Color) IsSet() bool { return c.kind != colorNone }

// IsNumber reports whether c is a numeric color value.
func (c Color) IsNumber() bool { return c.kind == colorNumber }

// Float returns the numeric value of c, or NaN if c is not numeric.
func (c Color) Float() float64 {
	if c.kind != colorNumber {
		return math.NaN()
	}
	return c.n
}

// Value returns c as a string, a float64, or nil.
func (c Color) Value() any {
	switch c.kind {
	case colorString:
		return c.s
	case colorNumber:
		return c.n
	}
	return nil
}

func (c Color) String() string {
	switch c.kind {
	case colorString:
		return c.s
	case colorNumber:
		return strconv.FormatFloat(c.n, 'g', -1, 64)
	}
	return ""
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

func (c *Color) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	x, err := ColorOf(v)
	if err != nil {
		return err
	}
	*c = x
	return nil
}

// UnmarshalTOML lets colors be written as strings or numbers in config files.
func (c *Color) UnmarshalTOML(v any) error {
	x, err := ColorOf(v)
	if err != nil {
		return err
	}
	*c = x
	return nil
}

// =============================================================================
// Branch coloring
// =============================================================================

// BranchColoring colors whole branches (level-0 subtrees). It is either a
// [Palette] or a [ByBranch] map.
type BranchColoring interface {
	colorway(d *Data) []Color
}

// Palette assigns colors in order to the level-0 nodes, largest first.
type Palette []Color

func (p Palette) colorway(*Data) []Color { return p }

// ByBranch maps level-0 node ids to colors. Unmapped branches get Default,
// or [DefaultBranchColor] when Default is unset.
type ByBranch struct {
	Colors  map[string]Color
	Default Color
}

func (b ByBranch) colorway(d *Data) []Color {
	def := b.Default
	if !def.IsSet() {
		def = Str(DefaultBranchColor)
	}
	branches := d.Branches()
	out := make([]Color, len(branches))
	for i, idx := range branches {
		c, ok := b.Colors[d.IDs[idx]]
		if !ok || !c.IsSet() {
			c = def
		}
		out[i] = c
	}
	return out
}

// =============================================================================
// Node coloring
// =============================================================================

// NodeColoring colors individual nodes during [Build]. It is either a
// [ColorColumn] or a [ColorMap].
type NodeColoring interface {
	isNodeColoring()
}

// ColorColumn takes each node's color from an aggregated column. When Column
// is the metric or an extra metric output name and Agg is empty, that value
// is reused; any other column needs an explicit Agg.
type ColorColumn struct {
	Column string `json:"column" toml:"column"`
	Agg    Agg    `json:"agg,omitempty" toml:"agg"`
}

// ColorMap assigns colors by node value or by full path. Path entries take
// precedence over name entries. Unmapped nodes are left unset.
type ColorMap struct {
	ByName map[string]Color
	ByPath map[string]Color // keyed by Path.Key
}

func (ColorColumn) isNodeColoring() {}
func (*ColorMap) isNodeColoring()   {}

// NewColorMap returns an empty ColorMap.
func NewColorMap() *ColorMap {
	return &ColorMap{ByName: map[string]Color{}, ByPath: map[string]Color{}}
}

// SetName colors every node whose own value is name.
func (m *ColorMap) SetName(name string, c Color) *ColorMap {
	m.ByName[name] = c
	return m
}

// SetPath colors the node at path.
func (m *ColorMap) SetPath(path Path, c Color) *ColorMap {
	m.ByPath[path.Key()] = c
	return m
}

func (m *ColorMap) lookup(path Path) Color {
	if c, ok := m.ByPath[path.Key()]; ok {
		return c
	}
	if len(path) > 0 {
		if c, ok := m.ByName[path[len(path)-1]]; ok {
			return c
		}
	}
	return Color{}
}

// =============================================================================
// Resolution
// =============================================================================

// ColorScale configures continuous coloring for numeric color values.
type ColorScale struct {
	Name     string   `json:"name,omitempty" toml:"name"`
	Min      *float64 `json:"min,omitempty" toml:"min"`
	Mid      *float64 `json:"mid,omitempty" toml:"mid"`
	Max      *float64 `json:"max,omitempty" toml:"max"`
	ShowBar  bool     `json:"show_bar,omitempty" toml:"show_bar"`
	BarTitle string   `json:"bar_title,omitempty" toml:"bar_title"`
}

// ColorRequest selects a coloring mode for [ResolveColors]. At most one of
// Branches and Nodes may be set; when neither is, [DefaultPalette] is used.
type ColorRequest struct {
	Branches BranchColoring
	// Nodes reports that node colors computed by Build should be used. The
	// value must match the one passed in Options.NodeColors.
	Nodes NodeColoring
	Scale ColorScale
}

// Coloring is a resolved color assignment, ready for a renderer.
type Coloring struct {
	// Colorway holds one color per level-0 node, in output order. Set in
	// branch mode only.
	Colorway []Color

	// NodeColors holds one color per node. Set in node mode only.
	NodeColors []Color

	// Scale is non-nil when the colors are numeric.
	Scale *ColorScale
}

// Numeric reports whether c uses a continuous color scale.
func (c *Coloring) Numeric() bool { return c.Scale != nil }

// ResolveColors turns a color request into concrete colors for d.
func ResolveColors(d *Data, req ColorRequest) (*Coloring, error) {
	if req.Branches != nil && req.Nodes != nil {
		return nil, errors.New(errors.ErrCodeInvalidColorSpec, "branch and node coloring are mutually exclusive")
	}

	var (
		out    = &Coloring{}
		values []Color
	)
	switch {
	case req.Nodes != nil:
		if d.Colors == nil {
			return nil, errors.New(errors.ErrCodeInvalidColorSpec, "node colors were not computed for this treemap")
		}
		out.NodeColors = d.Colors
		values = d.Colors
	default:
		branches := req.Branches
		if branches == nil {
			branches = DefaultPalette
		}
		out.Colorway = branches.colorway(d)
		if err := checkHomogeneous(out.Colorway); err != nil {
			return nil, err
		}
		values = out.Colorway
	}

	var nums []float64
	for _, c := range values {
		if c.IsNumber() {
			nums = append(nums, c.n)
		}
	}
	if len(nums) == 0 {
		return out, nil
	}

	scale := req.Scale
	if scale.Name == "" {
		scale.Name = DefaultColorScale
	}
	lo, hi := stats.Bounds(nums)
	if scale.Min == nil {
		scale.Min = &lo
	}
	if scale.Max == nil {
		scale.Max = &hi
	}
	if col, ok := req.Nodes.(ColorColumn); ok && scale.BarTitle == "" && col.Column != d.Metric {
		scale.BarTitle = col.Column
	}
	out.Scale = &scale
	return out, nil
}

func checkHomogeneous(colors []Color) error {
	var kind colorKind
	for _, c := range colors {
		if !c.IsSet() {
			continue
		}
		if kind != colorNone && c.kind != kind {
			return errors.New(errors.ErrCodeInvalidColorSpec, "branch colors mix strings and numbers")
		}
		kind = c.kind
	}
	return nil
}

// colorSource extracts node colors during a build.
type colorSource struct {
	column string // aggregated value name, for ColorColumn
	metric bool   // color by the metric itself
	m      *ColorMap
	root   Color
}

func (s *colorSource) node(e entry) (Color, error) {
	switch {
	case s.m != nil:
		return s.m.lookup(e.path), nil
	case s.metric:
		return Num(e.size), nil
	}
	c, err := ColorOf(e.values[s.column])
	if err != nil {
		return Color{}, errors.Wrap(errors.ErrCodeInvalidColorSpec, err, "color column value for %q", e.path.ID(""))
	}
	return c, nil
}
