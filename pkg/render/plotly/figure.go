package plotly

import (
	"encoding/json"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
)

// Options controls figure sizing and trace styling.
type Options struct {
	// Height and Width in pixels. Zero lets the page decide.
	Height int `json:"height,omitempty" toml:"height"`
	Width  int `json:"width,omitempty" toml:"width"`

	// MaxDepth limits the number of levels visible at once. Zero shows all.
	MaxDepth int `json:"max_depth,omitempty" toml:"max_depth"`

	// RootColor fills the root tile. Empty uses the plotly default.
	RootColor string `json:"root_color,omitempty" toml:"root_color"`

	// FontFamily is used for tile text, hover labels and the color bar.
	FontFamily string `json:"font_family,omitempty" toml:"font_family"`
}

// Default styling.
const (
	DefaultFontFamily = "monospace"

	textFontSize     = 20
	hoverFontSize    = 22
	barTitleFontSize = 20
	barTickFontSize  = 16
	markerLineWidth  = 0.5
	hoverTemplate    = "%{customdata}<extra></extra>"
)

// Figure is a plotly.js figure document.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a treemap trace.
type Trace struct {
	Type         string     `json:"type"`
	IDs          []string   `json:"ids"`
	Labels       []string   `json:"labels"`
	Parents      []string   `json:"parents"`
	Values       []float64  `json:"values"`
	CustomData   []string   `json:"customdata"`
	BranchValues string     `json:"branchvalues"`
	MaxDepth     int        `json:"maxdepth,omitempty"`
	TextFont     Font       `json:"textfont"`
	TextPosition string     `json:"textposition"`
	HoverTmpl    string     `json:"hovertemplate"`
	HoverLabel   HoverLabel `json:"hoverlabel"`
	Marker       Marker     `json:"marker"`
	Root         *RootStyle `json:"root,omitempty"`
}

// Font is a plotly font specification.
type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
}

// HoverLabel styles the hover box.
type HoverLabel struct {
	Font Font `json:"font"`
}

// RootStyle styles the root tile.
type RootStyle struct {
	Color string `json:"color"`
}

// Marker holds tile colors and the color scale.
type Marker struct {
	Line       Line      `json:"line"`
	Pad        Pad       `json:"pad"`
	Colors     []any     `json:"colors,omitempty"`
	ColorScale string    `json:"colorscale,omitempty"`
	CMin       *float64  `json:"cmin,omitempty"`
	CMid       *float64  `json:"cmid,omitempty"`
	CMax       *float64  `json:"cmax,omitempty"`
	ShowScale  bool      `json:"showscale,omitempty"`
	ColorBar   *ColorBar `json:"colorbar,omitempty"`
}

// Line is the tile border.
type Line struct {
	Width float64 `json:"width"`
}

// Pad is the padding inside a parent tile.
type Pad struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// ColorBar is the continuous color legend.
type ColorBar struct {
	Title    *ColorBarTitle `json:"title,omitempty"`
	TickFont Font           `json:"tickfont"`
}

// ColorBarTitle is the color bar heading.
type ColorBarTitle struct {
	Text string `json:"text,omitempty"`
	Font Font   `json:"font"`
}

// Layout is the figure layout.
type Layout struct {
	Margin   Margin `json:"margin"`
	Height   int    `json:"height,omitempty"`
	Width    int    `json:"width,omitempty"`
	Colorway []any  `json:"treemapcolorway,omitempty"`
}

// Margin is the figure margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// NewFigure builds a treemap figure from d. Coloring may be nil, in which
// case plotly picks its own colors.
func NewFigure(d *treemap.Data, c *treemap.Coloring, opts Options) *Figure {
	font := opts.FontFamily
	if font == "" {
		font = DefaultFontFamily
	}

	tr := Trace{
		Type:         "treemap",
		IDs:          d.IDs,
		Labels:       d.Labels,
		Parents:      d.Parents,
		Values:       d.Sizes,
		CustomData:   d.Tooltips,
		BranchValues: "total",
		MaxDepth:     opts.MaxDepth,
		TextFont:     Font{Family: font, Size: textFontSize},
		TextPosition: "middle center",
		HoverTmpl:    hoverTemplate,
		HoverLabel:   HoverLabel{Font: Font{Family: font, Size: hoverFontSize}},
		Marker: Marker{
			Line: Line{Width: markerLineWidth},
			Pad:  Pad{L: 5, R: 5, T: 30, B: 5},
		},
	}
	if opts.RootColor != "" {
		tr.Root = &RootStyle{Color: opts.RootColor}
	}

	fig := &Figure{
		Layout: Layout{Height: opts.Height, Width: opts.Width},
	}
	if c != nil {
		if c.Colorway != nil {
			fig.Layout.Colorway = values(c.Colorway)
		}
		if c.NodeColors != nil {
			tr.Marker.Colors = values(c.NodeColors)
		}
		if s := c.Scale; s != nil {
			tr.Marker.ColorScale = s.Name
			tr.Marker.CMin, tr.Marker.CMid, tr.Marker.CMax = s.Min, s.Mid, s.Max
			if s.ShowBar {
				tr.Marker.ShowScale = true
				tr.Marker.ColorBar = &ColorBar{
					TickFont: Font{Family: font, Size: barTickFontSize, Color: "black"},
					Title: &ColorBarTitle{
						Text: s.BarTitle,
						Font: Font{Family: font, Size: barTitleFontSize, Color: "black"},
					},
				}
			}
		}
	}
	fig.Data = []Trace{tr}
	return fig
}

// JSON encodes the figure.
func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

func values(colors []treemap.Color) []any {
	out := make([]any, len(colors))
	for i, c := range colors {
		out[i] = c.Value()
	}
	return out
}
