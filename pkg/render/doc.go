// Package render turns treemap data into visual outputs.
//
// # Overview
//
// The renderers consume a built [treemap.Data] and never modify it:
//
//   - Plotly figures and standalone HTML pages (in [plotly] subpackage)
//   - Node-link diagrams via Graphviz (in [nodelink] subpackage)
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Plotly Figures
//
// The [plotly] subpackage builds the figure document understood by
// plotly.js: a single treemap trace with "total" branch values, hover text
// from the node tooltips, and branch or node colors.
//
//	fig := plotly.NewFigure(data, coloring, plotly.Options{Height: 800})
//	page, err := plotly.HTML(fig, "Disk usage")
//
// [treemap.Data]: github.com/matzehuels/tooltree/pkg/core/treemap
// [plotly]: github.com/matzehuels/tooltree/pkg/render/plotly
// [nodelink]: github.com/matzehuels/tooltree/pkg/render/nodelink
package render
