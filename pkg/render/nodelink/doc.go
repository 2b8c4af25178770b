// Package nodelink renders a treemap hierarchy as a node-link diagram.
//
// # Overview
//
// Treemaps hide deep structure inside nested tiles. This package draws the
// same hierarchy as a tree using Graphviz: the root at the top, one box per
// node, and an arrow from each parent to its children.
//
// # Usage
//
// Convert treemap data to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(data, coloring, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, pass the SVG through [render.ToPDF] or
// [render.ToPNG].
//
// # Colors
//
// With a resolved [treemap.Coloring], string colors are used as Graphviz
// fill colors directly. Numeric colors are normalized to the color scale
// bounds and mapped through the Viridis palette. In branch mode every node
// takes the color of its level-0 ancestor.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering and [github.com/aclements/go-gg/palette] for continuous colors.
//
// [render.ToPDF]: github.com/matzehuels/tooltree/pkg/render
// [render.ToPNG]: github.com/matzehuels/tooltree/pkg/render
// [treemap.Coloring]: github.com/matzehuels/tooltree/pkg/core/treemap
package nodelink
