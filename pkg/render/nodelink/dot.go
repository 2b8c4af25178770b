package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/palette"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/format"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds each node's size and share of its parent to the label.
	// When false, only the label is shown.
	Detailed bool `json:"detailed,omitempty" toml:"detailed"`

	// MaxDepth omits nodes deeper than this many levels below the root.
	// Zero draws the whole tree.
	MaxDepth int `json:"max_depth,omitempty" toml:"max_depth"`

	// LeftToRight lays the tree out horizontally instead of top-down.
	LeftToRight bool `json:"left_to_right,omitempty" toml:"left_to_right"`
}

// ToDOT converts treemap data to Graphviz DOT format. The root is drawn at
// the top with an edge to each child. When c is non-nil, nodes are filled
// with their resolved colors: branch colors apply to a level-0 node and its
// whole subtree, and numeric colors are mapped onto the Viridis palette.
func ToDOT(d *treemap.Data, c *treemap.Coloring, opts Options) string {
	var buf bytes.Buffer
	rankdir := "TB"
	if opts.LeftToRight {
		rankdir = "LR"
	}
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=monospace, fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	depth := depths(d)
	fills := fillColors(d, c)
	sizes := make(map[string]float64, d.Len())
	for i := 0; i < d.Len(); i++ {
		sizes[d.IDs[i]] = d.Sizes[i]
	}

	for i := 0; i < d.Len(); i++ {
		if opts.MaxDepth > 0 && depth[i] > opts.MaxDepth {
			continue
		}
		var parentSize float64
		if i > 0 {
			parentSize = sizes[d.Parents[i]]
		}
		label := fmtLabel(d.Node(i), parentSize, opts.Detailed)
		attrs := fmtAttrs(label, fills[i])
		fmt.Fprintf(&buf, "  %q [%s];\n", d.IDs[i], strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := 1; i < d.Len(); i++ {
		if opts.MaxDepth > 0 && depth[i] > opts.MaxDepth {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", d.Parents[i], d.IDs[i])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n treemap.Node, parentSize float64, detailed bool) string {
	label := strings.ReplaceAll(n.Label, treemap.LineBreak, "\n")
	if !detailed {
		return label
	}
	parts := []string{format.Number(n.Size, format.Options{})}
	if parentSize > 0 {
		parts = append(parts, format.Percent(n.Size/parentSize, 1)+" of parent")
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(label, fill string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	return attrs
}

// depths returns the depth of every node; the root is 0.
func depths(d *treemap.Data) []int {
	out := make([]int, d.Len())
	byID := make(map[string]int, d.Len())
	for i := 0; i < d.Len(); i++ {
		if i > 0 {
			out[i] = byID[d.Parents[i]] + 1
		}
		byID[d.IDs[i]] = out[i]
	}
	return out
}

// fillColors resolves one Graphviz fill color per node ("" for default).
func fillColors(d *treemap.Data, c *treemap.Coloring) []string {
	fills := make([]string, d.Len())
	if c == nil {
		return fills
	}

	var lo, hi float64
	if c.Scale != nil {
		lo, hi = *c.Scale.Min, *c.Scale.Max
	}
	toFill := func(col treemap.Color) string {
		switch {
		case !col.IsSet():
			return ""
		case col.IsNumber():
			x := 0.5
			if hi > lo {
				x = (col.Float() - lo) / (hi - lo)
			}
			return hexColor(palette.Viridis.Map(clamp(x)))
		}
		return col.String()
	}

	if c.NodeColors != nil {
		for i, col := range c.NodeColors {
			fills[i] = toFill(col)
		}
		return fills
	}

	if len(c.Colorway) == 0 {
		return fills
	}
	// Every node inherits the color of its level-0 ancestor.
	branchFill := map[string]string{}
	for k, idx := range d.Branches() {
		branchFill[d.IDs[idx]] = toFill(c.Colorway[k%len(c.Colorway)])
	}
	inherited := map[string]string{}
	for i := 1; i < d.Len(); i++ {
		if f, ok := branchFill[d.IDs[i]]; ok {
			inherited[d.IDs[i]] = f
		} else {
			inherited[d.IDs[i]] = inherited[d.Parents[i]]
		}
		fills[i] = inherited[d.IDs[i]]
	}
	return fills
}

func clamp(x float64) float64 {
	return min(max(x, 0), 1)
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
