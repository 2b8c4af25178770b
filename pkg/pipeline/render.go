package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	pkgio "github.com/matzehuels/tooltree/pkg/io"
	"github.com/matzehuels/tooltree/pkg/render"
	"github.com/matzehuels/tooltree/pkg/render/nodelink"
	"github.com/matzehuels/tooltree/pkg/render/plotly"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, d *treemap.Data, opts Options) (map[string][]byte, error) {
	r, err := newRenderer(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.render(format)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderer memoizes the intermediate forms shared by several formats: the
// plotly figure (plotly, html) and the SVG (svg, png, pdf).
type renderer struct {
	ctx      context.Context
	data     *treemap.Data
	coloring *treemap.Coloring
	opts     Options

	fig *plotly.Figure
	svg []byte
}

func newRenderer(ctx context.Context, d *treemap.Data, opts Options) (*renderer, error) {
	coloring, err := treemap.ResolveColors(d, opts.ColorRequest())
	if err != nil {
		return nil, err
	}
	return &renderer{ctx: ctx, data: d, coloring: coloring, opts: opts}, nil
}

func (r *renderer) render(format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := pkgio.WriteJSON(r.data, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatPlotly:
		return r.figure().JSON()
	case FormatHTML:
		return plotly.HTML(r.figure(), r.opts.Title)
	case FormatDOT:
		return []byte(r.dot()), nil
	case FormatSVG:
		return r.renderSVG()
	case FormatPNG:
		svg, err := r.renderSVG()
		if err != nil {
			return nil, err
		}
		return render.ToPNG(r.ctx, svg, r.opts.PNGScale)
	case FormatPDF:
		svg, err := r.renderSVG()
		if err != nil {
			return nil, err
		}
		return render.ToPDF(r.ctx, svg)
	}
	return nil, ValidateFormat(format)
}

func (r *renderer) figure() *plotly.Figure {
	if r.fig == nil {
		r.fig = plotly.NewFigure(r.data, r.coloring, r.opts.Plotly)
	}
	return r.fig
}

func (r *renderer) dot() string {
	return nodelink.ToDOT(r.data, r.coloring, r.opts.Nodelink)
}

func (r *renderer) renderSVG() ([]byte, error) {
	if r.svg != nil {
		return r.svg, nil
	}
	svg, err := nodelink.RenderSVG(r.ctx, r.dot())
	if err != nil {
		return nil, err
	}
	r.svg = svg
	return svg, nil
}
