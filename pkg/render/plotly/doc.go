// Package plotly renders treemap data as plotly.js figures.
//
// [NewFigure] maps a [treemap.Data] and its resolved [treemap.Coloring] onto
// a single treemap trace: ids, labels, parents and sizes become the trace's
// hierarchy with "total" branch values, tooltips become custom data shown by
// the hover template, and colors become either the layout colorway (branch
// mode) or per-tile marker colors (node mode). Numeric colors carry the color
// scale bounds and an optional color bar.
//
// [HTML] wraps a figure in a standalone page.
//
// [treemap.Data]: github.com/matzehuels/tooltree/pkg/core/treemap
// [treemap.Coloring]: github.com/matzehuels/tooltree/pkg/core/treemap
package plotly
