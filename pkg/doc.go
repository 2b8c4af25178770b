// Package pkg provides the core libraries for Tooltree treemap visualization.
//
// # Overview
//
// Tooltree turns a flat table into a hierarchical treemap: rows are grouped
// by one or more columns, a numeric metric is summed per group, each
// parent's children are pruned to the largest ones, and every node gets a
// label and an HTML tooltip. The pkg directory is organized into these
// areas:
//
//  1. [core] - Domain logic (tables, aggregation, pruning, labels, colors)
//  2. [io] - Reading CSV and JSON tables, reading and writing treemap JSON
//  3. [render] - Plotly figures, HTML pages, node-link diagrams
//  4. [pipeline] - Orchestration (load → build → render) with caching
//  5. [api] - HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow through Tooltree:
//
//	CSV / JSON records
//	         ↓
//	    [io] package (parse into a frame)
//	         ↓
//	    [core/treemap] package (group, sum, prune, label, tooltip)
//	         ↓
//	    [render] packages (plotly figure, HTML, DOT, SVG)
//	         ↓
//	    HTML/JSON/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/tooltree/pkg/core/treemap"
//	    pkgio "github.com/matzehuels/tooltree/pkg/io"
//	    "github.com/matzehuels/tooltree/pkg/render/plotly"
//	)
//
//	// 1. Load the table
//	f, _ := pkgio.Import("costs.csv", pkgio.FormatCSV)
//
//	// 2. Build the treemap
//	d, _ := treemap.Build(f, treemap.Options{
//	    Levels:     []string{"team", "service"},
//	    Metric:     "cost",
//	    RootLimits: treemap.Limits{MaxChildren: treemap.MaxChildren(10)},
//	})
//
//	// 3. Resolve colors and render
//	c, _ := treemap.ResolveColors(d, treemap.ColorRequest{})
//	page, _ := plotly.HTML(plotly.NewFigure(d, c, plotly.Options{}), "Costs")
//
// # Main Packages
//
// [core/frame] - Column-oriented tables on top of go-gg with typed column
// access and multi-column group-by.
//
// [core/treemap] - Treemap construction: aggregation, per-parent pruning,
// label wrapping, tooltips, color resolution, and summaries.
//
// [format] - Number formatting for tooltips (separators, percentages,
// magnitudes).
//
// [render/plotly] - Plotly figure documents and standalone HTML pages.
//
// [render/nodelink] - The hierarchy as a Graphviz node-link diagram.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// ## Infrastructure
//
// [pipeline] - The complete pipeline used by the CLI and the API. Ensures
// consistent behavior across both entry points.
//
// [cache] - Cache backends: FileCache (CLI), RedisCache (API), NullCache.
//
// [errors] - Coded errors shared by all layers.
//
// [observability] - Hooks for build, render, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/core/treemap/...    # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// Redis tests run when TOOLTREE_TEST_REDIS_URL is set.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/core
// [core/frame]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/core/frame
// [core/treemap]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/core/treemap
// [io]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/io
// [format]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/format
// [render]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/render
// [render/plotly]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/render/plotly
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/pipeline
// [api]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/api
// [cache]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tooltree/pkg/observability
package pkg
