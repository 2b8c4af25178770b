package treemap

import (
	"github.com/matzehuels/tooltree/pkg/format"
)

// Options configures [Build].
type Options struct {
	// Levels are the grouping columns, outermost first.
	Levels []string

	// Metric is the numeric column that sizes the nodes. It must not contain
	// negative values.
	Metric string

	// ExtraMetrics are aggregated per node and appended to its tooltip.
	ExtraMetrics []Metric

	// MetricFormat controls how node sizes are printed in tooltips.
	MetricFormat format.Options

	// Root is the root node's label and id.
	Root string

	// RootLimits prune the root's children (level 0); ChildLimits prune
	// every deeper level.
	RootLimits  Limits
	ChildLimits Limits

	// NodeColors requests per-node colors. Nil disables node coloring.
	NodeColors NodeColoring

	// RootColor overrides the root's node color. Defaults to [DefaultRootColor].
	RootColor string
}

// Limits bound the children kept under a single parent.
type Limits struct {
	// MaxChildren caps the number of kept children per parent. Nil means no
	// cap, which in practice is twice the number of source rows. Zero keeps
	// no children at all.
	MaxChildren *int `json:"max_children,omitempty" toml:"max_children"`

	// MinFraction drops children whose share of the parent's size is below
	// it. Zero keeps everything except children of an empty parent.
	MinFraction float64 `json:"min_fraction,omitempty" toml:"min_fraction"`
}

// MaxChildren returns a pointer to n for use in [Limits].
func MaxChildren(n int) *int { return &n }

// limit is a Limits with its defaults applied.
type limit struct {
	maxChildren int
	minFraction float64
}

func (l Limits) resolve(rows int) limit {
	lim := limit{maxChildren: 2 * rows, minFraction: l.MinFraction}
	if l.MaxChildren != nil {
		lim.maxChildren = *l.MaxChildren
	}
	return lim
}

// Agg names a per-group aggregation.
type Agg string

const (
	AggSum   Agg = "sum"
	AggMean  Agg = "mean"
	AggMin   Agg = "min"
	AggMax   Agg = "max"
	AggCount Agg = "count"

	// AggFirst takes the group's first value unchanged. It is only valid for
	// color columns, which may hold literal color strings.
	AggFirst Agg = "first"
)

func (a Agg) numeric() bool {
	switch a {
	case AggSum, AggMean, AggMin, AggMax, AggCount:
		return true
	}
	return false
}

// Metric is an extra per-node aggregate shown in tooltips.
type Metric struct {
	// Name is the output name shown in tooltips. Defaults to the column
	// for sums and to "<agg> <column>" otherwise.
	Name   string `json:"name,omitempty" toml:"name"`
	Column string `json:"column" toml:"column"`
	Agg    Agg    `json:"agg,omitempty" toml:"agg"`
}

// Sum is the extra metric that sums column.
func Sum(column string) Metric {
	return Metric{Column: column, Agg: AggSum}
}

// OutputName returns the name under which m appears in tooltips.
func (m Metric) OutputName() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Agg == "" || m.Agg == AggSum {
		return m.Column
	}
	return string(m.Agg) + " " + m.Column
}

func (m Metric) agg() Agg {
	if m.Agg == "" {
		return AggSum
	}
	return m.Agg
}
