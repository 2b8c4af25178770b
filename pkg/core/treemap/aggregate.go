package treemap

import (
	"cmp"
	"slices"

	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/tooltree/pkg/core/frame"
	"github.com/matzehuels/tooltree/pkg/errors"
)

// aggColumn is one resolved per-group aggregation.
type aggColumn struct {
	name string
	agg  Agg
	nums []float64 // numeric aggregations
	raw  []any     // AggFirst
}

func (c aggColumn) reduce(rows []int) any {
	switch c.agg {
	case AggFirst:
		return c.raw[rows[0]]
	case AggCount:
		return float64(len(rows))
	}
	xs := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = c.nums[r]
	}
	switch c.agg {
	case AggMean:
		return stats.Mean(xs)
	case AggMin:
		lo, _ := stats.Bounds(xs)
		return lo
	case AggMax:
		_, hi := stats.Bounds(xs)
		return hi
	}
	return sum(xs)
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// entry is one aggregated group at a given level.
type entry struct {
	path   Path
	valid  bool // own value is non-null
	size   float64
	values map[string]any
}

// aggregate groups f by levels and reduces the metric and every extra
// column per group. Entries are sorted by descending size; ties keep the
// order in which groups first appear in f.
func aggregate(f *frame.Frame, levels []string, metric []float64, cols []aggColumn) ([]entry, error) {
	groups, err := f.GroupBy(levels...)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, len(groups))
	for i, g := range groups {
		e := entry{
			path:  Path(g.Keys),
			valid: g.Valid[len(g.Valid)-1],
		}
		for _, r := range g.Rows {
			e.size += metric[r]
		}
		if len(cols) > 0 {
			e.values = make(map[string]any, len(cols))
			for _, c := range cols {
				e.values[c.name] = c.reduce(g.Rows)
			}
		}
		entries[i] = e
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(b.size, a.size)
	})
	return entries, nil
}

// resolveExtras validates the extra metrics against f and returns their
// aggregations. taken holds names already in use (levels and metric).
func resolveExtras(f *frame.Frame, extras []Metric, taken map[string]bool) ([]aggColumn, error) {
	cols := make([]aggColumn, 0, len(extras))
	for _, m := range extras {
		name := m.OutputName()
		switch {
		case m.Column == "":
			return nil, errors.New(errors.ErrCodeInvalidMetric, "extra metric %q has no column", name)
		case name == "":
			return nil, errors.New(errors.ErrCodeInvalidMetric, "extra metric on %q has no output name", m.Column)
		case !m.agg().numeric():
			return nil, errors.New(errors.ErrCodeInvalidMetric, "extra metric %q: unknown aggregation %q", name, m.Agg)
		case !f.Has(m.Column):
			return nil, errors.New(errors.ErrCodeInvalidMetric, "extra metric %q: unknown column %q", name, m.Column)
		case taken[name]:
			return nil, errors.New(errors.ErrCodeInvalidMetric, "extra metric %q collides with another output name", name)
		}
		taken[name] = true

		c := aggColumn{name: name, agg: m.agg()}
		if c.agg != AggCount {
			nums, err := f.Floats(m.Column)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidMetric, err, "extra metric %q", name)
			}
			c.nums = nums
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// colorValue is the aggregated value name used for a color column that is
// not already computed as the metric or an extra metric.
const colorValue = "\x00color"

// resolveColorColumn decides where a color column's values come from. It
// returns the value name to read from each entry and, when a new
// aggregation is needed, that aggregation.
func resolveColorColumn(f *frame.Frame, cc ColorColumn, metric string, extras []aggColumn) (string, *aggColumn, error) {
	if cc.Column == "" {
		return "", nil, errors.New(errors.ErrCodeInvalidColorSpec, "color column is empty")
	}
	if cc.Agg == "" {
		if cc.Column == metric {
			return metric, nil, nil
		}
		for _, c := range extras {
			if c.name == cc.Column {
				return c.name, nil, nil
			}
		}
		if !f.Has(cc.Column) {
			return "", nil, errors.New(errors.ErrCodeInvalidColorSpec, "color column %q not found", cc.Column)
		}
		return "", nil, errors.New(errors.ErrCodeInvalidColorSpec, "color column %q needs an aggregation", cc.Column)
	}
	if !f.Has(cc.Column) {
		return "", nil, errors.New(errors.ErrCodeInvalidColorSpec, "color column %q not found", cc.Column)
	}

	c := &aggColumn{name: colorValue, agg: cc.Agg}
	switch {
	case cc.Agg == AggFirst:
		raw, err := f.Values(cc.Column)
		if err != nil {
			return "", nil, err
		}
		c.raw = raw
	case cc.Agg == AggCount:
	case cc.Agg.numeric():
		nums, err := f.Floats(cc.Column)
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrCodeInvalidColorSpec, err, "color column %q", cc.Column)
		}
		c.nums = nums
	default:
		return "", nil, errors.New(errors.ErrCodeInvalidColorSpec, "color column %q: unknown aggregation %q", cc.Column, cc.Agg)
	}
	return colorValue, c, nil
}
