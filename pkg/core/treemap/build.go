package treemap

import (
	"math"

	"github.com/matzehuels/tooltree/pkg/core/frame"
	"github.com/matzehuels/tooltree/pkg/errors"
)

// Build aggregates f into treemap data according to opts.
//
// Build fails without partial output when the metric has negative values,
// an extra metric or color specification is invalid, or a kept node has a
// null value. Pruned candidates are never an error.
func Build(f *frame.Frame, opts Options) (*Data, error) {
	d, _, err := BuildWithStats(f, opts)
	return d, err
}

// BuildWithStats is like [Build] but also reports per-level pruning counts.
func BuildWithStats(f *frame.Frame, opts Options) (*Data, []LevelStats, error) {
	b, err := newBuilder(f, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := b.addRoot(); err != nil {
		return nil, nil, err
	}
	for i := range opts.Levels {
		if err := b.addLevel(i); err != nil {
			return nil, nil, err
		}
	}
	return b.data, b.stats, nil
}

type builder struct {
	f      *frame.Frame
	opts   Options
	metric []float64
	cols   []aggColumn
	extras []string
	color  *colorSource

	data   *Data
	pruner *pruner
	ids    map[string]bool
	stats  []LevelStats
}

func newBuilder(f *frame.Frame, opts Options) (*builder, error) {
	if f == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no source table")
	}
	if opts.Metric == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "metric column is required")
	}
	if !f.Has(opts.Metric) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "metric column %q not found", opts.Metric)
	}
	if err := errors.ValidateColumnNames(opts.Levels); err != nil {
		return nil, err
	}
	taken := map[string]bool{opts.Metric: true}
	for _, l := range opts.Levels {
		if !f.Has(l) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "level column %q not found", l)
		}
		taken[l] = true
	}

	metric, err := f.Floats(opts.Metric)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "metric column %q", opts.Metric)
	}
	for i, x := range metric {
		if x < 0 {
			return nil, errors.New(errors.ErrCodeNegativeMetric, "metric column %q contains negative values (row %d: %v)", opts.Metric, i, x)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "metric column %q row %d is not finite", opts.Metric, i)
		}
	}

	cols, err := resolveExtras(f, opts.ExtraMetrics, taken)
	if err != nil {
		return nil, err
	}
	extras := make([]string, len(cols))
	for i, c := range cols {
		extras[i] = c.name
	}

	b := &builder{
		f:      f,
		opts:   opts,
		metric: metric,
		extras: extras,
		ids:    map[string]bool{},
	}

	if opts.NodeColors != nil {
		src := &colorSource{root: Str(DefaultRootColor)}
		if opts.RootColor != "" {
			src.root = Str(opts.RootColor)
		}
		switch nc := opts.NodeColors.(type) {
		case ColorColumn:
			name, extra, err := resolveColorColumn(f, nc, opts.Metric, cols)
			if err != nil {
				return nil, err
			}
			src.column = name
			src.metric = name == opts.Metric
			if extra != nil {
				cols = append(cols, *extra)
			}
		case *ColorMap:
			if nc == nil {
				return nil, errors.New(errors.ErrCodeInvalidColorSpec, "nil color map")
			}
			src.m = nc
		default:
			return nil, errors.New(errors.ErrCodeInvalidColorSpec, "unsupported node coloring %T", nc)
		}
		b.color = src
	}
	b.cols = cols

	total := sum(metric)
	b.pruner = newPruner(f.Len(), opts.RootLimits, opts.ChildLimits, total)
	b.data = &Data{
		TotalSize: total,
		Metric:    opts.Metric,
		Root:      opts.Root,
	}
	if b.color != nil {
		b.data.Colors = []Color{}
	}
	return b, nil
}

func (b *builder) addRoot() error {
	tip, err := tooltip(tooltipInput{
		label:  Label(b.opts.Root, b.opts.Root),
		size:   b.data.TotalSize,
		total:  b.data.TotalSize,
		metric: b.opts.Metric,
		format: b.opts.MetricFormat,
	})
	if err != nil {
		return err
	}
	var c Color
	if b.color != nil {
		c = b.color.root
	}
	return b.emit(b.opts.Root, b.opts.Root, "", b.data.TotalSize, tip, c)
}

func (b *builder) addLevel(i int) error {
	entries, err := aggregate(b.f, b.opts.Levels[:i+1], b.metric, b.cols)
	if err != nil {
		return err
	}
	st := LevelStats{Level: i, Column: b.opts.Levels[i], Candidates: len(entries)}
	for _, e := range entries {
		if !b.pruner.admit(i, e.path, e.size) {
			st.Skipped++
			continue
		}
		if !e.valid {
			return errors.New(errors.ErrCodeMissingName, "null value in level column %q under %q", b.opts.Levels[i], e.path[:i].ID(b.opts.Root))
		}
		if err := b.addNode(e); err != nil {
			return err
		}
		st.Kept++
		st.KeptSize += e.size
	}
	b.stats = append(b.stats, st)
	return nil
}

func (b *builder) addNode(e entry) error {
	ancestors := e.path[:len(e.path)-1]
	name := e.path[len(e.path)-1]
	label := Label(name, b.opts.Root)

	tip, err := tooltip(tooltipInput{
		label:      label,
		ancestors:  ancestors,
		parentSize: b.pruner.parentSize(e.path),
		size:       e.size,
		total:      b.data.TotalSize,
		metric:     b.opts.Metric,
		format:     b.opts.MetricFormat,
		values:     e.values,
		extras:     b.extras,
	})
	if err != nil {
		return err
	}

	var c Color
	if b.color != nil {
		if c, err = b.color.node(e); err != nil {
			return err
		}
	}
	return b.emit(e.path.ID(b.opts.Root), label, ancestors.ID(b.opts.Root), e.size, tip, c)
}

func (b *builder) emit(id, label, parent string, size float64, tip string, c Color) error {
	if b.ids[id] {
		return errors.New(errors.ErrCodeInvalidInput, "node id %q is not unique (level values joined by %q collide)", id, IDSeparator)
	}
	b.ids[id] = true

	d := b.data
	d.IDs = append(d.IDs, id)
	d.Labels = append(d.Labels, label)
	d.Parents = append(d.Parents, parent)
	d.Sizes = append(d.Sizes, size)
	d.Tooltips = append(d.Tooltips, tip)
	if d.Colors != nil {
		d.Colors = append(d.Colors, c)
	}
	return nil
}
