package treemap

import (
	"strings"

	"github.com/matzehuels/tooltree/pkg/errors"
	"github.com/matzehuels/tooltree/pkg/format"
)

// tooltipInput is everything the tooltip of one node depends on.
type tooltipInput struct {
	label      string
	ancestors  Path // nil for the root
	parentSize float64
	size       float64
	total      float64
	metric     string
	format     format.Options
	values     map[string]any
	extras     []string // extra metric output names; nil for the root
}

// tooltip renders the hover text of a node, one segment per line:
//
//	<b>name</b> size
//	pct of metric
//	pct of parent       (levels >= 1)
//	magnitude extra     (per extra metric)
func tooltip(in tooltipInput) (string, error) {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(strings.ReplaceAll(in.label, LineBreak, " "))
	b.WriteString("</b> ")
	b.WriteString(format.Number(in.size, in.format))

	b.WriteString(LineBreak)
	b.WriteString(format.Percent(share(in.size, in.total), 1))
	b.WriteString(" of ")
	b.WriteString(in.metric)

	if len(in.ancestors) >= 1 {
		b.WriteString(LineBreak)
		b.WriteString(format.Percent(share(in.size, in.parentSize), 1))
		b.WriteString(" of ")
		b.WriteString(in.ancestors[len(in.ancestors)-1])
	}

	for _, name := range in.extras {
		v, ok := in.values[name]
		if !ok {
			return "", errors.New(errors.ErrCodeMissingExtraMetric, "extra metric %q not found in entry", name)
		}
		x, ok := v.(float64)
		if !ok {
			return "", errors.New(errors.ErrCodeMissingExtraMetric, "extra metric %q is not numeric", name)
		}
		b.WriteString(LineBreak)
		b.WriteString(format.Magnitude(x, 1))
		b.WriteString(" ")
		b.WriteString(name)
	}
	return b.String(), nil
}

func share(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole
}
