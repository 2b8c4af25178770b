package frame

import (
	"slices"

	"github.com/aclements/go-gg/table"

	"github.com/matzehuels/tooltree/pkg/errors"
)

// rowColumn holds source row indices in the working table built by GroupBy.
const rowColumn = "\x00row"

// Group is one distinct combination of key values.
type Group struct {
	// Keys are the group's key values, one per grouped column. A null key
	// is the empty string with Valid false.
	Keys  []string
	Valid []bool

	// Rows are the source row indices of the group, ascending.
	Rows []int
}

// First returns the index of the group's first row in the source table.
func (g Group) First() int { return g.Rows[0] }

// GroupBy partitions the rows by the values of cols. Groups are returned in
// order of first appearance in the frame, so the result is deterministic.
func (f *Frame) GroupBy(cols ...string) ([]Group, error) {
	if len(cols) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "group by requires at least one column")
	}

	n := f.Len()
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	b := table.NewBuilder(nil).Add(rowColumn, rows)
	valid := make(map[string][]bool, len(cols))
	for _, col := range cols {
		values, ok, err := f.Strings(col)
		if err != nil {
			return nil, err
		}
		b.Add(col, values)
		valid[col] = ok
	}

	grouped := table.GroupBy(b.Done(), cols...)
	gids := grouped.Tables()
	groups := make([]Group, 0, len(gids))
	for _, gid := range gids {
		t := grouped.Table(gid)
		if t == nil || t.Len() == 0 {
			continue
		}
		g := Group{
			Keys:  make([]string, len(cols)),
			Valid: make([]bool, len(cols)),
			Rows:  t.MustColumn(rowColumn).([]int),
		}
		// The group id nests one label per grouped column, innermost last.
		id := gid
		for i := len(cols) - 1; i >= 0; i-- {
			g.Keys[i], _ = id.Label().(string)
			id = id.Parent()
		}
		for i, col := range cols {
			g.Valid[i] = valid[col][g.Rows[0]]
		}
		groups = append(groups, g)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return a.First() - b.First()
	})
	return groups, nil
}
