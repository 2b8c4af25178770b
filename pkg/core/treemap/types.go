package treemap

import (
	"strconv"
	"strings"

	"github.com/matzehuels/tooltree/pkg/errors"
)

// IDSeparator joins ancestor values into node ids.
const IDSeparator = "__"

// LineBreak is the line-break marker understood by the rendering library.
const LineBreak = "<br>"

// Data is the treemap produced by [Build]. The slices are parallel: entry i
// of each describes the same node. The root is always entry 0 and parents
// always precede their children.
type Data struct {
	IDs      []string  `json:"ids"`
	Labels   []string  `json:"labels"`
	Parents  []string  `json:"parents"`
	Sizes    []float64 `json:"sizes"`
	Tooltips []string  `json:"tooltips"`

	// Colors is nil unless node coloring was requested.
	Colors []Color `json:"colors,omitempty"`

	TotalSize float64 `json:"total_size"`
	Metric    string  `json:"metric"`
	Root      string  `json:"root"`
}

// Node is a view of a single entry of [Data].
type Node struct {
	ID       string
	Label    string
	ParentID string
	Size     float64
	Tooltip  string
	Color    Color
}

// Len returns the number of nodes, including the root.
func (d *Data) Len() int { return len(d.IDs) }

// Node returns the i-th node.
func (d *Data) Node(i int) Node {
	n := Node{
		ID:       d.IDs[i],
		Label:    d.Labels[i],
		ParentID: d.Parents[i],
		Size:     d.Sizes[i],
		Tooltip:  d.Tooltips[i],
	}
	if d.Colors != nil {
		n.Color = d.Colors[i]
	}
	return n
}

// Nodes returns all nodes in output order.
func (d *Data) Nodes() []Node {
	nodes := make([]Node, d.Len())
	for i := range nodes {
		nodes[i] = d.Node(i)
	}
	return nodes
}

// ChildIndex maps each node id to the indices of its children, in output
// order. The root's own entry is not listed as a child of anything.
func (d *Data) ChildIndex() map[string][]int {
	idx := make(map[string][]int, d.Len())
	for i := 1; i < d.Len(); i++ {
		idx[d.Parents[i]] = append(idx[d.Parents[i]], i)
	}
	return idx
}

// Branches returns the indices of the level-0 nodes, largest first.
func (d *Data) Branches() []int {
	if d.Len() == 0 {
		return nil
	}
	return d.ChildIndex()[d.IDs[0]]
}

// Validate checks the structural invariants of d: equal sequence lengths, a
// single root with the total size, unique ids, and parents that precede
// their children.
func (d *Data) Validate() error {
	n := len(d.IDs)
	if len(d.Labels) != n || len(d.Parents) != n || len(d.Sizes) != n || len(d.Tooltips) != n {
		return errors.New(errors.ErrCodeInternal, "treemap sequences have unequal lengths")
	}
	if d.Colors != nil && len(d.Colors) != n {
		return errors.New(errors.ErrCodeInternal, "treemap colors have %d entries, want %d", len(d.Colors), n)
	}
	if n == 0 {
		return errors.New(errors.ErrCodeInternal, "treemap has no root")
	}
	if d.Parents[0] != "" {
		return errors.New(errors.ErrCodeInternal, "root has parent %q", d.Parents[0])
	}
	if d.Sizes[0] != d.TotalSize {
		return errors.New(errors.ErrCodeInternal, "root size %v differs from total size %v", d.Sizes[0], d.TotalSize)
	}
	seen := make(map[string]bool, n)
	for i, id := range d.IDs {
		if seen[id] {
			return errors.New(errors.ErrCodeInternal, "duplicate node id %q", id)
		}
		if i > 0 && !seen[d.Parents[i]] {
			return errors.New(errors.ErrCodeInternal, "node %q appears before its parent %q", id, d.Parents[i])
		}
		seen[id] = true
	}
	return nil
}

// Path is an ordered list of level values identifying a node's lineage.
type Path []string

// Key returns a map key for p. Distinct paths always have distinct keys, and
// the empty path has the empty key.
func (p Path) Key() string {
	var b strings.Builder
	for _, v := range p {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// ID returns the node id for p under the given root label.
func (p Path) ID(root string) string {
	if len(p) == 0 {
		return root
	}
	return strings.Join(p, IDSeparator)
}
