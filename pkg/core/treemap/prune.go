package treemap

// LevelStats counts the pruning outcome of one level.
type LevelStats struct {
	Level      int     `json:"level"`
	Column     string  `json:"column"`
	Candidates int     `json:"candidates"`
	Kept       int     `json:"kept"`
	Skipped    int     `json:"skipped"`
	KeptSize   float64 `json:"kept_size"`
}

// pruner tracks per-path state across levels. Paths are keyed by Path.Key,
// so the empty (root) path has key "".
type pruner struct {
	root, child limit

	children map[string]int
	sizes    map[string]float64
	skipped  map[string]bool
}

func newPruner(rows int, root, child Limits, total float64) *pruner {
	return &pruner{
		root:     root.resolve(rows),
		child:    child.resolve(rows),
		children: map[string]int{},
		sizes:    map[string]float64{"": total},
		skipped:  map[string]bool{},
	}
}

func (p *pruner) limits(level int) limit {
	if level == 0 {
		return p.root
	}
	return p.child
}

// admit decides whether the candidate at path (whose last element is its
// own value) is kept. Kept candidates are recorded as parents for the next
// level; skipped ones are remembered so their descendants are skipped too.
func (p *pruner) admit(level int, path Path, size float64) bool {
	parent := path[:len(path)-1].Key()
	self := path.Key()
	lim := p.limits(level)

	if p.skipped[parent] || p.children[parent] >= lim.maxChildren {
		p.skipped[self] = true
		return false
	}
	if ps := p.sizes[parent]; ps == 0 || size/ps < lim.minFraction {
		p.skipped[self] = true
		return false
	}
	p.children[parent]++
	p.sizes[self] = size
	return true
}

// parentSize returns the recorded size of path's parent.
func (p *pruner) parentSize(path Path) float64 {
	return p.sizes[path[:len(path)-1].Key()]
}
