package treemap

// Summary describes the shape of a built treemap.
type Summary struct {
	Nodes     int            `json:"nodes"`
	TotalSize float64        `json:"total_size"`
	Levels    []LevelSummary `json:"levels"`

	// LargestBranch is the id of the largest level-0 node, if any.
	LargestBranch      string  `json:"largest_branch,omitempty"`
	LargestBranchShare float64 `json:"largest_branch_share,omitempty"`
}

// LevelSummary describes the nodes kept at one depth.
type LevelSummary struct {
	Depth int     `json:"depth"`
	Nodes int     `json:"nodes"`
	Size  float64 `json:"size"`

	// Share is Size relative to the total size. Below 1 when pruning
	// dropped part of the level.
	Share float64 `json:"share"`
}

// Summarize computes per-depth node counts and size shares of d. Depth 0 is
// the first level below the root.
func Summarize(d *Data) Summary {
	s := Summary{Nodes: d.Len(), TotalSize: d.TotalSize}
	if d.Len() == 0 {
		return s
	}

	depth := make(map[string]int, d.Len())
	depth[d.IDs[0]] = -1
	for i := 1; i < d.Len(); i++ {
		k := depth[d.Parents[i]] + 1
		depth[d.IDs[i]] = k
		for len(s.Levels) <= k {
			s.Levels = append(s.Levels, LevelSummary{Depth: len(s.Levels)})
		}
		s.Levels[k].Nodes++
		s.Levels[k].Size += d.Sizes[i]
	}
	for i := range s.Levels {
		s.Levels[i].Share = share(s.Levels[i].Size, d.TotalSize)
	}

	if b := d.Branches(); len(b) > 0 {
		s.LargestBranch = d.IDs[b[0]]
		s.LargestBranchShare = share(d.Sizes[b[0]], d.TotalSize)
	}
	return s
}
