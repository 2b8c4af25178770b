// Package treemap builds hierarchical treemap data from a tabular source.
//
// # Overview
//
// Given a [frame.Frame], an ordered list of level columns and a numeric metric
// column, [Build] aggregates the rows at every prefix of the level list,
// prunes small or excess children, and emits a flat node list in which every
// node knows its parent:
//
//	frame ─► aggregate (per level) ─► prune ─► nodes ─► tooltips ─► colors
//
// The result is a [Data] value: parallel ids, labels, parents, sizes and
// tooltips sequences, ready for a charting library that understands
// "branchvalues=total" treemaps.
//
// # Node identity
//
// The root node's id is the configured root label. Every other node's id joins
// its ancestor values and its own value with [IDSeparator], so the node for
// region "A" and item "x" is "A__x" and its parent is "A".
//
// # Pruning
//
// Candidates at each level are visited in descending metric order. A candidate
// is skipped when its ancestor was skipped, when its parent already has the
// maximum number of children, or when its share of the parent's size is below
// the minimum fraction. Level 0 uses [Options.RootLimits]; deeper levels use
// [Options.ChildLimits]. Skips cascade to every descendant.
//
// # Colors
//
// Node colors are computed during the build when [Options.NodeColors] is set.
// Branch colors, which depend on the final level-0 order, are resolved
// afterwards by [ResolveColors].
//
// # Concurrency
//
// Build has no shared state; independent calls may run in parallel. The
// returned Data must be treated as read-only.
package treemap
