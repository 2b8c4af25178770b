// Package io loads source tables and reads and writes treemap data as JSON.
//
// # Source tables
//
// Two input formats produce a [frame.Frame]:
//
//   - CSV with a header row. Columns whose cells all parse as numbers are
//     coerced to numeric columns; everything else stays a string column.
//     Empty cells in string columns are nulls.
//   - JSON: an array of flat objects ("records"). Column order follows the
//     first appearance of each key. Missing keys and JSON null are nulls.
//
// [Import] picks the reader from the file extension:
//
//	f, err := io.Import("costs.csv", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Treemap data
//
// [WriteJSON] and [ReadJSON] serialize [treemap.Data] with snake_case keys:
//
//	{
//	  "ids":        ["", "A", "A__x"],
//	  "labels":     ["all", "A", "x"],
//	  "parents":    ["", "", "A"],
//	  "sizes":      [18, 15, 10],
//	  "tooltips":   ["<b>all</b> 18<br>100.0% of value", ...],
//	  "colors":     ["white", 1.5, 2],
//	  "total_size": 18,
//	  "metric":     "value",
//	  "root":       "all"
//	}
//
// The root is always at index 0 and its parent is the empty string. Reading
// validates the structure, so a file accepted by [ReadJSON] is safe to hand
// to any renderer.
//
// [frame.Frame]: github.com/matzehuels/tooltree/pkg/core/frame
// [treemap.Data]: github.com/matzehuels/tooltree/pkg/core/treemap
package io
