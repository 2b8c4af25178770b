package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/format"
)

// statsCommand creates the stats command that summarizes a built treemap.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats [table.csv|table.json]",
		Short: "Summarize the treemap built from a table",
		Long: `Summarize the treemap built from a table.

Prints the number of nodes and the kept share of the total per depth, and
the largest top-level branch. A share below 100% means pruning dropped part
of that depth.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args)
			if err != nil {
				return err
			}
			built, cacheHit, err := c.build(cmd.Context(), opts, flags.noCache)
			if err != nil {
				return err
			}
			summary := treemap.Summarize(built.Data)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(cmd.OutOrStdout(), summary, opts.Levels, opts.Metric)
			printStats(summary.Nodes, len(built.Levels), cacheHit)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

// printSummary writes the per-depth table and the headline numbers.
func printSummary(w io.Writer, s treemap.Summary, levels []string, metric string) {
	fmt.Fprintln(w, StyleTitle.Render("Treemap summary"))
	fmt.Fprintln(w, summaryTable(s, levels))

	keyStyle := lipgloss.NewStyle().Foreground(colorMuted).Width(16)
	line := func(k, v string) {
		fmt.Fprintln(w, keyStyle.Render(k)+" "+StyleValue.Render(v))
	}
	line("Nodes", strconv.Itoa(s.Nodes))
	line("Total "+metric, format.Plain(s.TotalSize, 2))
	if s.LargestBranch != "" {
		line("Largest branch", fmt.Sprintf("%s (%s)", s.LargestBranch, format.Percent(s.LargestBranchShare, 1)))
	}
}

// summaryTable renders one row per depth.
func summaryTable(s treemap.Summary, levels []string) string {
	rows := make([][]string, 0, len(s.Levels))
	for _, l := range s.Levels {
		column := ""
		if l.Depth < len(levels) {
			column = levels[l.Depth]
		}
		rows = append(rows, []string{
			strconv.Itoa(l.Depth),
			column,
			strconv.Itoa(l.Nodes),
			format.Plain(l.Size, 2),
			format.Percent(l.Share, 1),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Depth", "Column", "Nodes", "Size", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	return t.Render()
}
