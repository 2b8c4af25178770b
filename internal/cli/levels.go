package cli

import (
	"io"

	"github.com/aclements/go-gg/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
)

// levelsCommand creates the levels command that reports pruning per level.
func (c *CLI) levelsCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "levels [table.csv|table.json]",
		Short: "Show how pruning treated each level",
		Long: `Show how pruning treated each level.

For every grouping level the table lists how many groups were candidates,
how many were kept and skipped by the child limits, and the total size of
the kept groups. Use it to tune --max-children and --min-fraction.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args)
			if err != nil {
				return err
			}
			built, _, err := c.build(cmd.Context(), opts, flags.noCache)
			if err != nil {
				return err
			}
			return printLevels(cmd.OutOrStdout(), built.Levels)
		},
	}

	flags.register(cmd)
	return cmd
}

// printLevels writes one row per level stats entry.
func printLevels(w io.Writer, levels []treemap.LevelStats) error {
	var (
		index      = make([]int, len(levels))
		columns    = make([]string, len(levels))
		candidates = make([]int, len(levels))
		kept       = make([]int, len(levels))
		skipped    = make([]int, len(levels))
		keptSize   = make([]float64, len(levels))
	)
	for i, s := range levels {
		index[i] = s.Level
		columns[i] = s.Column
		candidates[i] = s.Candidates
		kept[i] = s.Kept
		skipped[i] = s.Skipped
		keptSize[i] = s.KeptSize
	}

	tab := table.NewBuilder(nil).
		Add("level", index).
		Add("column", columns).
		Add("candidates", candidates).
		Add("kept", kept).
		Add("skipped", skipped).
		Add("kept size", keptSize).
		Done()
	return table.Fprint(w, tab, "%d", "%s", "%d", "%d", "%d", "%.6g")
}
