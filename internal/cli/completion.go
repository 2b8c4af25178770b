package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tooltree.

Besides commands and flags, the scripts complete column names for --level,
--metric, --extra and --color-column from the table given as the first
argument, and the known values of --format, --color-agg and --input-format.

  bash:        source <(tooltree completion bash)
  zsh:         tooltree completion zsh > "${fpath[1]}/_tooltree"
  fish:        tooltree completion fish | source
  powershell:  tooltree completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// tableArgs completes the input argument with CSV and JSON files.
func tableArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"csv", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

// registerCompletions attaches value completions to the flags present on
// cmd. Commands taking pipeline flags also complete their table argument.
func registerCompletions(cmd *cobra.Command) {
	if cmd.Flags().Lookup("level") != nil {
		cmd.ValidArgsFunction = tableArgs
	}

	complete := map[string]cobra.CompletionFunc{
		"level":        completeColumns(true),
		"metric":       completeColumns(false),
		"extra":        completeColumns(false),
		"color-column": completeColumns(false),
		"color-agg": completeValues(
			string(treemap.AggMean), string(treemap.AggSum), string(treemap.AggMin),
			string(treemap.AggMax), string(treemap.AggCount), string(treemap.AggFirst)),
		"input-format": completeValues("csv", "json"),
		"format":       completeValues(sortedFormats()...),
	}
	for name, fn := range complete {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, fn)
	}
}

// completeColumns completes with the column names of the table named by
// the first argument. With list set, values after the last comma are
// completed so "-l team,se" offers "team,service".
func completeColumns(list bool) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		columns, err := tableColumns(cmd, args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		head, partial := "", toComplete
		if i := strings.LastIndex(toComplete, ","); list && i >= 0 {
			head, partial = toComplete[:i+1], toComplete[i+1:]
		}
		taken := strings.Split(head, ",")

		var out []string
		for _, col := range columns {
			if strings.HasPrefix(col, partial) && !slices.Contains(taken, col) {
				out = append(out, head+col)
			}
		}
		if list {
			return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// tableColumns reads the column names of input, honoring --input-format.
func tableColumns(cmd *cobra.Command, input string) ([]string, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, err
	}
	opts := pipeline.Options{Input: input}
	if f := cmd.Flags().Lookup("input-format"); f != nil {
		opts.InputFormat = f.Value.String()
	}
	in, err := pipeline.Load(opts)
	if err != nil {
		return nil, err
	}
	return in.Frame.Columns(), nil
}

func completeValues(values ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func sortedFormats() []string {
	formats := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
