package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the browse command for exploring a treemap in the
// terminal.
func (c *CLI) browseCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "browse [table.csv|table.json]",
		Short: "Explore the treemap interactively in the terminal",
		Long: `Explore the treemap interactively in the terminal.

Builds the treemap and opens a browser that lists the children of the
current node with their size, share of the parent, and tooltip. Open a node
with enter and go back with backspace.`,
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

			p := tea.NewProgram(NewBrowserModel(built.Data), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				if cmd.Context().Err() != nil {
					return cmd.Context().Err()
				}
				return fmt.Errorf("browse: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
