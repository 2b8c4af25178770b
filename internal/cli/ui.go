package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/format"
)

// uiOut receives status lines.
var uiOut io.Writer = os.Stdout

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings and the browse breadcrumb.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// StyleHighlight marks emphasized tooltip values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)

	StyleDim     = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue   = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)

	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
	styleColumn  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	stylePruned  = lipgloss.NewStyle().Foreground(colorWarn)
)

// status is the kind of a one-line message.
type status int

const (
	statusOK status = iota
	statusFail
	statusWarn
	statusInfo
)

var statusMarks = [...]struct {
	icon  string
	style lipgloss.Style
}{
	statusOK:   {"✓", lipgloss.NewStyle().Foreground(colorOK)},
	statusFail: {"✗", lipgloss.NewStyle().Foreground(colorFail)},
	statusWarn: {"!", lipgloss.NewStyle().Foreground(colorWarn)},
	statusInfo: {"›", lipgloss.NewStyle().Foreground(colorMuted)},
}

func printStatus(s status, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s == statusWarn {
		msg = StyleWarning.Render(msg)
	}
	mark := statusMarks[s]
	fmt.Fprintln(uiOut, mark.style.Render(mark.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { printStatus(statusOK, format, args...) }
func printError(format string, args ...any)   { printStatus(statusFail, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarn, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// printStats prints node and level counts and whether the treemap came from
// the cache.
func printStats(nodeCount, levelCount int, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		StyleDim.Render(fmt.Sprintf("%d levels", levelCount)),
	}
	if cached {
		parts = append(parts, statusMarks[statusOK].style.Render("cached"))
	} else {
		parts = append(parts, statusMarks[statusInfo].style.Render("fresh"))
	}
	fmt.Fprintln(uiOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printLevelLines prints one line per level: how many groups were kept and
// the share of total that survived pruning.
func printLevelLines(levels []treemap.LevelStats, total float64) {
	width := 0
	for _, s := range levels {
		width = max(width, len(s.Column))
	}
	for _, s := range levels {
		fmt.Fprintln(uiOut, levelLine(s, total, width))
	}
}

func levelLine(s treemap.LevelStats, total float64, width int) string {
	share := 0.0
	if total > 0 {
		share = s.KeptSize / total
	}
	kept := fmt.Sprintf("%d/%d kept", s.Kept, s.Candidates)
	line := "  " + styleColumn.Render(fmt.Sprintf("%-*s", width, s.Column)) + "  " +
		StyleValue.Render(kept) + StyleDim.Render(" · "+format.Percent(share, 1)+" of total")
	if s.Skipped > 0 {
		line += StyleDim.Render(" · ") + stylePruned.Render(fmt.Sprintf("%d pruned", s.Skipped))
	}
	return line
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(uiOut)
}
