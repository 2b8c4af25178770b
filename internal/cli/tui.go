package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/format"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
)

// =============================================================================
// BrowserModel - Interactive treemap browser
// =============================================================================

// BrowserModel is the bubbletea model for walking a treemap one level at a
// time. It lists the children of the current node, largest first.
type BrowserModel struct {
	Data *treemap.Data

	// Path holds the indices of the entered nodes; empty at the root.
	Path   []int
	Cursor int
	Height int
	Offset int

	children map[string][]int
}

// NewBrowserModel creates a browser positioned at the root of d.
func NewBrowserModel(d *treemap.Data) BrowserModel {
	return BrowserModel{
		Data:     d,
		Height:   15,
		children: d.ChildIndex(),
	}
}

// current returns the index of the node whose children are listed.
func (m BrowserModel) current() int {
	if len(m.Path) == 0 {
		return 0
	}
	return m.Path[len(m.Path)-1]
}

// items returns the listed node indices.
func (m BrowserModel) items() []int {
	if m.Data.Len() == 0 {
		return nil
	}
	return m.children[m.Data.IDs[m.current()]]
}

// Selected returns the index of the node under the cursor, or -1.
func (m BrowserModel) Selected() int {
	items := m.items()
	if m.Cursor < 0 || m.Cursor >= len(items) {
		return -1
	}
	return items[m.Cursor]
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.items())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			sel := m.Selected()
			if sel < 0 || len(m.children[m.Data.IDs[sel]]) == 0 {
				return m, nil
			}
			m.Path = append(m.Path[:len(m.Path):len(m.Path)], sel)
			m.Cursor, m.Offset = 0, 0
		case "backspace", "left", "h":
			if len(m.Path) == 0 {
				return m, nil
			}
			left := m.current()
			m.Path = m.Path[:len(m.Path)-1]
			m.Cursor, m.Offset = 0, 0
			for i, idx := range m.items() {
				if idx == left {
					m.Cursor = i
					break
				}
			}
			if m.Cursor >= m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.breadcrumb()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎/→ open  ←/⌫ back  q quit"))
	b.WriteString("\n\n")

	items := m.items()
	if len(items) == 0 {
		b.WriteString(listDimStyle.Render("  (no children)"))
		b.WriteString("\n")
		return b.String()
	}

	parentSize := m.Data.Sizes[m.current()]
	end := m.Offset + m.Height
	if end > len(items) {
		end = len(items)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Data.Node(items[i])

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		share := 0.0
		if parentSize > 0 {
			share = n.Size / parentSize
		}

		more := ""
		if k := len(m.children[n.ID]); k > 0 {
			more = fmt.Sprintf("%d", k)
		}

		rows = append(rows, []string{cursor, plainLabel(n.Label), format.Plain(n.Size, 2), format.Percent(share, 1), more})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("", "Name", m.Data.Metric, "Share", "Children").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if sel := m.Selected(); sel >= 0 {
		for _, line := range tooltipLines(m.Data.Tooltips[sel]) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(items))))

	return b.String()
}

// breadcrumb joins the labels from the root to the current node.
func (m BrowserModel) breadcrumb() string {
	if m.Data.Len() == 0 {
		return "(empty treemap)"
	}
	parts := []string{plainLabel(m.Data.Labels[0])}
	for _, idx := range m.Path {
		parts = append(parts, plainLabel(m.Data.Labels[idx]))
	}
	return strings.Join(parts, " › ")
}

// =============================================================================
// Helpers
// =============================================================================

// plainLabel undoes label wrapping for terminal display.
func plainLabel(label string) string {
	return strings.ReplaceAll(label, treemap.LineBreak, " ")
}

// tooltipLines splits a tooltip into lines and renders its bold markup with
// lipgloss.
func tooltipLines(tip string) []string {
	lines := strings.Split(tip, treemap.LineBreak)
	for i, line := range lines {
		if start := strings.Index(line, "<b>"); start >= 0 {
			if end := strings.Index(line, "</b>"); end > start {
				line = line[:start] + StyleHighlight.Bold(true).Render(line[start+3:end]) + line[end+4:]
			}
		}
		lines[i] = line
	}
	return lines
}
