package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cschone/bikefit/pkg/frame"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// compareModel - Interactive bike comparison
// =============================================================================

// compareModel is the bubbletea model for browsing a bike comparison. The
// left pane lists the bikes; the right pane shows the measurements of the
// selected bike next to the full comparison table.
type compareModel struct {
	layouts []*frame.Layout
	cursor  int
}

func newCompareModel(layouts []*frame.Layout) compareModel {
	return compareModel{layouts: layouts}
}

func (m compareModel) Init() tea.Cmd {
	return nil
}

func (m compareModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.layouts)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m compareModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Bike Comparison"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select bike  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.bikeList(), "  ", m.detailTable()))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.layouts))))

	return b.String()
}

// bikeList renders the left-hand bike selector.
func (m compareModel) bikeList() string {
	var b strings.Builder
	for i, l := range m.layouts {
		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		line := l.Name
		if l.FrameSize != "" {
			line += " " + listDimStyle.Render(l.FrameSize)
		}
		b.WriteString(cursor + style.Render(line) + "\n")
	}
	return b.String()
}

// detailTable renders the measurements of the selected bike.
func (m compareModel) detailTable() string {
	selected := m.layouts[m.cursor]

	var rows [][]string
	for _, row := range frame.CompareRows([]*frame.Layout{selected}) {
		rows = append(rows, []string{row.Name, row.Values[0]})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Measurement", selected.Name).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return StyleDim.Padding(0, 1)
			}
			return styleCell
		}).
		Render()
}
