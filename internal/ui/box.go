package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// listRow is one line of a selectable list: plain cells plus a racer state
// rendered as a trailing colored label.
type listRow struct {
	text   string
	status string
	label  string
}

// renderList renders rows inside a pane of the given size, keeping the
// selected row visible. selected < 0 renders without a selection bar.
func (m Model) renderList(rows []listRow, selected, width, height int, bgColor, empty string) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()
	if len(rows) == 0 {
		return bg.FillLine(bg.Render(empty, styles.MutedText), width)
	}

	start, end := visibleWindow(len(rows), selected, height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		row := rows[i]
		labelWidth := len([]rune(row.label)) + 2 // badge padding
		textWidth := max(width-labelWidth-2, 10)

		if i == selected {
			selBg := NewBgStyle(m.theme.SelectionBg)
			selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
			content := selBg.Render(padRight(truncate(row.text, textWidth), textWidth), selText)
			if row.label != "" {
				content += selBg.Space() + selBg.Render(row.label, selText.Bold(true))
			}
			lines = append(lines, selBg.FillLine(content, width))
			continue
		}

		content := bg.Render(padRight(truncate(row.text, textWidth), textWidth), styles.Text)
		if row.label != "" {
			content += bg.Space() + styles.StatusStyle(row.status).Render(row.label)
		}
		lines = append(lines, bg.FillLine(content, width))
	}
	return strings.Join(lines, "\n")
}

// visibleWindow returns the [start, end) slice of n rows that fits height
// lines and contains selected.
func visibleWindow(n, selected, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	return start, start + height
}

// colorForStatus returns the theme color for a given racer state.
func (m Model) colorForStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if color, ok := m.theme.StatusColors[status]; ok {
		return color
	}
	return m.theme.Text
}

// paneBg is the content background of a pane.
func (m Model) paneBg(focused bool) string {
	if focused {
		return m.theme.FocusBg
	}
	return m.theme.SurfaceAlt
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// Frame style: ┌─── Title ───┐
// When focused is true, uses BorderFocus color and FocusBg background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderColor := lipgloss.Color(borderColorStr)
	bgColor := lipgloss.Color(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	// Build the top border with embedded title
	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := len([]rune(title))
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bgColor)

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	paddedLines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}
