package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/trackside/internal/leaderboard"
)

func (m Model) renderDashboard() string {
	height := m.contentHeight()
	width := m.width - 2
	board := m.snaps.Dashboard.Board
	bg := NewBgStyle(m.paneBg(true))
	styles := m.theme.Styles()

	if board.Empty() {
		content := bg.FillLine(bg.Render("No finishers yet", styles.MutedText), width)
		return m.renderTitledBox("Dashboard", content, m.width, height, true)
	}

	var lines []string
	lines = append(lines, bg.FillLine(bg.Render("Overall", styles.AccentText.Bold(true)), width))
	for _, e := range board.Overall {
		lines = append(lines, bg.FillLine(m.podiumLine(e, e.OverallRank, true, bg), width))
	}

	half := width / 2
	for _, pair := range board.Pairs {
		lines = append(lines, bg.FillLine("", width))
		male := m.categoryColumn(pair.Male, half, bg)
		female := m.categoryColumn(pair.Female, width-half, bg)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, male, female))
	}

	return m.renderTitledBox("Dashboard", strings.Join(lines, "\n"), m.width, height, true)
}

func (m Model) categoryColumn(c leaderboard.Category, width int, bg BgStyle) string {
	styles := m.theme.Styles()
	title := c.Name
	if c.AgeRange != "" {
		title += " (" + c.AgeRange + ")"
	}
	lines := []string{bg.FillLine(bg.Render(title, styles.InfoText.Bold(true)), width)}
	if len(c.Entries) == 0 {
		lines = append(lines, bg.FillLine(bg.Render("-", styles.FaintText), width))
	}
	for i, e := range c.Entries {
		lines = append(lines, bg.FillLine(m.podiumLine(e, i+1, false, bg), width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) podiumLine(e leaderboard.Entry, rank int, withCategory bool, bg BgStyle) string {
	styles := m.theme.Styles()
	name := fmt.Sprintf("%s (#%d)", e.Racer.FullName(), e.Racer.RacerNo)
	line := bg.Render(fmt.Sprintf("%d.", rank), styles.WarningText) + bg.Space() +
		bg.Render(padRight(truncate(name, 30), 30), styles.Text) + bg.Space() +
		bg.Render(e.Racer.FinalDisplay(), styles.SuccessText)
	if withCategory && e.Category != "" {
		line += bg.Spaces(2) + bg.Render(e.Category, styles.MutedText)
	}
	return line
}
