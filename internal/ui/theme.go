package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Racer states used as StatusColors keys.
const (
	statusWaiting  = "waiting"
	statusOnTrack  = "on_track"
	statusTiming   = "timing"
	statusPaused   = "paused"
	statusFinished = "finished"
	statusOffline  = "offline"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header, command bar and status line
	SurfaceAlt string // Unfocused panes
	FocusBg    string // Focused pane

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors maps a racer state to its badge color.
	StatusColors map[string]string
}

// palette is the raw color set a theme is built from.
type palette struct {
	name                                   string
	bg, surface, surfaceAlt, focus         string
	selection, selectionText               string
	border, borderFocus                    string
	text, muted, faint                     string
	accent, success, warning, danger, info string
	timing                                 string // running local pause timer
}

// theme derives a Theme from p. Racer states reuse the semantic colors:
// waiting is faint, on track is the accent, paused warns, finished
// succeeds and offline is danger.
func (p palette) theme() Theme {
	timing := p.timing
	if timing == "" {
		timing = p.info
	}
	return Theme{
		Name:          p.name,
		Background:    p.bg,
		Surface:       p.surface,
		SurfaceAlt:    p.surfaceAlt,
		FocusBg:       p.focus,
		SelectionBg:   p.selection,
		SelectionText: p.selectionText,
		Border:        p.border,
		BorderFocus:   p.borderFocus,
		Text:          p.text,
		Muted:         p.muted,
		Faint:         p.faint,
		Accent:        p.accent,
		Success:       p.success,
		Warning:       p.warning,
		Danger:        p.danger,
		Info:          p.info,
		StatusColors: map[string]string{
			statusWaiting:  p.faint,
			statusOnTrack:  p.accent,
			statusTiming:   timing,
			statusPaused:   p.warning,
			statusFinished: p.success,
			statusOffline:  p.danger,
		},
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style

	statusColors map[string]string
	background   string
	muted        string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: bar.Foreground(lipgloss.Color(t.Text)),
		Footer: bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:   fg(t.Warning).Bold(true),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// StatusStyle returns the badge style for a racer state. Unknown states use
// the muted color.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color := s.statusColors[status]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy of Styles whose text styles paint bgColor
// instead of inheriting the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Footer, &out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	"Nightfox": nightfox.theme(),
	"Kanagawa": kanagawa.theme(),
	"Slate":    slate.theme(),
}

// GetTheme returns a theme by name, falling back to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[themeOrder[0]]
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

// Nightfox: https://github.com/EdenEast/nightfox.nvim
var nightfox = palette{
	name:          "Nightfox",
	bg:            "#131a24",
	surface:       "#192330",
	surfaceAlt:    "#212e3f",
	focus:         "#29394f",
	selection:     "#2b3b51",
	selectionText: "#cdcecf",
	border:        "#39506d",
	borderFocus:   "#719cd6",
	text:          "#cdcecf",
	muted:         "#738091",
	faint:         "#71839b",
	accent:        "#719cd6",
	success:       "#81b29a",
	warning:       "#dbc074",
	danger:        "#c94f6d",
	info:          "#63cdcf",
}

// Kanagawa: https://github.com/rebelot/kanagawa.nvim
var kanagawa = palette{
	name:          "Kanagawa",
	bg:            "#16161D",
	surface:       "#1F1F28",
	surfaceAlt:    "#2A2A37",
	focus:         "#2A2A37",
	selection:     "#2D4F67",
	selectionText: "#DCD7BA",
	border:        "#54546D",
	borderFocus:   "#7E9CD8",
	text:          "#DCD7BA",
	muted:         "#C8C093",
	faint:         "#727169",
	accent:        "#7E9CD8",
	success:       "#98BB6C",
	warning:       "#E6C384",
	danger:        "#E46876",
	info:          "#7FB4CA",
}

// Slate: Tailwind slate/sky.
var slate = palette{
	name:          "Slate",
	bg:            "#020617",
	surface:       "#0f172a",
	surfaceAlt:    "#1e293b",
	focus:         "#283548",
	selection:     "#0284c7",
	selectionText: "#f8fafc",
	border:        "#334155",
	borderFocus:   "#38bdf8",
	text:          "#f1f5f9",
	muted:         "#94a3b8",
	faint:         "#64748b",
	accent:        "#38bdf8",
	success:       "#22c55e",
	warning:       "#f59e0b",
	danger:        "#dc2626",
	info:          "#06b6d4",
	timing:        "#22d3ee",
}
