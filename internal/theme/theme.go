package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorBackground        = lipgloss.Color("#1E2430") // Deep slate blue
	ColorBackgroundDarker  = lipgloss.Color("#171C26")
	ColorBackgroundLighter = lipgloss.Color("#2A3242")

	// Text colors
	ColorForeground       = lipgloss.Color("#E6EBF2") // Off white
	ColorForegroundDim    = lipgloss.Color("#8B98AC") // Slate gray
	ColorForegroundBright = lipgloss.Color("#FFFFFF")

	// Border colors
	ColorBorderInactive = lipgloss.Color("#8B98AC")
	ColorBorderActive   = lipgloss.Color("#5CB8FF") // Sky blue
	ColorBorderFocused  = lipgloss.Color("#8ECBFF")

	// Accent colors
	ColorAccent    = lipgloss.Color("#5CB8FF") // Sky blue
	ColorSecondary = lipgloss.Color("#A3C9F5") // Pale blue
	ColorSuccess   = lipgloss.Color("#7FD8BE") // Seafoam
	ColorWarning   = lipgloss.Color("#FFD8A8") // Apricot
	ColorError     = lipgloss.Color("#FF9CA3") // Soft red
	ColorInfo      = lipgloss.Color("#B6D7FF") // Baby blue

	// Manual-override marker
	ColorManual = lipgloss.Color("#FFD8A8")

	// Orphaned sub-tag group
	ColorOrphan = lipgloss.Color("#FF9CA3")
)

// Tag category colors, keyed by the server's TagCategory strings. Unknown
// categories fall back to the accent color so new server-side categories
// still render distinctly from plain text.
var categoryColors = map[string]lipgloss.Color{
	"Workforce":      lipgloss.Color("#5CB8FF"),
	"Access":         lipgloss.Color("#7FD8BE"),
	"Funding":        lipgloss.Color("#FFD8A8"),
	"Infrastructure": lipgloss.Color("#C7A9F5"),
	"Quality":        lipgloss.Color("#FF9CA3"),
	"Policy":         lipgloss.Color("#F5A9D0"),
	"Technology":     lipgloss.Color("#9CE8FF"),
	"Community":      lipgloss.Color("#C8E89C"),
}

func CategoryColor(category string) lipgloss.Color {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return ColorAccent
}

// Highlight span styles by span type.
var (
	HighlightPrimaryStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#3D5A80")).
				Foreground(ColorForegroundBright).
				Bold(true)

	HighlightSecondaryStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#2F4156")).
				Foreground(ColorForeground)

	HighlightContextStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Underline(true)
)

// HighlightStyle maps a span type to its rendering style.
func HighlightStyle(spanType string) lipgloss.Style {
	switch spanType {
	case "primary":
		return HighlightPrimaryStyle
	case "secondary":
		return HighlightSecondaryStyle
	default:
		return HighlightContextStyle
	}
}

// Border characters
const (
	BorderDividerH = "─"
	BorderDividerV = "│"
)

// Icons
const (
	IconTag       = "◈"
	IconSubTag    = "◇"
	IconOrphan    = "◌"
	IconManual    = "✎"
	IconQuestion  = "▣"
	IconResponse  = "▫"
	IconAnalytics = "◉"
	IconEditor    = "●"
	IconCheck     = "✓"
	IconCross     = "✗"
	IconStar      = "★"
	IconDot       = "•"
	IconExpanded  = "−"
	IconCollapsed = "+"
	IconArrowUp   = "↑"
	IconArrowDown = "↓"
	IconChevron   = "›"
)

// Base styles
var (
	BaseStyle = lipgloss.NewStyle().
			Background(ColorBackground).
			Foreground(ColorForeground)

	PanelStyle = lipgloss.NewStyle().
			Background(ColorBackground).
			Foreground(ColorForeground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderInactive).
			Padding(0, 1)

	PanelActiveStyle = PanelStyle.Copy().
				BorderForeground(ColorBorderActive)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorForegroundDim).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(ColorForegroundDim).
			Italic(true)

	ManualMarkStyle = lipgloss.NewStyle().
			Foreground(ColorManual).
			Bold(true)

	OrphanLabelStyle = lipgloss.NewStyle().
				Foreground(ColorOrphan).
				Italic(true)

	FooterStyle = lipgloss.NewStyle().
			Background(ColorBackgroundDarker).
			Foreground(ColorForegroundDim).
			Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
			Background(ColorBackgroundLighter).
			Foreground(ColorAccent).
			Padding(0, 1).
			Margin(0, 1)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorForeground)

	RowFocusedStyle = lipgloss.NewStyle().
			Background(ColorBackgroundLighter).
			Foreground(ColorForegroundBright).
			Bold(true)

	NavItemStyle = lipgloss.NewStyle().
			Background(ColorBackgroundLighter).
			Foreground(ColorForeground).
			Padding(0, 2).
			Margin(0, 1)

	NavItemActiveStyle = NavItemStyle.Copy().
				Background(ColorAccent).
				Foreground(ColorBackground).
				Bold(true)
)

// Helper functions

func RenderTitle(icon, text string) string {
	if icon != "" {
		return TitleStyle.Render(icon + " " + text)
	}
	return TitleStyle.Render(text)
}

func RenderKeyHelp(key, desc string) string {
	return FooterKeyStyle.Render(key) + FooterDescStyle.Render(desc)
}

// RenderTagBadge paints a tag pill in its category color. starred marks the
// currently selected tag, manual marks reviewer-added tags.
func RenderTagBadge(name, category string, starred, manual bool) string {
	label := name
	if starred {
		label += " " + IconStar
	}
	if manual {
		label = IconManual + " " + label
	}
	return lipgloss.NewStyle().
		Background(ColorBackgroundLighter).
		Foreground(CategoryColor(category)).
		Padding(0, 1).
		Render(label)
}

// RenderNavBar paints the view switcher strip with the active view lit.
func RenderNavBar(labels []string, active int, width int) string {
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		if i == active {
			parts = append(parts, NavItemActiveStyle.Render(label))
		} else {
			parts = append(parts, NavItemStyle.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if w := lipgloss.Width(bar); w < width {
		bar += strings.Repeat(" ", width-w)
	}
	return bar
}

// RenderBar paints a horizontal quantity bar scaled against max.
func RenderBar(value, max, width int, color lipgloss.Color) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	filled := value * width / max
	if filled < 1 && value > 0 {
		filled = 1
	}
	if filled > width {
		filled = width
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(ColorBackgroundLighter).Render(strings.Repeat("░", width-filled))
	return bar + rest
}
