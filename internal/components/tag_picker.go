package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Stratton-Carroll/survey-model/internal/api"
	"github.com/Stratton-Carroll/survey-model/internal/theme"
)

// TagPicker - scrollable add-menu over the catalog tags not yet applied to
// a response. Items are grouped under separator rows (category headers for
// primaries, per-parent headers for sub-tags); the cursor skips separators.
type TagPicker struct {
	items      []PickerItem
	cursor     int
	startIndex int

	width  int
	height int
	title  string
}

type PickerItem struct {
	Label     string
	Tag       api.Tag
	Separator bool
}

func NewTagPicker(title string) *TagPicker {
	return &TagPicker{
		title:  title,
		width:  60,
		height: 15,
	}
}

func (p *TagPicker) SetSize(width, height int) *TagPicker {
	p.width = width
	p.height = height
	return p
}

func (p *TagPicker) SetItems(items []PickerItem) *TagPicker {
	p.items = items
	p.cursor = 0
	p.startIndex = 0
	// Land on the first selectable row.
	for p.cursor < len(p.items) && p.items[p.cursor].Separator {
		p.cursor++
	}
	return p
}

func (p *TagPicker) MoveUp() {
	c := p.cursor - 1
	for c >= 0 && p.items[c].Separator {
		c--
	}
	if c >= 0 {
		p.cursor = c
		p.updateScrollPosition()
	}
}

func (p *TagPicker) MoveDown() {
	c := p.cursor + 1
	for c < len(p.items) && p.items[c].Separator {
		c++
	}
	if c < len(p.items) {
		p.cursor = c
		p.updateScrollPosition()
	}
}

func (p *TagPicker) updateScrollPosition() {
	visible := p.visibleRows()
	if p.cursor < p.startIndex {
		p.startIndex = p.cursor
	} else if p.cursor >= p.startIndex+visible {
		p.startIndex = p.cursor - visible + 1
	}
}

func (p *TagPicker) visibleRows() int {
	rows := p.height - 3 // title plus top and bottom border
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Current returns the tag under the cursor, if any.
func (p *TagPicker) Current() (api.Tag, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items) || p.items[p.cursor].Separator {
		return api.Tag{}, false
	}
	return p.items[p.cursor].Tag, true
}

func (p *TagPicker) Empty() bool {
	for _, item := range p.items {
		if !item.Separator {
			return false
		}
	}
	return true
}

func (p *TagPicker) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(p.title))
	b.WriteString("\n")

	if p.Empty() {
		b.WriteString(theme.EmptyStyle.Render("Nothing left to add"))
		return theme.PanelActiveStyle.Width(p.width).Render(b.String())
	}

	end := p.startIndex + p.visibleRows()
	if end > len(p.items) {
		end = len(p.items)
	}

	lines := make([]string, 0, end-p.startIndex)
	for i := p.startIndex; i < end; i++ {
		item := p.items[i]
		if item.Separator {
			lines = append(lines, theme.SubtitleStyle.Render(item.Label))
			continue
		}

		label := " " + theme.IconDot + " " + item.Label
		style := lipgloss.NewStyle().Foreground(theme.CategoryColor(item.Tag.TagCategory))
		if i == p.cursor {
			style = theme.RowFocusedStyle
			label = " " + theme.IconChevron + " " + item.Label
		}
		lines = append(lines, style.Width(p.width-4).Render(label))
	}

	if p.startIndex > 0 {
		lines[0] = theme.SubtitleStyle.Render(theme.IconArrowUp + " more")
	}
	if end < len(p.items) {
		lines[len(lines)-1] = theme.SubtitleStyle.Render(theme.IconArrowDown + " more")
	}

	b.WriteString(strings.Join(lines, "\n"))
	return theme.PanelActiveStyle.Width(p.width).Render(b.String())
}
