package views

import (
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Stratton-Carroll/survey-model/internal/api"
	"github.com/Stratton-Carroll/survey-model/internal/tags"
	"github.com/Stratton-Carroll/survey-model/internal/theme"
	"github.com/Stratton-Carroll/survey-model/internal/utils"
)

// TagsModel is the landing view: the tag catalog with response counts,
// category colors and descriptions.
type TagsModel struct {
	client *api.Client

	width  int
	height int
	ready  bool

	loading bool
	err     error
	tags    []api.Tag

	tagTable table.Model
	spinner  spinner.Model
	keys     tagsKeyMap
}

type tagsLoadedMsg struct {
	tags []api.Tag
	err  error
}

func NewTagsModel(client *api.Client) *TagsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorAccent)

	return &TagsModel{
		client:  client,
		spinner: s,
		keys:    defaultTagsKeyMap(),
	}
}

func (m *TagsModel) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.fetchTags())
}

// Refresh re-issues the catalog load without resetting cursor position.
func (m *TagsModel) Refresh() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.fetchTags())
}

func (m *TagsModel) fetchTags() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		catalog, err := m.client.Tags(ctx)
		return tagsLoadedMsg{tags: catalog, err: err}
	}
}

func (m *TagsModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.rebuildTable()

	case tagsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// Keep whatever we had; the view renders the error line.
			log.Printf("tags: load failed: %v", msg.err)
			m.err = msg.err
			return nil
		}
		m.err = nil
		m.tags = msg.tags
		// Older server builds return catalog order; normalize to busiest-first.
		tags.SortByResponseCount(m.tags)
		m.rebuildTable()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return cmd
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			if t, ok := m.selectedTag(); ok {
				return func() tea.Msg { return ShowTagDetailMsg{Tag: t} }
			}
		case key.Matches(msg, m.keys.Responses):
			return func() tea.Msg { return ShowResponsesMsg{} }
		case key.Matches(msg, m.keys.Analytics):
			return func() tea.Msg { return ShowAnalyticsMsg{} }
		case key.Matches(msg, m.keys.Editor):
			return func() tea.Msg { return OpenEditorMsg{} }
		case key.Matches(msg, m.keys.Reload):
			return m.Refresh()
		default:
			var cmd tea.Cmd
			m.tagTable, cmd = m.tagTable.Update(msg)
			return cmd
		}
	}

	return nil
}

func (m *TagsModel) selectedTag() (api.Tag, bool) {
	i := m.tagTable.Cursor()
	if i < 0 || i >= len(m.tags) {
		return api.Tag{}, false
	}
	return m.tags[i], true
}

func (m *TagsModel) rebuildTable() {
	if !m.ready {
		return
	}

	nameWidth := m.width/3 - 4
	descWidth := m.width - nameWidth - 44
	columns := []table.Column{
		{Title: "Tag", Width: nameWidth},
		{Title: "Category", Width: 16},
		{Title: "Priority", Width: 8},
		{Title: "Responses", Width: 10},
		{Title: "Description", Width: descWidth},
	}

	rows := make([]table.Row, 0, len(m.tags))
	for _, t := range m.tags {
		priority := "-"
		if t.TagPriority > 0 {
			priority = fmt.Sprintf("%d", t.TagPriority)
		}
		rows = append(rows, table.Row{
			t.TagName,
			t.TagCategory,
			priority,
			fmt.Sprintf("%d", t.ResponseCount),
			utils.TruncateString(t.TagDescription, descWidth),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.height-9),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorderInactive).
		BorderBottom(true).
		Bold(true).
		Foreground(theme.ColorForegroundDim)
	s.Selected = theme.RowFocusedStyle
	s.Cell = s.Cell.Foreground(theme.ColorForeground)
	t.SetStyles(s)

	cursor := m.tagTable.Cursor()
	if cursor > 0 && cursor < len(rows) {
		t.SetCursor(cursor)
	}
	m.tagTable = t
}

func (m *TagsModel) View() string {
	if !m.ready {
		return theme.BaseStyle.Render("Loading tags...")
	}

	title := theme.RenderTitle(theme.IconTag, "Healthcare Survey Analysis")
	subtitle := theme.SubtitleStyle.Render("Select a tag to see related responses")

	var body string
	switch {
	case m.loading && len(m.tags) == 0:
		body = m.spinner.View() + " Loading tags..."
	case len(m.tags) == 0:
		body = theme.EmptyStyle.Render("No tags available")
	default:
		body = m.tagTable.View()
	}

	sections := []string{"", title, subtitle, ""}
	if m.err != nil {
		sections = append(sections, theme.ErrorStyle.Render(theme.IconCross+" "+m.err.Error()))
	}
	sections = append(sections, body, m.renderFooter())

	main := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return theme.BaseStyle.Width(m.width).Height(m.height).Render(main)
}

func (m *TagsModel) renderFooter() string {
	keys := []string{
		theme.RenderKeyHelp("↑↓", "Navigate"),
		theme.RenderKeyHelp("Enter", "Tag Detail"),
		theme.RenderKeyHelp("v", "Responses"),
		theme.RenderKeyHelp("a", "Analytics"),
		theme.RenderKeyHelp("e", "Editor"),
		theme.RenderKeyHelp("r", "Reload"),
		theme.RenderKeyHelp("ctrl+c", "Quit"),
	}
	return theme.FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Left, keys...))
}

type tagsKeyMap struct {
	Select    key.Binding
	Responses key.Binding
	Analytics key.Binding
	Editor    key.Binding
	Reload    key.Binding
}

func defaultTagsKeyMap() tagsKeyMap {
	return tagsKeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view tag responses"),
		),
		Responses: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "all responses"),
		),
		Analytics: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analytics"),
		),
		Editor: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "tag editor"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}
