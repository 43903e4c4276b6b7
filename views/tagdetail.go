package views

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Stratton-Carroll/survey-model/internal/api"
	"github.com/Stratton-Carroll/survey-model/internal/theme"
)

// TagDetailModel shows every response carrying the selected tag, with the
// full tag list on each card. The focused card's tags can be cycled; enter
// re-enters the detail view for the focused tag, x quick-removes it.
type TagDetailModel struct {
	client    *api.Client
	appliedBy string

	width  int
	height int
	ready  bool

	tag       api.Tag
	responses []api.Response
	loading   bool
	err       error

	cursor    int // focused response card
	tagCursor int // focused tag within that card

	viewport viewport.Model
	keys     tagDetailKeyMap
}

type tagResponsesLoadedMsg struct {
	tagID     api.TagID
	responses []api.Response
	err       error
}

func NewTagDetailModel(client *api.Client, appliedBy string) *TagDetailModel {
	return &TagDetailModel{
		client:    client,
		appliedBy: appliedBy,
		keys:      defaultTagDetailKeyMap(),
	}
}

// SetTag points the view at a tag and loads its responses. Entering with a
// different tag resets the cursors; re-entering with the same tag keeps them.
func (m *TagDetailModel) SetTag(tag api.Tag) tea.Cmd {
	if tag.TagID != m.tag.TagID {
		m.cursor = 0
		m.tagCursor = 0
		m.responses = nil
	}
	m.tag = tag
	m.loading = true
	return m.fetchResponses()
}

// Refresh reloads the current tag's responses in place.
func (m *TagDetailModel) Refresh() tea.Cmd {
	if m.tag.TagID == 0 {
		return nil
	}
	m.loading = true
	return m.fetchResponses()
}

func (m *TagDetailModel) fetchResponses() tea.Cmd {
	tagID := m.tag.TagID
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		responses, err := m.client.TagResponses(ctx, tagID)
		return tagResponsesLoadedMsg{tagID: tagID, responses: responses, err: err}
	}
}

func (m *TagDetailModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width-4, msg.Height-10)
		m.ready = true
		m.refreshContent()

	case tagResponsesLoadedMsg:
		if msg.tagID != m.tag.TagID {
			// Result for a tag we already navigated away from.
			return nil
		}
		m.loading = false
		if msg.err != nil {
			log.Printf("tag detail: load responses for tag %d failed: %v", msg.tagID, msg.err)
			m.err = msg.err
			return nil
		}
		m.err = nil
		m.responses = msg.responses
		if m.cursor >= len(m.responses) {
			m.cursor = 0
			m.tagCursor = 0
		}
		m.refreshContent()

	case mutationAppliedMsg:
		if msg.err != nil {
			log.Printf("tag detail: %s tag %d on response %d failed: %v", msg.action, msg.tagID, msg.responseID, msg.err)
			m.err = msg.err
			m.refreshContent()
			return nil
		}
		// Server recomputed the effective set; reload the whole bulk view
		// so the removed tag disappears from the visible card.
		return m.Refresh()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return nil
}

func (m *TagDetailModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return func() tea.Msg { return ShowTagsMsg{} }

	case key.Matches(msg, m.keys.Responses):
		return func() tea.Msg { return ShowResponsesMsg{} }

	case key.Matches(msg, m.keys.Analytics):
		return func() tea.Msg { return ShowAnalyticsMsg{} }

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.tagCursor = 0
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.responses)-1 {
			m.cursor++
			m.tagCursor = 0
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.PrevTag):
		if tags := m.focusedTags(); len(tags) > 0 {
			m.tagCursor = (m.tagCursor - 1 + len(tags)) % len(tags)
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.NextTag):
		if tags := m.focusedTags(); len(tags) > 0 {
			m.tagCursor = (m.tagCursor + 1) % len(tags)
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.FollowTag):
		if t, ok := m.focusedTag(); ok && t.TagID != m.tag.TagID {
			followed := api.Tag{TagID: t.TagID, TagName: t.TagName, TagCategory: t.TagCategory}
			return func() tea.Msg { return ShowTagDetailMsg{Tag: followed} }
		}

	case key.Matches(msg, m.keys.QuickRemove):
		if t, ok := m.focusedTag(); ok {
			resp := m.responses[m.cursor]
			return m.removeTag(resp.ResponseID, t.TagID)
		}

	case key.Matches(msg, m.keys.Edit):
		if m.cursor < len(m.responses) {
			resp := m.responses[m.cursor]
			return func() tea.Msg { return OpenEditorMsg{Response: &resp} }
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	return nil
}

// removeTag dispatches a REMOVE override without pre-checking membership;
// the server treats a redundant remove as a no-op.
func (m *TagDetailModel) removeTag(responseID int, tagID api.TagID) tea.Cmd {
	appliedBy := m.appliedBy
	client := m.client
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		err := client.MutateTags(ctx, responseID, api.TagMutation{
			TagID:     tagID,
			Action:    api.ActionRemove,
			AppliedBy: appliedBy,
			Notes:     "quick remove from tag detail",
		})
		return mutationAppliedMsg{responseID: responseID, tagID: tagID, action: api.ActionRemove, err: err}
	}
}

func (m *TagDetailModel) focusedTags() []api.ResponseTag {
	if m.cursor < 0 || m.cursor >= len(m.responses) {
		return nil
	}
	return m.responses[m.cursor].Tags
}

func (m *TagDetailModel) focusedTag() (api.ResponseTag, bool) {
	tags := m.focusedTags()
	if len(tags) == 0 || m.tagCursor < 0 || m.tagCursor >= len(tags) {
		return api.ResponseTag{}, false
	}
	return tags[m.tagCursor], true
}

func (m *TagDetailModel) refreshContent() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for i, resp := range m.responses {
		b.WriteString(m.renderCard(resp, i == m.cursor))
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
}

func (m *TagDetailModel) renderCard(resp api.Response, focused bool) string {
	width := m.width - 8

	meta := []string{resp.RoleName}
	if resp.PrimaryCounty != "" || resp.State != "" {
		meta = append(meta, strings.TrimSuffix(resp.PrimaryCounty+", "+resp.State, ", "))
	}
	if resp.OrganizationType != "" {
		meta = append(meta, resp.OrganizationType)
	}

	lines := []string{
		theme.SubtitleStyle.Render("Question: " + resp.QuestionShort),
		theme.EmptyStyle.Render(strings.Join(meta, "  "+theme.BorderDividerV+"  ")),
		"",
		lipgloss.NewStyle().Width(width - 4).Render(resp.ResponseText),
	}

	if resp.OrganizationName != "" {
		lines = append(lines, "", theme.EmptyStyle.Render("Organization: "+resp.OrganizationName))
	}

	if len(resp.Tags) > 0 {
		badges := make([]string, 0, len(resp.Tags))
		for j, t := range resp.Tags {
			badge := theme.RenderTagBadge(t.TagName, t.TagCategory, t.TagID == m.tag.TagID, false)
			if focused && j == m.tagCursor {
				badge = lipgloss.NewStyle().Underline(true).Render(badge)
			}
			badges = append(badges, badge)
		}
		lines = append(lines, "", "All Tags: "+strings.Join(badges, " "))
	}

	card := lipgloss.JoinVertical(lipgloss.Left, lines...)
	style := theme.PanelStyle
	if focused {
		style = theme.PanelActiveStyle
	}
	return style.Width(width).Render(card)
}

func (m *TagDetailModel) View() string {
	if !m.ready {
		return theme.BaseStyle.Render("Loading...")
	}

	title := theme.RenderTitle(theme.IconTag, m.tag.TagName)
	info := theme.SubtitleStyle.Render(fmt.Sprintf(
		"Category: %s %s %d responses", m.tag.TagCategory, theme.BorderDividerV, m.tag.ResponseCount))

	sections := []string{"", title, info, ""}
	if m.err != nil {
		sections = append(sections, theme.ErrorStyle.Render(theme.IconCross+" "+m.err.Error()))
	}

	switch {
	case m.loading && len(m.responses) == 0:
		sections = append(sections, "Loading responses...")
	case len(m.responses) == 0:
		sections = append(sections, theme.EmptyStyle.Render("No responses carry this tag"))
	default:
		sections = append(sections, m.viewport.View())
	}

	sections = append(sections, m.renderFooter())
	main := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return theme.BaseStyle.Width(m.width).Height(m.height).Render(main)
}

func (m *TagDetailModel) renderFooter() string {
	keys := []string{
		theme.RenderKeyHelp("↑↓", "Card"),
		theme.RenderKeyHelp("[ ]", "Cycle Tags"),
		theme.RenderKeyHelp("Enter", "Follow Tag"),
		theme.RenderKeyHelp("x", "Remove Tag"),
		theme.RenderKeyHelp("e", "Edit Tags"),
		theme.RenderKeyHelp("v", "Responses"),
		theme.RenderKeyHelp("Esc", "Back"),
	}
	return theme.FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Left, keys...))
}

type tagDetailKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PrevTag     key.Binding
	NextTag     key.Binding
	FollowTag   key.Binding
	QuickRemove key.Binding
	Edit        key.Binding
	Back        key.Binding
	Responses   key.Binding
	Analytics   key.Binding
}

func defaultTagDetailKeyMap() tagDetailKeyMap {
	return tagDetailKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous card"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next card"),
		),
		PrevTag: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous tag"),
		),
		NextTag: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next tag"),
		),
		FollowTag: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open focused tag"),
		),
		QuickRemove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove focused tag"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit response tags"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "back to tags"),
		),
		Responses: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "all responses"),
		),
		Analytics: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analytics"),
		),
	}
}
