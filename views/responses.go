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
	"github.com/Stratton-Carroll/survey-model/internal/utils"
)

// ResponsesModel lists every response grouped by question. Questions start
// collapsed; expanding one lazily fetches its tag distribution exactly once
// and the result stays cached for the whole session.
type ResponsesModel struct {
	client    *api.Client
	appliedBy string

	width  int
	height int
	ready  bool

	loading   bool
	err       error
	questions []api.Question

	cursor     int // focused question
	respCursor int // focused response within the expanded question
	tagCursor  int // focused tag within that response

	expanded      map[int]bool
	distributions map[int][]api.TagDistribution
	distRequested map[int]bool

	viewport viewport.Model
	keys     responsesKeyMap
}

type questionsLoadedMsg struct {
	questions []api.Question
	err       error
}

type distributionLoadedMsg struct {
	questionID int
	items      []api.TagDistribution
	err        error
}

func NewResponsesModel(client *api.Client, appliedBy string) *ResponsesModel {
	return &ResponsesModel{
		client:        client,
		appliedBy:     appliedBy,
		expanded:      make(map[int]bool),
		distributions: make(map[int][]api.TagDistribution),
		distRequested: make(map[int]bool),
		keys:          defaultResponsesKeyMap(),
	}
}

func (m *ResponsesModel) Init() tea.Cmd {
	m.loading = true
	return m.fetchQuestions()
}

func (m *ResponsesModel) Refresh() tea.Cmd {
	m.loading = true
	return m.fetchQuestions()
}

func (m *ResponsesModel) fetchQuestions() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		questions, err := m.client.ResponsesByQuestion(ctx)
		return questionsLoadedMsg{questions: questions, err: err}
	}
}

// fetchDistribution is issued at most once per question id; subsequent
// expand/collapse toggles reuse the cached result.
func (m *ResponsesModel) fetchDistribution(questionID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		items, err := m.client.QuestionTagDistribution(ctx, questionID)
		return distributionLoadedMsg{questionID: questionID, items: items, err: err}
	}
}

func (m *ResponsesModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width-4, msg.Height-9)
		m.ready = true
		m.refreshContent()

	case questionsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			log.Printf("responses: load failed: %v", msg.err)
			m.err = msg.err
			m.refreshContent()
			return nil
		}
		m.err = nil
		m.questions = msg.questions
		if m.cursor >= len(m.questions) {
			m.cursor = 0
		}
		m.refreshContent()

	case distributionLoadedMsg:
		if msg.err != nil {
			// Allow a later expand to retry rather than caching a failure.
			log.Printf("responses: tag distribution for question %d failed: %v", msg.questionID, msg.err)
			delete(m.distRequested, msg.questionID)
			return nil
		}
		m.distributions[msg.questionID] = msg.items
		m.refreshContent()

	case mutationAppliedMsg:
		if msg.err != nil {
			log.Printf("responses: %s tag %d on response %d failed: %v", msg.action, msg.tagID, msg.responseID, msg.err)
			m.err = msg.err
			m.refreshContent()
			return nil
		}
		return m.Refresh()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return nil
}

func (m *ResponsesModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return func() tea.Msg { return ShowTagsMsg{} }

	case key.Matches(msg, m.keys.Analytics):
		return func() tea.Msg { return ShowAnalyticsMsg{} }

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.respCursor = 0
			m.tagCursor = 0
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.questions)-1 {
			m.cursor++
			m.respCursor = 0
			m.tagCursor = 0
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.Toggle):
		return m.toggleQuestion()

	case key.Matches(msg, m.keys.PrevResp):
		if m.respCursor > 0 {
			m.respCursor--
			m.tagCursor = 0
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.NextResp):
		if q, ok := m.focusedQuestion(); ok && m.expanded[q.QuestionID] && m.respCursor < len(q.Responses)-1 {
			m.respCursor++
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

	case key.Matches(msg, m.keys.QuickRemove):
		if resp, ok := m.focusedResponse(); ok {
			if tags := m.focusedTags(); len(tags) > 0 && m.tagCursor < len(tags) {
				return m.removeTag(resp.ResponseID, tags[m.tagCursor].TagID)
			}
		}

	case key.Matches(msg, m.keys.Edit):
		if resp, ok := m.focusedResponse(); ok {
			r := resp
			return func() tea.Msg { return OpenEditorMsg{Response: &r} }
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	return nil
}

// toggleQuestion flips the focused question and triggers the one-shot
// distribution fetch on first expand. Collapsing never evicts the cache.
func (m *ResponsesModel) toggleQuestion() tea.Cmd {
	q, ok := m.focusedQuestion()
	if !ok {
		return nil
	}

	if m.expanded[q.QuestionID] {
		delete(m.expanded, q.QuestionID)
		m.refreshContent()
		return nil
	}

	m.expanded[q.QuestionID] = true
	m.respCursor = 0
	m.tagCursor = 0
	m.refreshContent()

	if m.distRequested[q.QuestionID] {
		return nil
	}
	m.distRequested[q.QuestionID] = true
	return m.fetchDistribution(q.QuestionID)
}

func (m *ResponsesModel) removeTag(responseID int, tagID api.TagID) tea.Cmd {
	appliedBy := m.appliedBy
	client := m.client
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		err := client.MutateTags(ctx, responseID, api.TagMutation{
			TagID:     tagID,
			Action:    api.ActionRemove,
			AppliedBy: appliedBy,
			Notes:     "quick remove from responses view",
		})
		return mutationAppliedMsg{responseID: responseID, tagID: tagID, action: api.ActionRemove, err: err}
	}
}

func (m *ResponsesModel) focusedQuestion() (api.Question, bool) {
	if m.cursor < 0 || m.cursor >= len(m.questions) {
		return api.Question{}, false
	}
	return m.questions[m.cursor], true
}

func (m *ResponsesModel) focusedResponse() (api.Response, bool) {
	q, ok := m.focusedQuestion()
	if !ok || !m.expanded[q.QuestionID] {
		return api.Response{}, false
	}
	if m.respCursor < 0 || m.respCursor >= len(q.Responses) {
		return api.Response{}, false
	}
	return q.Responses[m.respCursor], true
}

func (m *ResponsesModel) focusedTags() []api.ResponseTag {
	resp, ok := m.focusedResponse()
	if !ok {
		return nil
	}
	return resp.Tags
}

func (m *ResponsesModel) refreshContent() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for i, q := range m.questions {
		b.WriteString(m.renderQuestion(q, i == m.cursor))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func (m *ResponsesModel) renderQuestion(q api.Question, focused bool) string {
	width := m.width - 8

	marker := theme.IconCollapsed
	if m.expanded[q.QuestionID] {
		marker = theme.IconExpanded
	}

	header := fmt.Sprintf("%s %s", marker, q.QuestionShort)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorForeground)
	if focused {
		headerStyle = headerStyle.Foreground(theme.ColorAccent)
	}

	lines := []string{
		headerStyle.Render(header),
		theme.SubtitleStyle.Render(utils.TruncateString(q.QuestionText, width-4)),
		theme.EmptyStyle.Render(fmt.Sprintf("%d responses", len(q.Responses))),
	}

	if m.expanded[q.QuestionID] {
		if dist, ok := m.distributions[q.QuestionID]; ok && len(dist) > 0 {
			lines = append(lines, "", m.renderDistribution(dist, width-4))
		}
		for j, resp := range q.Responses {
			respFocused := focused && j == m.respCursor
			lines = append(lines, "", m.renderResponse(resp, width-4, respFocused))
		}
	}

	card := lipgloss.JoinVertical(lipgloss.Left, lines...)
	style := theme.PanelStyle
	if focused {
		style = theme.PanelActiveStyle
	}
	return style.Width(width).Render(card)
}

func (m *ResponsesModel) renderDistribution(dist []api.TagDistribution, width int) string {
	max := 0
	for _, d := range dist {
		if d.TagCount > max {
			max = d.TagCount
		}
	}

	barWidth := width / 3
	lines := []string{theme.SubtitleStyle.Render("Tag distribution")}
	for _, d := range dist {
		label := utils.PadString(utils.TruncateString(d.TagName, 24), 24, "left")
		bar := theme.RenderBar(d.TagCount, max, barWidth, theme.CategoryColor(d.TagCategory))
		lines = append(lines, fmt.Sprintf("%s %s %d", label, bar, d.TagCount))
	}
	return strings.Join(lines, "\n")
}

func (m *ResponsesModel) renderResponse(resp api.Response, width int, focused bool) string {
	meta := []string{resp.RoleName}
	if resp.PrimaryCounty != "" || resp.State != "" {
		meta = append(meta, strings.TrimSuffix(resp.PrimaryCounty+", "+resp.State, ", "))
	}
	if resp.OrganizationType != "" {
		meta = append(meta, resp.OrganizationType)
	}

	lines := []string{
		theme.EmptyStyle.Render(strings.Join(meta, "  "+theme.BorderDividerV+"  ")),
		lipgloss.NewStyle().Width(width - 2).Render(resp.ResponseText),
	}

	if resp.OrganizationName != "" {
		lines = append(lines, theme.EmptyStyle.Render("Organization: "+resp.OrganizationName))
	}

	if len(resp.Tags) > 0 {
		badges := make([]string, 0, len(resp.Tags))
		for j, t := range resp.Tags {
			badge := theme.RenderTagBadge(t.TagName, t.TagCategory, false, false)
			if focused && j == m.tagCursor {
				badge = lipgloss.NewStyle().Underline(true).Render(badge)
			}
			badges = append(badges, badge)
		}
		lines = append(lines, "Tags: "+strings.Join(badges, " "))
	}

	block := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if focused {
		return lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(theme.ColorBorderActive).
			PaddingLeft(1).
			Render(block)
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(block)
}

func (m *ResponsesModel) View() string {
	if !m.ready {
		return theme.BaseStyle.Render("Loading...")
	}

	title := theme.RenderTitle(theme.IconQuestion, "Survey Responses by Question")
	subtitle := theme.SubtitleStyle.Render("Full responses with associated tags")

	sections := []string{"", title, subtitle, ""}
	if m.err != nil {
		sections = append(sections, theme.ErrorStyle.Render(theme.IconCross+" "+m.err.Error()))
	}

	switch {
	case m.loading && len(m.questions) == 0:
		sections = append(sections, "Loading responses...")
	case len(m.questions) == 0:
		sections = append(sections, theme.EmptyStyle.Render("No responses available"))
	default:
		sections = append(sections, m.viewport.View())
	}

	sections = append(sections, m.renderFooter())
	main := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return theme.BaseStyle.Width(m.width).Height(m.height).Render(main)
}

func (m *ResponsesModel) renderFooter() string {
	keys := []string{
		theme.RenderKeyHelp("↑↓", "Question"),
		theme.RenderKeyHelp("Enter", "Expand"),
		theme.RenderKeyHelp("J/K", "Response"),
		theme.RenderKeyHelp("[ ]", "Cycle Tags"),
		theme.RenderKeyHelp("x", "Remove Tag"),
		theme.RenderKeyHelp("e", "Edit"),
		theme.RenderKeyHelp("Esc", "Back"),
	}
	return theme.FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Left, keys...))
}

type responsesKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	PrevResp    key.Binding
	NextResp    key.Binding
	PrevTag     key.Binding
	NextTag     key.Binding
	QuickRemove key.Binding
	Edit        key.Binding
	Back        key.Binding
	Analytics   key.Binding
}

func defaultResponsesKeyMap() responsesKeyMap {
	return responsesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous question"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next question"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand/collapse"),
		),
		PrevResp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "previous response"),
		),
		NextResp: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "next response"),
		),
		PrevTag: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous tag"),
		),
		NextTag: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next tag"),
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
		Analytics: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analytics"),
		),
	}
}
