package views

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Stratton-Carroll/survey-model/internal/api"
	"github.com/Stratton-Carroll/survey-model/internal/theme"
	"github.com/Stratton-Carroll/survey-model/internal/utils"
)

// AnalyticsModel renders the server-computed aggregate bundle: overview
// metrics, role breakdowns, priority areas, the per-role tag filter and
// tag-role distribution, plus a raw-JSON inspection toggle.
type AnalyticsModel struct {
	client *api.Client

	width  int
	height int
	ready  bool

	loading bool
	loaded  bool
	err     error
	bundle  api.Analytics

	roleKeys   []string
	roleFilter int

	showRaw bool
	raw     string

	viewport viewport.Model
	keys     analyticsKeyMap
}

type analyticsLoadedMsg struct {
	bundle api.Analytics
	err    error
}

func NewAnalyticsModel(client *api.Client) *AnalyticsModel {
	return &AnalyticsModel{
		client: client,
		keys:   defaultAnalyticsKeyMap(),
	}
}

func (m *AnalyticsModel) Init() tea.Cmd {
	m.loading = true
	return m.fetchAnalytics()
}

// Refresh reloads the bundle in place, keeping the current role filter and
// raw/chart toggle.
func (m *AnalyticsModel) Refresh() tea.Cmd {
	m.loading = true
	return m.fetchAnalytics()
}

func (m *AnalyticsModel) fetchAnalytics() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		bundle, err := m.client.Analytics(ctx)
		return analyticsLoadedMsg{bundle: bundle, err: err}
	}
}

func (m *AnalyticsModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width-4, msg.Height-8)
		m.ready = true
		m.refreshContent()

	case analyticsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			log.Printf("analytics: load failed: %v", msg.err)
			m.err = msg.err
			m.refreshContent()
			return nil
		}
		m.err = nil
		m.loaded = true
		m.bundle = msg.bundle
		m.roleKeys = sortedRoleKeys(msg.bundle.FilteredTagAnalysis)
		if m.roleFilter >= len(m.roleKeys) {
			m.roleFilter = 0
		}
		m.raw = renderRawJSON(msg.bundle)
		m.refreshContent()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return func() tea.Msg { return ShowTagsMsg{} }
		case key.Matches(msg, m.keys.Responses):
			return func() tea.Msg { return ShowResponsesMsg{} }
		case key.Matches(msg, m.keys.Reload):
			return m.Refresh()
		case key.Matches(msg, m.keys.PrevRole):
			if len(m.roleKeys) > 0 {
				m.roleFilter = (m.roleFilter - 1 + len(m.roleKeys)) % len(m.roleKeys)
				m.refreshContent()
			}
		case key.Matches(msg, m.keys.NextRole):
			if len(m.roleKeys) > 0 {
				m.roleFilter = (m.roleFilter + 1) % len(m.roleKeys)
				m.refreshContent()
			}
		case key.Matches(msg, m.keys.RawToggle):
			m.showRaw = !m.showRaw
			m.refreshContent()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return cmd
		}
	}

	return nil
}

func sortedRoleKeys(filtered map[string][]api.TagResponseCount) []string {
	keys := make([]string, 0, len(filtered))
	for k := range filtered {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderRawJSON re-marshals the bundle and runs it through chroma for the
// inspection toggle.
func renderRawJSON(bundle api.Analytics) string {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Sprintf("marshal error: %v", err)
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return string(data)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return string(data)
	}
	return buf.String()
}

func (m *AnalyticsModel) refreshContent() {
	if !m.ready {
		return
	}
	if m.showRaw {
		m.viewport.SetContent(m.raw)
		return
	}
	m.viewport.SetContent(m.renderSections())
}

func (m *AnalyticsModel) renderSections() string {
	if !m.loaded {
		return ""
	}

	width := m.width - 6
	var b strings.Builder

	b.WriteString(m.renderOverview(width))
	b.WriteString("\n\n")
	b.WriteString(m.renderRoleCounts(width))
	b.WriteString("\n\n")
	b.WriteString(m.renderPriorityAreas(width))
	b.WriteString("\n\n")
	b.WriteString(m.renderFilteredTags(width))
	b.WriteString("\n\n")
	b.WriteString(m.renderTagRoleDistribution(width))
	b.WriteString("\n\n")
	b.WriteString(m.renderResponseQuality(width))

	return b.String()
}

func (m *AnalyticsModel) renderOverview(width int) string {
	o := m.bundle.Overview
	cells := []string{
		renderMetric("Total Responses", utils.FormatNumber(int64(o.TotalResponses))),
		renderMetric("Respondents", utils.FormatNumber(int64(o.UniqueRespondents))),
		renderMetric("Avg Response Rate", fmt.Sprintf("%.1f%%", o.AvgResponseRate)),
		renderMetric("Avg Word Count", fmt.Sprintf("%.0f", o.AvgWordCount)),
	}
	return theme.RenderTitle(theme.IconAnalytics, "Overview") + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func renderMetric(label, value string) string {
	block := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.ColorAccent).Bold(true).Render(value),
		theme.SubtitleStyle.Render(label),
	)
	return theme.PanelStyle.Render(block)
}

func (m *AnalyticsModel) renderRoleCounts(width int) string {
	counts := m.bundle.RoleCounts()
	if len(counts) == 0 {
		return sectionTitle("Responses by Role") + "\n" + theme.EmptyStyle.Render("No role data available")
	}

	max := 0
	for _, c := range counts {
		if c.ResponseCount > max {
			max = c.ResponseCount
		}
	}

	lines := []string{sectionTitle("Responses by Role")}
	for _, c := range counts {
		label := utils.PadString(utils.TruncateString(c.RoleCategory, 28), 28, "left")
		bar := theme.RenderBar(c.ResponseCount, max, width/3, theme.ColorAccent)
		lines = append(lines, fmt.Sprintf("%s %s %d", label, bar, c.ResponseCount))
	}
	return strings.Join(lines, "\n")
}

func (m *AnalyticsModel) renderPriorityAreas(width int) string {
	areas := m.bundle.PriorityAreas
	if len(areas) == 0 {
		return sectionTitle("Priority Areas") + "\n" + theme.EmptyStyle.Render("No analytics data available")
	}

	max := 0
	for _, t := range areas {
		if t.ResponseCount > max {
			max = t.ResponseCount
		}
	}

	lines := []string{sectionTitle("Priority Areas (Top Tags)")}
	for _, t := range areas {
		label := utils.PadString(utils.TruncateString(t.TagName, 28), 28, "left")
		bar := theme.RenderBar(t.ResponseCount, max, width/3, theme.CategoryColor(t.TagCategory))
		lines = append(lines, fmt.Sprintf("%s %s %d", label, bar, t.ResponseCount))
	}
	return strings.Join(lines, "\n")
}

func (m *AnalyticsModel) renderFilteredTags(width int) string {
	title := sectionTitle("Tags by Role")
	if len(m.roleKeys) == 0 {
		return title + "\n" + theme.EmptyStyle.Render("No role filter data available")
	}

	role := m.roleKeys[m.roleFilter]
	header := fmt.Sprintf("%s  %s %s %s  (%d/%d)",
		title, theme.IconArrowUp, lipgloss.NewStyle().Bold(true).Render(role), theme.IconArrowDown,
		m.roleFilter+1, len(m.roleKeys))

	counts := m.bundle.FilteredTagAnalysis[role]
	if len(counts) == 0 {
		return header + "\n" + theme.EmptyStyle.Render("No tags recorded for this role")
	}

	max := 0
	for _, c := range counts {
		if c.ResponseCount > max {
			max = c.ResponseCount
		}
	}

	lines := []string{header}
	for _, c := range counts {
		label := utils.PadString(utils.TruncateString(c.TagName, 28), 28, "left")
		bar := theme.RenderBar(c.ResponseCount, max, width/3, theme.ColorSecondary)
		lines = append(lines, fmt.Sprintf("%s %s %d", label, bar, c.ResponseCount))
	}
	return strings.Join(lines, "\n")
}

func (m *AnalyticsModel) renderTagRoleDistribution(width int) string {
	title := sectionTitle("Role Distribution by Tag")
	dist := m.bundle.TagRoleDistribution
	if len(dist) == 0 {
		return title + "\n" + theme.EmptyStyle.Render("No distribution data available")
	}

	tagNames := make([]string, 0, len(dist))
	for name := range dist {
		tagNames = append(tagNames, name)
	}
	sort.Strings(tagNames)

	lines := []string{title}
	for _, name := range tagNames {
		parts := make([]string, 0, len(dist[name]))
		for _, rc := range dist[name] {
			parts = append(parts, fmt.Sprintf("%s %d", rc.RoleCategory, rc.ResponseCount))
		}
		lines = append(lines, fmt.Sprintf("%s  %s",
			lipgloss.NewStyle().Bold(true).Render(utils.PadString(utils.TruncateString(name, 28), 28, "left")),
			theme.SubtitleStyle.Render(strings.Join(parts, "  "+theme.IconDot+"  "))))
	}
	return strings.Join(lines, "\n")
}

func (m *AnalyticsModel) renderResponseQuality(width int) string {
	q := m.bundle.ResponseQuality
	cells := []string{
		renderMetric("High Engagement", utils.FormatNumber(int64(q.HighEngagementCount))),
		renderMetric("Detailed Responses", utils.FormatNumber(int64(q.DetailedResponsesCount))),
		renderMetric("Text Question Ratio", fmt.Sprintf("%.1f%%", q.TextQuestionRatio)),
	}
	return sectionTitle("Response Quality") + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func sectionTitle(text string) string {
	return lipgloss.NewStyle().Foreground(theme.ColorAccent).Bold(true).Render(text)
}

func (m *AnalyticsModel) View() string {
	if !m.ready {
		return theme.BaseStyle.Render("Loading...")
	}

	title := theme.RenderTitle(theme.IconAnalytics, "Survey Analytics")

	sections := []string{"", title, ""}
	if m.err != nil {
		sections = append(sections, theme.ErrorStyle.Render(theme.IconCross+" "+m.err.Error()))
	}

	switch {
	case m.loading && !m.loaded:
		sections = append(sections, "Loading analytics...")
	case !m.loaded:
		sections = append(sections, theme.EmptyStyle.Render("No analytics data available"))
	default:
		sections = append(sections, m.viewport.View())
	}

	sections = append(sections, m.renderFooter())
	main := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return theme.BaseStyle.Width(m.width).Height(m.height).Render(main)
}

func (m *AnalyticsModel) renderFooter() string {
	rawLabel := "Raw JSON"
	if m.showRaw {
		rawLabel = "Charts"
	}
	keys := []string{
		theme.RenderKeyHelp("↑↓", "Scroll"),
		theme.RenderKeyHelp("[ ]", "Role Filter"),
		theme.RenderKeyHelp("o", rawLabel),
		theme.RenderKeyHelp("r", "Reload"),
		theme.RenderKeyHelp("v", "Responses"),
		theme.RenderKeyHelp("Esc", "Back"),
	}
	return theme.FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Left, keys...))
}

type analyticsKeyMap struct {
	Back      key.Binding
	Responses key.Binding
	Reload    key.Binding
	PrevRole  key.Binding
	NextRole  key.Binding
	RawToggle key.Binding
}

func defaultAnalyticsKeyMap() analyticsKeyMap {
	return analyticsKeyMap{
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "back to tags"),
		),
		Responses: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "all responses"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		PrevRole: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous role"),
		),
		NextRole: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next role"),
		),
		RawToggle: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "toggle raw json"),
		),
	}
}
