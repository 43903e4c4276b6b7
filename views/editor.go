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
	"github.com/Stratton-Carroll/survey-model/internal/components"
	"github.com/Stratton-Carroll/survey-model/internal/highlight"
	"github.com/Stratton-Carroll/survey-model/internal/tags"
	"github.com/Stratton-Carroll/survey-model/internal/theme"
	"github.com/Stratton-Carroll/survey-model/internal/utils"
)

// EditorModel is the manual-override screen. Opened without a response it
// shows override statistics; opened for a response it shows the response
// text with keyword highlights plus the effective tag tree, and lets the
// reviewer add or remove tags.
type EditorModel struct {
	client    *api.Client
	appliedBy string

	width  int
	height int
	ready  bool

	response *api.Response

	stats        api.OverrideStats
	statsLoaded  bool
	statsErr     error
	loadingStats bool

	catalog          []api.Tag
	catalogErr       error
	loadingCatalog   bool
	effective        []api.EffectiveTag
	effectiveErr     error
	loadingEffective bool

	// Highlight spans cached per response for the whole session. seq
	// guards against a slow fetch landing after the reviewer moved on to
	// a different response.
	highlightCache map[int][]api.HighlightSpan
	highlightSeq   int
	showHighlights bool

	rows      []treeRow
	cursor    int
	adding    bool
	picker    *components.TagPicker
	mutateErr error

	viewport viewport.Model
	keys     editorKeyMap
}

// treeRow is one rendered line of the effective-tag tree.
type treeRow struct {
	header bool
	label  string
	tag    api.EffectiveTag
	child  bool
	orphan bool
}

type overrideStatsLoadedMsg struct {
	stats api.OverrideStats
	err   error
}

type catalogLoadedMsg struct {
	catalog []api.Tag
	err     error
}

type effectiveTagsLoadedMsg struct {
	responseID int
	tags       []api.EffectiveTag
	err        error
}

type highlightsLoadedMsg struct {
	responseID int
	seq        int
	spans      []api.HighlightSpan
	err        error
}

func NewEditorModel(client *api.Client, appliedBy string) *EditorModel {
	return &EditorModel{
		client:         client,
		appliedBy:      appliedBy,
		highlightCache: make(map[int][]api.HighlightSpan),
		showHighlights: true,
		keys:           defaultEditorKeyMap(),
	}
}

// Open enters the editor. A nil response shows the override-stats home;
// otherwise the catalog and the response's effective tags load together,
// and the editor renders once both arrive.
func (m *EditorModel) Open(response *api.Response) tea.Cmd {
	m.adding = false
	m.mutateErr = nil

	if response == nil {
		m.response = nil
		m.loadingStats = true
		return m.fetchStats()
	}

	m.response = response
	m.cursor = 0
	m.effective = nil
	m.effectiveErr = nil
	m.catalogErr = nil
	m.loadingCatalog = true
	m.loadingEffective = true
	m.rows = nil

	cmds := []tea.Cmd{m.fetchCatalog(), m.fetchEffective(response.ResponseID)}
	if _, cached := m.highlightCache[response.ResponseID]; !cached {
		m.highlightSeq++
		cmds = append(cmds, m.fetchHighlights(response.ResponseID, m.highlightSeq))
	}
	return tea.Batch(cmds...)
}

// Clear drops the response being edited; the session caches stay.
func (m *EditorModel) Clear() {
	m.response = nil
	m.adding = false
	m.rows = nil
	m.cursor = 0
}

func (m *EditorModel) fetchStats() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		stats, err := m.client.OverrideStats(ctx)
		return overrideStatsLoadedMsg{stats: stats, err: err}
	}
}

func (m *EditorModel) fetchCatalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		catalog, err := m.client.AvailableTags(ctx)
		return catalogLoadedMsg{catalog: catalog, err: err}
	}
}

func (m *EditorModel) fetchEffective(responseID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		effective, err := m.client.EffectiveTags(ctx, responseID)
		return effectiveTagsLoadedMsg{responseID: responseID, tags: effective, err: err}
	}
}

func (m *EditorModel) fetchHighlights(responseID, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		spans, err := m.client.Highlights(ctx, responseID)
		return highlightsLoadedMsg{responseID: responseID, seq: seq, spans: spans, err: err}
	}
}

func (m *EditorModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width-4, msg.Height-9)
		m.ready = true
		m.refreshContent()

	case overrideStatsLoadedMsg:
		m.loadingStats = false
		if msg.err != nil {
			log.Printf("editor: override stats failed: %v", msg.err)
			m.statsErr = msg.err
			return nil
		}
		m.statsErr = nil
		m.statsLoaded = true
		m.stats = msg.stats
		m.refreshContent()

	case catalogLoadedMsg:
		m.loadingCatalog = false
		if msg.err != nil {
			// The effective half renders regardless; only the add menu
			// depends on the catalog.
			log.Printf("editor: catalog failed: %v", msg.err)
			m.catalogErr = msg.err
			return nil
		}
		m.catalogErr = nil
		m.catalog = msg.catalog
		m.refreshContent()

	case effectiveTagsLoadedMsg:
		if m.response == nil || msg.responseID != m.response.ResponseID {
			return nil
		}
		m.loadingEffective = false
		if msg.err != nil {
			log.Printf("editor: effective tags for response %d failed: %v", msg.responseID, msg.err)
			m.effectiveErr = msg.err
			return nil
		}
		m.effectiveErr = nil
		m.effective = msg.tags
		m.rebuildRows()
		m.refreshContent()

	case highlightsLoadedMsg:
		if msg.seq != m.highlightSeq {
			// A newer open superseded this fetch.
			return nil
		}
		if msg.err != nil {
			log.Printf("editor: highlights for response %d failed: %v", msg.responseID, msg.err)
			return nil
		}
		m.highlightCache[msg.responseID] = msg.spans
		m.refreshContent()

	case mutationAppliedMsg:
		if msg.err != nil {
			log.Printf("editor: %s tag %d on response %d failed: %v", msg.action, msg.tagID, msg.responseID, msg.err)
			m.mutateErr = msg.err
			m.refreshContent()
			return nil
		}
		m.mutateErr = nil
		// Replace the effective set wholesale from the server.
		m.loadingEffective = true
		return m.fetchEffective(msg.responseID)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return nil
}

func (m *EditorModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.adding {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return func() tea.Msg { return CloseEditorMsg{} }

	case key.Matches(msg, m.keys.Up):
		c := m.cursor - 1
		for c >= 0 && m.rows[c].header {
			c--
		}
		if c >= 0 {
			m.cursor = c
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.Down):
		c := m.cursor + 1
		for c < len(m.rows) && m.rows[c].header {
			c++
		}
		if c < len(m.rows) {
			m.cursor = c
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.Add):
		if m.response != nil && len(m.catalog) > 0 {
			m.openPicker()
			m.refreshContent()
		}

	case key.Matches(msg, m.keys.Remove):
		if t, ok := m.focusedRowTag(); ok {
			return m.mutate(t.TagID, api.ActionRemove, "removed in tag editor")
		}

	case key.Matches(msg, m.keys.Highlights):
		m.showHighlights = !m.showHighlights
		m.refreshContent()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	return nil
}

func (m *EditorModel) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.adding = false
		m.refreshContent()

	case key.Matches(msg, m.keys.Up):
		m.picker.MoveUp()
		m.refreshContent()

	case key.Matches(msg, m.keys.Down):
		m.picker.MoveDown()
		m.refreshContent()

	case key.Matches(msg, m.keys.Confirm):
		if t, ok := m.picker.Current(); ok {
			m.adding = false
			return m.mutate(t.TagID, api.ActionAdd, "added in tag editor")
		}
	}

	return nil
}

// openPicker builds the add menu: addable primaries grouped by category,
// then addable sub-tags scoped under each currently applied primary.
func (m *EditorModel) openPicker() {
	available := tags.AvailableToAdd(m.catalog, m.effective)

	var items []components.PickerItem
	for _, group := range tags.GroupByCategory(available) {
		items = append(items, components.PickerItem{Label: group.Category, Separator: true})
		for _, t := range group.Tags {
			items = append(items, components.PickerItem{Label: t.TagName, Tag: t})
		}
	}

	primaries, _ := tags.Partition(m.effective)
	for _, p := range primaries {
		subs := tags.SubTagsFor(available, p.TagID)
		if len(subs) == 0 {
			continue
		}
		items = append(items, components.PickerItem{Label: "Sub-tags of " + p.TagName, Separator: true})
		for _, t := range subs {
			items = append(items, components.PickerItem{Label: t.TagName, Tag: t})
		}
	}

	picker := components.NewTagPicker("Add Tag")
	picker.SetSize(m.width/2, m.height-10)
	picker.SetItems(items)
	m.picker = picker
	m.adding = true
}

func (m *EditorModel) mutate(tagID api.TagID, action, notes string) tea.Cmd {
	if m.response == nil {
		return nil
	}
	responseID := m.response.ResponseID
	appliedBy := m.appliedBy
	client := m.client
	return func() tea.Msg {
		ctx, cancel := fetchContext()
		defer cancel()
		err := client.MutateTags(ctx, responseID, api.TagMutation{
			TagID:     tagID,
			Action:    action,
			AppliedBy: appliedBy,
			Notes:     notes,
		})
		return mutationAppliedMsg{responseID: responseID, tagID: tagID, action: action, err: err}
	}
}

func (m *EditorModel) focusedRowTag() (api.EffectiveTag, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) || m.rows[m.cursor].header {
		return api.EffectiveTag{}, false
	}
	return m.rows[m.cursor].tag, true
}

// rebuildRows flattens the effective set into display rows: each primary
// with its children, then the orphaned sub-tags under their own header.
func (m *EditorModel) rebuildRows() {
	groups, orphans := tags.Tree(m.effective)

	var rows []treeRow
	for _, g := range groups {
		rows = append(rows, treeRow{tag: g.Primary})
		for _, c := range g.Children {
			rows = append(rows, treeRow{tag: c, child: true})
		}
	}
	if len(orphans) > 0 {
		rows = append(rows, treeRow{header: true, label: "Orphaned sub-tags (parent not in catalog)"})
		for _, o := range orphans {
			rows = append(rows, treeRow{tag: o, orphan: true})
		}
	}

	m.rows = rows
	if m.cursor >= len(rows) {
		m.cursor = 0
	}
	for m.cursor < len(m.rows) && m.rows[m.cursor].header {
		m.cursor++
	}
}

func (m *EditorModel) refreshContent() {
	if !m.ready {
		return
	}
	if m.response == nil {
		m.viewport.SetContent(m.renderHome())
		return
	}
	m.viewport.SetContent(m.renderEditor())
}

func (m *EditorModel) renderHome() string {
	if m.loadingStats {
		return "Loading override statistics..."
	}
	if !m.statsLoaded {
		return theme.EmptyStyle.Render("No override statistics available")
	}

	cells := []string{
		renderMetric("Total Overrides", utils.FormatNumber(int64(m.stats.TotalOverrides))),
		renderMetric("Additions", utils.FormatNumber(int64(m.stats.Additions))),
		renderMetric("Removals", utils.FormatNumber(int64(m.stats.Removals))),
		renderMetric("Responses Modified", utils.FormatNumber(int64(m.stats.ResponsesModified))),
	}

	hint := theme.EmptyStyle.Render("Open a response from any list view (e) to edit its tags")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cells...), "", hint)
}

func (m *EditorModel) renderEditor() string {
	width := m.width - 6
	leftWidth := width * 3 / 5
	rightWidth := width - leftWidth - 2

	left := m.renderResponsePanel(leftWidth)
	var right string
	if m.adding && m.picker != nil {
		right = m.picker.View()
	} else {
		right = m.renderTreePanel(rightWidth)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m *EditorModel) renderResponsePanel(width int) string {
	resp := m.response

	meta := []string{resp.RoleName}
	if resp.PrimaryCounty != "" || resp.State != "" {
		meta = append(meta, strings.TrimSuffix(resp.PrimaryCounty+", "+resp.State, ", "))
	}
	if resp.OrganizationName != "" {
		meta = append(meta, resp.OrganizationName)
	}

	spans := m.highlightCache[resp.ResponseID]
	var body string
	if m.showHighlights && len(spans) > 0 {
		body = renderHighlighted(resp.ResponseText, spans, width-4)
	} else {
		body = lipgloss.NewStyle().Width(width - 4).Render(resp.ResponseText)
	}

	lines := []string{
		theme.SubtitleStyle.Render("Question: " + resp.QuestionShort),
		theme.EmptyStyle.Render(strings.Join(meta, "  "+theme.BorderDividerV+"  ")),
		"",
		body,
	}

	if m.showHighlights && len(spans) > 0 {
		lines = append(lines, "", renderLegend(spans))
	}

	return theme.PanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderHighlighted styles each claimed span and lets lipgloss wrap the
// combined string; segment text is preserved verbatim.
func renderHighlighted(text string, spans []api.HighlightSpan, width int) string {
	var b strings.Builder
	for _, seg := range highlight.SegmentText(text, spans) {
		if seg.Highlighted {
			b.WriteString(theme.HighlightStyle(seg.Type).Render(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func renderLegend(spans []api.HighlightSpan) string {
	lines := []string{theme.SubtitleStyle.Render("Keyword matches")}
	for _, item := range highlight.LegendItems(spans) {
		swatch := lipgloss.NewStyle().Foreground(theme.CategoryColor(item.TagCategory)).Render("■")
		lines = append(lines, fmt.Sprintf("%s %s %s", swatch, item.TagName,
			theme.EmptyStyle.Render("("+strings.Join(item.Types, ", ")+")")))
	}
	return strings.Join(lines, "\n")
}

func (m *EditorModel) renderTreePanel(width int) string {
	var lines []string
	lines = append(lines, theme.TitleStyle.Render("Effective Tags"))

	switch {
	case m.loadingEffective:
		lines = append(lines, "Loading tags...")
	case len(m.rows) == 0:
		lines = append(lines, theme.EmptyStyle.Render("No tags applied"))
	default:
		for i, row := range m.rows {
			lines = append(lines, m.renderTreeRow(row, i == m.cursor, width-4))
		}
	}

	return theme.PanelActiveStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *EditorModel) renderTreeRow(row treeRow, focused bool, width int) string {
	if row.header {
		return theme.OrphanLabelStyle.Render(row.label)
	}

	icon := theme.IconTag
	indent := ""
	if row.child {
		icon = theme.IconSubTag
		indent = "  "
	}
	if row.orphan {
		icon = theme.IconOrphan
		indent = "  "
	}

	label := indent + icon + " " + row.tag.TagName
	if row.tag.IsManuallyAdded {
		label += " " + theme.ManualMarkStyle.Render(theme.IconManual+" manual")
	}

	style := lipgloss.NewStyle().Foreground(theme.CategoryColor(row.tag.TagCategory))
	if focused {
		style = theme.RowFocusedStyle
	}
	return style.Width(width).Render(label)
}

func (m *EditorModel) View() string {
	if !m.ready {
		return theme.BaseStyle.Render("Loading...")
	}

	var title string
	if m.response == nil {
		title = theme.RenderTitle(theme.IconEditor, "Tag Editor")
	} else {
		title = theme.RenderTitle(theme.IconEditor,
			fmt.Sprintf("Editing Tags %s Response #%d", theme.BorderDividerV, m.response.ResponseID))
	}

	sections := []string{"", title, ""}
	for _, e := range []error{m.statsErr, m.catalogErr, m.effectiveErr, m.mutateErr} {
		if e != nil {
			sections = append(sections, theme.ErrorStyle.Render(theme.IconCross+" "+e.Error()))
			break
		}
	}

	sections = append(sections, m.viewport.View(), m.renderFooter())
	main := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return theme.BaseStyle.Width(m.width).Height(m.height).Render(main)
}

func (m *EditorModel) renderFooter() string {
	var keys []string
	if m.adding {
		keys = []string{
			theme.RenderKeyHelp("↑↓", "Navigate"),
			theme.RenderKeyHelp("Enter", "Add Tag"),
			theme.RenderKeyHelp("Esc", "Cancel"),
		}
	} else if m.response != nil {
		keys = []string{
			theme.RenderKeyHelp("↑↓", "Navigate"),
			theme.RenderKeyHelp("a", "Add Tag"),
			theme.RenderKeyHelp("x", "Remove Tag"),
			theme.RenderKeyHelp("h", "Highlights"),
			theme.RenderKeyHelp("Esc", "Done"),
		}
	} else {
		keys = []string{
			theme.RenderKeyHelp("Esc", "Back"),
		}
	}
	return theme.FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Left, keys...))
}

type editorKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Add        key.Binding
	Remove     key.Binding
	Confirm    key.Binding
	Highlights key.Binding
	Back       key.Binding
}

func defaultEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add tag"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove tag"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Highlights: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle highlights"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "back"),
		),
	}
}
