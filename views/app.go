package views

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Stratton-Carroll/survey-model/internal/api"
	"github.com/Stratton-Carroll/survey-model/internal/config"
	"github.com/Stratton-Carroll/survey-model/internal/theme"
)

// View identifies one of the five screens.
type View string

const (
	ViewTags      View = "tags"
	ViewTagDetail View = "tag_detail"
	ViewResponses View = "responses"
	ViewAnalytics View = "analytics"
	ViewTagEditor View = "tag_editor"
)

var navOrder = []View{ViewTags, ViewTagDetail, ViewResponses, ViewAnalytics, ViewTagEditor}

var navLabels = map[View]string{
	ViewTags:      "Tags",
	ViewTagDetail: "Tag Detail",
	ViewResponses: "Responses",
	ViewAnalytics: "Analytics",
	ViewTagEditor: "Tag Editor",
}

// Navigation messages emitted by child views and handled by the root model.
type ShowTagsMsg struct{}

type ShowTagDetailMsg struct {
	Tag api.Tag
}

type ShowResponsesMsg struct{}

type ShowAnalyticsMsg struct{}

// OpenEditorMsg enters the tag editor. A nil Response opens the editor home
// (override statistics); a concrete Response opens it for editing, and the
// originating view becomes the editor's return path.
type OpenEditorMsg struct {
	Response *api.Response
}

// CloseEditorMsg leaves the editor, returning to wherever it was entered
// from and dropping the response being edited.
type CloseEditorMsg struct{}

// mutationAppliedMsg reports the outcome of a manual ADD/REMOVE override.
// Whichever view issued the command refreshes its own data on success.
type mutationAppliedMsg struct {
	responseID int
	tagID      api.TagID
	action     string
	err        error
}

// App is the root model: it owns which view is current, constructs child
// views lazily, and keeps the editor's return path.
type App struct {
	cfg    *config.Config
	client *api.Client

	currentView  View
	previousView View

	width  int
	height int

	tagsView      *TagsModel
	tagDetailView *TagDetailModel
	responsesView *ResponsesModel
	analyticsView *AnalyticsModel
	editorView    *EditorModel
}

func NewApp(cfg *config.Config, client *api.Client) *App {
	return &App{
		cfg:          cfg,
		client:       client,
		currentView:  ViewTags,
		previousView: ViewTags,
	}
}

func (a *App) Init() tea.Cmd {
	a.tagsView = NewTagsModel(a.client)
	return a.tagsView.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Children render below the nav bar.
		child := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2}
		a.broadcast(child)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case ShowTagsMsg:
		a.currentView = ViewTags
		if a.tagsView == nil {
			a.tagsView = NewTagsModel(a.client)
			return a, a.tagsView.Init()
		}
		return a, a.tagsView.Refresh()

	case ShowTagDetailMsg:
		a.currentView = ViewTagDetail
		if a.tagDetailView == nil {
			a.tagDetailView = NewTagDetailModel(a.client, a.cfg.Reviewer.AppliedBy)
		}
		return a, a.tagDetailView.SetTag(msg.Tag)

	case ShowResponsesMsg:
		a.currentView = ViewResponses
		if a.responsesView == nil {
			a.responsesView = NewResponsesModel(a.client, a.cfg.Reviewer.AppliedBy)
			return a, a.responsesView.Init()
		}
		return a, a.responsesView.Refresh()

	case ShowAnalyticsMsg:
		a.currentView = ViewAnalytics
		if a.analyticsView == nil {
			a.analyticsView = NewAnalyticsModel(a.client)
			return a, a.analyticsView.Init()
		}
		return a, a.analyticsView.Refresh()

	case OpenEditorMsg:
		if a.currentView != ViewTagEditor {
			a.previousView = a.currentView
		}
		a.currentView = ViewTagEditor
		if a.editorView == nil {
			a.editorView = NewEditorModel(a.client, a.cfg.Reviewer.AppliedBy)
		}
		return a, a.editorView.Open(msg.Response)

	case CloseEditorMsg:
		a.currentView = a.previousView
		if a.editorView != nil {
			a.editorView.Clear()
		}
		return a, a.refreshCurrent()
	}

	return a, a.forward(msg)
}

// refreshCurrent re-issues the current view's data load, used when leaving
// the editor so the restored view picks up any overrides applied there.
func (a *App) refreshCurrent() tea.Cmd {
	switch a.currentView {
	case ViewTags:
		if a.tagsView != nil {
			return a.tagsView.Refresh()
		}
	case ViewTagDetail:
		if a.tagDetailView != nil {
			return a.tagDetailView.Refresh()
		}
	case ViewResponses:
		if a.responsesView != nil {
			return a.responsesView.Refresh()
		}
	case ViewAnalytics:
		if a.analyticsView != nil {
			return a.analyticsView.Refresh()
		}
	}
	return nil
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case ViewTags:
		if a.tagsView != nil {
			cmd = a.tagsView.Update(msg)
		}
	case ViewTagDetail:
		if a.tagDetailView != nil {
			cmd = a.tagDetailView.Update(msg)
		}
	case ViewResponses:
		if a.responsesView != nil {
			cmd = a.responsesView.Update(msg)
		}
	case ViewAnalytics:
		if a.analyticsView != nil {
			cmd = a.analyticsView.Update(msg)
		}
	case ViewTagEditor:
		if a.editorView != nil {
			cmd = a.editorView.Update(msg)
		}
	}
	return cmd
}

func (a *App) broadcast(msg tea.Msg) {
	if a.tagsView != nil {
		a.tagsView.Update(msg)
	}
	if a.tagDetailView != nil {
		a.tagDetailView.Update(msg)
	}
	if a.responsesView != nil {
		a.responsesView.Update(msg)
	}
	if a.analyticsView != nil {
		a.analyticsView.Update(msg)
	}
	if a.editorView != nil {
		a.editorView.Update(msg)
	}
}

func (a *App) View() string {
	active := 0
	labels := make([]string, len(navOrder))
	for i, v := range navOrder {
		labels[i] = navLabels[v]
		if v == a.currentView {
			active = i
		}
	}
	nav := theme.RenderNavBar(labels, active, a.width)

	var body string
	switch a.currentView {
	case ViewTags:
		if a.tagsView != nil {
			body = a.tagsView.View()
		}
	case ViewTagDetail:
		if a.tagDetailView != nil {
			body = a.tagDetailView.View()
		}
	case ViewResponses:
		if a.responsesView != nil {
			body = a.responsesView.View()
		}
	case ViewAnalytics:
		if a.analyticsView != nil {
			body = a.analyticsView.View()
		}
	case ViewTagEditor:
		if a.editorView != nil {
			body = a.editorView.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, nav, body)
}

// CurrentView exposes the active view for the root model's callers.
func (a *App) CurrentView() View {
	return a.currentView
}

// fetchContext is the shared deadline for view data loads. The http client
// carries its own timeout; this bounds the whole command.
func fetchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
