package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stratton-Carroll/survey-model/internal/api"
	"github.com/Stratton-Carroll/survey-model/internal/config"
)

func newTestApp() *App {
	cfg := config.DefaultConfig()
	client := api.NewClient("http://127.0.0.1:0", time.Second)
	return NewApp(cfg, client)
}

func TestAppStartsOnTags(t *testing.T) {
	app := newTestApp()
	cmd := app.Init()

	assert.Equal(t, ViewTags, app.CurrentView())
	assert.NotNil(t, cmd)
}

func TestAppNavigation(t *testing.T) {
	app := newTestApp()
	app.Init()

	_, cmd := app.Update(ShowTagDetailMsg{Tag: api.Tag{TagID: 3, TagName: "Workforce Shortage"}})
	assert.Equal(t, ViewTagDetail, app.CurrentView())
	assert.NotNil(t, cmd)

	app.Update(ShowResponsesMsg{})
	assert.Equal(t, ViewResponses, app.CurrentView())

	app.Update(ShowAnalyticsMsg{})
	assert.Equal(t, ViewAnalytics, app.CurrentView())

	app.Update(ShowTagsMsg{})
	assert.Equal(t, ViewTags, app.CurrentView())
}

func TestAppAnalyticsRefetchesOnReentry(t *testing.T) {
	app := newTestApp()
	app.Init()

	_, cmd := app.Update(ShowAnalyticsMsg{})
	require.NotNil(t, cmd)

	app.Update(ShowTagsMsg{})
	_, cmd = app.Update(ShowAnalyticsMsg{})
	assert.NotNil(t, cmd, "re-entering Analytics should reload the bundle")
}

func TestAppAnalyticsRefreshesAfterEditor(t *testing.T) {
	app := newTestApp()
	app.Init()
	app.Update(ShowAnalyticsMsg{})

	app.Update(OpenEditorMsg{Response: nil})
	_, cmd := app.Update(CloseEditorMsg{})
	assert.Equal(t, ViewAnalytics, app.CurrentView())
	assert.NotNil(t, cmd, "returning from the editor should reload analytics")
}

func TestAppEditorReturnsToOriginatingView(t *testing.T) {
	app := newTestApp()
	app.Init()

	app.Update(ShowResponsesMsg{})
	require.Equal(t, ViewResponses, app.CurrentView())

	resp := api.Response{ResponseID: 12}
	app.Update(OpenEditorMsg{Response: &resp})
	assert.Equal(t, ViewTagEditor, app.CurrentView())

	app.Update(CloseEditorMsg{})
	assert.Equal(t, ViewResponses, app.CurrentView())
}

func TestAppEditorReopenKeepsReturnPath(t *testing.T) {
	app := newTestApp()
	app.Init()

	app.Update(ShowTagDetailMsg{Tag: api.Tag{TagID: 3}})

	first := api.Response{ResponseID: 12}
	app.Update(OpenEditorMsg{Response: &first})

	// Switching responses inside the editor must not reset where esc leads.
	second := api.Response{ResponseID: 13}
	app.Update(OpenEditorMsg{Response: &second})
	require.Equal(t, ViewTagEditor, app.CurrentView())

	app.Update(CloseEditorMsg{})
	assert.Equal(t, ViewTagDetail, app.CurrentView())
}

func TestAppEditorHomeFromTags(t *testing.T) {
	app := newTestApp()
	app.Init()

	_, cmd := app.Update(OpenEditorMsg{Response: nil})
	assert.Equal(t, ViewTagEditor, app.CurrentView())
	assert.NotNil(t, cmd)

	app.Update(CloseEditorMsg{})
	assert.Equal(t, ViewTags, app.CurrentView())
}
