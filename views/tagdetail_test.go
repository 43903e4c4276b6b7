package views

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stratton-Carroll/survey-model/internal/api"
)

func newTestTagDetailModel() *TagDetailModel {
	client := api.NewClient("http://127.0.0.1:0", time.Second)
	m := NewTagDetailModel(client, "reviewer")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestTagDetailSetTagResetsCursors(t *testing.T) {
	m := newTestTagDetailModel()

	cmd := m.SetTag(api.Tag{TagID: 3, TagName: "Workforce Shortage"})
	require.NotNil(t, cmd)
	m.Update(tagResponsesLoadedMsg{tagID: 3, responses: []api.Response{
		{ResponseID: 1}, {ResponseID: 2},
	}})
	m.cursor = 1
	m.tagCursor = 2

	// Same tag again keeps position.
	m.SetTag(api.Tag{TagID: 3, TagName: "Workforce Shortage"})
	assert.Equal(t, 1, m.cursor)

	// A different tag starts from the top.
	m.SetTag(api.Tag{TagID: 7, TagName: "Funding Gaps"})
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, 0, m.tagCursor)
	assert.Empty(t, m.responses)
}

func TestTagDetailDropsStaleResponses(t *testing.T) {
	m := newTestTagDetailModel()
	m.SetTag(api.Tag{TagID: 3, TagName: "Workforce Shortage"})
	m.SetTag(api.Tag{TagID: 7, TagName: "Funding Gaps"})

	// The slow fetch for the first tag lands after navigating to the second.
	m.Update(tagResponsesLoadedMsg{tagID: 3, responses: []api.Response{{ResponseID: 1}}})
	assert.Empty(t, m.responses)
	assert.True(t, m.loading)

	m.Update(tagResponsesLoadedMsg{tagID: 7, responses: []api.Response{{ResponseID: 2}}})
	require.Len(t, m.responses, 1)
	assert.Equal(t, 2, m.responses[0].ResponseID)
	assert.False(t, m.loading)
}

func TestTagDetailLoadFailure(t *testing.T) {
	m := newTestTagDetailModel()
	m.SetTag(api.Tag{TagID: 3, TagName: "Workforce Shortage"})

	m.Update(tagResponsesLoadedMsg{tagID: 3, err: errors.New("connection refused")})
	assert.False(t, m.loading)
	assert.Empty(t, m.responses)
	require.Error(t, m.err)
}

func TestTagDetailRefreshWithoutTag(t *testing.T) {
	m := newTestTagDetailModel()
	assert.Nil(t, m.Refresh())
}
