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

func newTestTagsModel() *TagsModel {
	client := api.NewClient("http://127.0.0.1:0", time.Second)
	m := NewTagsModel(client)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestTagsLoad(t *testing.T) {
	m := newTestTagsModel()

	m.Update(tagsLoadedMsg{tags: []api.Tag{
		{TagID: 3, TagName: "Workforce Shortage", TagCategory: "Workforce", ResponseCount: 42, TagPriority: 1},
		{TagID: 7, TagName: "Funding Gaps", TagCategory: "Funding", ResponseCount: 18},
	}})

	assert.False(t, m.loading)
	selected, ok := m.selectedTag()
	require.True(t, ok)
	assert.Equal(t, api.TagID(3), selected.TagID)

	out := m.View()
	assert.Contains(t, out, "Workforce Shortage")
	assert.Contains(t, out, "Priority")
}

func TestTagsLoadSortsBusiestFirst(t *testing.T) {
	m := newTestTagsModel()

	m.Update(tagsLoadedMsg{tags: []api.Tag{
		{TagID: 7, TagName: "Funding Gaps", ResponseCount: 18},
		{TagID: 3, TagName: "Workforce Shortage", ResponseCount: 42},
		{TagID: 5, TagName: "Access Barriers", ResponseCount: 42},
	}})

	require.Len(t, m.tags, 3)
	assert.Equal(t, "Access Barriers", m.tags[0].TagName)
	assert.Equal(t, "Workforce Shortage", m.tags[1].TagName)
	assert.Equal(t, "Funding Gaps", m.tags[2].TagName)
}

func TestTagsLoadFailureKeepsPreviousCatalog(t *testing.T) {
	m := newTestTagsModel()
	m.Update(tagsLoadedMsg{tags: []api.Tag{
		{TagID: 3, TagName: "Workforce Shortage", ResponseCount: 42},
	}})

	m.Update(tagsLoadedMsg{err: errors.New("connection refused")})

	require.Len(t, m.tags, 1)
	require.Error(t, m.err)
	out := m.View()
	assert.Contains(t, out, "connection refused")
}

func TestTagsSelectionWithEmptyCatalog(t *testing.T) {
	m := newTestTagsModel()
	m.Update(tagsLoadedMsg{})

	_, ok := m.selectedTag()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No tags available")
}
