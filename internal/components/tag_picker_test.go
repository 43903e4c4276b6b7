package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stratton-Carroll/survey-model/internal/api"
)

func pickerFixture() *TagPicker {
	return NewTagPicker("Add Tag").SetItems([]PickerItem{
		{Label: "Workforce", Separator: true},
		{Label: "Workforce Shortage", Tag: api.Tag{TagID: 1, TagName: "Workforce Shortage"}},
		{Label: "Recruitment", Tag: api.Tag{TagID: 3, TagName: "Recruitment"}},
		{Label: "Funding", Separator: true},
		{Label: "Funding Gaps", Tag: api.Tag{TagID: 2, TagName: "Funding Gaps"}},
	})
}

func TestTagPickerCursorStartsOnSelectable(t *testing.T) {
	p := pickerFixture()

	current, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, api.TagID(1), current.TagID)
}

func TestTagPickerMoveSkipsSeparators(t *testing.T) {
	p := pickerFixture()

	p.MoveDown()
	current, _ := p.Current()
	assert.Equal(t, api.TagID(3), current.TagID)

	// Crossing the Funding header lands on the tag beneath it.
	p.MoveDown()
	current, _ = p.Current()
	assert.Equal(t, api.TagID(2), current.TagID)

	// Bottom of the list: stay put.
	p.MoveDown()
	current, _ = p.Current()
	assert.Equal(t, api.TagID(2), current.TagID)

	p.MoveUp()
	current, _ = p.Current()
	assert.Equal(t, api.TagID(3), current.TagID)
}

func TestTagPickerMoveUpStopsAtFirstSelectable(t *testing.T) {
	p := pickerFixture()

	p.MoveUp()
	current, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, api.TagID(1), current.TagID)
}

func TestTagPickerEmpty(t *testing.T) {
	p := NewTagPicker("Add Tag").SetItems([]PickerItem{
		{Label: "Workforce", Separator: true},
	})

	assert.True(t, p.Empty())
	_, ok := p.Current()
	assert.False(t, ok)
}
