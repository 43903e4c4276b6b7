package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stratton-Carroll/survey-model/internal/api"
)

func tagIDPtr(id api.TagID) *api.TagID { return &id }

func effective(id api.TagID, name string, level int, parent *api.TagID, manual bool) api.EffectiveTag {
	return api.EffectiveTag{
		Tag: api.Tag{
			TagID:       id,
			TagName:     name,
			Level:       level,
			ParentTagID: parent,
		},
		IsManuallyAdded: manual,
	}
}

func TestPartition(t *testing.T) {
	set := []api.EffectiveTag{
		effective(1, "Workforce Shortage", 1, nil, false),
		effective(10, "Burnout", 2, tagIDPtr(1), false),
		effective(2, "Funding Gaps", 1, nil, true),
		effective(11, "Grant Cycles", 2, tagIDPtr(2), true),
	}

	primaries, subs := Partition(set)

	require.Len(t, primaries, 2)
	require.Len(t, subs, 2)
	assert.Equal(t, api.TagID(1), primaries[0].TagID)
	assert.Equal(t, api.TagID(2), primaries[1].TagID)
	assert.Equal(t, api.TagID(10), subs[0].TagID)
	assert.Equal(t, api.TagID(11), subs[1].TagID)
}

func TestTreeClassifiesEveryTagOnce(t *testing.T) {
	set := []api.EffectiveTag{
		effective(1, "Workforce Shortage", 1, nil, false),
		effective(10, "Burnout", 2, tagIDPtr(1), false),
		effective(11, "Pay Scales", 2, tagIDPtr(1), true),
		effective(2, "Funding Gaps", 1, nil, false),
		effective(12, "Dangling Child", 2, tagIDPtr(99), false),
		effective(13, "No Parent At All", 2, nil, false),
	}

	groups, orphans := Tree(set)

	require.Len(t, groups, 2)
	assert.Equal(t, api.TagID(1), groups[0].Primary.TagID)
	require.Len(t, groups[0].Children, 2)
	assert.Equal(t, api.TagID(10), groups[0].Children[0].TagID)
	assert.Equal(t, api.TagID(11), groups[0].Children[1].TagID)
	assert.Empty(t, groups[1].Children)

	require.Len(t, orphans, 2)
	assert.Equal(t, api.TagID(12), orphans[0].TagID)
	assert.Equal(t, api.TagID(13), orphans[1].TagID)

	// Every input tag lands exactly once across groups and orphans.
	seen := map[api.TagID]int{}
	for _, g := range groups {
		seen[g.Primary.TagID]++
		for _, c := range g.Children {
			seen[c.TagID]++
		}
	}
	for _, o := range orphans {
		seen[o.TagID]++
	}
	require.Len(t, seen, len(set))
	for id, n := range seen {
		assert.Equal(t, 1, n, "tag %d placed %d times", id, n)
	}
}

func TestTreeEmptySet(t *testing.T) {
	groups, orphans := Tree(nil)
	assert.Empty(t, groups)
	assert.Empty(t, orphans)
}

func TestOrphansParentPresentAsSubTag(t *testing.T) {
	// A parent that is itself a sub-tag does not adopt: only primaries anchor
	// groups, so the child is an orphan.
	set := []api.EffectiveTag{
		effective(10, "Mid Level", 2, tagIDPtr(1), false),
		effective(20, "Deep Child", 2, tagIDPtr(10), false),
	}

	groups, orphans := Tree(set)
	assert.Empty(t, groups)
	require.Len(t, orphans, 2)
}

func TestIsManual(t *testing.T) {
	set := []api.EffectiveTag{
		effective(1, "Auto", 1, nil, false),
		effective(2, "Manual", 1, nil, true),
	}

	assert.False(t, IsManual(1, set))
	assert.True(t, IsManual(2, set))
	assert.False(t, IsManual(99, set))
}

func TestAvailableToAdd(t *testing.T) {
	catalog := []api.Tag{
		{TagID: 1, TagName: "Workforce Shortage", Level: 1},
		{TagID: 2, TagName: "Funding Gaps", Level: 1},
		{TagID: 10, TagName: "Burnout", Level: 2, ParentTagID: tagIDPtr(1)},
	}
	applied := []api.EffectiveTag{
		effective(1, "Workforce Shortage", 1, nil, false),
	}

	available := AvailableToAdd(catalog, applied)

	require.Len(t, available, 2)
	assert.Equal(t, api.TagID(2), available[0].TagID)
	assert.Equal(t, api.TagID(10), available[1].TagID)
}

func TestGroupByCategory(t *testing.T) {
	available := []api.Tag{
		{TagID: 1, TagName: "Workforce Shortage", TagCategory: "Workforce", Level: 1},
		{TagID: 2, TagName: "Funding Gaps", TagCategory: "Funding", Level: 1},
		{TagID: 3, TagName: "Recruitment", TagCategory: "Workforce", Level: 1},
		{TagID: 10, TagName: "Burnout", TagCategory: "Workforce", Level: 2, ParentTagID: tagIDPtr(1)},
	}

	groups := GroupByCategory(available)

	require.Len(t, groups, 2)
	assert.Equal(t, "Workforce", groups[0].Category)
	require.Len(t, groups[0].Tags, 2)
	assert.Equal(t, api.TagID(1), groups[0].Tags[0].TagID)
	assert.Equal(t, api.TagID(3), groups[0].Tags[1].TagID)
	assert.Equal(t, "Funding", groups[1].Category)
	require.Len(t, groups[1].Tags, 1)
}

func TestSubTagsFor(t *testing.T) {
	available := []api.Tag{
		{TagID: 10, TagName: "Burnout", Level: 2, ParentTagID: tagIDPtr(1)},
		{TagID: 11, TagName: "Grant Cycles", Level: 2, ParentTagID: tagIDPtr(2)},
		{TagID: 12, TagName: "Pay Scales", Level: 2, ParentTagID: tagIDPtr(1)},
		{TagID: 1, TagName: "Workforce Shortage", Level: 1},
	}

	subs := SubTagsFor(available, 1)

	require.Len(t, subs, 2)
	assert.Equal(t, api.TagID(10), subs[0].TagID)
	assert.Equal(t, api.TagID(12), subs[1].TagID)
	assert.Empty(t, SubTagsFor(available, 99))
}

func TestSortByResponseCount(t *testing.T) {
	catalog := []api.Tag{
		{TagID: 1, TagName: "Bravo", ResponseCount: 5},
		{TagID: 2, TagName: "Alpha", ResponseCount: 5},
		{TagID: 3, TagName: "Charlie", ResponseCount: 12},
	}

	SortByResponseCount(catalog)

	assert.Equal(t, api.TagID(3), catalog[0].TagID)
	assert.Equal(t, "Alpha", catalog[1].TagName)
	assert.Equal(t, "Bravo", catalog[2].TagName)
}
