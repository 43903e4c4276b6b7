// Package tags reconciles a response's effective tag set against the full
// catalog. All functions are pure transforms over already-fetched data.
package tags

import (
	"sort"

	"github.com/Stratton-Carroll/survey-model/internal/api"
)

// Partition splits an effective tag set into primary tags and sub-tags,
// preserving the relative order of the input within each half.
func Partition(effective []api.EffectiveTag) (primaries, subs []api.EffectiveTag) {
	for _, t := range effective {
		if t.IsPrimary() {
			primaries = append(primaries, t)
		} else {
			subs = append(subs, t)
		}
	}
	return primaries, subs
}

// ChildrenOf returns the sub-tags whose parent is the given primary tag.
func ChildrenOf(primary api.EffectiveTag, subs []api.EffectiveTag) []api.EffectiveTag {
	var children []api.EffectiveTag
	for _, s := range subs {
		if s.ParentTagID != nil && *s.ParentTagID == primary.TagID {
			children = append(children, s)
		}
	}
	return children
}

// Orphans returns the sub-tags whose parent is missing from the primary set.
// Orphans are rendered under their own labeled group, never dropped; a
// dangling parent reference is a data problem the reviewer should see.
func Orphans(subs, primaries []api.EffectiveTag) []api.EffectiveTag {
	known := make(map[api.TagID]bool, len(primaries))
	for _, p := range primaries {
		known[p.TagID] = true
	}

	var orphans []api.EffectiveTag
	for _, s := range subs {
		if s.ParentTagID == nil || !known[*s.ParentTagID] {
			orphans = append(orphans, s)
		}
	}
	return orphans
}

// Group is one primary tag with its matched children, ready to render.
type Group struct {
	Primary  api.EffectiveTag
	Children []api.EffectiveTag
}

// Tree arranges an effective tag set into primary groups plus an orphan
// list. Every input tag lands in exactly one place.
func Tree(effective []api.EffectiveTag) (groups []Group, orphans []api.EffectiveTag) {
	primaries, subs := Partition(effective)
	for _, p := range primaries {
		groups = append(groups, Group{Primary: p, Children: ChildrenOf(p, subs)})
	}
	return groups, Orphans(subs, primaries)
}

// IsManual reports whether the given tag id was manually added to the
// effective set, as opposed to assigned automatically.
func IsManual(id api.TagID, effective []api.EffectiveTag) bool {
	for _, t := range effective {
		if t.TagID == id {
			return t.IsManuallyAdded
		}
	}
	return false
}

// AvailableToAdd returns the catalog tags not already in the effective set.
func AvailableToAdd(catalog []api.Tag, effective []api.EffectiveTag) []api.Tag {
	present := make(map[api.TagID]bool, len(effective))
	for _, t := range effective {
		present[t.TagID] = true
	}

	var available []api.Tag
	for _, t := range catalog {
		if !present[t.TagID] {
			available = append(available, t)
		}
	}
	return available
}

// CategoryGroup is a run of addable primary tags under one category label.
type CategoryGroup struct {
	Category string
	Tags     []api.Tag
}

// GroupByCategory arranges addable primary tags by category for the add
// menu. Categories appear in order of first occurrence; order within a
// category follows the catalog.
func GroupByCategory(available []api.Tag) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, t := range available {
		if !t.IsPrimary() {
			continue
		}
		i, ok := index[t.TagCategory]
		if !ok {
			i = len(groups)
			index[t.TagCategory] = i
			groups = append(groups, CategoryGroup{Category: t.TagCategory})
		}
		groups[i].Tags = append(groups[i].Tags, t)
	}
	return groups
}

// SubTagsFor returns the addable sub-tags scoped to one expanded primary.
func SubTagsFor(available []api.Tag, parent api.TagID) []api.Tag {
	var subs []api.Tag
	for _, t := range available {
		if !t.IsPrimary() && t.ParentTagID != nil && *t.ParentTagID == parent {
			subs = append(subs, t)
		}
	}
	return subs
}

// SortByResponseCount orders catalog tags busiest-first, with name as the
// tiebreak, matching the server's default tag-list ordering.
func SortByResponseCount(catalog []api.Tag) {
	sort.SliceStable(catalog, func(i, j int) bool {
		if catalog[i].ResponseCount != catalog[j].ResponseCount {
			return catalog[i].ResponseCount > catalog[j].ResponseCount
		}
		return catalog[i].TagName < catalog[j].TagName
	})
}
