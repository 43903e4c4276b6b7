// Package highlight merges response text with keyword spans into a flat
// sequence of renderable segments.
package highlight

import (
	"sort"

	"github.com/Stratton-Carroll/survey-model/internal/api"
)

// Segment is one run of response text, either plain or carrying the
// metadata of the highlight span that claimed it.
type Segment struct {
	Text        string
	Highlighted bool
	TagName     string
	TagCategory string
	Type        string
	Score       float64
}

// SegmentText interleaves plain text with highlighted spans. Spans are
// walked in Start order; a span that begins before the previous highlight
// ended is discarded whole (first claimed wins, no partial rendering), its
// characters folding into the surrounding segments. Concatenating the
// segment texts always reproduces the input exactly.
//
// Offsets are rune offsets. Out-of-range or inverted spans are clamped
// rather than trusted; the server computes offsets against text the client
// may have received through a different encoding path.
func SegmentText(text string, spans []api.HighlightSpan) []Segment {
	runes := []rune(text)
	if len(spans) == 0 {
		return []Segment{{Text: text}}
	}

	ordered := make([]api.HighlightSpan, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var segments []Segment
	lastEnd := 0
	for _, span := range ordered {
		start := clamp(span.Start, 0, len(runes))
		end := clamp(span.End, start, len(runes))

		if start < lastEnd {
			// Overlaps a span already emitted; drop it whole.
			continue
		}
		if start > lastEnd {
			segments = append(segments, Segment{Text: string(runes[lastEnd:start])})
		}
		segments = append(segments, Segment{
			Text:        string(runes[start:end]),
			Highlighted: true,
			TagName:     span.TagName,
			TagCategory: span.TagCategory,
			Type:        span.Type,
			Score:       span.Score,
		})
		lastEnd = end
	}

	if lastEnd < len(runes) {
		segments = append(segments, Segment{Text: string(runes[lastEnd:])})
	}
	if len(segments) == 0 {
		segments = append(segments, Segment{Text: text})
	}
	return segments
}

// LegendItem is one legend row: a tag plus every span type seen for it.
type LegendItem struct {
	TagName     string
	TagCategory string
	Types       []string
}

// LegendItems collapses spans into one entry per (tag, category) pair, in
// order of first appearance. Types within an entry are also deduplicated
// in first-seen order.
func LegendItems(spans []api.HighlightSpan) []LegendItem {
	type legendKey struct {
		name, category string
	}

	index := make(map[legendKey]int)
	var items []LegendItem
	for _, span := range spans {
		k := legendKey{span.TagName, span.TagCategory}
		i, ok := index[k]
		if !ok {
			i = len(items)
			index[k] = i
			items = append(items, LegendItem{TagName: span.TagName, TagCategory: span.TagCategory})
		}
		if !containsType(items[i].Types, span.Type) {
			items[i].Types = append(items[i].Types, span.Type)
		}
	}
	return items
}

func containsType(types []string, t string) bool {
	for _, existing := range types {
		if existing == t {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
