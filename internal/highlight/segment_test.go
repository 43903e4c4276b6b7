package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stratton-Carroll/survey-model/internal/api"
)

func joinSegments(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestSegmentTextEmptySpans(t *testing.T) {
	text := "Nurses are leaving the county hospital."
	segments := SegmentText(text, nil)

	require.Len(t, segments, 1)
	assert.Equal(t, text, segments[0].Text)
	assert.False(t, segments[0].Highlighted)
}

func TestSegmentTextSingleSpan(t *testing.T) {
	text := "Severe burnout among rural staff"
	spans := []api.HighlightSpan{
		{Start: 7, End: 14, TagName: "Burnout", TagCategory: "Workforce", Type: "primary", Score: 0.92},
	}

	segments := SegmentText(text, spans)

	require.Len(t, segments, 3)
	assert.Equal(t, "Severe ", segments[0].Text)
	assert.Equal(t, "burnout", segments[1].Text)
	assert.True(t, segments[1].Highlighted)
	assert.Equal(t, "Burnout", segments[1].TagName)
	assert.Equal(t, "primary", segments[1].Type)
	assert.Equal(t, " among rural staff", segments[2].Text)
	assert.Equal(t, text, joinSegments(segments))
}

func TestSegmentTextRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		spans []api.HighlightSpan
	}{
		{
			name: "adjacent spans",
			text: "0123456789",
			spans: []api.HighlightSpan{
				{Start: 0, End: 3, TagName: "A"},
				{Start: 3, End: 6, TagName: "B"},
			},
		},
		{
			name: "unsorted input",
			text: "workforce and funding shortfalls",
			spans: []api.HighlightSpan{
				{Start: 14, End: 21, TagName: "Funding"},
				{Start: 0, End: 9, TagName: "Workforce"},
			},
		},
		{
			name: "span covering whole text",
			text: "all of it",
			spans: []api.HighlightSpan{
				{Start: 0, End: 9, TagName: "All"},
			},
		},
		{
			name: "span past end of text",
			text: "short",
			spans: []api.HighlightSpan{
				{Start: 2, End: 50, TagName: "Over"},
			},
		},
		{
			name: "multibyte text",
			text: "Señora Muñoz reported staffing gaps",
			spans: []api.HighlightSpan{
				{Start: 22, End: 30, TagName: "Staffing"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			segments := SegmentText(tc.text, tc.spans)
			assert.Equal(t, tc.text, joinSegments(segments))
		})
	}
}

func TestSegmentTextOverlapFirstClaimedWins(t *testing.T) {
	text := "0123456789"
	spans := []api.HighlightSpan{
		{Start: 0, End: 5, TagName: "A"},
		{Start: 3, End: 8, TagName: "B"},
	}

	segments := SegmentText(text, spans)

	// B is discarded whole, not clipped: only [0,5) is highlighted and the
	// rest of the text renders plain.
	require.Len(t, segments, 2)
	assert.True(t, segments[0].Highlighted)
	assert.Equal(t, "01234", segments[0].Text)
	assert.Equal(t, "A", segments[0].TagName)
	assert.False(t, segments[1].Highlighted)
	assert.Equal(t, "56789", segments[1].Text)

	assert.Equal(t, text, joinSegments(segments))
}

func TestSegmentTextOverlapContainedSpan(t *testing.T) {
	text := "abcdefghij"
	spans := []api.HighlightSpan{
		{Start: 1, End: 8, TagName: "Outer"},
		{Start: 3, End: 5, TagName: "Inner"},
	}

	segments := SegmentText(text, spans)

	var highlighted []string
	for _, s := range segments {
		if s.Highlighted {
			highlighted = append(highlighted, s.TagName)
		}
	}
	assert.Equal(t, []string{"Outer"}, highlighted)
	assert.Equal(t, text, joinSegments(segments))
}

func TestSegmentTextInvertedSpanClamped(t *testing.T) {
	text := "hello world"
	spans := []api.HighlightSpan{
		{Start: 8, End: 2, TagName: "Bad"},
	}

	segments := SegmentText(text, spans)
	assert.Equal(t, text, joinSegments(segments))
}

func TestLegendItems(t *testing.T) {
	spans := []api.HighlightSpan{
		{TagName: "Burnout", TagCategory: "Workforce", Type: "primary"},
		{TagName: "Burnout", TagCategory: "Workforce", Type: "secondary"},
		{TagName: "Burnout", TagCategory: "Workforce", Type: "primary"},
		{TagName: "Funding", TagCategory: "Funding", Type: "context"},
	}

	items := LegendItems(spans)

	require.Len(t, items, 2)
	assert.Equal(t, "Burnout", items[0].TagName)
	assert.Equal(t, []string{"primary", "secondary"}, items[0].Types)
	assert.Equal(t, "Funding", items[1].TagName)
	assert.Equal(t, []string{"context"}, items[1].Types)
}

func TestLegendItemsEmpty(t *testing.T) {
	assert.Empty(t, LegendItems(nil))
}
