package api

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TagID tolerates both JSON numbers and strings. The responses-by-question
// endpoint builds its tag lists with GROUP_CONCAT and emits ids as strings,
// while every other endpoint emits real integers.
type TagID int

func (id *TagID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*id = TagID(n)
	return nil
}

func (id TagID) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(id))
}

// Tag is a catalog entry. Level and ParentTagID are only populated by the
// /api/tags/available endpoint; the plain tag list predates the hierarchy.
type Tag struct {
	TagID          TagID  `json:"TagID"`
	TagKey         string `json:"TagKey,omitempty"`
	TagName        string `json:"TagName"`
	TagCategory    string `json:"TagCategory"`
	TagPriority    int    `json:"TagPriority,omitempty"`
	TagDescription string `json:"TagDescription,omitempty"`
	ResponseCount  int    `json:"ResponseCount"`
	Level          int    `json:"level,omitempty"`
	ParentTagID    *TagID `json:"parentTagId,omitempty"`
}

// IsPrimary reports whether the tag sits at the top of the hierarchy.
// Tags from endpoints that never send level default to primary.
func (t Tag) IsPrimary() bool {
	return t.Level <= 1
}

// EffectiveTag is a tag currently applied to one response, after manual
// overrides have been folded into the original automatic assignment.
type EffectiveTag struct {
	Tag
	IsManuallyAdded bool `json:"is_manually_added"`
}

// ResponseTag is the slim tag shape embedded in response cards.
type ResponseTag struct {
	TagID       TagID  `json:"TagID"`
	TagName     string `json:"TagName"`
	TagCategory string `json:"TagCategory"`
}

type Response struct {
	ResponseID           int           `json:"ResponseID"`
	SurveyResponseNumber int           `json:"SurveyResponseNumber"`
	ResponseText         string        `json:"ResponseText"`
	QuestionShort        string        `json:"QuestionShort,omitempty"`
	QuestionText         string        `json:"QuestionText,omitempty"`
	RoleName             string        `json:"RoleName"`
	PrimaryCounty        string        `json:"PrimaryCounty"`
	State                string        `json:"State"`
	Region               string        `json:"Region,omitempty"`
	OrganizationName     string        `json:"OrganizationName"`
	OrganizationType     string        `json:"OrganizationType"`
	Tags                 []ResponseTag `json:"Tags"`
}

type Question struct {
	QuestionID    int        `json:"QuestionID"`
	QuestionText  string     `json:"QuestionText"`
	QuestionShort string     `json:"QuestionShort"`
	Responses     []Response `json:"responses"`
}

// TagDistribution is one row of a per-question tag breakdown.
type TagDistribution struct {
	TagID       TagID  `json:"TagID"`
	TagName     string `json:"TagName"`
	TagCategory string `json:"TagCategory"`
	TagCount    int    `json:"TagCount"`
}

type Overview struct {
	TotalResponses    int     `json:"total_responses"`
	UniqueRespondents int     `json:"unique_respondents"`
	AvgResponseRate   float64 `json:"avg_response_rate"`
	AvgWordCount      float64 `json:"avg_word_count"`
	AvgResponseLength float64 `json:"avg_response_length"`
}

type RoleCategoryCount struct {
	RoleCategory  string `json:"RoleCategory"`
	ResponseCount int    `json:"response_count"`
}

type TagCategoryCount struct {
	TagCategory string `json:"TagCategory"`
	Count       int    `json:"count"`
}

type TagResponseCount struct {
	TagName       string `json:"TagName"`
	ResponseCount int    `json:"ResponseCount"`
}

type RoleResponseCount struct {
	RoleCategory  string `json:"RoleCategory"`
	ResponseCount int    `json:"ResponseCount"`
}

type ResponseQuality struct {
	HighEngagementCount    int     `json:"high_engagement_count"`
	DetailedResponsesCount int     `json:"detailed_responses_count"`
	TextQuestionRatio      float64 `json:"text_question_ratio"`
}

// Analytics is the full aggregate bundle. role_type_analysis replaced
// role_category_analysis in later server builds; the client accepts either.
type Analytics struct {
	Overview             Overview                       `json:"overview"`
	RoleCategoryAnalysis []RoleCategoryCount            `json:"role_category_analysis"`
	RoleTypeAnalysis     []RoleCategoryCount            `json:"role_type_analysis"`
	TagCategoryAnalysis  []TagCategoryCount             `json:"tag_category_analysis"`
	PriorityAreas        []Tag                          `json:"priority_areas"`
	FilteredTagAnalysis  map[string][]TagResponseCount  `json:"filtered_tag_analysis"`
	TagRoleDistribution  map[string][]RoleResponseCount `json:"tag_role_distribution"`
	ResponseQuality      ResponseQuality                `json:"response_quality"`
}

// RoleCounts returns whichever role breakdown the server sent.
func (a Analytics) RoleCounts() []RoleCategoryCount {
	if len(a.RoleTypeAnalysis) > 0 {
		return a.RoleTypeAnalysis
	}
	return a.RoleCategoryAnalysis
}

type OverrideStats struct {
	TotalOverrides    int `json:"total_overrides"`
	Additions         int `json:"additions"`
	Removals          int `json:"removals"`
	ResponsesModified int `json:"responses_modified"`
}

// HighlightSpan is a half-open [Start, End) character range into one
// response's text, annotated with the keyword match that produced it.
type HighlightSpan struct {
	Start       int     `json:"start"`
	End         int     `json:"end"`
	TagName     string  `json:"tag_name"`
	TagCategory string  `json:"tag_category"`
	Type        string  `json:"type"`
	Score       float64 `json:"score"`
}

type highlightEnvelope struct {
	Highlights []HighlightSpan `json:"highlights"`
}

// Mutation actions accepted by the override endpoint.
const (
	ActionAdd    = "ADD"
	ActionRemove = "REMOVE"
)

// TagMutation is the body of a manual override command.
type TagMutation struct {
	TagID     TagID  `json:"tag_id"`
	Action    string `json:"action"`
	AppliedBy string `json:"applied_by"`
	Notes     string `json:"notes"`
}
