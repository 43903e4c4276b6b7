package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client is a thin wrapper over the survey-analysis REST backend. It holds
// no state beyond the base URL; every derived view is recomputed server-side
// and re-fetched rather than patched locally.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Tags returns the active tag catalog with response counts.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	err := c.getJSON(ctx, "/api/tags", &tags)
	return tags, err
}

// AvailableTags returns the full catalog for editing, including hierarchy
// fields (level, parentTagId) that the plain tag list omits.
func (c *Client) AvailableTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	err := c.getJSON(ctx, "/api/tags/available", &tags)
	return tags, err
}

// ResponsesByQuestion returns every response grouped under its question.
func (c *Client) ResponsesByQuestion(ctx context.Context) ([]Question, error) {
	var questions []Question
	err := c.getJSON(ctx, "/api/responses", &questions)
	return questions, err
}

// TagResponses returns the responses carrying the given tag.
func (c *Client) TagResponses(ctx context.Context, tagID TagID) ([]Response, error) {
	var responses []Response
	err := c.getJSON(ctx, fmt.Sprintf("/api/tags/%d/responses", tagID), &responses)
	return responses, err
}

// QuestionTagDistribution returns the tag breakdown for one question.
func (c *Client) QuestionTagDistribution(ctx context.Context, questionID int) ([]TagDistribution, error) {
	var dist []TagDistribution
	err := c.getJSON(ctx, fmt.Sprintf("/api/questions/%d/tag-distribution", questionID), &dist)
	return dist, err
}

// Analytics returns the server-computed aggregate bundle.
func (c *Client) Analytics(ctx context.Context) (Analytics, error) {
	var bundle Analytics
	err := c.getJSON(ctx, "/api/analytics", &bundle)
	return bundle, err
}

// OverrideStats returns counters for manual overrides across all responses.
func (c *Client) OverrideStats(ctx context.Context) (OverrideStats, error) {
	var stats OverrideStats
	err := c.getJSON(ctx, "/api/overrides/stats", &stats)
	return stats, err
}

// EffectiveTags returns a response's current tag set after manual overrides.
func (c *Client) EffectiveTags(ctx context.Context, responseID int) ([]EffectiveTag, error) {
	var tags []EffectiveTag
	err := c.getJSON(ctx, fmt.Sprintf("/api/responses/%d/effective-tags", responseID), &tags)
	return tags, err
}

// Highlights returns the keyword spans for one response's text.
func (c *Client) Highlights(ctx context.Context, responseID int) ([]HighlightSpan, error) {
	var envelope highlightEnvelope
	err := c.getJSON(ctx, fmt.Sprintf("/api/response/%d/highlight", responseID), &envelope)
	return envelope.Highlights, err
}

// MutateTags issues a manual ADD or REMOVE override for one response. The
// server recomputes the effective tag set; callers refetch rather than
// patching their copy. Re-issuing an already-applied mutation is safe.
func (c *Client) MutateTags(ctx context.Context, responseID int, mutation TagMutation) error {
	body, err := json.Marshal(mutation)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/response/%d/tags", c.baseURL, responseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mutate tags for response %d: %w", responseID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mutate tags for response %d: server returned %s", responseID, resp.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s: server returned %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}
