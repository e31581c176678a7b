package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/storynest/storysync/internal/model"
)

// CreateStory creates a story for userID and returns the cloud record.
func (c *Client) CreateStory(ctx context.Context, userID string, in model.Story) (*model.Story, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"user_id":     userID,
		"title":       in.Title,
		"is_favorite": in.IsFavorite,
	}
	if in.ChildID != nil {
		payload["child_id"] = *in.ChildID
	}
	if in.Content != nil {
		payload["content"] = *in.Content
	}
	if in.ImageURL != "" {
		payload["image_url"] = in.ImageURL
	}
	if in.Theme != "" {
		payload["theme"] = in.Theme
	}

	var rows []model.Story
	if err := c.do(ctx, http.MethodPost, tableStories, nil, "return=representation", payload, &rows); err != nil {
		return nil, err
	}
	return first(rows, tableStories)
}

// ListStories returns the most recent stories for userID, newest first,
// capped at limit (MaxCachedStories when limit <= 0).
func (c *Client) ListStories(ctx context.Context, userID string, limit int) ([]model.Story, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = model.MaxCachedStories
	}

	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))

	var rows []model.Story
	if err := c.do(ctx, http.MethodGet, tableStories, q, "", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStory patches the given columns on one story.
func (c *Client) UpdateStory(ctx context.Context, id string, patch map[string]any) (*model.Story, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("id", eq(id))

	var rows []model.Story
	if err := c.do(ctx, http.MethodPatch, tableStories, q, "return=representation", patch, &rows); err != nil {
		return nil, err
	}
	return first(rows, tableStories)
}
