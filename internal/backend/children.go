package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/storynest/storysync/internal/model"
)

// CreateChild creates a child profile for userID. Server-generated fields
// (id, created_at, updated_at) on the input are ignored; the returned record
// carries the cloud-assigned values.
func (c *Client) CreateChild(ctx context.Context, userID string, in model.ChildProfile) (*model.ChildProfile, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"user_id":   userID,
		"name":      in.Name,
		"interests": in.Interests,
	}
	if in.Birthday != nil {
		payload["birthday"] = *in.Birthday
	}
	if in.Age != nil {
		payload["age"] = *in.Age
	}
	if in.LifeNotes != nil {
		payload["life_notes"] = *in.LifeNotes
	}

	var rows []model.ChildProfile
	if err := c.do(ctx, http.MethodPost, tableChildren, nil, "return=representation", payload, &rows); err != nil {
		return nil, err
	}
	return first(rows, tableChildren)
}

// ListChildren returns all child profiles for userID, oldest first.
func (c *Client) ListChildren(ctx context.Context, userID string) ([]model.ChildProfile, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("order", "created_at.asc")

	var rows []model.ChildProfile
	if err := c.do(ctx, http.MethodGet, tableChildren, q, "", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateChild patches the given columns on one child profile and returns the
// updated record.
func (c *Client) UpdateChild(ctx context.Context, id string, patch map[string]any) (*model.ChildProfile, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("id", eq(id))

	var rows []model.ChildProfile
	if err := c.do(ctx, http.MethodPatch, tableChildren, q, "return=representation", patch, &rows); err != nil {
		return nil, err
	}
	return first(rows, tableChildren)
}
