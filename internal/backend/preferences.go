package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/storynest/storysync/internal/model"
)

// GetPreferences returns the preference record for userID, or (nil, nil)
// when none exists yet.
func (c *Client) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("limit", "1")

	var rows []model.UserPreferences
	if err := c.do(ctx, http.MethodGet, tablePreferences, q, "", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpsertPreferences creates or replaces the preference record keyed by
// user_id and returns the stored version.
func (c *Client) UpsertPreferences(ctx context.Context, prefs model.UserPreferences) (*model.UserPreferences, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("on_conflict", "user_id")

	var rows []model.UserPreferences
	prefer := "resolution=merge-duplicates,return=representation"
	if err := c.do(ctx, http.MethodPost, tablePreferences, q, prefer, prefs, &rows); err != nil {
		return nil, err
	}
	return first(rows, tablePreferences)
}

// TouchLastSync mirrors the device's last successful sync time to the cloud
// preference record. Call sites treat failures as best-effort.
func (c *Client) TouchLastSync(ctx context.Context, userID string, at time.Time) error {
	if err := c.guard(); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("user_id", eq(userID))

	patch := map[string]any{"last_sync_at": at.UTC().Format(time.RFC3339)}
	return c.do(ctx, http.MethodPatch, tablePreferences, q, "", patch, nil)
}
