package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/storynest/storysync/internal/model"
)

// CreateVoice creates a voice profile for userID. Only structured metadata
// crosses the wire; audio bytes are uploaded elsewhere.
func (c *Client) CreateVoice(ctx context.Context, userID string, in model.VoiceProfile) (*model.VoiceProfile, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"user_id":                    userID,
		"voice_type":                 in.VoiceType,
		"script_paragraphs_recorded": in.ScriptParagraphsRecorded,
		"is_complete":                in.IsComplete,
	}
	if in.ChildID != nil {
		payload["child_id"] = *in.ChildID
	}
	if in.VoiceName != nil {
		payload["voice_name"] = *in.VoiceName
	}
	if in.RecordingURL != "" {
		payload["recording_url"] = in.RecordingURL
	}
	if len(in.RecordingLabels) > 0 {
		payload["recording_labels"] = in.RecordingLabels
	}
	if in.DurationSeconds > 0 {
		payload["duration_seconds"] = in.DurationSeconds
	}

	var rows []model.VoiceProfile
	if err := c.do(ctx, http.MethodPost, tableVoices, nil, "return=representation", payload, &rows); err != nil {
		return nil, err
	}
	return first(rows, tableVoices)
}

// UpdateVoice patches the given columns on one voice profile and returns
// the updated record.
func (c *Client) UpdateVoice(ctx context.Context, id string, patch map[string]any) (*model.VoiceProfile, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("id", eq(id))

	var rows []model.VoiceProfile
	if err := c.do(ctx, http.MethodPatch, tableVoices, q, "return=representation", patch, &rows); err != nil {
		return nil, err
	}
	return first(rows, tableVoices)
}

// ListVoices returns all voice profiles for userID, oldest first.
func (c *Client) ListVoices(ctx context.Context, userID string) ([]model.VoiceProfile, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("order", "created_at.asc")

	var rows []model.VoiceProfile
	if err := c.do(ctx, http.MethodGet, tableVoices, q, "", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
