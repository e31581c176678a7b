package daemon

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/model"
)

// Envelope is the wire shape of one inbox drop: a record kind plus the raw
// record body. Drops come from other processes on the device (the app, test
// fixtures) that have no direct cache handle.
type Envelope struct {
	Kind   string          `json:"kind"`
	Record json.RawMessage `json:"record"`
}

// Drop kinds.
const (
	KindChild = "child"
	KindStory = "story"
	KindVoice = "voice"
)

// ingestFile reads one inbox drop, writes it into the local cache, and
// removes the file. Ingested records keep (or are assigned) local ids, so
// they surface as migration candidates on the next detection pass.
func (d *Daemon) ingestFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // already consumed
		}
		return fmt.Errorf("failed to read drop: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("malformed envelope: %w", err)
	}

	switch env.Kind {
	case KindChild:
		err = d.ingestChild(env.Record)
	case KindStory:
		err = d.ingestStory(env.Record)
	case KindVoice:
		err = d.ingestVoice(env.Record)
	default:
		return fmt.Errorf("unknown drop kind %q", env.Kind)
	}
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		d.config.Logger.Printf("Warning: failed to remove consumed drop %s: %v", path, err)
	}
	return nil
}

func (d *Daemon) ingestChild(raw json.RawMessage) error {
	var child model.ChildProfile
	if err := json.Unmarshal(raw, &child); err != nil {
		return fmt.Errorf("malformed child record: %w", err)
	}
	if child.ID == "" {
		child.ID = model.NewLocalID()
	}
	return d.writeJSON(cache.KeyPendingChild, child)
}

func (d *Daemon) ingestStory(raw json.RawMessage) error {
	var story model.Story
	if err := json.Unmarshal(raw, &story); err != nil {
		return fmt.Errorf("malformed story record: %w", err)
	}
	if story.ID == "" {
		story.ID = model.NewLocalID()
	}

	var stories []model.Story
	d.readJSON(cache.KeyStories, &stories)

	// Newest first, matching the sync engine's cloud ordering.
	stories = append([]model.Story{story}, stories...)
	if len(stories) > model.MaxCachedStories {
		stories = stories[:model.MaxCachedStories]
	}
	return d.writeJSON(cache.KeyStories, stories)
}

func (d *Daemon) ingestVoice(raw json.RawMessage) error {
	var voice model.VoiceProfile
	if err := json.Unmarshal(raw, &voice); err != nil {
		return fmt.Errorf("malformed voice record: %w", err)
	}
	if voice.ID == "" {
		voice.ID = model.NewLocalID()
	}

	var voices []model.VoiceProfile
	d.readJSON(cache.KeyVoices, &voices)
	voices = append(voices, voice)
	return d.writeJSON(cache.KeyVoices, voices)
}

func (d *Daemon) readJSON(key string, out any) {
	value, ok, err := d.store.Get(d.ctx, key)
	if err != nil || !ok {
		return
	}
	if err := json.Unmarshal(value, out); err != nil {
		d.config.Logger.Printf("Warning: malformed cache entry %s: %v", key, err)
	}
}

func (d *Daemon) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := d.store.Set(d.ctx, key, data); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}
