package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/storynest/storysync/internal/model"
)

func TestDefaultScript(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("default script invalid: %v", err)
	}
	if s.Total() != 5 {
		t.Errorf("expected 5 paragraphs, got %d", s.Total())
	}
	if len(s.Keys()) != s.Total() {
		t.Errorf("Keys length mismatch")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	contents := `
name: custom
paragraphs:
  - key: intro
    text: Hello there.
  - key: outro
    text: The end.
`
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Name != "custom" || s.Total() != 2 {
		t.Errorf("unexpected script: %+v", s)
	}
}

func TestLoadRejectsDuplicateKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	contents := `
paragraphs:
  - key: a
    text: one
  - key: a
    text: two
`
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("expected duplicate-key error")
	}
}

func TestVoiceCompletionAgainstScript(t *testing.T) {
	s := Default()

	v := &model.VoiceProfile{ScriptParagraphsRecorded: s.Total()}
	if !v.Complete(s.Total()) {
		t.Errorf("full recording should be complete")
	}

	v.ScriptParagraphsRecorded = s.Total() - 1
	if v.Complete(s.Total()) {
		t.Errorf("partial recording should not be complete")
	}
}
