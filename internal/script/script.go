// Package script holds the voice-recording script read by parents when they
// record a narrator voice. A voice profile is complete once its recorded
// paragraph counter reaches the script's total.
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Paragraph is one recordable segment of the script. Key matches the
// recording_labels map on a voice profile.
type Paragraph struct {
	Key  string `yaml:"key"`
	Text string `yaml:"text"`
}

// Script is an ordered list of recordable paragraphs.
type Script struct {
	Name       string      `yaml:"name"`
	Paragraphs []Paragraph `yaml:"paragraphs"`
}

// Total returns the number of paragraphs a complete recording must cover.
func (s *Script) Total() int {
	return len(s.Paragraphs)
}

// Keys returns the ordered paragraph keys.
func (s *Script) Keys() []string {
	keys := make([]string, 0, len(s.Paragraphs))
	for _, p := range s.Paragraphs {
		keys = append(keys, p.Key)
	}
	return keys
}

// Validate checks that every paragraph has a unique, non-empty key.
func (s *Script) Validate() error {
	if len(s.Paragraphs) == 0 {
		return fmt.Errorf("script has no paragraphs")
	}
	seen := make(map[string]bool, len(s.Paragraphs))
	for i, p := range s.Paragraphs {
		if p.Key == "" {
			return fmt.Errorf("paragraph %d has no key", i)
		}
		if seen[p.Key] {
			return fmt.Errorf("duplicate paragraph key %q", p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

// Load reads a script from a YAML file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file %s: %w", path, err)
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script file %s: %w", path, err)
	}
	return &s, nil
}

// Default returns the built-in recording script shipped with the app.
func Default() *Script {
	return &Script{
		Name: "bedtime-v1",
		Paragraphs: []Paragraph{
			{Key: "greeting", Text: "Hello, little dreamer. It's time for a story."},
			{Key: "once_upon", Text: "Once upon a time, in a land not so far away..."},
			{Key: "adventure", Text: "Every adventure begins with a single brave step."},
			{Key: "wonder", Text: "The stars looked down and twinkled with wonder."},
			{Key: "goodnight", Text: "And now, close your eyes. Goodnight, sleep tight."},
		},
	}
}
