package main

import (
	"testing"
	"time"
)

func TestParseBirthday(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2020-11-02", "2020-11-02", false},
		{"March 5 2019", "2019-03-05", false},
		{"complete gibberish with no date", "", true},
	}

	for _, tt := range tests {
		got, err := parseBirthday(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseBirthday(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseBirthday(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseBirthday(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAgeFromBirthday(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		birthday string
		want     int
	}{
		{"2020-11-02", 5},
		{"2020-09-01", 6},
		{"2030-01-01", -1},
		{"not-a-date", -1},
	}

	for _, tt := range tests {
		if got := ageFromBirthday(tt.birthday, now); got != tt.want {
			t.Errorf("ageFromBirthday(%q) = %d, want %d", tt.birthday, got, tt.want)
		}
	}
}
