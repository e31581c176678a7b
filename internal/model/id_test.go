package model

import (
	"strings"
	"testing"
)

func TestIsLocalID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", true},
		{"local_abc", true},
		{"tmp_1", true},
		{"local_", true},
		{"uuid-1234", false},
		{"srv_99", false},
		{"aLocal_x", false},
	}

	for _, tt := range tests {
		if got := IsLocalID(tt.id); got != tt.want {
			t.Errorf("IsLocalID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestOriginOf(t *testing.T) {
	if OriginOf("local_abc") != OriginLocal {
		t.Errorf("expected local origin for local_abc")
	}
	if OriginOf("") != OriginLocal {
		t.Errorf("expected local origin for empty id")
	}
	if OriginOf("d2c1f0aa") != OriginCloud {
		t.Errorf("expected cloud origin for opaque id")
	}
	if OriginLocal.String() != "local" || OriginCloud.String() != "cloud" {
		t.Errorf("unexpected origin strings: %s, %s", OriginLocal, OriginCloud)
	}
}

func TestNewLocalID(t *testing.T) {
	id := NewLocalID()
	if !strings.HasPrefix(id, "local_") {
		t.Errorf("expected local_ prefix, got %q", id)
	}
	if !IsLocalID(id) {
		t.Errorf("minted id %q must classify as local", id)
	}
	if id == NewLocalID() {
		t.Errorf("expected unique ids")
	}
}

func TestReconcile(t *testing.T) {
	local := &Story{ID: "local_42", Title: "Moon Picnic"}
	cloud := &Story{ID: "srv_99", Title: "Moon Picnic"}

	if got := Reconcile(local, cloud); got != cloud {
		t.Errorf("cloud record must win when present")
	}
	if got := Reconcile(local, nil); got != local {
		t.Errorf("local record must survive when no cloud counterpart exists")
	}
	if got := Reconcile[Story](nil, nil); got != nil {
		t.Errorf("expected nil when both sides are nil")
	}
}

func TestVoiceProfileComplete(t *testing.T) {
	v := &VoiceProfile{ScriptParagraphsRecorded: 5}

	if !v.Complete(5) {
		t.Errorf("5/5 paragraphs should be complete")
	}
	if v.Complete(6) {
		t.Errorf("5/6 paragraphs should not be complete")
	}
	if v.Complete(0) {
		t.Errorf("zero-paragraph script can never be complete")
	}
}
