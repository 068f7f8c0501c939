package object

import (
	"strings"
	"testing"
)

func TestNewKeyLayout(t *testing.T) {
	key, err := NewKey("session-1", "roadmap.json")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	parts := strings.Split(key, "/")
	if len(parts) != 2 {
		t.Fatalf("expected namespace/file key, got %q", key)
	}
	if len(parts[0]) != 64 {
		t.Fatalf("expected hashed namespace, got %q", parts[0])
	}
	if !strings.HasSuffix(parts[1], "_roadmap.json") {
		t.Fatalf("expected file name suffix, got %q", parts[1])
	}

	other, _ := NewKey("session-1", "roadmap.json")
	if other == key {
		t.Fatalf("expected unique keys")
	}
}

func TestNewKeyRejectsTraversal(t *testing.T) {
	if _, err := NewKey("s", "../etc/passwd"); err == nil {
		t.Fatalf("expected error for traversal")
	}
}
