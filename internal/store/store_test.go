package store

import (
	"bytes"
	"testing"
)

func TestInMemoryStore(t *testing.T) {
	s := NewInMemoryStore()

	if err := s.Add("alice@example.com", []byte("first")); err != nil {
		t.Fatalf("failed to add message: %v", err)
	}
	if err := s.Add("alice@example.com", []byte("second")); err != nil {
		t.Fatalf("failed to add message: %v", err)
	}

	msgs, err := s.List("alice@example.com")
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !bytes.Equal(msgs[0], []byte("first")) {
		t.Errorf("expected first message, got %q", msgs[0])
	}

	msgs, err = s.List("bob@example.com")
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages for another sender, got %d", len(msgs))
	}

	if err := s.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
	msgs, _ = s.List("alice@example.com")
	if len(msgs) != 0 {
		t.Error("expected the store to be empty after close")
	}
}

func TestDirStore(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create dir store: %v", err)
	}

	if err := s.Add("alice@example.com", []byte("archived message")); err != nil {
		t.Fatalf("failed to add message: %v", err)
	}

	msgs, err := s.List("alice@example.com")
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if !bytes.Equal(msgs[0], []byte("archived message")) {
		t.Errorf("unexpected message content %q", msgs[0])
	}

	msgs, err = s.List("unknown@example.com")
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages for an unknown sender, got %d", len(msgs))
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("alice@example.com"); got != "alice@example.com" {
		t.Errorf("expected plain address unchanged, got %q", got)
	}
	if got := sanitize("../../etc/passwd"); got != ".._.._etc_passwd" {
		t.Errorf("expected separators to be replaced, got %q", got)
	}
}
