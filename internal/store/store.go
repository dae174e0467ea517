// Package store archives copies of transformed messages.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MessageStore defines the interface for archiving raw messages.
type MessageStore interface {
	// Add archives a serialized message sent by the given sender.
	Add(sender string, raw []byte) error

	// List retrieves all archived messages for a sender.
	List(sender string) ([][]byte, error)

	// Close releases any resources used by the store.
	Close() error
}

// InMemoryStore implements MessageStore using in-memory storage.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[string][][]byte // key: sender
}

// NewInMemoryStore creates a new in-memory message store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messages: make(map[string][][]byte),
	}
}

// Add implements MessageStore.Add.
func (s *InMemoryStore) Add(sender string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := make([]byte, len(raw))
	copy(msg, raw)
	s.messages[sender] = append(s.messages[sender], msg)
	return nil
}

// List implements MessageStore.List.
func (s *InMemoryStore) List(sender string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.messages[sender], nil
}

// Close implements MessageStore.Close.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make(map[string][][]byte)
	return nil
}

// DirStore implements MessageStore by writing .eml files into a
// per-sender directory.
type DirStore struct {
	dir string
	mu  sync.Mutex
	seq int
}

// NewDirStore creates a directory-backed message store.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DirStore{dir: dir}, nil
}

// Add implements MessageStore.Add.
func (s *DirStore) Add(sender string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := filepath.Join(s.dir, sanitize(sender))
	if err := os.MkdirAll(sub, 0755); err != nil {
		return err
	}
	s.seq++
	name := fmt.Sprintf("%d-%d.eml", time.Now().Unix(), s.seq)
	return os.WriteFile(filepath.Join(sub, name), raw, 0644)
}

// List implements MessageStore.List.
func (s *DirStore) List(sender string) ([][]byte, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, sanitize(sender)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msgs [][]byte
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.dir, sanitize(sender), e.Name()))
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, b)
	}
	return msgs, nil
}

// Close implements MessageStore.Close.
func (s *DirStore) Close() error {
	return nil
}

// sanitize maps a sender address to a safe directory name.
func sanitize(sender string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '@', r == '.', r == '-', r == '_', r == '+':
			return r
		}
		return '_'
	}, sender)
}
