// Package knowledge records user statements flagged with the trigger
// keyword. It is a write-only sink: facts are logged for later
// inspection but are not consulted when composing replies.
package knowledge

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const triggerKeyword = "remember"

type document struct {
	Facts []string `json:"facts"`
}

// FileStore keeps learned facts in a single JSON file, rewritten in
// full on every append. Unbounded, no deduplication.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	facts []string
}

// NewFileStore loads the fact log from disk. A missing file starts an
// empty log; a corrupt file is logged and reset to empty.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("initialize knowledge file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read knowledge file: %w", err)
	default:
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Printf("knowledge file corrupt, starting empty: %v", err)
			break
		}
		s.facts = doc.Facts
	}

	return s, nil
}

// MaybeLearn appends the raw message when it contains the trigger
// keyword (case-insensitive). Returns whether the message was learned.
func (s *FileStore) MaybeLearn(userMsg string) (bool, error) {
	if !strings.Contains(strings.ToLower(userMsg), triggerKeyword) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.facts = append(s.facts, userMsg)
	if err := s.persistLocked(); err != nil {
		// Keep the in-memory fact; the next successful append rewrites
		// the whole file anyway.
		return true, err
	}
	return true, nil
}

// Facts returns a copy of all learned facts in insertion order.
func (s *FileStore) Facts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.facts))
	copy(out, s.facts)
	return out
}

func (s *FileStore) persistLocked() error {
	doc := document{Facts: s.facts}
	if doc.Facts == nil {
		doc.Facts = []string{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode knowledge file: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
