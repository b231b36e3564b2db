package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// fileRecord is the on-disk shape of one exchange. It keeps only the
// two fields older deployments wrote, so existing memory.json files
// load unchanged.
type fileRecord struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

type fileDocument struct {
	LongTermMemory []fileRecord `json:"long_term_memory"`
}

// FileStore keeps the exchange log in a single JSON file, rewritten in
// full on every mutation. All access is serialized behind a mutex so
// concurrent requests cannot interleave read-modify-rewrite cycles.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	cap     int
	minLen  int
	records []Record
}

// NewFileStore loads the log from disk. A missing file starts an empty
// log; a corrupt file is logged and reset to empty. Neither is fatal.
func NewFileStore(opts Options) (*FileStore, error) {
	opts.applyDefaults()
	s := &FileStore{
		path:   opts.Path,
		cap:    opts.Cap,
		minLen: opts.MinUserLen,
	}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("initialize memory file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read memory file: %w", err)
	default:
		var doc fileDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Printf("memory file corrupt, starting empty: %v", err)
			break
		}
		for _, r := range doc.LongTermMemory {
			s.records = append(s.records, Record{User: r.User, AI: r.AI})
		}
	}

	return s, nil
}

func (s *FileStore) Record(_ context.Context, userMsg, aiMsg string) error {
	if utf8.RuneCountInString(userMsg) <= s.minLen {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, Record{
		ID:        uuid.NewString(),
		User:      userMsg,
		AI:        aiMsg,
		CreatedAt: time.Now().UTC(),
	})
	if len(s.records) > s.cap {
		s.records = s.records[len(s.records)-s.cap:]
	}
	return s.persistLocked()
}

func (s *FileStore) Recent(_ context.Context, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil, nil
	}
	if n <= 0 || n > len(s.records) {
		n = len(s.records)
	}
	out := make([]Record, n)
	copy(out, s.records[len(s.records)-n:])
	return out, nil
}

func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *FileStore) Close() error { return nil }

// persistLocked rewrites the whole log. Callers must hold the write
// lock (or be the only reference, during construction).
func (s *FileStore) persistLocked() error {
	doc := fileDocument{LongTermMemory: make([]fileRecord, 0, len(s.records))}
	for _, r := range s.records {
		doc.LongTermMemory = append(doc.LongTermMemory, fileRecord{User: r.User, AI: r.AI})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory file: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated log behind.
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
