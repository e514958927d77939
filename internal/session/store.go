// Package session persists completed conversations to disk.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/szaher/finsight/internal/engine"
)

// Record is one persisted conversation.
type Record struct {
	ID         string          `json:"id"`
	Query      string          `json:"query"`
	Answer     string          `json:"answer"`
	Terminal   engine.Terminal `json:"terminal"`
	Transcript []engine.Entry  `json:"transcript"`
	StartedAt  time.Time       `json:"started_at"`
	EndedAt    time.Time       `json:"ended_at"`
	Turns      int             `json:"turns"`
}

// NewID returns a new session identifier. ULIDs sort lexicographically by
// creation time, so directory listings double as a chronological index.
func NewID() string {
	return ulid.Make().String()
}

// FileStore keeps one JSON file per session under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the record, replacing any previous file with the same ID.
func (s *FileStore) Save(rec *Record) error {
	if rec.ID == "" {
		return fmt.Errorf("session save: empty id")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("session save %s: %w", rec.ID, err)
	}
	tmp := s.path(rec.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("session save %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp, s.path(rec.ID)); err != nil {
		return fmt.Errorf("session save %s: %w", rec.ID, err)
	}
	return nil
}

// Load reads one record by ID.
func (s *FileStore) Load(id string) (*Record, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("session load %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("session load %s: %w", id, err)
	}
	return &rec, nil
}

// List returns all stored records, oldest first.
func (s *FileStore) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("session list: %w", err)
	}
	var records []*Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}
