// Package history keeps an append-only JSON log of answered queries.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/csheth/edugenius/internal/catalog"
	"github.com/csheth/edugenius/internal/llm"
)

const fileName = "history.json"

// Entry is one answered query.
type Entry struct {
	ID       string         `json:"id"`
	Subject  string         `json:"subject"`
	Mode     catalog.ModeID `json:"mode"`
	Language string         `json:"language"`
	Query    string         `json:"query"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	AskedAt  time.Time      `json:"askedAt"`
	Duration time.Duration  `json:"durationNs"`
}

// NewEntry builds an entry with a fresh id.
func NewEntry(req llm.Request, resp llm.Response, askedAt time.Time, took time.Duration) Entry {
	return Entry{
		ID:       uuid.NewString(),
		Subject:  req.Subject,
		Mode:     req.Mode,
		Language: req.Language,
		Query:    req.Query,
		Title:    resp.Title,
		Content:  resp.Content,
		AskedAt:  askedAt,
		Duration: took,
	}
}

// DefaultPath returns history.json inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, fileName)
}

// Log appends entries to a JSON file. An empty path disables persistence.
type Log struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// Open returns a log backed by path. The file is created on first append.
func Open(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the backing file.
func (l *Log) Path() string {
	return l.path
}

// Record appends an answered query. It satisfies assistant.Recorder.
func (l *Log) Record(req llm.Request, resp llm.Response, took time.Duration) error {
	return l.Append(NewEntry(req, resp, l.now().Add(-took), took))
}

// Append writes entries after the existing ones.
func (l *Log) Append(entries ...Entry) error {
	if l.path == "" || len(entries) == 0 {
		return nil
	}
	raw := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		raw = append(raw, data)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return appendEntries(l.path, raw)
}

// Load returns every stored entry, oldest first. A missing file is empty.
func (l *Log) Load() ([]Entry, error) {
	if l.path == "" {
		return nil, nil
	}
	l.mu.Lock()
	raw, err := loadEntries(l.path)
	l.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal(item, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	entries, err := l.Load()
	if err != nil || n <= 0 {
		return nil, err
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		out[len(entries)-1-i] = entry
	}
	return out, nil
}

func appendEntries(path string, newEntries []json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entries, err := loadEntries(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		entries = nil
	}
	entries = append(entries, newEntries...)
	return writeEntries(path, entries)
}

func writeEntries(path string, entries []json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadEntries(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
