package store

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
)

// snapshot is the persisted file layout.
type snapshot struct {
	Records   []bookmark.Record `json:"records"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// JSONFile keeps every record in memory and rewrites a single JSON file
// after each mutation.
type JSONFile struct {
	mu      sync.RWMutex
	records []bookmark.Record
	byURL   map[string]int
	path    string
}

// OpenJSONFile opens the snapshot under dataDir, creating the directory if needed.
func OpenJSONFile(dataDir string) (*JSONFile, error) {
	s := &JSONFile{
		byURL: make(map[string]int),
		path:  filepath.Join(dataDir, "bookmarks.json"),
	}
	if err := s.LoadFromDisk(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFromDisk replaces the in-memory records with the file contents.
// A missing file leaves the store empty.
func (s *JSONFile) LoadFromDisk() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read bookmarks file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode bookmarks: %w", err)
	}

	s.records = s.records[:0]
	s.byURL = make(map[string]int, len(snap.Records))
	for _, rec := range snap.Records {
		s.upsert(rec)
	}
	return nil
}

func (s *JSONFile) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.Marshal(snapshot{
		Records:   s.records,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal bookmarks: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write bookmarks file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace bookmarks file: %w", err)
	}
	return nil
}

func (s *JSONFile) upsert(rec bookmark.Record) {
	if i, ok := s.byURL[rec.URL]; ok {
		s.records[i] = rec
		return
	}
	s.byURL[rec.URL] = len(s.records)
	s.records = append(s.records, rec)
}

func (s *JSONFile) remove(url string) bool {
	i, ok := s.byURL[url]
	if !ok {
		return false
	}
	last := len(s.records) - 1
	if i != last {
		s.records[i] = s.records[last]
		s.byURL[s.records[i].URL] = i
	}
	s.records = s.records[:last]
	delete(s.byURL, url)
	return true
}

// All yields a copy of the records taken when iteration starts.
func (s *JSONFile) All(ctx context.Context) iter.Seq2[bookmark.Record, error] {
	return func(yield func(bookmark.Record, error) bool) {
		s.mu.RLock()
		recs := append([]bookmark.Record(nil), s.records...)
		s.mu.RUnlock()

		for _, rec := range recs {
			if err := ctx.Err(); err != nil {
				yield(bookmark.Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Put upserts rec and persists the file. The in-memory change is rolled
// back if the write fails.
func (s *JSONFile) Put(ctx context.Context, rec bookmark.Record) error {
	if rec.URL == "" {
		return ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.lookup(rec.URL)
	s.upsert(rec)
	if err := s.save(); err != nil {
		if existed {
			s.upsert(prev)
		} else {
			s.remove(rec.URL)
		}
		return err
	}
	return nil
}

func (s *JSONFile) DeleteByURL(ctx context.Context, url string) error {
	if url == "" {
		return ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.lookup(url)
	if !existed {
		return nil
	}
	s.remove(url)
	if err := s.save(); err != nil {
		s.upsert(prev)
		return err
	}
	return nil
}

func (s *JSONFile) lookup(url string) (bookmark.Record, bool) {
	i, ok := s.byURL[url]
	if !ok {
		return bookmark.Record{}, false
	}
	return s.records[i], true
}

// Count returns the number of stored records.
func (s *JSONFile) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// UpdatedAt returns the file modification time, or zero time if unknown.
func (s *JSONFile) UpdatedAt() time.Time {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func (s *JSONFile) Report() Report {
	return Report{Records: s.Count(), UpdatedAt: s.UpdatedAt()}
}

func (s *JSONFile) Close() error {
	return nil
}
