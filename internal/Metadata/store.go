package metadata

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store holds one Record per processed file, keyed by path.
type Store struct {
	mu      sync.Mutex
	records map[string]*Record
}

func NewStore() *Store {
	return &Store{records: map[string]*Record{}}
}

// Ensure returns the record for path, creating a default one on first use.
func (s *Store) Ensure(path string, size int64) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[path]; ok {
		return rec
	}
	filename := filepath.Base(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	rec := newRecord(path, filename, size, ext)
	s.records[path] = rec
	return rec
}

func (s *Store) Get(path string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[path]
	return rec, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Snapshot returns report views sorted by file path.
func (s *Store) Snapshot() []View {
	s.mu.Lock()
	recs := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	s.mu.Unlock()

	views := make([]View, 0, len(recs))
	for _, r := range recs {
		views = append(views, r.Snapshot())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Path < views[j].Path })
	return views
}
