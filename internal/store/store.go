package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// PostedSet tracks which article URLs have already been published. It is
// persisted as a sorted JSON array of normalized URLs; legacy entries may be
// opaque GUIDs from earlier schema versions and are kept as-is.
//
// Every MarkPosted reloads the file, merges, and rewrites it in full. That is
// safe only for one writer at a time; overlapping runs must be serialized by
// the scheduler invoking the bot.
type PostedSet struct {
	path  string
	items map[string]struct{}
	mu    sync.RWMutex
}

func New(path string) *PostedSet {
	return &PostedSet{
		path:  path,
		items: make(map[string]struct{}),
	}
}

// Normalize produces the dedupe key for a URL: surrounding whitespace and a
// trailing slash are dropped. Normalize(Normalize(u)) == Normalize(u).
func Normalize(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, "/")
	return url
}

// Load reads the persisted set. A missing or empty file yields an empty set.
func (s *PostedSet) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *PostedSet) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read posted db: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse posted db %s: %w", s.path, err)
	}

	for _, e := range entries {
		s.items[Normalize(e)] = struct{}{}
	}
	return nil
}

// IsPosted reports whether the URL was already published.
func (s *PostedSet) IsPosted(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[Normalize(url)]
	return ok
}

// MarkPosted records the URL and rewrites the persisted set. The file is
// re-read first so entries written by a prior run are never lost.
func (s *PostedSet) MarkPosted(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	s.items[Normalize(url)] = struct{}{}

	entries := make([]string, 0, len(s.items))
	for e := range s.items {
		entries = append(entries, e)
	}
	sort.Strings(entries)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal posted db: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write posted db: %w", err)
	}
	return nil
}

// Len returns the number of tracked entries.
func (s *PostedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
