package cache

import (
	"context"
	"strings"
	"sync"
)

// Store is a tag-versioned read cache. Each entry remembers the version of
// every tag it was stored under; Revalidate bumps tag versions, which makes
// every entry carrying that tag stale on its next read. The store is a
// derived accelerator only: callers must treat a miss as "load from the
// source of truth", never as an error.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]entry
	versions  map[Tag]uint64
	keysByTag map[Tag]map[string]struct{}
}

type entry struct {
	value any
	tags  []Tag
	seen  []uint64
}

// NewStore returns an empty tag-versioned cache.
func NewStore() *Store {
	return &Store{
		entries:   make(map[string]entry),
		versions:  make(map[Tag]uint64),
		keysByTag: make(map[Tag]map[string]struct{}),
	}
}

// Get returns the cached value for key, or false when the key is absent or
// any of its tags has been revalidated since the entry was stored.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	if ok {
		for i, tag := range e.tags {
			if s.versions[tag] != e.seen[i] {
				ok = false
				break
			}
		}
	}
	s.mu.RUnlock()

	if !ok {
		s.evict(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with its invalidation tags, snapshotting the
// current version of each tag.
func (s *Store) Set(key string, value any, tags ...Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make([]uint64, len(tags))
	for i, tag := range tags {
		seen[i] = s.versions[tag]
		keys, ok := s.keysByTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.keysByTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
	s.entries[key] = entry{value: value, tags: tags, seen: seen}
}

// Revalidate marks every entry carrying any of the given tags stale. Indexed
// entries are evicted eagerly to bound memory; version bumps cover entries
// stored concurrently with the sweep.
func (s *Store) Revalidate(tags ...Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tag := range tags {
		s.versions[tag]++
		for key := range s.keysByTag[tag] {
			s.removeLocked(key)
		}
		delete(s.keysByTag, tag)
	}
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) evict(key string) {
	s.mu.Lock()
	s.removeLocked(key)
	s.mu.Unlock()
}

func (s *Store) removeLocked(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	for _, tag := range e.tags {
		if keys, ok := s.keysByTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.keysByTag, tag)
			}
		}
	}
	delete(s.entries, key)
}

// Read memoizes loader under key with the given tags. A stale or missing
// entry falls through to loader; a loader error is returned without caching.
func Read[T any](ctx context.Context, s *Store, key string, tags []Tag, loader func(context.Context) (T, error)) (T, error) {
	if cached, ok := s.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}

	value, err := loader(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(key, value, tags...)
	return value, nil
}

// Key joins key segments with a separator that cannot appear in snowflake ids
// or country codes.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}
