package sync

import (
	stdsync "sync"
)

// CollectionStats are the derived numbers for one collection.
type CollectionStats struct {
	Count     int
	Favorites int
	// Groups maps a field name to value counts, e.g. "status" -> {"Completed": 3}.
	Groups map[string]map[string]int
}

// Stats is the dashboard aggregate over all collections. Always derived,
// never persisted.
type Stats struct {
	Total       int
	Collections map[string]CollectionStats
}

func (s Stats) Count(collection string) int {
	return s.Collections[collection].Count
}

func (s Stats) GroupBy(collection, field string) map[string]int {
	return s.Collections[collection].Groups[field]
}

// StatSource is one collection's contribution to the aggregate.
type StatSource interface {
	Collection() string
	Snapshot() CollectionStats
	OnChange(listener func()) func()
}

type statSource[T any] struct {
	store    *Store[T]
	groupers map[string]func(T) string
}

// NewStatSource adapts a Store into a StatSource. groupers names the
// group-by fields and how to read them from a record.
func NewStatSource[T any](store *Store[T], groupers map[string]func(T) string) StatSource {
	return &statSource[T]{store: store, groupers: groupers}
}

func (s *statSource[T]) Collection() string {
	return s.store.Collection()
}

func (s *statSource[T]) OnChange(listener func()) func() {
	return s.store.OnChange(listener)
}

func (s *statSource[T]) Snapshot() CollectionStats {
	stats := CollectionStats{Groups: make(map[string]map[string]int, len(s.groupers))}
	for field := range s.groupers {
		stats.Groups[field] = make(map[string]int)
	}

	for _, rec := range s.store.Records() {
		stats.Count++
		if rec.Favorite {
			stats.Favorites++
		}
		for field, group := range s.groupers {
			stats.Groups[field][group(rec.Fields)]++
		}
	}
	return stats
}

// Compute derives the aggregate by walking every source in full. It is pure
// over current store contents.
func Compute(sources ...StatSource) Stats {
	stats := Stats{Collections: make(map[string]CollectionStats, len(sources))}
	for _, src := range sources {
		snap := src.Snapshot()
		stats.Collections[src.Collection()] = snap
		stats.Total += snap.Count
	}
	return stats
}

// Tracker keeps the aggregate current without walking every collection on
// every read: a store change only marks that collection dirty, and Stats
// recomputes just the dirty ones. The result is always equal to a full
// Compute over the same sources.
type Tracker struct {
	mu      stdsync.Mutex
	sources map[string]StatSource
	cache   map[string]CollectionStats
	dirty   map[string]bool
	unsubs  []func()
}

func NewTracker(sources ...StatSource) *Tracker {
	t := &Tracker{
		sources: make(map[string]StatSource, len(sources)),
		cache:   make(map[string]CollectionStats, len(sources)),
		dirty:   make(map[string]bool, len(sources)),
	}

	for _, src := range sources {
		name := src.Collection()
		t.sources[name] = src
		t.dirty[name] = true
		t.unsubs = append(t.unsubs, src.OnChange(func() {
			t.mu.Lock()
			t.dirty[name] = true
			t.mu.Unlock()
		}))
	}
	return t
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Stats{Collections: make(map[string]CollectionStats, len(t.sources))}
	for name, src := range t.sources {
		if t.dirty[name] {
			t.cache[name] = src.Snapshot()
			t.dirty[name] = false
		}
		snap := t.cache[name]
		stats.Collections[name] = snap
		stats.Total += snap.Count
	}
	return stats
}

// Close unhooks the tracker from its stores.
func (t *Tracker) Close() {
	t.mu.Lock()
	unsubs := t.unsubs
	t.unsubs = nil
	t.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}
