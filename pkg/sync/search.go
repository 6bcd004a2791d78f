package sync

import (
	"strings"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Result is one search hit, a projection for the global search UI.
type Result struct {
	Collection string
	ID         uuid.UUID
	Title      string
	Snippet    string
	TargetView string
}

// Searcher is one federated search participant.
type Searcher interface {
	Search(query string) []Result
}

// Source adapts a Store into a Searcher: extract yields the matchable text
// of a record, mapResult shapes a hit.
type Source[T any] struct {
	store     *Store[T]
	extract   func(Record[T]) []string
	mapResult func(Record[T]) Result
}

func NewSource[T any](store *Store[T], extract func(Record[T]) []string, mapResult func(Record[T]) Result) *Source[T] {
	return &Source[T]{store: store, extract: extract, mapResult: mapResult}
}

func (s *Source[T]) Search(query string) []Result {
	needle := strings.ToLower(query)

	var out []Result
	for _, rec := range s.store.Records() {
		for _, field := range s.extract(rec) {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, s.mapResult(rec))
				break
			}
		}
	}
	return out
}

// Index federates on-demand substring search over several sources. Results
// are grouped by source in registration order; there is no cross-collection
// scoring.
type Index struct {
	sources []Searcher
}

func NewIndex(sources ...Searcher) *Index {
	return &Index{sources: sources}
}

// Search matches case-insensitively over the in-memory records of every
// source. An empty query matches nothing.
func (ix *Index) Search(query string) []Result {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var out []Result
	for _, src := range ix.sources {
		out = append(out, src.Search(query)...)
	}
	return out
}

// Debouncer coalesces a burst of queries into one search after a quiet
// interval. Each executed search carries a sequence number; a result is
// applied only while it is still the highest-numbered one, so a slow stale
// search can never overwrite a newer result.
type Debouncer struct {
	interval time.Duration
	search   func(string) []Result

	mu    stdsync.Mutex
	timer *time.Timer
	seq   atomic.Uint64
}

const DefaultDebounceInterval = 300 * time.Millisecond

func NewDebouncer(interval time.Duration, search func(string) []Result) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &Debouncer{interval: interval, search: search}
}

// Query schedules a search for query, cancelling any still-pending one.
// apply runs with the results once the debounce window passes, unless a
// newer query superseded this one in the meantime.
func (d *Debouncer) Query(query string, apply func(query string, results []Result)) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		seq := d.seq.Add(1)
		results := d.search(query)
		if seq == d.seq.Load() {
			apply(query, results)
		}
	})
	d.mu.Unlock()
}

// Stop cancels a pending search, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
}
