package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	stdsync "sync"
	"time"

	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/google/uuid"
)

// ErrNotFound means the record is not in the local mirror.
var ErrNotFound = errors.New("record not found")

// ErrDisposed means the store was torn down and no longer accepts intents.
var ErrDisposed = errors.New("store disposed")

// Record is one synced entity. The envelope is shared by every collection;
// the entity-specific attributes live in Fields.
type Record[T any] struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Favorite  bool
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
	Fields    T
}

// Store mirrors one user-scoped remote collection in memory and keeps it
// live through a change subscription. Structural writes are pessimistic: the
// mirror changes only once the remote confirms. Single-field toggles are
// optimistic, see ToggleFavorite.
//
// A store belongs to exactly one owner for its whole life; on user change a
// new store is created rather than re-pointing an existing one.
type Store[T any] struct {
	collection string
	ownerID    uuid.UUID
	remote     Remote
	logger     *slog.Logger

	mu             stdsync.Mutex
	records        map[uuid.UUID]Record[T]
	localVersions  map[uuid.UUID]uint64
	pendingCreates map[uuid.UUID]bool
	listeners      map[int]func()
	nextListener   int
	sub            Subscription
	disposed       bool

	onExternalInsert func(Record[T])
}

func NewStore[T any](remote Remote, collection string, ownerID uuid.UUID, logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		collection:     collection,
		ownerID:        ownerID,
		remote:         remote,
		logger:         logger.With(slog.String("collection", collection)),
		records:        make(map[uuid.UUID]Record[T]),
		localVersions:  make(map[uuid.UUID]uint64),
		pendingCreates: make(map[uuid.UUID]bool),
		listeners:      make(map[int]func()),
	}
}

func (s *Store[T]) Collection() string {
	return s.collection
}

func (s *Store[T]) OwnerID() uuid.UUID {
	return s.ownerID
}

func (s *Store[T]) decode(it dto.Item) (Record[T], error) {
	var fields T
	if len(it.Data) > 0 {
		if err := json.Unmarshal(it.Data, &fields); err != nil {
			return Record[T]{}, fmt.Errorf("failed to decode record %s: %w", it.ID, err)
		}
	}
	return Record[T]{
		ID:        it.ID,
		OwnerID:   it.UserID,
		Favorite:  it.IsFavorite,
		Version:   it.Version,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
		Fields:    fields,
	}, nil
}

// Load replaces the mirror with the remote contents. On failure the previous
// contents stay untouched, so a retry starts from a consistent state.
func (s *Store[T]) Load(ctx context.Context) error {
	items, err := s.remote.Select(ctx, s.collection, s.ownerID)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.collection, err)
	}

	next := make(map[uuid.UUID]Record[T], len(items))
	for _, it := range items {
		rec, err := s.decode(it)
		if err != nil {
			s.logger.Warn("dropping undecodable record", slog.String("id", it.ID.String()), slog.Any("error", err))
			continue
		}
		if rec.OwnerID != s.ownerID {
			s.logger.Warn("dropping record for foreign owner", slog.String("id", rec.ID.String()))
			continue
		}
		next[rec.ID] = rec
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	s.records = next
	s.localVersions = make(map[uuid.UUID]uint64)
	s.pendingCreates = make(map[uuid.UUID]bool)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe opens the change feed. A prior subscription of this store is
// disposed first, so there is never more than one active feed per store.
func (s *Store[T]) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	prior := s.sub
	s.sub = nil
	s.mu.Unlock()

	if prior != nil {
		prior.Dispose()
	}

	sub, err := s.remote.SubscribeChanges(ctx, s.collection, s.ApplyChange)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.collection, err)
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		sub.Dispose()
		return ErrDisposed
	}
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// ApplyChange merges one change event into the mirror. The merge is
// idempotent and never panics; malformed events and events for other owners
// are dropped. Events arriving after Dispose are ignored.
func (s *Store[T]) ApplyChange(ev dto.ChangeEvent) {
	var external *Record[T]

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	if ev.OwnerID != s.ownerID {
		s.mu.Unlock()
		return
	}
	if ev.Collection != "" && ev.Collection != s.collection {
		s.mu.Unlock()
		return
	}

	switch ev.Kind {
	case dto.ChangeInserted, dto.ChangeUpdated:
		if ev.Record == nil {
			s.mu.Unlock()
			s.logger.Warn("dropping change event without record", slog.String("kind", string(ev.Kind)))
			return
		}
		rec, err := s.decode(*ev.Record)
		if err != nil {
			s.mu.Unlock()
			s.logger.Warn("dropping malformed change event", slog.Any("error", err))
			return
		}
		_, known := s.records[rec.ID]
		if ev.Kind == dto.ChangeInserted && !known && !s.pendingCreates[rec.ID] {
			external = &rec
		}
		delete(s.pendingCreates, rec.ID)
		s.records[rec.ID] = rec

	case dto.ChangeDeleted:
		if ev.ID == uuid.Nil {
			s.mu.Unlock()
			s.logger.Warn("dropping delete event without id")
			return
		}
		delete(s.records, ev.ID)
		delete(s.localVersions, ev.ID)

	default:
		s.mu.Unlock()
		s.logger.Warn("dropping change event of unknown kind", slog.String("kind", string(ev.Kind)))
		return
	}
	s.mu.Unlock()

	if external != nil && s.onExternalInsert != nil {
		s.onExternalInsert(*external)
	}
	s.notify()
}

// Create sends the new record to the remote and applies the confirmed
// snapshot. Nothing is shown locally until the remote accepts the write.
func (s *Store[T]) Create(ctx context.Context, fields T, favorite bool) (Record[T], error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return Record[T]{}, fmt.Errorf("create in %s: %w", s.collection, err)
	}

	item, err := s.remote.Insert(ctx, s.collection, dto.CreateItemRequest{
		Data:       data,
		IsFavorite: favorite,
	})
	if err != nil {
		return Record[T]{}, fmt.Errorf("create in %s: %w", s.collection, err)
	}

	rec, err := s.decode(*item)
	if err != nil {
		return Record[T]{}, err
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return rec, nil
	}
	s.records[rec.ID] = rec
	s.pendingCreates[rec.ID] = true
	s.mu.Unlock()

	s.notify()
	return rec, nil
}

// Update sends a partial-field patch and applies the confirmed snapshot.
func (s *Store[T]) Update(ctx context.Context, id uuid.UUID, patch any) (Record[T], error) {
	data, err := json.Marshal(patch)
	if err != nil {
		return Record[T]{}, fmt.Errorf("update %s in %s: %w", id, s.collection, err)
	}

	item, err := s.remote.Update(ctx, s.collection, id, dto.UpdateItemRequest{Data: data})
	if err != nil {
		return Record[T]{}, fmt.Errorf("update %s in %s: %w", id, s.collection, err)
	}

	rec, err := s.decode(*item)
	if err != nil {
		return Record[T]{}, err
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return rec, nil
	}
	s.records[rec.ID] = rec
	s.mu.Unlock()

	s.notify()
	return rec, nil
}

// Delete removes the record remotely, then locally.
func (s *Store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.remote.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("delete %s from %s: %w", id, s.collection, err)
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	delete(s.records, id)
	delete(s.localVersions, id)
	s.mu.Unlock()

	s.notify()
	return nil
}

// ToggleFavorite flips the favorite flag optimistically: the mirror changes
// first, the remote write follows. On failure the flag reverts. When toggles
// race, the per-record version counter makes the last local intent win; a
// slower response for an older intent is ignored rather than applied.
func (s *Store[T]) ToggleFavorite(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || s.disposed {
		s.mu.Unlock()
		if !ok {
			return fmt.Errorf("toggle favorite %s: %w", id, ErrNotFound)
		}
		return ErrDisposed
	}

	prev := rec
	next := !rec.Favorite
	s.localVersions[id]++
	version := s.localVersions[id]
	rec.Favorite = next
	s.records[id] = rec
	s.mu.Unlock()

	s.notify()

	item, err := s.remote.Update(ctx, s.collection, id, dto.UpdateItemRequest{IsFavorite: &next})

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	if s.localVersions[id] != version {
		// A later toggle owns this field now; this response is stale either way.
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		if _, still := s.records[id]; still {
			s.records[id] = prev
		}
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("toggle favorite %s: %w", id, err)
	}

	if confirmed, decErr := s.decode(*item); decErr == nil {
		if _, still := s.records[id]; still {
			s.records[id] = confirmed
		}
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// MutateOptimistic is the generic form of ToggleFavorite for entity fields
// such as a course status or progress. mutate adjusts the local copy, patch
// is the partial-field payload sent to the remote; both must describe the
// same change.
func (s *Store[T]) MutateOptimistic(ctx context.Context, id uuid.UUID, mutate func(*T), patch any) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("mutate %s in %s: %w", id, s.collection, err)
	}

	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || s.disposed {
		s.mu.Unlock()
		if !ok {
			return fmt.Errorf("mutate %s in %s: %w", id, s.collection, ErrNotFound)
		}
		return ErrDisposed
	}

	prev := rec
	s.localVersions[id]++
	version := s.localVersions[id]
	mutate(&rec.Fields)
	s.records[id] = rec
	s.mu.Unlock()

	s.notify()

	item, err := s.remote.Update(ctx, s.collection, id, dto.UpdateItemRequest{Data: data})

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	if s.localVersions[id] != version {
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		if _, still := s.records[id]; still {
			s.records[id] = prev
		}
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("mutate %s in %s: %w", id, s.collection, err)
	}

	if confirmed, decErr := s.decode(*item); decErr == nil {
		if _, still := s.records[id]; still {
			s.records[id] = confirmed
		}
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Records returns a snapshot sorted newest first.
func (s *Store[T]) Records() []Record[T] {
	s.mu.Lock()
	out := make([]Record[T], 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Query filters the snapshot without touching the network.
func (s *Store[T]) Query(predicate func(Record[T]) bool) []Record[T] {
	var out []Record[T]
	for _, rec := range s.Records() {
		if predicate(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Store[T]) Get(id uuid.UUID) (Record[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec, ok
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// OnChange registers a listener invoked after every mirror mutation. The
// returned function unregisters it.
func (s *Store[T]) OnChange(listener func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return func() {}
	}
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SetOnExternalInsert registers a callback for inserts that did not
// originate from this store, the "new item appeared elsewhere" case.
func (s *Store[T]) SetOnExternalInsert(fn func(Record[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExternalInsert = fn
}

// Dispose releases the change subscription and stops all further change
// application. Late responses of in-flight calls are ignored.
func (s *Store[T]) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	sub := s.sub
	s.sub = nil
	s.listeners = make(map[int]func())
	s.mu.Unlock()

	if sub != nil {
		sub.Dispose()
	}
}

func (s *Store[T]) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
