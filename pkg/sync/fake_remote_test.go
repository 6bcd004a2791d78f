package sync

import (
	"context"
	"encoding/json"
	stdsync "sync"
	"time"

	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/google/uuid"
)

// fakeRemote is an in-memory Remote. Change events produced by writes are
// queued and only delivered on flush, so tests control echo timing.
type fakeRemote struct {
	mu      stdsync.Mutex
	owner   uuid.UUID
	items   map[string]map[uuid.UUID]dto.Item
	subs    map[int]fakeHandler
	nextSub int
	pending []dto.ChangeEvent

	selectErr error
	insertErr error
	updateErr error
	deleteErr error

	// onUpdate runs before an update is applied, outside the lock, so a
	// test can stall one call to force a response race.
	onUpdate func(collection string, id uuid.UUID, req dto.UpdateItemRequest)

	selectCalls int
	insertCalls int
	updateCalls int
	deleteCalls int
}

type fakeHandler struct {
	collection string
	fn         func(dto.ChangeEvent)
}

type fakeSub struct {
	remote *fakeRemote
	id     int
}

func (s *fakeSub) Dispose() {
	s.remote.mu.Lock()
	delete(s.remote.subs, s.id)
	s.remote.mu.Unlock()
}

func newFakeRemote(owner uuid.UUID) *fakeRemote {
	return &fakeRemote{
		owner: owner,
		items: make(map[string]map[uuid.UUID]dto.Item),
		subs:  make(map[int]fakeHandler),
	}
}

func (r *fakeRemote) table(collection string) map[uuid.UUID]dto.Item {
	if r.items[collection] == nil {
		r.items[collection] = make(map[uuid.UUID]dto.Item)
	}
	return r.items[collection]
}

func (r *fakeRemote) Select(ctx context.Context, collection string, ownerID uuid.UUID) ([]dto.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectCalls++
	if r.selectErr != nil {
		return nil, r.selectErr
	}

	var out []dto.Item
	for _, it := range r.table(collection) {
		if it.UserID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeRemote) Insert(ctx context.Context, collection string, req dto.CreateItemRequest) (*dto.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertCalls++
	if r.insertErr != nil {
		return nil, r.insertErr
	}

	now := time.Now()
	it := dto.Item{
		ID:         uuid.New(),
		UserID:     r.owner,
		Data:       req.Data,
		IsFavorite: req.IsFavorite,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.table(collection)[it.ID] = it
	r.queueLocked(dto.ChangeEvent{
		Kind: dto.ChangeInserted, Collection: collection, OwnerID: it.UserID, Record: &it,
	})
	return &it, nil
}

func (r *fakeRemote) Update(ctx context.Context, collection string, id uuid.UUID, req dto.UpdateItemRequest) (*dto.Item, error) {
	if r.onUpdate != nil {
		r.onUpdate(collection, id, req)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return nil, r.updateErr
	}

	it, ok := r.table(collection)[id]
	if !ok {
		return nil, ErrConflict
	}

	if len(req.Data) > 0 {
		merged := map[string]any{}
		_ = json.Unmarshal(it.Data, &merged)
		patch := map[string]any{}
		_ = json.Unmarshal(req.Data, &patch)
		for k, v := range patch {
			merged[k] = v
		}
		it.Data, _ = json.Marshal(merged)
	}
	if req.IsFavorite != nil {
		it.IsFavorite = *req.IsFavorite
	}
	it.Version++
	it.UpdatedAt = time.Now()
	r.table(collection)[id] = it
	r.queueLocked(dto.ChangeEvent{
		Kind: dto.ChangeUpdated, Collection: collection, OwnerID: it.UserID, Record: &it,
	})
	return &it, nil
}

func (r *fakeRemote) Delete(ctx context.Context, collection string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}

	it, ok := r.table(collection)[id]
	if !ok {
		return ErrConflict
	}
	delete(r.table(collection), id)
	r.queueLocked(dto.ChangeEvent{
		Kind: dto.ChangeDeleted, Collection: collection, OwnerID: it.UserID, ID: id,
	})
	return nil
}

func (r *fakeRemote) SubscribeChanges(ctx context.Context, collection string, handler func(dto.ChangeEvent)) (Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fakeHandler{collection: collection, fn: handler}
	return &fakeSub{remote: r, id: id}, nil
}

func (r *fakeRemote) queueLocked(ev dto.ChangeEvent) {
	r.pending = append(r.pending, ev)
}

// flush delivers every queued change event to matching subscribers.
func (r *fakeRemote) flush() {
	r.mu.Lock()
	events := r.pending
	r.pending = nil
	handlers := make([]fakeHandler, 0, len(r.subs))
	for _, h := range r.subs {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	for _, ev := range events {
		for _, h := range handlers {
			if h.collection == ev.Collection {
				h.fn(ev)
			}
		}
	}
}

func (r *fakeRemote) subscriberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// seed puts an item into the backing table without queueing an event.
func (r *fakeRemote) seed(collection string, owner uuid.UUID, data string, favorite bool) dto.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	it := dto.Item{
		ID:         uuid.New(),
		UserID:     owner,
		Data:       json.RawMessage(data),
		IsFavorite: favorite,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.table(collection)[it.ID] = it
	return it
}
