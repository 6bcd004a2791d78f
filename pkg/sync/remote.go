package sync

import (
	"context"
	"errors"

	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/google/uuid"
)

var (
	// ErrRemoteUnavailable covers network failures and backend errors.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrUnauthorized covers owner mismatch and missing sessions.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict means the remote rejected a write.
	ErrConflict = errors.New("conflict")
)

// Subscription is a disposable change feed handle. Dispose stops delivery and
// is safe to call more than once.
type Subscription interface {
	Dispose()
}

// Remote is the backend capability a Store consumes. Every operation is
// independently failable; implementations map their transport errors onto
// ErrRemoteUnavailable, ErrUnauthorized and ErrConflict so callers can
// dispatch with errors.Is.
type Remote interface {
	Select(ctx context.Context, collection string, ownerID uuid.UUID) ([]dto.Item, error)
	Insert(ctx context.Context, collection string, req dto.CreateItemRequest) (*dto.Item, error)
	Update(ctx context.Context, collection string, id uuid.UUID, req dto.UpdateItemRequest) (*dto.Item, error)
	Delete(ctx context.Context, collection string, id uuid.UUID) error
	SubscribeChanges(ctx context.Context, collection string, handler func(dto.ChangeEvent)) (Subscription, error)
}
