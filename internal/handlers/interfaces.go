package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adolfohrq/designali-hub-google/internal/models"
	"github.com/adolfohrq/designali-hub-google/internal/oauth"
	"github.com/adolfohrq/designali-hub-google/internal/services"
	"github.com/adolfohrq/designali-hub-google/internal/sse"
	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name, theme *string) (*models.User, error)
}

// ItemServiceInterface defines the methods used by handlers from ItemService
type ItemServiceInterface interface {
	ListByOwner(ctx context.Context, collection string, userID uuid.UUID) ([]models.Item, error)
	GetByID(ctx context.Context, collection string, id, userID uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, collection string, userID uuid.UUID, data json.RawMessage, isFavorite bool) (*models.Item, error)
	Update(ctx context.Context, collection string, id, userID uuid.UUID, patch json.RawMessage, isFavorite *bool) (*models.Item, error)
	Delete(ctx context.Context, collection string, id, userID uuid.UUID) error
}

// NotificationServiceInterface defines the methods used by handlers from NotificationService
type NotificationServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, title, message, kind string, link *string) (*models.Notification, error)
	ListByOwner(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// SuggestServiceInterface defines the methods used by handlers from SuggestService
type SuggestServiceInterface interface {
	SuggestTools(ctx context.Context, topic string, count int) ([]services.SuggestedTool, error)
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	BroadcastInsert(collection string, record dto.Item)
	BroadcastUpdate(collection string, record dto.Item)
	BroadcastDelete(collection string, ownerID, id uuid.UUID)
}
