package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/adolfohrq/designali-hub-google/internal/database"
	"github.com/adolfohrq/designali-hub-google/internal/models"
	"github.com/adolfohrq/designali-hub-google/internal/oauth"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "google",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, avatar_url, provider, provider_id, theme, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.Theme, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithProvider sets the user's OAuth provider
func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = providerID
	}
}

// WithAvatar sets the user's avatar URL
func WithAvatar(url string) UserOption {
	return func(u *models.User) {
		u.AvatarURL = &url
	}
}

// CreateItem creates a test record in one of the collection tables
func (f *Fixtures) CreateItem(t *testing.T, collection string, owner *models.User, opts ...ItemOption) *models.Item {
	t.Helper()
	f.counter++

	if !models.IsCollection(collection) {
		t.Fatalf("unknown collection %q", collection)
	}

	item := &models.Item{
		UserID: owner.ID,
		Data:   json.RawMessage(fmt.Sprintf(`{"name":"Fixture %d"}`, f.counter)),
	}

	for _, opt := range opts {
		opt(item)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_id, data, is_favorite)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, data, is_favorite, version, created_at, updated_at
	`, collection), item.UserID, item.Data, item.IsFavorite).Scan(
		&item.ID, &item.UserID, &item.Data, &item.IsFavorite,
		&item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create %s item: %v", collection, err)
	}

	return item
}

// ItemOption configures a test collection record
type ItemOption func(*models.Item)

// WithItemData sets the record's JSON payload
func WithItemData(data json.RawMessage) ItemOption {
	return func(i *models.Item) {
		i.Data = data
	}
}

// WithFavorite marks the record as a favorite
func WithFavorite() ItemOption {
	return func(i *models.Item) {
		i.IsFavorite = true
	}
}

// CreateNotification creates a test notification for a user
func (f *Fixtures) CreateNotification(t *testing.T, owner *models.User, title, message, kind string) *models.Notification {
	t.Helper()

	n := &models.Notification{
		UserID:  owner.ID,
		Title:   title,
		Message: message,
		Kind:    kind,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, message, kind, link, is_read, created_at, updated_at
	`, n.UserID, n.Title, n.Message, n.Kind).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Kind,
		&n.Link, &n.IsRead, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create notification: %v", err)
	}

	return n
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates test OAuth user info
func OAuthUserInfo(email, name, provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: "https://example.com/avatar.png",
		ID:        id,
		Provider:  provider,
	}
}
