package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adolfohrq/designali-hub-google/internal/database"
	"github.com/adolfohrq/designali-hub-google/internal/models"
	"github.com/google/uuid"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrItemNotFound      = errors.New("item not found")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
)

// ItemService is one CRUD service for all six collection tables. The tables
// share a schema, so the collection name selects the table; it is validated
// against the whitelist before it ever reaches SQL.
type ItemService struct {
	db *database.DB
}

func NewItemService(db *database.DB) *ItemService {
	return &ItemService{db: db}
}

func (s *ItemService) ListByOwner(ctx context.Context, collection string, userID uuid.UUID) ([]models.Item, error) {
	if !models.IsCollection(collection) {
		return nil, ErrUnknownCollection
	}

	rows, err := s.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, data, is_favorite, version, created_at, updated_at
		FROM %s WHERE user_id = $1
		ORDER BY created_at DESC
	`, collection), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.Data, &it.IsFavorite,
			&it.Version, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *ItemService) GetByID(ctx context.Context, collection string, id, userID uuid.UUID) (*models.Item, error) {
	if !models.IsCollection(collection) {
		return nil, ErrUnknownCollection
	}

	var it models.Item
	err := s.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, user_id, data, is_favorite, version, created_at, updated_at
		FROM %s WHERE id = $1 AND user_id = $2
	`, collection), id, userID).Scan(
		&it.ID, &it.UserID, &it.Data, &it.IsFavorite,
		&it.Version, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, ErrItemNotFound
	}
	return &it, nil
}

func (s *ItemService) Create(ctx context.Context, collection string, userID uuid.UUID, data json.RawMessage, isFavorite bool) (*models.Item, error) {
	if !models.IsCollection(collection) {
		return nil, ErrUnknownCollection
	}
	if data == nil {
		data = json.RawMessage("{}")
	}

	var it models.Item
	err := s.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_id, data, is_favorite)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, data, is_favorite, version, created_at, updated_at
	`, collection), userID, data, isFavorite).Scan(
		&it.ID, &it.UserID, &it.Data, &it.IsFavorite,
		&it.Version, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Update merges a JSONB patch into data and/or flips the favorite flag.
// Writes are last-write-wins; version only records that a change happened.
func (s *ItemService) Update(ctx context.Context, collection string, id, userID uuid.UUID, patch json.RawMessage, isFavorite *bool) (*models.Item, error) {
	if !models.IsCollection(collection) {
		return nil, ErrUnknownCollection
	}
	if patch == nil && isFavorite == nil {
		return nil, ErrNoFieldsToUpdate
	}
	if patch == nil {
		patch = json.RawMessage("{}")
	}

	var it models.Item
	err := s.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s
		SET data = data || $1, is_favorite = COALESCE($2, is_favorite),
		    version = version + 1, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING id, user_id, data, is_favorite, version, created_at, updated_at
	`, collection), patch, isFavorite, id, userID).Scan(
		&it.ID, &it.UserID, &it.Data, &it.IsFavorite,
		&it.Version, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, ErrItemNotFound
	}
	return &it, nil
}

func (s *ItemService) Delete(ctx context.Context, collection string, id, userID uuid.UUID) error {
	if !models.IsCollection(collection) {
		return ErrUnknownCollection
	}

	tag, err := s.db.Pool.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1 AND user_id = $2
	`, collection), id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
