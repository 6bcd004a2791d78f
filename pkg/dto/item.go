package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is the wire shape of one collection record. The entity-specific
// attributes travel opaque in Data; the envelope is shared by all
// collections.
type Item struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Data       json.RawMessage `json:"data"`
	IsFavorite bool            `json:"is_favorite"`
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type CreateItemRequest struct {
	Data       json.RawMessage `json:"data"`
	IsFavorite bool            `json:"is_favorite"`
}

type UpdateItemRequest struct {
	Data       json.RawMessage `json:"data,omitempty"`
	IsFavorite *bool           `json:"is_favorite,omitempty"`
}
