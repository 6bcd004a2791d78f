package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Collection names double as table names, so only whitelisted values ever
// reach SQL.
const (
	CollectionTools     = "tools"
	CollectionVideos    = "videos"
	CollectionNotes     = "notes"
	CollectionCourses   = "courses"
	CollectionTutorials = "tutorials"
	CollectionResources = "resources"
)

var collections = map[string]bool{
	CollectionTools:     true,
	CollectionVideos:    true,
	CollectionNotes:     true,
	CollectionCourses:   true,
	CollectionTutorials: true,
	CollectionResources: true,
}

func IsCollection(name string) bool {
	return collections[name]
}

// CollectionNames returns the whitelisted collections in dashboard order.
func CollectionNames() []string {
	return []string{
		CollectionTools,
		CollectionVideos,
		CollectionNotes,
		CollectionCourses,
		CollectionTutorials,
		CollectionResources,
	}
}

// Item is one record of any collection. Entity-specific attributes live in
// Data; the envelope is shared across all six tables.
type Item struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Data       json.RawMessage `json:"data"`
	IsFavorite bool            `json:"is_favorite"`
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
