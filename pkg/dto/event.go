package dto

import "github.com/google/uuid"

type ChangeKind string

const (
	ChangeInserted ChangeKind = "inserted"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
)

// ChangeEvent notifies a client that one record changed remotely. Inserted
// and updated events carry the full record snapshot; deleted events carry
// only the id.
type ChangeEvent struct {
	Kind       ChangeKind `json:"kind"`
	Collection string     `json:"collection"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Record     *Item      `json:"record,omitempty"`
	ID         uuid.UUID  `json:"id,omitempty"`
}
