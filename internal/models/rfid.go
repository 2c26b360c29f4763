package models

import "time"

type RFIDTag struct {
	ID          int64      `json:"id,omitempty"`
	TagID       string     `json:"tagId"`
	TagType     string     `json:"tagType,omitempty"`
	FurnitureID *int64     `json:"furnitureId,omitempty"`
	IsActive    bool       `json:"isActive"`
	LastReadAt  *time.Time `json:"lastReadAt,omitempty"`
}

type RFIDReader struct {
	ID         int64      `json:"id,omitempty"`
	ReaderID   string     `json:"readerId"`
	Name       string     `json:"name"`
	LocationID *int64     `json:"locationId,omitempty"`
	Status     string     `json:"status,omitempty"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

// TagRead is one tag observation posted by a reader.
type TagRead struct {
	TagID    string     `json:"tagId"`
	ReaderID string     `json:"readerId"`
	ReadAt   *time.Time `json:"readAt,omitempty"`
}
