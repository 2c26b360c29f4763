package models

import "time"

// Location is a room known to the collaborator API.
type Location struct {
	ID           int64      `json:"id"`
	BuildingName string     `json:"buildingName" validate:"required"`
	Floor        string     `json:"floor"`
	Room         string     `json:"room"`
	Site         *string    `json:"site,omitempty"`
	Description  *string    `json:"description,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}
