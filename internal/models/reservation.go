package models

import "time"

// Reservation books one furniture item for a time window.
type Reservation struct {
	ID                 string    `json:"id"`
	FurnitureID        int64     `json:"furnitureId"`
	FurnitureReference string    `json:"furnitureReference,omitempty"`
	Start              time.Time `json:"startDateTime"`
	End                time.Time `json:"endDateTime"`
	UserName           string    `json:"userName"`
	UserEmail          string    `json:"userEmail"`
	UserPhone          string    `json:"userPhone,omitempty"`
	Department         string    `json:"department,omitempty"`
	Location           string    `json:"location,omitempty"`
	Purpose            string    `json:"purpose,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Overlaps reports whether r and o book the same item for intersecting windows.
// Windows are half-open: one ending exactly when the other starts does not overlap.
func (r Reservation) Overlaps(o Reservation) bool {
	return r.FurnitureID == o.FurnitureID && r.Start.Before(o.End) && o.Start.Before(r.End)
}
