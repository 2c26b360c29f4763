// Package store persists what the inventory sources cannot: marker placements
// made on the floor plan and furniture reservations.
package store

import (
	"context"
	"strconv"
	"time"

	"floorplan-inventory/internal/models"
)

// Placement is the saved floor-plan position of one item.
type Placement struct {
	ItemID    int64     `json:"id"`
	Barcode   string    `json:"barcode"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key identifies the item a placement belongs to across reloads. Row ids shift
// when the source gains or loses rows, so the barcode wins when there is one.
func (p Placement) Key() string {
	if p.Barcode != "" {
		return "barcode:" + p.Barcode
	}
	return "id:" + strconv.FormatInt(p.ItemID, 10)
}

// Store is implemented by MemoryStore and PostgresStore.
type Store interface {
	// SavePlacements inserts or replaces placements by Key.
	SavePlacements(ctx context.Context, placements []Placement) error
	Placements(ctx context.Context) ([]Placement, error)
	AddReservation(ctx context.Context, r models.Reservation) error
	// Reservations lists bookings ordered by start; furnitureID 0 means all items.
	Reservations(ctx context.Context, furnitureID int64) ([]models.Reservation, error)
	Close()
}
