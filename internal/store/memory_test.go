package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan-inventory/internal/models"
)

func TestMemoryPlacements(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 11, 14, 9, 30, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return fixed }

	require.NoError(t, m.SavePlacements(ctx, []Placement{
		{ItemID: 3, Barcode: "B3", X: 0.3, Y: 0.3},
		{ItemID: 1, Barcode: "B1", X: 0.1, Y: 0.1},
	}))
	require.NoError(t, m.SavePlacements(ctx, []Placement{{ItemID: 3, Barcode: "B3", X: 0.9, Y: 0.8}}))

	got, err := m.Placements(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ItemID)
	assert.Equal(t, int64(3), got[1].ItemID)
	assert.Equal(t, 0.9, got[1].X)
	assert.Equal(t, fixed, got[1].UpdatedAt)
}

func TestMemoryPlacementsKeyedByBarcode(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// B1 moved from row 1 to row 2; row 1 is now B0.
	require.NoError(t, m.SavePlacements(ctx, []Placement{{ItemID: 1, Barcode: "B1", X: 0.1, Y: 0.1}}))
	require.NoError(t, m.SavePlacements(ctx, []Placement{{ItemID: 1, Barcode: "B0", X: 0.5, Y: 0.5}}))
	require.NoError(t, m.SavePlacements(ctx, []Placement{{ItemID: 7, X: 0.2, Y: 0.2}}))

	got, err := m.Placements(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "B0", got[0].Barcode)
	assert.Equal(t, "B1", got[1].Barcode)
	assert.Equal(t, 0.1, got[1].X)
	assert.Equal(t, "id:7", got[2].Key())
}

func TestMemoryReservations(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	day := time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC)

	require.NoError(t, m.AddReservation(ctx, models.Reservation{ID: "b", FurnitureID: 1, Start: day.Add(14 * time.Hour)}))
	require.NoError(t, m.AddReservation(ctx, models.Reservation{ID: "a", FurnitureID: 1, Start: day.Add(8 * time.Hour)}))
	require.NoError(t, m.AddReservation(ctx, models.Reservation{ID: "c", FurnitureID: 2, Start: day}))

	got, err := m.Reservations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	all, err := m.Reservations(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)
