package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"floorplan-inventory/internal/models"
)

// MemoryStore keeps everything in process. It is the default when no database is configured.
type MemoryStore struct {
	mu           sync.RWMutex
	placements   map[string]Placement
	reservations []models.Reservation
	now          func() time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		placements: make(map[string]Placement),
		now:        time.Now,
	}
}

func (m *MemoryStore) SavePlacements(_ context.Context, placements []Placement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range placements {
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = m.now().UTC()
		}
		m.placements[p.Key()] = p
	}
	return nil
}

func (m *MemoryStore) Placements(_ context.Context) ([]Placement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Placement, 0, len(m.placements))
	for _, p := range m.placements {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].Key() < out[j].Key()
	})
	return out, nil
}

func (m *MemoryStore) AddReservation(_ context.Context, r models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations = append(m.reservations, r)
	return nil
}

func (m *MemoryStore) Reservations(_ context.Context, furnitureID int64) ([]models.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		if furnitureID == 0 || r.FurnitureID == furnitureID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *MemoryStore) Close() {}
