// Package inventory owns the live item collection served by the API: the
// loaded items, the session filter and the floor-plan placements.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"

	"floorplan-inventory/internal/store"
	inv "floorplan-inventory/pkg/inventory"
	"floorplan-inventory/pkg/placement"
)

// ErrStaleLoad is returned by Load when a newer load started before it finished.
// Its result is discarded.
var ErrStaleLoad = errors.New("load superseded by a newer load")

// Recorder receives inventory metrics.
type Recorder interface {
	ItemsLoaded(n int)
	Placed(n int)
}

type nopRecorder struct{}

func (nopRecorder) ItemsLoaded(int) {}
func (nopRecorder) Placed(int)      {}

// Status describes the current collection.
type Status struct {
	Source   string    `json:"source"`
	Items    int       `json:"items"`
	Placed   int       `json:"placed"`
	Percent  int       `json:"percent"`
	LoadedAt time.Time `json:"loadedAt"`
}

// LoadResult is returned by a successful Load.
type LoadResult struct {
	Source   string `json:"source"`
	Items    int    `json:"items"`
	Restored int    `json:"restored"`
}

// Service is safe for concurrent use.
type Service struct {
	store    store.Store
	imageURL string
	recorder Recorder
	now      func() time.Time

	seq atomic.Uint64

	// writeMu orders store writes with the collection swaps that follow them.
	writeMu sync.Mutex

	mu       sync.RWMutex
	items    []inv.Item
	filter   inv.Filter
	source   string
	loadedAt time.Time
}

// NewService creates an empty service for the floor plan at imageURL.
func NewService(st store.Store, imageURL string) *Service {
	return &Service{
		store:    st,
		imageURL: imageURL,
		recorder: nopRecorder{},
		now:      time.Now,
		items:    []inv.Item{},
	}
}

// WithRecorder sets the metrics sink.
func (s *Service) WithRecorder(r Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

func (s *Service) ImageURL() string { return s.imageURL }

// Load replaces the collection with the items of src and restores saved
// placements onto them. Each call takes a sequence number when it starts; if a
// later call started before this one finished, the result is dropped and
// ErrStaleLoad is returned.
func (s *Service) Load(ctx context.Context, src Source) (LoadResult, error) {
	token := s.seq.Add(1)
	res := LoadResult{Source: src.Name()}

	items, err := src.Fetch(ctx)
	if err != nil {
		return res, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	if items == nil {
		items = []inv.Item{}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if token != s.seq.Load() {
		return res, ErrStaleLoad
	}

	restored, err := s.restore(ctx, items)
	if err != nil {
		return res, fmt.Errorf("restore placements: %w", err)
	}

	s.mu.Lock()
	s.items = items
	s.source = src.Name()
	s.loadedAt = s.now().UTC()
	s.mu.Unlock()

	s.recorder.ItemsLoaded(len(items))
	log.Printf("loaded %d items from %s (%d placements restored)", len(items), src.Name(), restored)

	res.Items = len(items)
	res.Restored = restored
	return res, nil
}

func (s *Service) restore(ctx context.Context, items []inv.Item) (int, error) {
	saved, err := s.store.Placements(ctx)
	if err != nil {
		return 0, err
	}
	if len(saved) == 0 {
		return 0, nil
	}

	cfg := placement.Configuration{Coordinates: make([]placement.Entry, 0, len(saved))}
	for _, p := range saved {
		cfg.Coordinates = append(cfg.Coordinates, placement.Entry{
			ID:          p.ItemID,
			Barcode:     p.Barcode,
			Coordinates: inv.At(p.X, p.Y),
		})
	}
	applied, err := placement.Restore(items, cfg)
	return applied.Applied, err
}

// Status reports the source, size and placement progress of the collection.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	placed, total, percent := placement.NewPlacer(s.imageURL, s.items).Progress()
	return Status{
		Source:   s.source,
		Items:    total,
		Placed:   placed,
		Percent:  percent,
		LoadedAt: s.loadedAt,
	}
}

// Items returns a copy of every item.
func (s *Service) Items() []inv.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return inv.Clone(s.items)
}

// Item returns a copy of the item with id.
func (s *Service) Item(id int64) (inv.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.items[i].ID == id {
			return inv.Clone(s.items[i : i+1])[0], true
		}
	}
	return inv.Item{}, false
}

// Filter returns the session filter.
func (s *Service) Filter() inv.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilters overlays the non-empty keys of f onto the session filter.
func (s *Service) SetFilters(f inv.Filter) inv.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = s.filter.Merge(f)
	return s.filter
}

func (s *Service) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = inv.Filter{}
}

// Filtered applies the session filter.
func (s *Service) Filtered() []inv.Item {
	return s.Query(inv.Filter{})
}

// Query applies the session filter overlaid with f. It does not change the session filter.
func (s *Service) Query(f inv.Filter) []inv.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return inv.Clone(s.filter.Merge(f).Apply(s.items))
}

// UniqueValues lists the distinct values of field. A nil tag sorts by code point.
func (s *Service) UniqueValues(field inv.Field, tag *language.Tag) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tag != nil {
		return inv.UniqueValuesCollated(s.items, field, *tag)
	}
	return inv.UniqueValues(s.items, field)
}

// Statistics are computed over the whole collection, ignoring filters.
func (s *Service) Statistics() inv.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return inv.ComputeStatistics(s.items)
}

// Markers clusters the placed items by room, optionally on one floor.
func (s *Service) Markers(floor string) []placement.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return placement.Markers(s.items, floor)
}

// Place sets the coordinates of item id and saves them. The collection is
// only updated once the store accepted the placement.
func (s *Service) Place(ctx context.Context, id int64, x, y float64) (inv.Item, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	items := s.Items()
	p := placement.NewPlacer(s.imageURL, items)
	if err := p.PlaceByID(id, x, y); err != nil {
		return inv.Item{}, err
	}
	var placed inv.Item
	for _, it := range items {
		if it.ID == id {
			placed = it
			break
		}
	}

	err := s.store.SavePlacements(ctx, []store.Placement{{
		ItemID:  placed.ID,
		Barcode: placed.Barcode,
		X:       x,
		Y:       y,
	}})
	if err != nil {
		return inv.Item{}, fmt.Errorf("save placement: %w", err)
	}

	s.commit(items)
	s.recorder.Placed(1)
	return inv.Clone([]inv.Item{placed})[0], nil
}

// commit swaps in an edited copy of the collection. Callers hold writeMu, so
// no load replaced the collection since the copy was taken.
func (s *Service) commit(items []inv.Item) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// ExportCoordinates captures every item's coordinates.
func (s *Service) ExportCoordinates() placement.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return placement.Export(s.imageURL, s.items, s.now())
}

// ImportCoordinates applies a configuration and saves the resulting placements.
// Nothing changes when the store rejects them.
func (s *Service) ImportCoordinates(ctx context.Context, cfg placement.Configuration) (placement.ApplyResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	items := s.Items()
	res, err := placement.Apply(items, cfg)
	if err != nil {
		return res, err
	}
	placed := make([]store.Placement, 0, res.Applied)
	for _, it := range items {
		if x, y, ok := it.Coordinates.Values(); ok {
			placed = append(placed, store.Placement{ItemID: it.ID, Barcode: it.Barcode, X: x, Y: y})
		}
	}

	if err := s.store.SavePlacements(ctx, placed); err != nil {
		return placement.ApplyResult{}, fmt.Errorf("save placements: %w", err)
	}
	s.commit(items)
	s.recorder.Placed(res.Applied)
	return res, nil
}
