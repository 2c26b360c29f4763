package placement

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"floorplan-inventory/pkg/inventory"
)

// ConfigVersion is written into every exported configuration.
const ConfigVersion = "1.0"

// ErrInvalidConfiguration is returned for a configuration without a coordinates list.
var ErrInvalidConfiguration = errors.New("invalid coordinate configuration")

// Entry is the saved position of one item.
type Entry struct {
	ID          int64                 `json:"id"`
	Barcode     string                `json:"barcode"`
	Room        *string               `json:"room"`
	Floor       *string               `json:"floor"`
	Coordinates inventory.Coordinates `json:"coordinates"`
}

// Configuration is the exported coordinate set of a floor plan.
type Configuration struct {
	Version     string    `json:"version"`
	ImageURL    string    `json:"imageUrl"`
	Timestamp   time.Time `json:"timestamp"`
	Coordinates []Entry   `json:"coordinates"`
}

// ApplyResult counts what happened to each imported entry.
type ApplyResult struct {
	Applied   int `json:"applied"`
	Unplaced  int `json:"unplaced"`
	Invalid   int `json:"invalid"`
	Unmatched int `json:"unmatched"`
}

// Export captures the coordinates of every item, placed or not.
func Export(imageURL string, items []inventory.Item, now time.Time) Configuration {
	cfg := Configuration{
		Version:     ConfigVersion,
		ImageURL:    imageURL,
		Timestamp:   now.UTC(),
		Coordinates: make([]Entry, 0, len(items)),
	}
	for _, it := range inventory.Clone(items) {
		cfg.Coordinates = append(cfg.Coordinates, Entry{
			ID:          it.ID,
			Barcode:     it.Barcode,
			Room:        it.Location.Room,
			Floor:       it.Location.Floor,
			Coordinates: it.Coordinates,
		})
	}
	return cfg
}

// Export captures the session's coordinates.
func (p *Placer) Export(now time.Time) Configuration {
	return Export(p.imageURL, p.items, now)
}

// Apply restores coordinates from cfg onto items. Each entry is matched by id,
// falling back to barcode because ids may be reassigned between loads while
// barcodes stay stable. Unplaced and out-of-bounds entries never overwrite an
// item.
func Apply(items []inventory.Item, cfg Configuration) (ApplyResult, error) {
	idx := newItemIndex(items)
	return apply(items, cfg, func(e Entry) (int, bool) {
		if i, ok := idx.byID[e.ID]; ok {
			return i, true
		}
		return idx.barcode(e.Barcode)
	})
}

// Restore reapplies saved placements to a freshly loaded collection. An entry
// with a barcode only matches that barcode. An entry without one matches by id,
// and only an item that has no barcode either.
func Restore(items []inventory.Item, cfg Configuration) (ApplyResult, error) {
	idx := newItemIndex(items)
	return apply(items, cfg, func(e Entry) (int, bool) {
		if e.Barcode != "" {
			return idx.barcode(e.Barcode)
		}
		i, ok := idx.byID[e.ID]
		if !ok || items[i].Barcode != "" {
			return 0, false
		}
		return i, true
	})
}

// itemIndex maps ids and barcodes to the first item carrying them.
type itemIndex struct {
	byID      map[int64]int
	byBarcode map[string]int
}

func newItemIndex(items []inventory.Item) itemIndex {
	idx := itemIndex{
		byID:      make(map[int64]int, len(items)),
		byBarcode: make(map[string]int, len(items)),
	}
	for i := len(items) - 1; i >= 0; i-- {
		idx.byID[items[i].ID] = i
		if items[i].Barcode != "" {
			idx.byBarcode[items[i].Barcode] = i
		}
	}
	return idx
}

func (idx itemIndex) barcode(code string) (int, bool) {
	if code == "" {
		return 0, false
	}
	i, ok := idx.byBarcode[code]
	return i, ok
}

func apply(items []inventory.Item, cfg Configuration, match func(Entry) (int, bool)) (ApplyResult, error) {
	var res ApplyResult
	if cfg.Coordinates == nil {
		return res, ErrInvalidConfiguration
	}
	for _, e := range cfg.Coordinates {
		i, ok := match(e)
		if !ok {
			res.Unmatched++
			continue
		}
		x, y, placed := e.Coordinates.Values()
		if !placed {
			res.Unplaced++
			continue
		}
		if !InBounds(x, y) {
			res.Invalid++
			continue
		}
		items[i].Coordinates = inventory.At(x, y)
		res.Applied++
	}
	return res, nil
}

// Apply restores a configuration into the session.
func (p *Placer) Apply(cfg Configuration) (ApplyResult, error) {
	return Apply(p.items, cfg)
}

// ReadConfiguration decodes a configuration from JSON.
func ReadConfiguration(r io.Reader) (Configuration, error) {
	var cfg Configuration
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode coordinate configuration: %w", err)
	}
	if cfg.Coordinates == nil {
		return cfg, ErrInvalidConfiguration
	}
	return cfg, nil
}

// WriteConfiguration encodes cfg as indented JSON.
func WriteConfiguration(w io.Writer, cfg Configuration) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// FileName is the suggested download name for a configuration.
func FileName(cfg Configuration) string {
	return fmt.Sprintf("floor-plan-coordinates-%d.json", cfg.Timestamp.UnixMilli())
}
