// Package placement holds the floor-plan coordinate model: placing items on a
// normalized plan, walking the item list, exporting and re-importing the
// coordinate set, and clustering items into map markers.
package placement

import (
	"errors"
	"fmt"
	"math"

	"floorplan-inventory/pkg/inventory"
)

var (
	// ErrOutOfBounds is returned when a position falls outside the plan image.
	ErrOutOfBounds = errors.New("position outside the floor plan")
	// ErrNoCurrentItem is returned by PlaceCurrent once every item has been visited.
	ErrNoCurrentItem = errors.New("no current item")
	// ErrItemNotFound is returned when no item carries the requested id.
	ErrItemNotFound = errors.New("item not found")
)

// SelectThreshold is the normalized distance within which SelectAt picks a point.
const SelectThreshold = 0.02

// InBounds reports whether x and y lie on the plan.
func InBounds(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsNaN(y) && x >= 0 && x <= 1 && y >= 0 && y <= 1
}

// Placer assigns coordinates to a caller-owned item slice. It writes through
// to the slice; the slice must not be resized while the Placer is in use.
type Placer struct {
	imageURL string
	items    []inventory.Item
	cursor   int
}

// NewPlacer starts a placement session over items on the plan at imageURL.
func NewPlacer(imageURL string, items []inventory.Item) *Placer {
	return &Placer{imageURL: imageURL, items: items}
}

func (p *Placer) ImageURL() string { return p.imageURL }

func (p *Placer) Items() []inventory.Item { return p.items }

// Place sets the coordinates of the item at index. An out-of-bounds position
// leaves the item unchanged.
func (p *Placer) Place(index int, x, y float64) error {
	if index < 0 || index >= len(p.items) {
		return fmt.Errorf("index %d: %w", index, ErrItemNotFound)
	}
	if !InBounds(x, y) {
		return fmt.Errorf("place (%g, %g): %w", x, y, ErrOutOfBounds)
	}
	p.items[index].Coordinates = inventory.At(x, y)
	return nil
}

// PlaceByID places the first item with the given id.
func (p *Placer) PlaceByID(id int64, x, y float64) error {
	idx := p.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("item %d: %w", id, ErrItemNotFound)
	}
	return p.Place(idx, x, y)
}

func (p *Placer) indexOf(id int64) int {
	for i := range p.items {
		if p.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Current returns the item under the cursor, or false once the list is exhausted.
func (p *Placer) Current() (*inventory.Item, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items) {
		return nil, false
	}
	return &p.items[p.cursor], true
}

// Cursor is the index of the current item; len(items) means done.
func (p *Placer) Cursor() int { return p.cursor }

// PlaceCurrent places the current item and advances to the next one.
func (p *Placer) PlaceCurrent(x, y float64) error {
	if _, ok := p.Current(); !ok {
		return ErrNoCurrentItem
	}
	if err := p.Place(p.cursor, x, y); err != nil {
		return err
	}
	p.Next()
	return nil
}

// Next advances the cursor, stopping one past the last item.
func (p *Placer) Next() {
	if p.cursor < len(p.items) {
		p.cursor++
	}
}

// Previous moves the cursor back, stopping at the first item.
func (p *Placer) Previous() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// Skip leaves the current item unplaced and moves on.
func (p *Placer) Skip() { p.Next() }

// SelectAt moves the cursor to the first placed item within SelectThreshold of
// (x, y) on both axes. It reports whether one was found.
func (p *Placer) SelectAt(x, y float64) bool {
	for i := range p.items {
		px, py, ok := p.items[i].Coordinates.Values()
		if !ok {
			continue
		}
		if math.Abs(px-x) < SelectThreshold && math.Abs(py-y) < SelectThreshold {
			p.cursor = i
			return true
		}
	}
	return false
}

// Progress reports how many items are placed, out of how many, as a rounded percentage.
func (p *Placer) Progress() (placed, total, percent int) {
	total = len(p.items)
	for i := range p.items {
		if p.items[i].Coordinates.Placed() {
			placed++
		}
	}
	if total > 0 {
		percent = int(math.Round(float64(placed) / float64(total) * 100))
	}
	return placed, total, percent
}

// Normalize converts a click at pixel (px, py) on a rendered plan of the given
// size into plan coordinates. The result may be out of bounds.
func Normalize(px, py, width, height float64) (x, y float64) {
	if width <= 0 || height <= 0 {
		return math.NaN(), math.NaN()
	}
	return px / width, py / height
}

// ToPixels converts placed coordinates to pixels on a rendered plan.
func ToPixels(c inventory.Coordinates, width, height float64) (px, py float64, ok bool) {
	x, y, ok := c.Values()
	if !ok {
		return 0, 0, false
	}
	return x * width, y * height, true
}
