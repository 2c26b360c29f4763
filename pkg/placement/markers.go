package placement

import "floorplan-inventory/pkg/inventory"

// Marker is one clustered point on the plan: every item of a room, drawn at
// the position of the room's first item.
type Marker struct {
	Room    string  `json:"room"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Count   int     `json:"count"`
	ItemIDs []int64 `json:"itemIds"`
}

// Markers clusters items by room. When floor is non-empty only items on that
// floor are considered. A room whose first item is unplaced gets no marker,
// even if later items in it are placed.
func Markers(items []inventory.Item, floor string) []Marker {
	visible := items
	if floor != "" {
		visible = inventory.FilterByFloor(items, floor)
	}

	markers := make([]Marker, 0)
	for _, g := range inventory.GroupByRoom(visible) {
		x, y, ok := g.Items[0].Coordinates.Values()
		if !ok {
			continue
		}
		m := Marker{Room: g.Key, X: x, Y: y, Count: len(g.Items), ItemIDs: make([]int64, 0, len(g.Items))}
		for _, it := range g.Items {
			m.ItemIDs = append(m.ItemIDs, it.ID)
		}
		markers = append(markers, m)
	}
	return markers
}
