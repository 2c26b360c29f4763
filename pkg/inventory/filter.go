package inventory

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter is the set of list constraints. Empty values do not constrain.
type Filter struct {
	Search   string `json:"search"`
	Floor    string `json:"floor"`
	Room     string `json:"room"`
	Type     string `json:"type"`
	Family   string `json:"family"`
	Supplier string `json:"supplier"`
	User     string `json:"user"`
}

// IsZero reports whether no constraint is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Merge overlays the non-empty values of other onto f.
func (f Filter) Merge(other Filter) Filter {
	pick := func(cur, next string) string {
		if next != "" {
			return next
		}
		return cur
	}
	return Filter{
		Search:   pick(f.Search, other.Search),
		Floor:    pick(f.Floor, other.Floor),
		Room:     pick(f.Room, other.Room),
		Type:     pick(f.Type, other.Type),
		Family:   pick(f.Family, other.Family),
		Supplier: pick(f.Supplier, other.Supplier),
		User:     pick(f.User, other.User),
	}
}

// Match reports whether it satisfies every non-empty constraint. Surrounding
// blanks in the search term are ignored.
func (f Filter) Match(it *Item) bool {
	if term := strings.TrimSpace(f.Search); term != "" && !matchesSearch(it, strings.ToLower(term)) {
		return false
	}
	if f.Floor != "" && it.Location.FloorName() != f.Floor {
		return false
	}
	if f.Room != "" && it.Location.RoomName() != f.Room {
		return false
	}
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	if f.Family != "" && it.Family != f.Family {
		return false
	}
	if f.Supplier != "" && it.Supplier != f.Supplier {
		return false
	}
	if f.User != "" && it.User != f.User {
		return false
	}
	return true
}

// Apply returns the items matching f, in input order.
func (f Filter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for i := range items {
		if f.Match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// searchText is the haystack for free-text search.
func searchText(it *Item) string {
	return strings.ToLower(it.Designation + " " + it.Reference + " " + it.Barcode + " " + it.User)
}

func matchesSearch(it *Item, lowered string) bool {
	return strings.Contains(searchText(it), lowered)
}

// FilterBySearch keeps items whose designation, reference, barcode or user
// contain term, ignoring case. A blank term keeps everything.
func FilterBySearch(items []Item, term string) []Item {
	term = strings.TrimSpace(term)
	if term == "" {
		return items
	}
	return Filter{Search: term}.Apply(items)
}

// FilterByFloor keeps items located on floor.
func FilterByFloor(items []Item, floor string) []Item {
	return filterBy(items, func(it *Item) bool {
		return it.Location.Floor != nil && *it.Location.Floor == floor
	})
}

// FilterByRoom keeps items located in room.
func FilterByRoom(items []Item, room string) []Item {
	return filterBy(items, func(it *Item) bool {
		return it.Location.Room != nil && *it.Location.Room == room
	})
}

func filterBy(items []Item, keep func(*Item) bool) []Item {
	out := make([]Item, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

func distinct(items []Item, field Field) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for i := range items {
		v := field.Value(&items[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}

// UniqueValues returns the distinct non-empty values of field, sorted by code point.
func UniqueValues(items []Item, field Field) []string {
	values := distinct(items, field)
	sort.Strings(values)
	return values
}

// UniqueValuesCollated is UniqueValues ordered with the collation rules of tag,
// so that "Étage 2" sorts next to "Etage 1" for French.
func UniqueValuesCollated(items []Item, field Field, tag language.Tag) []string {
	values := distinct(items, field)
	collate.New(tag).SortStrings(values)
	return values
}
