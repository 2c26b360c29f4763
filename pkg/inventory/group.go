package inventory

// UnknownKey labels items whose grouping key is empty.
const UnknownKey = "Unknown"

// Group is the ordered list of items sharing one key.
type Group struct {
	Key   string `json:"key"`
	Items []Item `json:"items"`
}

// GroupBy partitions items by key. Groups appear in order of the first item
// carrying each key and items keep their input order inside a group.
func GroupBy(items []Item, key func(*Item) string) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for i := range items {
		k := key(&items[i])
		if k == "" {
			k = UnknownKey
		}
		pos, ok := index[k]
		if !ok {
			pos = len(groups)
			index[k] = pos
			groups = append(groups, Group{Key: k})
		}
		groups[pos].Items = append(groups[pos].Items, items[i])
	}
	return groups
}

// GroupByField groups items on a known field.
func GroupByField(items []Item, field Field) []Group {
	return GroupBy(items, field.Value)
}

func GroupByFloor(items []Item) []Group { return GroupByField(items, FieldFloor) }

func GroupByRoom(items []Item) []Group { return GroupByField(items, FieldRoom) }

// Flatten concatenates the groups' items.
func Flatten(groups []Group) []Item {
	n := 0
	for _, g := range groups {
		n += len(g.Items)
	}
	out := make([]Item, 0, n)
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}
