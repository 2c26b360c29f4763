package inventory

import "sort"

// Statistics summarises an item collection.
type Statistics struct {
	Total    int            `json:"total"`
	Floors   int            `json:"floors"`
	Rooms    int            `json:"rooms"`
	Families int            `json:"families"`
	ByFloor  map[string]int `json:"byFloor"`
	ByFamily map[string]int `json:"byFamily"`
	ByType   map[string]int `json:"byType"`
}

// ComputeStatistics counts items in a single pass. Empty keys are counted
// under UnknownKey in the frequency tables but not in the unique counts.
func ComputeStatistics(items []Item) Statistics {
	stats := Statistics{
		Total:    len(items),
		ByFloor:  make(map[string]int),
		ByFamily: make(map[string]int),
		ByType:   make(map[string]int),
	}

	floors := make(map[string]struct{})
	rooms := make(map[string]struct{})
	families := make(map[string]struct{})

	for i := range items {
		it := &items[i]
		floor := it.Location.FloorName()
		room := it.Location.RoomName()

		if floor != "" {
			floors[floor] = struct{}{}
		}
		if room != "" {
			rooms[room] = struct{}{}
		}
		if it.Family != "" {
			families[it.Family] = struct{}{}
		}

		stats.ByFloor[orUnknown(floor)]++
		stats.ByFamily[orUnknown(it.Family)]++
		stats.ByType[orUnknown(it.Type)]++
	}

	stats.Floors = len(floors)
	stats.Rooms = len(rooms)
	stats.Families = len(families)
	return stats
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownKey
	}
	return s
}

// Count is one row of a ranked frequency table.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Ranked orders a frequency table by descending count, then key, and keeps
// the first limit rows. limit <= 0 keeps all rows.
func Ranked(counts map[string]int, limit int) []Count {
	rows := make([]Count, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, Count{Key: k, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
