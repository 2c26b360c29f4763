package internal

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	inv "floorplan-inventory/pkg/inventory"
)

// listParams holds common query parameters for list endpoints
type listParams struct {
	limit  int
	offset int
	sort   string
	filter inv.Filter
}

// parseListParams parses limit, offset, sort and the filter keys from the request.
// Defaults: limit=50 (max 500), offset=0
func parseListParams(r *http.Request) listParams {
	values := r.URL.Query()

	limit := 50
	if s := strings.TrimSpace(values.Get("limit")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			if v > 500 {
				v = 500
			}
			limit = v
		}
	}

	offset := 0
	if s := strings.TrimSpace(values.Get("offset")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	return listParams{
		limit:  limit,
		offset: offset,
		sort:   strings.TrimSpace(values.Get("sort")),
		filter: filterFromQuery(values.Get),
	}
}

// filterFromQuery reads the filter keys (search also accepts q).
func filterFromQuery(get func(string) string) inv.Filter {
	search := get("search")
	if search == "" {
		search = get("q")
	}
	return inv.Filter{
		Search:   strings.TrimSpace(search),
		Floor:    strings.TrimSpace(get("floor")),
		Room:     strings.TrimSpace(get("room")),
		Type:     strings.TrimSpace(get("type")),
		Family:   strings.TrimSpace(get("family")),
		Supplier: strings.TrimSpace(get("supplier")),
		User:     strings.TrimSpace(get("user")),
	}
}

// sortItems orders items by a comma-separated list of field names; a '-'
// prefix sorts descending. Unknown keys are ignored. Without a usable key
// the collection order is kept. Ties keep collection order.
func sortItems(items []inv.Item, sortParam string) {
	type key struct {
		id    bool
		field inv.Field
		desc  bool
	}
	var keys []key
	for _, raw := range strings.Split(sortParam, ",") {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		desc := strings.HasPrefix(s, "-")
		s = strings.TrimPrefix(s, "-")
		if s == "id" {
			keys = append(keys, key{id: true, desc: desc})
			continue
		}
		f, err := inv.ParseField(s)
		if err != nil {
			continue
		}
		keys = append(keys, key{field: f, desc: desc})
	}
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		for _, k := range keys {
			var c int
			if k.id {
				switch {
				case a.ID < b.ID:
					c = -1
				case a.ID > b.ID:
					c = 1
				}
			} else {
				c = strings.Compare(k.field.Value(a), k.field.Value(b))
			}
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// page returns the [offset, offset+limit) window of items.
func page(items []inv.Item, p listParams) []inv.Item {
	if p.offset >= len(items) {
		return []inv.Item{}
	}
	end := p.offset + p.limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.offset:end]
}

// listMeta describes the window returned by a list endpoint.
type listMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type listResponse struct {
	Data any      `json:"data"`
	Meta listMeta `json:"meta"`
}

func sendListResponse(w http.ResponseWriter, data any, total int, p listParams) {
	writeJSON(w, http.StatusOK, listResponse{
		Data: data,
		Meta: listMeta{Total: total, Limit: p.limit, Offset: p.offset},
	})
}
