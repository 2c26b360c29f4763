package internal

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"floorplan-inventory/internal/auth"
	"floorplan-inventory/internal/inventory"
	inv "floorplan-inventory/pkg/inventory"
	"floorplan-inventory/pkg/placement"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
)

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.inventory.Status())
}

// listItems serves the session filter overlaid with the query filter, sorted and paged.
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	items := s.inventory.Query(params.filter)
	sortItems(items, normalizeSort(params.sort))
	sendListResponse(w, page(items, params), len(items), params)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	it, ok := s.inventory.Item(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// parseFieldName accepts the dotted names and the bare location parts ("floor").
func parseFieldName(name string) (inv.Field, error) {
	f, err := inv.ParseField(name)
	if err == nil {
		return f, nil
	}
	if !strings.Contains(name, ".") {
		if f, lerr := inv.ParseField("location." + name); lerr == nil {
			return f, nil
		}
	}
	return 0, err
}

func normalizeSort(sortParam string) string {
	if sortParam == "" {
		return ""
	}
	parts := strings.Split(sortParam, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		prefix := ""
		if strings.HasPrefix(p, "-") {
			prefix, p = "-", p[1:]
		}
		if f, err := parseFieldName(p); err == nil {
			p = f.String()
		}
		parts[i] = prefix + p
	}
	return strings.Join(parts, ",")
}

func (s *Server) getFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.inventory.Filter())
}

// setFilters merges the body into the session filter. Keys absent or empty keep their value.
func (s *Server) setFilters(w http.ResponseWriter, r *http.Request) {
	var f inv.Filter
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.inventory.SetFilters(f))
}

func (s *Server) clearFilters(w http.ResponseWriter, _ *http.Request) {
	s.inventory.ClearFilters()
	w.WriteHeader(http.StatusNoContent)
}

// listFieldValues returns the distinct values of one field. ?collate=<bcp47>
// orders them for that locale instead of by code point.
func (s *Server) listFieldValues(w http.ResponseWriter, r *http.Request) {
	field, err := parseFieldName(chi.URLParam(r, "field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_FIELD", err.Error())
		return
	}

	var tag *language.Tag
	if c := strings.TrimSpace(r.URL.Query().Get("collate")); c != "" {
		t, err := language.Parse(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_LOCALE", err.Error())
			return
		}
		tag = &t
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"field":  field.String(),
		"values": s.inventory.UniqueValues(field, tag),
	})
}

type statisticsResponse struct {
	inv.Statistics
	TopFloors   []inv.Count `json:"topFloors"`
	TopFamilies []inv.Count `json:"topFamilies"`
	TopTypes    []inv.Count `json:"topTypes"`
}

// getStatistics adds ranked tables; ?top=N limits them (default 10, 0 keeps all).
func (s *Server) getStatistics(w http.ResponseWriter, r *http.Request) {
	top := 10
	if v := strings.TrimSpace(r.URL.Query().Get("top")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_TOP", "top must be a non-negative integer")
			return
		}
		top = n
	}
	stats := s.inventory.Statistics()
	writeJSON(w, http.StatusOK, statisticsResponse{
		Statistics:  stats,
		TopFloors:   inv.Ranked(stats.ByFloor, top),
		TopFamilies: inv.Ranked(stats.ByFamily, top),
		TopTypes:    inv.Ranked(stats.ByType, top),
	})
}

func (s *Server) listMarkers(w http.ResponseWriter, r *http.Request) {
	markers := s.inventory.Markers(strings.TrimSpace(r.URL.Query().Get("floor")))
	if markers == nil {
		markers = []placement.Marker{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imageUrl": s.inventory.ImageURL(),
		"markers":  markers,
	})
}

type placeRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (s *Server) placeItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	var req placeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "MISSING_COORDINATES", "x and y are required")
		return
	}

	it, err := s.inventory.Place(r.Context(), id, *req.X, *req.Y)
	switch {
	case errors.Is(err, placement.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, placement.ErrOutOfBounds):
		writeError(w, http.StatusUnprocessableEntity, "OUT_OF_BOUNDS", err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "PLACEMENT_FAILED", err.Error())
	default:
		log.Printf("item %d placed at (%g, %g) by %q", id, *req.X, *req.Y, auth.SubjectFromContext(r.Context()))
		writeJSON(w, http.StatusOK, it)
	}
}

// exportCoordinates serves the configuration as a download.
func (s *Server) exportCoordinates(w http.ResponseWriter, _ *http.Request) {
	cfg := s.inventory.ExportCoordinates()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+placement.FileName(cfg)+`"`)
	if err := placement.WriteConfiguration(w, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", err.Error())
	}
}

func (s *Server) importCoordinates(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 20<<20)
	cfg, err := placement.ReadConfiguration(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CONFIGURATION", err.Error())
		return
	}
	res, err := s.inventory.ImportCoordinates(r.Context(), cfg)
	if err != nil {
		if errors.Is(err, placement.ErrInvalidConfiguration) {
			writeError(w, http.StatusBadRequest, "INVALID_CONFIGURATION", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "IMPORT_FAILED", err.Error())
		return
	}
	log.Printf("coordinates imported by %q: %d applied, %d unmatched", auth.SubjectFromContext(r.Context()), res.Applied, res.Unmatched)
	writeJSON(w, http.StatusOK, res)
}

// reload fetches the configured source again.
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, http.StatusNotImplemented, "NO_SOURCE", "no inventory source configured")
		return
	}
	log.Printf("reload of %s requested by %q", s.source.Name(), auth.SubjectFromContext(r.Context()))
	res, err := s.inventory.Load(r.Context(), s.source)
	switch {
	case errors.Is(err, inventory.ErrStaleLoad):
		writeError(w, http.StatusConflict, "STALE_LOAD", err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, "LOAD_FAILED", err.Error())
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
