package internal

import (
	"net/http"
	"strings"

	"floorplan-inventory/internal/apiclient"
	"floorplan-inventory/internal/models"

	"github.com/go-playground/validator/v10"
)

var locationValidator = validator.New(validator.WithRequiredStructEnabled())

// requireAPI writes 503 when no REST collaborator is configured.
func (s *Server) requireAPI(w http.ResponseWriter) bool {
	if s.api == nil {
		writeError(w, http.StatusServiceUnavailable, apiclient.CodeAPIUnavailable, "no inventory API configured")
		return false
	}
	return true
}

// listLocations proxies the collaborator; ?building= narrows to one building.
func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	var (
		list []models.Location
		err  error
	)
	if b := strings.TrimSpace(r.URL.Query().Get("building")); b != "" {
		list, err = s.api.LocationsByBuilding(r.Context(), b)
	} else {
		list, err = s.api.ListLocations(r.Context())
	}
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

func (s *Server) getLocation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	loc, err := s.api.GetLocation(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) listFurnitureAtLocation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	list, err := s.api.FurnitureAt(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

func (s *Server) decodeLocation(w http.ResponseWriter, r *http.Request) (models.Location, bool) {
	var l models.Location
	if err := decodeJSON(w, r, &l); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return l, false
	}
	l.BuildingName = strings.TrimSpace(l.BuildingName)
	if err := locationValidator.Struct(l); err != nil {
		writeError(w, http.StatusBadRequest, apiclient.CodeValidation, "buildingName is required")
		return l, false
	}
	return l, true
}

func (s *Server) createLocation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	l, ok := s.decodeLocation(w, r)
	if !ok {
		return
	}
	created, err := s.api.CreateLocation(r.Context(), l)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	l, ok := s.decodeLocation(w, r)
	if !ok {
		return
	}
	updated, err := s.api.UpdateLocation(r.Context(), id, l)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) assignLocation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	locationID, err := idParam(r, "locationId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	if err := s.api.AssignLocation(r.Context(), id, locationID); err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// searchFurniture proxies the collaborator search (reference, famille, site).
func (s *Server) searchFurniture(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	q := r.URL.Query()
	list, err := s.api.SearchFurniture(r.Context(), models.FurnitureSearch{
		Reference: strings.TrimSpace(q.Get("reference")),
		Family:    strings.TrimSpace(q.Get("famille")),
		Site:      strings.TrimSpace(q.Get("site")),
	})
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

func (s *Server) listActiveTags(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	tags, err := s.api.ActiveTags(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tags})
}

func (s *Server) listActiveReaders(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	readers, err := s.api.ActiveReaders(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": readers})
}

func (s *Server) processTagRead(w http.ResponseWriter, r *http.Request) {
	if !s.requireAPI(w) {
		return
	}
	var read models.TagRead
	if err := decodeJSON(w, r, &read); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if strings.TrimSpace(read.TagID) == "" || strings.TrimSpace(read.ReaderID) == "" {
		writeError(w, http.StatusBadRequest, apiclient.CodeValidation, "tagId and readerId are required")
		return
	}
	if err := s.api.ProcessRead(r.Context(), read); err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
