package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"floorplan-inventory/internal/apiclient"
	"floorplan-inventory/internal/auth"

	"github.com/go-chi/chi/v5"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError sends the same {error, code} body as the auth middleware.
func writeError(w http.ResponseWriter, status int, code, message string) {
	auth.WriteError(w, status, code, message)
}

// decodeJSON reads a single JSON value from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

// writeUpstreamError maps a REST collaborator failure. A collaborator 404 is
// passed through; everything else is a bad gateway.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		if apiErr.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		writeError(w, status, apiErr.Code, apiErr.LocalizedMessage())
		return
	}
	writeError(w, http.StatusBadGateway, apiclient.CodeGeneric, err.Error())
}
