// Package handlers holds HTTP handlers that are mounted by the server but do
// not depend on its internals.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"floorplan-inventory/internal/auth"
	"floorplan-inventory/internal/inventory"
	"floorplan-inventory/pkg/importer"
)

// Loader replaces the live collection. *inventory.Service satisfies it.
type Loader interface {
	Load(ctx context.Context, src inventory.Source) (inventory.LoadResult, error)
}

// ImportsHandler handles spreadsheet uploads that replace the collection.
type ImportsHandler struct {
	Inventory  Loader
	MaxBytes   int64
	DefaultMap string
}

// NewImportsHandler creates a new imports handler. mapping may be empty for
// the built-in column mapping.
func NewImportsHandler(loader Loader, mapping string) *ImportsHandler {
	return &ImportsHandler{
		Inventory:  loader,
		MaxBytes:   20 << 20, // 20 MB
		DefaultMap: mapping,
	}
}

// Upload reads an .xlsx or .csv upload. With dry_run=true only the read
// summary is returned; otherwise the items replace the collection.
func (h *ImportsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		auth.WriteError(w, http.StatusBadRequest, "INVALID_CONTENT_TYPE", "content-type must be multipart/form-data")
		return
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		auth.WriteError(w, http.StatusBadRequest, "INVALID_FORM", "invalid multipart form: "+err.Error())
		return
	}

	opts, err := h.options(r)
	if err != nil {
		auth.WriteError(w, http.StatusBadRequest, "INVALID_OPTIONS", err.Error())
		return
	}
	dryRun := r.FormValue("dry_run") == "true"

	file, header, err := r.FormFile("file")
	if err != nil {
		auth.WriteError(w, http.StatusBadRequest, "MISSING_FILE", "file is required: "+err.Error())
		return
	}
	defer file.Close()

	if !isSpreadsheet(header) {
		auth.WriteError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "only .xlsx and .csv files are accepted")
		return
	}

	items, sum, err := importer.Read(file, header.Filename, opts)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   err.Error(),
			"code":    "IMPORT_FAILED",
			"summary": sum,
		})
		return
	}

	resp := map[string]any{
		"summary": sum,
		"dryRun":  dryRun,
		"meta": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if !dryRun {
		res, err := h.Inventory.Load(r.Context(), inventory.StaticSource{Label: header.Filename, Items: items})
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, inventory.ErrStaleLoad) {
				status = http.StatusConflict
			}
			auth.WriteError(w, status, "LOAD_FAILED", err.Error())
			return
		}
		log.Printf("import %s by %q replaced the collection (%d items)", header.Filename, auth.SubjectFromContext(r.Context()), res.Items)
		resp["load"] = res
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ImportsHandler) options(r *http.Request) (importer.Options, error) {
	opts := importer.Options{
		MappingPath: h.DefaultMap,
		Encoding:    r.FormValue("encoding"),
	}
	if v := r.FormValue("delimiter"); v != "" {
		d, size := utf8.DecodeRuneInString(v)
		if size != len(v) || d == utf8.RuneError {
			return opts, errors.New("delimiter must be a single character")
		}
		opts.Delimiter = d
	}
	if v := r.FormValue("max_errors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errors.New("max_errors must be a positive integer")
		}
		opts.MaxErrors = n
	}
	return opts, nil
}

// isSpreadsheet checks the upload's extension. .xls is refused.
func isSpreadsheet(h *multipart.FileHeader) bool {
	switch strings.ToLower(filepath.Ext(h.Filename)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("write import response: %v", err)
	}
}
