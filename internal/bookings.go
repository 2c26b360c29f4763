package internal

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"floorplan-inventory/internal/reservations"
)

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request) {
	var furnitureID int64
	if v := strings.TrimSpace(r.URL.Query().Get("furnitureId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "furnitureId must be a positive integer")
			return
		}
		furnitureID = id
	}
	list, err := s.bookings.List(r.Context(), furnitureID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

type reservationErrorResponse struct {
	Error  string                        `json:"error"`
	Code   string                        `json:"code"`
	Fields reservations.ValidationErrors `json:"fields,omitempty"`
}

func (s *Server) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reservations.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	res, err := s.bookings.Book(r.Context(), req)
	var verrs reservations.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, reservationErrorResponse{
			Error:  verrs.Error(),
			Code:   "VALIDATION_FAILED",
			Fields: verrs,
		})
	case errors.Is(err, reservations.ErrEndBeforeStart):
		writeJSON(w, http.StatusBadRequest, reservationErrorResponse{
			Error:  err.Error(),
			Code:   "END_BEFORE_START",
			Fields: reservations.ValidationErrors{{Field: "endDate", Message: err.Error()}},
		})
	case errors.Is(err, reservations.ErrUnknownFurniture):
		writeError(w, http.StatusNotFound, "UNKNOWN_FURNITURE", err.Error())
	case errors.Is(err, reservations.ErrUnavailable):
		writeError(w, http.StatusConflict, "UNAVAILABLE", err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "BOOKING_FAILED", err.Error())
	default:
		writeJSON(w, http.StatusCreated, res)
	}
}

// reservationDefaults returns the pre-filled form, optionally for ?furnitureId=.
func (s *Server) reservationDefaults(w http.ResponseWriter, r *http.Request) {
	form := reservations.Defaults(time.Now().In(s.cfg.Location()))
	if v := r.URL.Query().Get("furnitureId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			form.FurnitureID = id
		}
	}
	writeJSON(w, http.StatusOK, form)
}

// checkAvailability takes the same date and time fields as the form.
func (s *Server) checkAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("furnitureId"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", reservations.MsgSelectFurniture)
		return
	}

	loc := s.cfg.Location()
	start, err1 := time.ParseInLocation("2006-01-02 15:04", q.Get("startDate")+" "+q.Get("startTime"), loc)
	end, err2 := time.ParseInLocation("2006-01-02 15:04", q.Get("endDate")+" "+q.Get("endTime"), loc)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORMAT", reservations.MsgInvalidFormat)
		return
	}

	free, err := s.bookings.Availability(r.Context(), id, start, end)
	switch {
	case errors.Is(err, reservations.ErrEndBeforeStart):
		writeError(w, http.StatusBadRequest, "END_BEFORE_START", err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "AVAILABILITY_FAILED", err.Error())
	default:
		msg := reservations.MsgAvailable
		if !free {
			msg = reservations.MsgUnavailable
		}
		writeJSON(w, http.StatusOK, map[string]any{"available": free, "message": msg})
	}
}
