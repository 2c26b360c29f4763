// Package reservations books furniture for a time window.
package reservations

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"floorplan-inventory/internal/models"
	"floorplan-inventory/internal/store"
	inv "floorplan-inventory/pkg/inventory"
)

// User-facing messages. The form is French.
const (
	MsgRequired         = "Veuillez remplir tous les champs obligatoires"
	MsgSelectFurniture  = "Veuillez sélectionner un meuble"
	MsgEndBeforeStart   = "La date de fin doit être postérieure à la date de début"
	MsgInvalidEmail     = "Adresse e-mail invalide"
	MsgInvalidFormat    = "Format invalide"
	MsgTooLong          = "Valeur trop longue"
	MsgUnavailable      = "Ce meuble est déjà réservé sur cette période"
	MsgUnknownFurniture = "Meuble introuvable"
	MsgAvailable        = "Disponible"
)

var (
	ErrEndBeforeStart   = errors.New(MsgEndBeforeStart)
	ErrUnavailable      = errors.New(MsgUnavailable)
	ErrUnknownFurniture = errors.New(MsgUnknownFurniture)
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Request is the reservation form as submitted.
type Request struct {
	FurnitureID int64  `json:"furnitureId" validate:"required,gt=0"`
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required,datetime=15:04"`
	EndDate     string `json:"endDate" validate:"required,datetime=2006-01-02"`
	EndTime     string `json:"endTime" validate:"required,datetime=15:04"`
	UserName    string `json:"userName" validate:"required,max=200"`
	UserEmail   string `json:"userEmail" validate:"required,email,max=254"`
	UserPhone   string `json:"userPhone" validate:"omitempty,max=30"`
	Department  string `json:"department" validate:"omitempty,max=200"`
	Location    string `json:"location" validate:"omitempty,max=200"`
	Purpose     string `json:"purpose" validate:"omitempty,max=1000"`
}

func (r *Request) trim() {
	for _, f := range []*string{
		&r.StartDate, &r.StartTime, &r.EndDate, &r.EndTime,
		&r.UserName, &r.UserEmail, &r.UserPhone, &r.Department, &r.Location, &r.Purpose,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// FieldError is one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every rejected field of a request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	return v[0].Message
}

// Defaults is the form pre-filled the way the page opens it: today 08:00 to tomorrow 17:00.
func Defaults(now time.Time) Request {
	return Request{
		StartDate: now.Format(dateLayout),
		StartTime: "08:00",
		EndDate:   now.AddDate(0, 0, 1).Format(dateLayout),
		EndTime:   "17:00",
	}
}

// ItemLookup resolves a furniture id. *inventory.Service satisfies it.
type ItemLookup interface {
	Item(id int64) (inv.Item, bool)
}

// Service validates and stores reservations. The availability check and the
// insert happen under one lock so two bookings cannot both win a slot.
type Service struct {
	mu       sync.Mutex
	store    store.Store
	items    ItemLookup
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

// New creates a service. Form dates and times are read in loc.
func New(st store.Store, items ItemLookup, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:    st,
		items:    items,
		validate: newValidator(),
		loc:      loc,
		now:      time.Now,
	}
}

// Validate checks the form and returns its time window.
func (s *Service) Validate(req *Request) (start, end time.Time, err error) {
	req.trim()
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return start, end, translate(verrs)
		}
		return start, end, err
	}

	start, err = time.ParseInLocation(dateLayout+" "+timeLayout, req.StartDate+" "+req.StartTime, s.loc)
	if err != nil {
		return start, end, ValidationErrors{{Field: "startDate", Message: MsgInvalidFormat}}
	}
	end, err = time.ParseInLocation(dateLayout+" "+timeLayout, req.EndDate+" "+req.EndTime, s.loc)
	if err != nil {
		return start, end, ValidationErrors{{Field: "endDate", Message: MsgInvalidFormat}}
	}
	if !end.After(start) {
		return start, end, ErrEndBeforeStart
	}
	return start, end, nil
}

func translate(verrs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		msg := MsgInvalidFormat
		switch {
		case field == "furnitureId":
			msg = MsgSelectFurniture
		case fe.Tag() == "required":
			msg = MsgRequired
		case fe.Tag() == "email":
			msg = MsgInvalidEmail
		case fe.Tag() == "max":
			msg = MsgTooLong
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Availability reports whether furnitureID is free over [start, end).
func (s *Service) Availability(ctx context.Context, furnitureID int64, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, ErrEndBeforeStart
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.free(ctx, models.Reservation{FurnitureID: furnitureID, Start: start, End: end})
}

func (s *Service) free(ctx context.Context, want models.Reservation) (bool, error) {
	existing, err := s.store.Reservations(ctx, want.FurnitureID)
	if err != nil {
		return false, fmt.Errorf("list reservations: %w", err)
	}
	for _, r := range existing {
		if r.Overlaps(want) {
			return false, nil
		}
	}
	return true, nil
}

// Book validates req, checks that the item exists and is free, and stores the reservation.
func (s *Service) Book(ctx context.Context, req Request) (models.Reservation, error) {
	start, end, err := s.Validate(&req)
	if err != nil {
		return models.Reservation{}, err
	}

	item, ok := s.items.Item(req.FurnitureID)
	if !ok {
		return models.Reservation{}, ErrUnknownFurniture
	}

	r := models.Reservation{
		ID:                 uuid.NewString(),
		FurnitureID:        req.FurnitureID,
		FurnitureReference: item.Reference,
		Start:              start.UTC(),
		End:                end.UTC(),
		UserName:           req.UserName,
		UserEmail:          req.UserEmail,
		UserPhone:          req.UserPhone,
		Department:         req.Department,
		Location:           req.Location,
		Purpose:            req.Purpose,
		CreatedAt:          s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	free, err := s.free(ctx, r)
	if err != nil {
		return models.Reservation{}, err
	}
	if !free {
		return models.Reservation{}, ErrUnavailable
	}
	if err := s.store.AddReservation(ctx, r); err != nil {
		return models.Reservation{}, fmt.Errorf("save reservation: %w", err)
	}
	return r, nil
}

// List returns reservations ordered by start; furnitureID 0 lists all.
func (s *Service) List(ctx context.Context, furnitureID int64) ([]models.Reservation, error) {
	return s.store.Reservations(ctx, furnitureID)
}
