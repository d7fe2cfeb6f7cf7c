package week

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("academic week not found")
	ErrNoActiveWeek   = core.NewNotFoundError("no active academic week")
	ErrInvalidPeriod  = errors.New("end date cannot be before start date")
	ErrActiveConflict = core.NewConflictError("another week of this school is already active")
)

type (
	// Week is an academic week. At most one week per school is active.
	Week struct {
		ID        string    `json:"id"`
		SchoolID  string    `json:"school_id"`
		Name      string    `json:"name"`
		StartDate core.Date `json:"start_date"`
		EndDate   core.Date `json:"end_date"`
		IsActive  bool      `json:"is_active"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	NewWeek struct {
		Name      string    `json:"name" validate:"required,notblank"`
		StartDate core.Date `json:"start_date"`
		EndDate   core.Date `json:"end_date"`
	}

	Repository interface {
		// CreateWeek stores w, activating it when it is the first week of its school.
		CreateWeek(ctx context.Context, w Week) (Week, error)
		// QueryWeeks returns the weeks of a school, latest start date first.
		QueryWeeks(ctx context.Context, schoolID string) ([]Week, error)
		GetWeek(ctx context.Context, schoolID, id string) (Week, error)
		GetActiveWeek(ctx context.Context, schoolID string) (Week, error)
		// SetActiveWeek deactivates all the school weeks and activates one, in a single transaction.
		SetActiveWeek(ctx context.Context, schoolID, id string) (Week, error)
		// DeleteWeek deletes the week along with its live plans.
		DeleteWeek(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo Repository
	}
)

func (nw *NewWeek) Validate(validate *validator.Validate) error {
	nw.Name = core.CleanString(nw.Name)
	if err := validate.Struct(nw); err != nil {
		return err
	}
	if nw.StartDate.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "start_date", Error: "this field is required"})
	}
	if nw.EndDate.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "this field is required"})
	}
	if nw.EndDate.Before(nw.StartDate.Time) {
		return core.NewValidationError(ErrInvalidPeriod, core.FieldError{Field: "end_date", Error: ErrInvalidPeriod.Error()})
	}
	return nil
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a week to the school. The first week of a school is created active.
func (svc *Service) Create(ctx context.Context, schoolID string, nw NewWeek) (Week, error) {
	w := Week{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Name:      core.CleanString(nw.Name),
		StartDate: nw.StartDate,
		EndDate:   nw.EndDate,
		CreatedAt: time.Now().UTC(),
	}
	w, err := svc.repo.CreateWeek(ctx, w)
	if err != nil {
		return Week{}, errors.Wrap(err, "creating week")
	}
	return w, nil
}

func (svc *Service) Query(ctx context.Context, schoolID string) ([]Week, error) {
	weeks, err := svc.repo.QueryWeeks(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying weeks")
	}
	if weeks == nil {
		weeks = []Week{}
	}
	return weeks, nil
}

func (svc *Service) Get(ctx context.Context, schoolID, id string) (Week, error) {
	return svc.repo.GetWeek(ctx, schoolID, id)
}

// GetActive returns ErrNoActiveWeek when the school has no active week.
func (svc *Service) GetActive(ctx context.Context, schoolID string) (Week, error) {
	return svc.repo.GetActiveWeek(ctx, schoolID)
}

func (svc *Service) SetActive(ctx context.Context, schoolID, id string) (Week, error) {
	w, err := svc.repo.SetActiveWeek(ctx, schoolID, id)
	if err != nil {
		return Week{}, errors.Wrap(err, "activating week")
	}
	return w, nil
}

func (svc *Service) Delete(ctx context.Context, schoolID, id string) error {
	if err := svc.repo.DeleteWeek(ctx, schoolID, id); err != nil {
		return errors.Wrap(err, "deleting week")
	}
	return nil
}
