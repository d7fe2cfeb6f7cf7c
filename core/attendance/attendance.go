package attendance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/schedule"
)

var ErrNotFound = core.NewNotFoundError("attendance report not found")

type (
	// Report is a teacher's absence record for one class session.
	// Reports are append-only apart from the archive flag.
	Report struct {
		ID          string       `json:"id"`
		SchoolID    string       `json:"school_id"`
		Date        core.Date    `json:"date"`
		Day         schedule.Day `json:"day"`
		TeacherName string       `json:"teacher_name"`
		ClassName   string       `json:"class_name"`
		AbsentCount int          `json:"absent_count"`
		Students    []string     `json:"students"`
		IsArchived  bool         `json:"is_archived"`
		CreatedAt   time.Time    `json:"created_at"` // UTC
	}

	NewReport struct {
		Date        core.Date `json:"date"`
		Day         string    `json:"day" validate:"required"`
		TeacherName string    `json:"teacher_name" validate:"required,notblank"`
		ClassName   string    `json:"class_name" validate:"required,notblank"`
		Students    []string  `json:"students"`
	}

	QueryFilter struct {
		Archived *bool `query:"archived"`
	}

	Repository interface {
		CreateReport(ctx context.Context, r Report) (Report, error)
		// QueryReports returns the latest reports first.
		QueryReports(ctx context.Context, schoolID string, filter QueryFilter) ([]Report, error)
		GetReport(ctx context.Context, schoolID, id string) (Report, error)
		SetArchived(ctx context.Context, schoolID, id string, archived bool) (Report, error)
	}

	Service struct {
		repo Repository
	}
)

func (nr *NewReport) Validate(validate *validator.Validate) error {
	nr.TeacherName = core.CleanString(nr.TeacherName)
	nr.ClassName = core.CleanString(nr.ClassName)
	if err := validate.Struct(nr); err != nil {
		return err
	}
	if nr.Date.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}
	if _, err := schedule.ParseDay(nr.Day); err != nil {
		return err
	}
	return nil
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit records a report. The absent count is the number of listed students.
func (svc *Service) Submit(ctx context.Context, schoolID string, nr NewReport) (Report, error) {
	day, err := schedule.ParseDay(nr.Day)
	if err != nil {
		return Report{}, err
	}
	students := make([]string, 0, len(nr.Students))
	for _, s := range nr.Students {
		if s = core.CleanString(s); s != "" {
			students = append(students, s)
		}
	}
	r := Report{
		ID:          uuid.NewString(),
		SchoolID:    schoolID,
		Date:        nr.Date,
		Day:         day,
		TeacherName: nr.TeacherName,
		ClassName:   nr.ClassName,
		AbsentCount: len(students),
		Students:    students,
		CreatedAt:   time.Now().UTC(),
	}
	r, err = svc.repo.CreateReport(ctx, r)
	if err != nil {
		return Report{}, errors.Wrap(err, "creating attendance report")
	}
	return r, nil
}

func (svc *Service) Query(ctx context.Context, schoolID string, filter QueryFilter) ([]Report, error) {
	reports, err := svc.repo.QueryReports(ctx, schoolID, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance reports")
	}
	if reports == nil {
		reports = []Report{}
	}
	return reports, nil
}

// SetArchived toggles the archive flag of a report.
func (svc *Service) SetArchived(ctx context.Context, schoolID, id string, archived bool) (Report, error) {
	r, err := svc.repo.SetArchived(ctx, schoolID, id, archived)
	if err != nil {
		return Report{}, errors.Wrap(err, "archiving attendance report")
	}
	return r, nil
}
