package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

// Students

func (svc *Service) newStudent(schoolID string, ns NewStudent) Student {
	return Student{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Name:      ns.Name,
		Grade:     ns.Grade,
		Section:   ns.Section,
		Phone:     ns.Phone,
		CreatedAt: time.Now().UTC(),
	}
}

func (svc *Service) CreateStudent(ctx context.Context, schoolID string, ns NewStudent) (Student, error) {
	s, err := svc.repo.CreateStudent(ctx, svc.newStudent(schoolID, ns))
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	return s, nil
}

// SaveBulkStudents saves the students one by one and keeps going on failures.
// When any student fails, a *core.BulkError carries the saved and failed counts along with the first error.
func (svc *Service) SaveBulkStudents(ctx context.Context, validate *validator.Validate, schoolID string, students []NewStudent) (int, error) {
	var (
		saved, failed int
		firstErr      error
	)
	for i := range students {
		ns := students[i]
		err := ns.Validate(validate)
		if err == nil {
			_, err = svc.repo.CreateStudent(ctx, svc.newStudent(schoolID, ns))
		}
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "saving student #%d", i)
			}
			continue
		}
		saved++
	}
	if failed > 0 {
		return saved, &core.BulkError{Saved: saved, Failed: failed, Err: firstErr}
	}
	return saved, nil
}

func (svc *Service) QueryStudents(ctx context.Context, schoolID string, ordering ...core.DBOrdering) ([]Student, error) {
	students, err := svc.repo.QueryStudents(ctx, schoolID, core.FilterOrderings(ordering, StudentOrderingFields...)...)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []Student{}
	}
	return students, nil
}

func (svc *Service) DeleteStudent(ctx context.Context, schoolID, id string) error {
	if err := svc.repo.DeleteStudent(ctx, schoolID, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}

// Classes

func (svc *Service) QueryClasses(ctx context.Context, schoolID string) ([]SchoolClass, error) {
	classes, err := svc.repo.QueryClasses(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []SchoolClass{}
	}
	return classes, nil
}

// CreateClass adds a manual class. Manual classes are never removed by SyncClasses.
func (svc *Service) CreateClass(ctx context.Context, schoolID string, nc NewClass) (SchoolClass, error) {
	c, err := svc.repo.CreateClass(ctx, SchoolClass{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Grade:     nc.Grade,
		Section:   nc.Section,
		Manual:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if core.IsConflict(err) {
			return SchoolClass{}, core.NewValidationError(ErrClassExists, core.FieldError{Field: "section", Error: ErrClassExists.Error()})
		}
		return SchoolClass{}, errors.Wrap(err, "creating class")
	}
	return c, nil
}

func (svc *Service) DeleteClass(ctx context.Context, schoolID, id string) error {
	if err := svc.repo.DeleteClass(ctx, schoolID, id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return nil
}

// SyncClasses aligns the classes with the student roster: a class is added for every
// (grade, section) pair having students, non-manual classes without students are removed.
func (svc *Service) SyncClasses(ctx context.Context, schoolID string) (SyncResult, error) {
	res := SyncResult{Added: []SchoolClass{}, Removed: []SchoolClass{}}

	students, err := svc.repo.QueryStudents(ctx, schoolID)
	if err != nil {
		return res, errors.Wrap(err, "querying students")
	}
	classes, err := svc.repo.QueryClasses(ctx, schoolID)
	if err != nil {
		return res, errors.Wrap(err, "querying classes")
	}

	rostered := make(map[core.ClassTitle]bool)
	for _, s := range students {
		rostered[s.ClassTitle()] = true
	}
	existing := make(map[core.ClassTitle]bool, len(classes))
	for _, c := range classes {
		existing[c.Title()] = true
		if c.Manual || rostered[c.Title()] {
			continue
		}
		if err := svc.repo.DeleteClass(ctx, schoolID, c.ID); err != nil {
			return res, errors.Wrap(err, "deleting class")
		}
		res.Removed = append(res.Removed, c)
	}

	now := time.Now().UTC()
	for _, s := range students {
		title := s.ClassTitle()
		if existing[title] {
			continue
		}
		c, err := svc.repo.CreateClass(ctx, SchoolClass{
			ID:        uuid.NewString(),
			SchoolID:  schoolID,
			Grade:     title.Grade,
			Section:   title.Section,
			CreatedAt: now,
		})
		if err != nil {
			return res, errors.Wrap(err, "creating class")
		}
		existing[title] = true
		res.Added = append(res.Added, c)
	}
	return res, nil
}
