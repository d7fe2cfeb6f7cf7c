package school

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("school not found")
	ErrTeacherNotFound = core.NewNotFoundError("teacher not found")
	ErrSubjectNotFound = core.NewNotFoundError("subject not found")
	ErrStudentNotFound = core.NewNotFoundError("student not found")
	ErrClassNotFound   = core.NewNotFoundError("class not found")

	ErrSlugExists     = core.NewConflictError("a school with this slug already exists")
	ErrUsernameExists = core.NewConflictError("a teacher with this username already exists")
	ErrClassExists    = core.NewConflictError("this class already exists")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		QuerySchools(ctx context.Context) ([]School, error)
		GetSchool(ctx context.Context, filter GetFilter) (School, error)
		UpdateSchool(ctx context.Context, sch School) (School, error)
		DeleteSchool(ctx context.Context, id string) error

		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		// QueryTeachers returns the teachers of a school ordered by name.
		QueryTeachers(ctx context.Context, schoolID string) ([]Teacher, error)
		GetTeacher(ctx context.Context, schoolID, id string) (Teacher, error)
		GetTeacherByUsername(ctx context.Context, schoolID, username string) (Teacher, error)
		DeleteTeacher(ctx context.Context, schoolID, id string) error

		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		QuerySubjects(ctx context.Context, schoolID string) ([]Subject, error)
		DeleteSubject(ctx context.Context, schoolID, id string) error

		CreateStudent(ctx context.Context, s Student) (Student, error)
		// QueryStudents orders by name when ordering is empty.
		QueryStudents(ctx context.Context, schoolID string, ordering ...core.DBOrdering) ([]Student, error)
		DeleteStudent(ctx context.Context, schoolID, id string) error

		CreateClass(ctx context.Context, c SchoolClass) (SchoolClass, error)
		// QueryClasses returns the classes of a school ordered by grade and section.
		QueryClasses(ctx context.Context, schoolID string) ([]SchoolClass, error)
		DeleteClass(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo Repository
	}
)

// StudentOrderingFields are the fields students can be ordered by.
var StudentOrderingFields = []string{"name", "grade", "section", "created_at"}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Schools

func (svc *Service) CheckSlugUniqueness(ctx context.Context, slug string) error {
	_, err := svc.repo.GetSchool(ctx, GetFilter{Slug: slug})
	switch {
	case err == nil:
		return core.NewValidationError(ErrSlugExists, core.FieldError{Field: "slug", Error: ErrSlugExists.Error()})
	case errors.Cause(err) == ErrNotFound:
		return nil
	default:
		return err
	}
}

// Register creates a school along with its admin credentials.
func (svc *Service) Register(ctx context.Context, ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		ID:                 uuid.NewString(),
		Name:               ns.Name,
		Slug:               ns.Slug,
		AdminUsername:      ns.AdminUsername,
		SubscriptionStatus: SubscriptionTrial,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := sch.SetAdminPassword(ns.AdminPassword); err != nil {
		return School{}, errors.Wrap(err, "hashing admin password")
	}
	sch, err := svc.repo.CreateSchool(ctx, sch)
	if err != nil {
		return School{}, errors.Wrap(err, "creating school")
	}
	return sch, nil
}

func (svc *Service) Query(ctx context.Context) ([]School, error) {
	schools, err := svc.repo.QuerySchools(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []School{}
	}
	return schools, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchool(ctx, GetFilter{ID: id})
}

func (svc *Service) GetBySlug(ctx context.Context, slug string) (School, error) {
	return svc.repo.GetSchool(ctx, GetFilter{Slug: core.CleanString(slug, true /* lower */)})
}

func (svc *Service) Update(ctx context.Context, sch School, us UpdateSchool) (School, error) {
	if us.Name != nil {
		sch.Name = *us.Name
	}
	if us.HeaderText != nil {
		sch.Branding.HeaderText = *us.HeaderText
	}
	if us.LogoURL != nil {
		sch.Branding.LogoURL = *us.LogoURL
	}
	if us.GeneralMessages != nil {
		sch.Branding.GeneralMessages = *us.GeneralMessages
	}
	if us.WeeklyNote != nil {
		sch.Branding.WeeklyNote = *us.WeeklyNote
	}
	sch.UpdatedAt = time.Now().UTC()
	return svc.update(ctx, sch)
}

func (svc *Service) SetSubscription(ctx context.Context, sch School, status string) (School, error) {
	sch.SubscriptionStatus = status
	sch.UpdatedAt = time.Now().UTC()
	return svc.update(ctx, sch)
}

func (svc *Service) SetAdminPassword(ctx context.Context, sch School, pwd string) (School, error) {
	if err := sch.SetAdminPassword(pwd); err != nil {
		return School{}, errors.Wrap(err, "hashing admin password")
	}
	sch.UpdatedAt = time.Now().UTC()
	return svc.update(ctx, sch)
}

func (svc *Service) update(ctx context.Context, sch School) (School, error) {
	sch, err := svc.repo.UpdateSchool(ctx, sch)
	if err != nil {
		return School{}, errors.Wrap(err, "updating school")
	}
	return sch, nil
}

// Delete removes the school and everything it owns.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteSchool(ctx, id); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return nil
}

// Teachers

func (svc *Service) CheckUsernameUniqueness(ctx context.Context, schoolID, username string) error {
	_, err := svc.repo.GetTeacherByUsername(ctx, schoolID, username)
	switch {
	case err == nil:
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	case errors.Cause(err) == ErrTeacherNotFound:
		return nil
	default:
		return err
	}
}

func (svc *Service) CreateTeacher(ctx context.Context, schoolID string, nt NewTeacher) (Teacher, error) {
	t := Teacher{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Name:      nt.Name,
		Username:  nt.Username,
		Email:     null.NewString(nt.Email, nt.Email != ""),
		CreatedAt: time.Now().UTC(),
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Teacher{}, errors.Wrap(err, "hashing password")
	}
	t, err := svc.repo.CreateTeacher(ctx, t)
	if err != nil {
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return t, nil
}

func (svc *Service) QueryTeachers(ctx context.Context, schoolID string) ([]Teacher, error) {
	teachers, err := svc.repo.QueryTeachers(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []Teacher{}
	}
	return teachers, nil
}

func (svc *Service) GetTeacher(ctx context.Context, schoolID, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, schoolID, id)
}

// DeleteTeacher keeps the schedule cells referencing the teacher, they render as unknown.
func (svc *Service) DeleteTeacher(ctx context.Context, schoolID, id string) error {
	if err := svc.repo.DeleteTeacher(ctx, schoolID, id); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return nil
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, schoolID string, ns NewSubject) (Subject, error) {
	s, err := svc.repo.CreateSubject(ctx, Subject{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Name:      ns.Name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	return s, nil
}

func (svc *Service) QuerySubjects(ctx context.Context, schoolID string) ([]Subject, error) {
	subjects, err := svc.repo.QuerySubjects(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []Subject{}
	}
	return subjects, nil
}

func (svc *Service) DeleteSubject(ctx context.Context, schoolID, id string) error {
	if err := svc.repo.DeleteSubject(ctx, schoolID, id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return nil
}

// Lookups returns the subject and teacher names of a school keyed by id.
func (svc *Service) Lookups(ctx context.Context, schoolID string) (subjects, teachers map[string]string, err error) {
	subjs, err := svc.QuerySubjects(ctx, schoolID)
	if err != nil {
		return nil, nil, err
	}
	tchrs, err := svc.QueryTeachers(ctx, schoolID)
	if err != nil {
		return nil, nil, err
	}
	subjects = make(map[string]string, len(subjs))
	for _, s := range subjs {
		subjects[s.ID] = s.Name
	}
	teachers = make(map[string]string, len(tchrs))
	for _, t := range tchrs {
		teachers[t.ID] = t.Name
	}
	return subjects, teachers, nil
}
