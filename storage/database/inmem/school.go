package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSchool(_ context.Context, s school.School) (school.School, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.schools {
		if other.Slug == s.Slug {
			return school.School{}, school.ErrSlugExists
		}
	}
	repo.db.schools[s.ID] = s
	return s, nil
}

func (repo *schoolRepository) QuerySchools(_ context.Context) ([]school.School, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	schools := make([]school.School, 0, len(repo.db.schools))
	for _, s := range repo.db.schools {
		schools = append(schools, s)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].Name < schools[j].Name })
	return schools, nil
}

func (repo *schoolRepository) GetSchool(_ context.Context, filter school.GetFilter) (school.School, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if s, ok := repo.db.schools[filter.ID]; ok {
			return s, nil
		}
		return school.School{}, school.ErrNotFound
	}
	if filter.Slug != "" {
		for _, s := range repo.db.schools {
			if s.Slug == filter.Slug {
				return s, nil
			}
		}
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateSchool(_ context.Context, s school.School) (school.School, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.schools[s.ID]
	if !ok {
		return school.School{}, school.ErrNotFound
	}
	// slug, admin username and creation date are immutable
	s.Slug = orig.Slug
	s.AdminUsername = orig.AdminUsername
	s.CreatedAt = orig.CreatedAt
	repo.db.schools[s.ID] = s
	return s, nil
}

func (repo *schoolRepository) DeleteSchool(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schools[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.schools, id)
	repo.db.deleteSchoolData(id)
	return nil
}

// Teachers

func (repo *schoolRepository) CreateTeacher(_ context.Context, t school.Teacher) (school.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.teachers {
		if other.SchoolID == t.SchoolID && other.Username == t.Username {
			return school.Teacher{}, school.ErrUsernameExists
		}
	}
	repo.db.teachers[t.ID] = t
	return t, nil
}

func (repo *schoolRepository) QueryTeachers(_ context.Context, schoolID string) ([]school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]school.Teacher, 0)
	for _, t := range repo.db.teachers {
		if t.SchoolID == schoolID {
			teachers = append(teachers, t)
		}
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].Name != teachers[j].Name {
			return teachers[i].Name < teachers[j].Name
		}
		return teachers[i].Username < teachers[j].Username
	})
	return teachers, nil
}

func (repo *schoolRepository) GetTeacher(_ context.Context, schoolID, id string) (school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.teachers[id]; ok && t.SchoolID == schoolID {
		return t, nil
	}
	return school.Teacher{}, school.ErrTeacherNotFound
}

func (repo *schoolRepository) GetTeacherByUsername(_ context.Context, schoolID, username string) (school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.teachers {
		if t.SchoolID == schoolID && t.Username == username {
			return t, nil
		}
	}
	return school.Teacher{}, school.ErrTeacherNotFound
}

func (repo *schoolRepository) DeleteTeacher(_ context.Context, schoolID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if t, ok := repo.db.teachers[id]; !ok || t.SchoolID != schoolID {
		return school.ErrTeacherNotFound
	}
	delete(repo.db.teachers, id)
	return nil
}

// Subjects

func (repo *schoolRepository) CreateSubject(_ context.Context, s school.Subject) (school.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.subjects[s.ID] = s
	return s, nil
}

func (repo *schoolRepository) QuerySubjects(_ context.Context, schoolID string) ([]school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]school.Subject, 0)
	for _, s := range repo.db.subjects {
		if s.SchoolID == schoolID {
			subjects = append(subjects, s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *schoolRepository) DeleteSubject(_ context.Context, schoolID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if s, ok := repo.db.subjects[id]; !ok || s.SchoolID != schoolID {
		return school.ErrSubjectNotFound
	}
	delete(repo.db.subjects, id)
	return nil
}

// Students

func (repo *schoolRepository) CreateStudent(_ context.Context, s school.Student) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.students[s.ID] = s
	return s, nil
}

func studentField(s school.Student, field string) string {
	switch field {
	case "grade":
		return s.Grade
	case "section":
		return s.Section
	case "created_at":
		return s.CreatedAt.Format("2006-01-02T15:04:05.000000000")
	default:
		return s.Name
	}
}

func (repo *schoolRepository) QueryStudents(_ context.Context, schoolID string, ordering ...core.DBOrdering) ([]school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]school.Student, 0)
	for _, s := range repo.db.students {
		if s.SchoolID == schoolID {
			students = append(students, s)
		}
	}

	ordering = core.FilterOrderings(ordering, school.StudentOrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sort.Slice(students, func(i, j int) bool {
		for _, ord := range ordering {
			c := strings.Compare(studentField(students[i], ord.Field), studentField(students[j], ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (repo *schoolRepository) DeleteStudent(_ context.Context, schoolID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if s, ok := repo.db.students[id]; !ok || s.SchoolID != schoolID {
		return school.ErrStudentNotFound
	}
	delete(repo.db.students, id)
	return nil
}

// Classes

func (repo *schoolRepository) CreateClass(_ context.Context, c school.SchoolClass) (school.SchoolClass, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.classes {
		if other.SchoolID == c.SchoolID && other.Title() == c.Title() {
			return school.SchoolClass{}, school.ErrClassExists
		}
	}
	repo.db.classes[c.ID] = c
	return c, nil
}

func (repo *schoolRepository) QueryClasses(_ context.Context, schoolID string) ([]school.SchoolClass, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]school.SchoolClass, 0)
	for _, c := range repo.db.classes {
		if c.SchoolID == schoolID {
			classes = append(classes, c)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Title().Less(classes[j].Title()) })
	return classes, nil
}

func (repo *schoolRepository) DeleteClass(_ context.Context, schoolID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if c, ok := repo.db.classes[id]; !ok || c.SchoolID != schoolID {
		return school.ErrClassNotFound
	}
	delete(repo.db.classes, id)
	return nil
}
