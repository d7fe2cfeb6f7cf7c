package sqlxrepos

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/school"
	"github.com/trezcool/madrasa/storage/database"
)

type teacherRow struct {
	ID           string      `db:"id"`
	SchoolID     string      `db:"school_id"`
	Name         string      `db:"name"`
	Username     string      `db:"username"`
	Email        null.String `db:"email"`
	PasswordHash string      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (r teacherRow) teacher() school.Teacher {
	return school.Teacher{
		ID:           r.ID,
		SchoolID:     r.SchoolID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: []byte(r.PasswordHash),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

const teacherColumns = "id, school_id, name, username, email, password_hash, created_at"

func (repo schoolRepository) CreateTeacher(ctx context.Context, t school.Teacher) (school.Teacher, error) {
	q := repo.db.Rebind(`INSERT INTO teachers (` + teacherColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	t.CreatedAt = t.CreatedAt.UTC()
	_, err := repo.db.ExecContext(ctx, q, t.ID, t.SchoolID, t.Name, t.Username, t.Email, string(t.PasswordHash), t.CreatedAt)
	if err != nil {
		return school.Teacher{}, database.TrapUniqueViolation(err, school.ErrUsernameExists, "inserting teacher")
	}
	return t, nil
}

func (repo schoolRepository) QueryTeachers(ctx context.Context, schoolID string) ([]school.Teacher, error) {
	var rows []teacherRow
	q := repo.db.Rebind(`SELECT ` + teacherColumns + ` FROM teachers WHERE school_id = ? ORDER BY name, username`)
	if err := repo.db.SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, core.NewStorageError(err, "selecting teachers")
	}
	teachers := make([]school.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, r.teacher())
	}
	return teachers, nil
}

func (repo schoolRepository) GetTeacher(ctx context.Context, schoolID, id string) (school.Teacher, error) {
	var r teacherRow
	q := repo.db.Rebind(`SELECT ` + teacherColumns + ` FROM teachers WHERE school_id = ? AND id = ?`)
	if err := repo.db.GetContext(ctx, &r, q, schoolID, id); err != nil {
		return school.Teacher{}, trapNoRowsErr(err, school.ErrTeacherNotFound, "selecting teacher")
	}
	return r.teacher(), nil
}

func (repo schoolRepository) GetTeacherByUsername(ctx context.Context, schoolID, username string) (school.Teacher, error) {
	var r teacherRow
	q := repo.db.Rebind(`SELECT ` + teacherColumns + ` FROM teachers WHERE school_id = ? AND username = ?`)
	if err := repo.db.GetContext(ctx, &r, q, schoolID, username); err != nil {
		return school.Teacher{}, trapNoRowsErr(err, school.ErrTeacherNotFound, "selecting teacher")
	}
	return r.teacher(), nil
}

func (repo schoolRepository) DeleteTeacher(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM teachers WHERE school_id = ? AND id = ?`), schoolID, id)
	if err != nil {
		return core.NewStorageError(err, "deleting teacher")
	}
	return checkAffected(res, school.ErrTeacherNotFound, "deleting teacher")
}

type subjectRow struct {
	ID        string    `db:"id"`
	SchoolID  string    `db:"school_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (repo schoolRepository) CreateSubject(ctx context.Context, s school.Subject) (school.Subject, error) {
	q := repo.db.Rebind(`INSERT INTO subjects (id, school_id, name, created_at) VALUES (?, ?, ?, ?)`)
	s.CreatedAt = s.CreatedAt.UTC()
	if _, err := repo.db.ExecContext(ctx, q, s.ID, s.SchoolID, s.Name, s.CreatedAt); err != nil {
		return school.Subject{}, core.NewStorageError(err, "inserting subject")
	}
	return s, nil
}

func (repo schoolRepository) QuerySubjects(ctx context.Context, schoolID string) ([]school.Subject, error) {
	var rows []subjectRow
	q := repo.db.Rebind(`SELECT id, school_id, name, created_at FROM subjects WHERE school_id = ? ORDER BY name`)
	if err := repo.db.SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, core.NewStorageError(err, "selecting subjects")
	}
	subjects := make([]school.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, school.Subject{ID: r.ID, SchoolID: r.SchoolID, Name: r.Name, CreatedAt: r.CreatedAt.UTC()})
	}
	return subjects, nil
}

func (repo schoolRepository) DeleteSubject(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM subjects WHERE school_id = ? AND id = ?`), schoolID, id)
	if err != nil {
		return core.NewStorageError(err, "deleting subject")
	}
	return checkAffected(res, school.ErrSubjectNotFound, "deleting subject")
}

type studentRow struct {
	ID        string    `db:"id"`
	SchoolID  string    `db:"school_id"`
	Name      string    `db:"name"`
	Grade     string    `db:"grade"`
	Section   string    `db:"section"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

var studentOrderingColumns = map[string]string{
	"name":       "name",
	"grade":      "grade",
	"section":    "section",
	"created_at": "created_at",
}

const studentColumns = "id, school_id, name, grade, section, phone, created_at"

func (repo schoolRepository) CreateStudent(ctx context.Context, s school.Student) (school.Student, error) {
	q := repo.db.Rebind(`INSERT INTO students (` + studentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	s.CreatedAt = s.CreatedAt.UTC()
	if _, err := repo.db.ExecContext(ctx, q, s.ID, s.SchoolID, s.Name, s.Grade, s.Section, s.Phone, s.CreatedAt); err != nil {
		return school.Student{}, core.NewStorageError(err, "inserting student")
	}
	return s, nil
}

func (repo schoolRepository) QueryStudents(ctx context.Context, schoolID string, ordering ...core.DBOrdering) ([]school.Student, error) {
	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM students WHERE school_id = ?` +
		orderBy(ordering, studentOrderingColumns, "name, id")
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), schoolID); err != nil {
		return nil, core.NewStorageError(err, "selecting students")
	}
	students := make([]school.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, school.Student{
			ID:        r.ID,
			SchoolID:  r.SchoolID,
			Name:      r.Name,
			Grade:     r.Grade,
			Section:   r.Section,
			Phone:     r.Phone,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return students, nil
}

func (repo schoolRepository) DeleteStudent(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM students WHERE school_id = ? AND id = ?`), schoolID, id)
	if err != nil {
		return core.NewStorageError(err, "deleting student")
	}
	return checkAffected(res, school.ErrStudentNotFound, "deleting student")
}

type classRow struct {
	ID        string    `db:"id"`
	SchoolID  string    `db:"school_id"`
	Grade     string    `db:"grade"`
	Section   string    `db:"section"`
	Manual    bool      `db:"manual"`
	CreatedAt time.Time `db:"created_at"`
}

func (repo schoolRepository) CreateClass(ctx context.Context, c school.SchoolClass) (school.SchoolClass, error) {
	q := repo.db.Rebind(`INSERT INTO school_classes (id, school_id, grade, section, manual, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	c.CreatedAt = c.CreatedAt.UTC()
	if _, err := repo.db.ExecContext(ctx, q, c.ID, c.SchoolID, c.Grade, c.Section, c.Manual, c.CreatedAt); err != nil {
		return school.SchoolClass{}, database.TrapUniqueViolation(err, school.ErrClassExists, "inserting class")
	}
	return c, nil
}

func (repo schoolRepository) QueryClasses(ctx context.Context, schoolID string) ([]school.SchoolClass, error) {
	var rows []classRow
	q := repo.db.Rebind(`SELECT id, school_id, grade, section, manual, created_at FROM school_classes WHERE school_id = ? ORDER BY grade, section`)
	if err := repo.db.SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, core.NewStorageError(err, "selecting classes")
	}
	classes := make([]school.SchoolClass, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, school.SchoolClass{
			ID:        r.ID,
			SchoolID:  r.SchoolID,
			Grade:     r.Grade,
			Section:   r.Section,
			Manual:    r.Manual,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return classes, nil
}

func (repo schoolRepository) DeleteClass(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM school_classes WHERE school_id = ? AND id = ?`), schoolID, id)
	if err != nil {
		return core.NewStorageError(err, "deleting class")
	}
	return checkAffected(res, school.ErrClassNotFound, "deleting class")
}
