// Package testutil holds the fixtures shared by the store, service and API tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/school"
	"github.com/trezcool/madrasa/core/week"
	logsvc "github.com/trezcool/madrasa/services/logger"
	"github.com/trezcool/madrasa/storage/database"
)

// Password passes the password policy. Use it for every credential created in tests.
const Password = "Str0ng!Pass#42"

// PrepareDB opens a private in-memory SQLite database with every migration applied.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() migrating: %v", err)
	}
	return db
}

func NewConfig() *core.Config {
	return &core.Config{
		Env:             "TEST",
		Build:           "test",
		TestMode:        true,
		AppName:         "Madrasa",
		FrontendBaseURL: "http://localhost:3000",
		Database:        core.DatabaseConfig{Engine: core.EngineMemory},
		Email:           core.EmailConfig{DefaultFromEmail: "Madrasa <noreply@madrasa.test>"},
	}
}

// NewLogger returns a logger that reports nowhere.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	return validate, translator
}

func CreateSchool(t *testing.T, repo school.Repository, name, slug string) school.School {
	t.Helper()

	now := time.Now().UTC()
	sch := school.School{
		ID:                 uuid.NewString(),
		Name:               name,
		Slug:               slug,
		AdminUsername:      "admin",
		SubscriptionStatus: school.SubscriptionTrial,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := sch.SetAdminPassword(Password); err != nil {
		t.Fatalf("CreateSchool(): %v", err)
	}
	sch, err := repo.CreateSchool(context.Background(), sch)
	if err != nil {
		t.Fatalf("CreateSchool(): %v", err)
	}
	return sch
}

func CreateTeacher(t *testing.T, repo school.Repository, schoolID, name, username, email string) school.Teacher {
	t.Helper()

	tch := school.Teacher{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Name:      name,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if email != "" {
		tch.Email = null.StringFrom(email)
	}
	if err := tch.SetPassword(Password); err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}
	tch, err := repo.CreateTeacher(context.Background(), tch)
	if err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}
	return tch
}

func CreateSubject(t *testing.T, repo school.Repository, schoolID, name string) school.Subject {
	t.Helper()

	s, err := repo.CreateSubject(context.Background(), school.Subject{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}
	return s
}

func CreateStudent(t *testing.T, repo school.Repository, schoolID, name, grade, section string) school.Student {
	t.Helper()

	s, err := repo.CreateStudent(context.Background(), school.Student{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Name:      name,
		Grade:     grade,
		Section:   section,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return s
}

func CreateClass(t *testing.T, repo school.Repository, schoolID, grade, section string, manual bool) school.SchoolClass {
	t.Helper()

	c, err := repo.CreateClass(context.Background(), school.SchoolClass{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Grade:     grade,
		Section:   section,
		Manual:    manual,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClass(): %v", err)
	}
	return c
}

// CreateWeek adds a five-day week starting on start. Only the first week of a school is active.
func CreateWeek(t *testing.T, repo week.Repository, schoolID, name string, start core.Date) week.Week {
	t.Helper()

	w, err := repo.CreateWeek(context.Background(), week.Week{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		Name:      name,
		StartDate: start,
		EndDate:   core.Date{Time: start.AddDate(0, 0, 4)},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateWeek(): %v", err)
	}
	return w
}
