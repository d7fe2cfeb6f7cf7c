package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/school"
	"github.com/trezcool/madrasa/storage/database"
)

const schoolColumns = "id, name, slug, admin_username, admin_password_hash, subscription_status, " +
	"header_text, logo_url, general_messages, weekly_note, created_at, updated_at"

type schoolRow struct {
	ID                 string    `db:"id"`
	Name               string    `db:"name"`
	Slug               string    `db:"slug"`
	AdminUsername      string    `db:"admin_username"`
	AdminPasswordHash  string    `db:"admin_password_hash"`
	SubscriptionStatus string    `db:"subscription_status"`
	HeaderText         string    `db:"header_text"`
	LogoURL            string    `db:"logo_url"`
	GeneralMessages    string    `db:"general_messages"`
	WeeklyNote         string    `db:"weekly_note"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) toRow(s school.School) schoolRow {
	return schoolRow{
		ID:                 s.ID,
		Name:               s.Name,
		Slug:               s.Slug,
		AdminUsername:      s.AdminUsername,
		AdminPasswordHash:  string(s.AdminPasswordHash),
		SubscriptionStatus: s.SubscriptionStatus,
		HeaderText:         s.Branding.HeaderText,
		LogoURL:            s.Branding.LogoURL,
		GeneralMessages:    s.Branding.GeneralMessages,
		WeeklyNote:         s.Branding.WeeklyNote,
		CreatedAt:          s.CreatedAt.UTC(),
		UpdatedAt:          s.UpdatedAt.UTC(),
	}
}

func (repo schoolRepository) fromRow(r schoolRow) school.School {
	return school.School{
		ID:                 r.ID,
		Name:               r.Name,
		Slug:               r.Slug,
		AdminUsername:      r.AdminUsername,
		AdminPasswordHash:  []byte(r.AdminPasswordHash),
		SubscriptionStatus: r.SubscriptionStatus,
		Branding: school.Branding{
			HeaderText:      r.HeaderText,
			LogoURL:         r.LogoURL,
			GeneralMessages: r.GeneralMessages,
			WeeklyNote:      r.WeeklyNote,
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (repo schoolRepository) CreateSchool(ctx context.Context, s school.School) (school.School, error) {
	q := repo.db.Rebind(`INSERT INTO schools (` + schoolColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	r := repo.toRow(s)
	_, err := repo.db.ExecContext(ctx, q,
		r.ID, r.Name, r.Slug, r.AdminUsername, r.AdminPasswordHash, r.SubscriptionStatus,
		r.HeaderText, r.LogoURL, r.GeneralMessages, r.WeeklyNote, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return school.School{}, database.TrapUniqueViolation(err, school.ErrSlugExists, "inserting school")
	}
	return repo.fromRow(r), nil
}

func (repo schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	var rows []schoolRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+schoolColumns+` FROM schools ORDER BY name`); err != nil {
		return nil, core.NewStorageError(err, "selecting schools")
	}
	schools := make([]school.School, 0, len(rows))
	for _, r := range rows {
		schools = append(schools, repo.fromRow(r))
	}
	return schools, nil
}

func (repo schoolRepository) GetSchool(ctx context.Context, filter school.GetFilter) (school.School, error) {
	var (
		r   schoolRow
		err error
	)
	switch {
	case filter.ID != "":
		err = repo.db.GetContext(ctx, &r, repo.db.Rebind(`SELECT `+schoolColumns+` FROM schools WHERE id = ?`), filter.ID)
	case filter.Slug != "":
		err = repo.db.GetContext(ctx, &r, repo.db.Rebind(`SELECT `+schoolColumns+` FROM schools WHERE slug = ?`), filter.Slug)
	default:
		return school.School{}, school.ErrNotFound
	}
	if err != nil {
		return school.School{}, trapNoRowsErr(err, school.ErrNotFound, "selecting school")
	}
	return repo.fromRow(r), nil
}

func (repo schoolRepository) UpdateSchool(ctx context.Context, s school.School) (school.School, error) {
	q := repo.db.Rebind(`
		UPDATE schools SET name = ?, admin_password_hash = ?, subscription_status = ?,
			header_text = ?, logo_url = ?, general_messages = ?, weekly_note = ?, updated_at = ?
		WHERE id = ?`)
	r := repo.toRow(s)
	res, err := repo.db.ExecContext(ctx, q,
		r.Name, r.AdminPasswordHash, r.SubscriptionStatus,
		r.HeaderText, r.LogoURL, r.GeneralMessages, r.WeeklyNote, r.UpdatedAt, r.ID)
	if err != nil {
		return school.School{}, core.NewStorageError(err, "updating school")
	}
	if err = checkAffected(res, school.ErrNotFound, "updating school"); err != nil {
		return school.School{}, err
	}
	return repo.GetSchool(ctx, school.GetFilter{ID: s.ID})
}

func (repo schoolRepository) DeleteSchool(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM schools WHERE id = ?`), id)
	if err != nil {
		return core.NewStorageError(err, "deleting school")
	}
	return checkAffected(res, school.ErrNotFound, "deleting school")
}
