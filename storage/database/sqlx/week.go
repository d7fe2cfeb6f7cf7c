package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/week"
	"github.com/trezcool/madrasa/storage/database"
)

const weekColumns = "id, school_id, name, start_date, end_date, is_active, created_at"

type weekRow struct {
	ID        string    `db:"id"`
	SchoolID  string    `db:"school_id"`
	Name      string    `db:"name"`
	StartDate core.Date `db:"start_date"`
	EndDate   core.Date `db:"end_date"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r weekRow) week() week.Week {
	return week.Week{
		ID:        r.ID,
		SchoolID:  r.SchoolID,
		Name:      r.Name,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type weekRepository struct {
	db *sqlx.DB
}

var _ week.Repository = (*weekRepository)(nil) // interface compliance check

func NewWeekRepository(db *sqlx.DB) *weekRepository {
	return &weekRepository{db: db}
}

func (repo weekRepository) getWeek(ctx context.Context, exec core.DBExecutor, schoolID, id string) (week.Week, error) {
	var r weekRow
	q := exec.Rebind(`SELECT ` + weekColumns + ` FROM academic_weeks WHERE school_id = ? AND id = ?`)
	if err := exec.GetContext(ctx, &r, q, schoolID, id); err != nil {
		return week.Week{}, trapNoRowsErr(err, week.ErrNotFound, "selecting week")
	}
	return r.week(), nil
}

func (repo weekRepository) CreateWeek(ctx context.Context, w week.Week) (week.Week, error) {
	err := database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(*) FROM academic_weeks WHERE school_id = ?`), w.SchoolID); err != nil {
			return core.NewStorageError(err, "counting weeks")
		}
		w.IsActive = count == 0
		w.CreatedAt = w.CreatedAt.UTC()

		q := tx.Rebind(`INSERT INTO academic_weeks (` + weekColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, q, w.ID, w.SchoolID, w.Name, w.StartDate, w.EndDate, w.IsActive, w.CreatedAt)
		return database.TrapUniqueViolation(err, week.ErrActiveConflict, "inserting week")
	})
	if err != nil {
		return week.Week{}, err
	}
	return w, nil
}

func (repo weekRepository) QueryWeeks(ctx context.Context, schoolID string) ([]week.Week, error) {
	var rows []weekRow
	q := repo.db.Rebind(`SELECT ` + weekColumns + ` FROM academic_weeks WHERE school_id = ? ORDER BY start_date DESC, created_at DESC`)
	if err := repo.db.SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, core.NewStorageError(err, "selecting weeks")
	}
	weeks := make([]week.Week, 0, len(rows))
	for _, r := range rows {
		weeks = append(weeks, r.week())
	}
	return weeks, nil
}

func (repo weekRepository) GetWeek(ctx context.Context, schoolID, id string) (week.Week, error) {
	return repo.getWeek(ctx, repo.db, schoolID, id)
}

func (repo weekRepository) GetActiveWeek(ctx context.Context, schoolID string) (week.Week, error) {
	var r weekRow
	q := repo.db.Rebind(`SELECT ` + weekColumns + ` FROM academic_weeks WHERE school_id = ? AND is_active = ?`)
	if err := repo.db.GetContext(ctx, &r, q, schoolID, true); err != nil {
		return week.Week{}, trapNoRowsErr(err, week.ErrNoActiveWeek, "selecting active week")
	}
	return r.week(), nil
}

func (repo weekRepository) SetActiveWeek(ctx context.Context, schoolID, id string) (week.Week, error) {
	var activated week.Week
	err := database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		w, err := repo.getWeek(ctx, tx, schoolID, id)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE academic_weeks SET is_active = ? WHERE school_id = ? AND is_active = ?`), false, schoolID, true); err != nil {
			return core.NewStorageError(err, "deactivating weeks")
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE academic_weeks SET is_active = ? WHERE school_id = ? AND id = ?`), true, schoolID, id)
		if err != nil {
			return database.TrapUniqueViolation(err, week.ErrActiveConflict, "activating week")
		}
		w.IsActive = true
		activated = w
		return nil
	})
	if err != nil {
		return week.Week{}, err
	}
	return activated, nil
}

// DeleteWeek removes the live plans of the week first. Archived plan sets are kept.
func (repo weekRepository) DeleteWeek(ctx context.Context, schoolID, id string) error {
	return database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM plans WHERE school_id = ? AND week_id = ?`), schoolID, id); err != nil {
			return core.NewStorageError(err, "deleting week plans")
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM academic_weeks WHERE school_id = ? AND id = ?`), schoolID, id)
		if err != nil {
			return core.NewStorageError(err, "deleting week")
		}
		return checkAffected(res, week.ErrNotFound, "deleting week")
	})
}
