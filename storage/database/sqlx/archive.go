package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/archive"
	"github.com/trezcool/madrasa/storage/database"
)

const planSetColumns = "id, school_id, week_id, week_name, start_date, end_date, archived_at"

type planSetRow struct {
	ID         string    `db:"id"`
	SchoolID   string    `db:"school_id"`
	WeekID     string    `db:"week_id"`
	WeekName   string    `db:"week_name"`
	StartDate  core.Date `db:"start_date"`
	EndDate    core.Date `db:"end_date"`
	ArchivedAt time.Time `db:"archived_at"`
}

func (r planSetRow) planSet() archive.PlanSet {
	return archive.PlanSet{
		ID:         r.ID,
		SchoolID:   r.SchoolID,
		WeekID:     r.WeekID,
		WeekName:   r.WeekName,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		ArchivedAt: r.ArchivedAt.UTC(),
	}
}

type archiveRepository struct {
	db *sqlx.DB
}

var _ archive.Repository = (*archiveRepository)(nil) // interface compliance check

func NewArchiveRepository(db *sqlx.DB) *archiveRepository {
	return &archiveRepository{db: db}
}

// SavePlanSet replaces the set of the same week, if any, in one transaction.
func (repo archiveRepository) SavePlanSet(ctx context.Context, set archive.PlanSet) (archive.PlanSet, error) {
	set.ArchivedAt = set.ArchivedAt.UTC()
	err := database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`DELETE FROM archived_plan_entries WHERE set_id IN (SELECT id FROM archived_plan_sets WHERE school_id = ? AND week_id = ?)`)
		if _, err := tx.ExecContext(ctx, q, set.SchoolID, set.WeekID); err != nil {
			return core.NewStorageError(err, "deleting previous plan set entries")
		}
		q = tx.Rebind(`DELETE FROM archived_plan_sets WHERE school_id = ? AND week_id = ?`)
		if _, err := tx.ExecContext(ctx, q, set.SchoolID, set.WeekID); err != nil {
			return core.NewStorageError(err, "deleting previous plan set")
		}

		q = tx.Rebind(`INSERT INTO archived_plan_sets (` + planSetColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, q, set.ID, set.SchoolID, set.WeekID, set.WeekName, set.StartDate, set.EndDate, set.ArchivedAt)
		if err != nil {
			return core.NewStorageError(err, "inserting plan set")
		}

		q = tx.Rebind(`INSERT INTO archived_plan_entries (set_id, plan_key, lesson, homework, enrichment) VALUES (?, ?, ?, ?, ?)`)
		for key, e := range set.Entries {
			if _, err = tx.ExecContext(ctx, q, set.ID, key.String(), e.Lesson, e.Homework, e.Enrichment); err != nil {
				return core.NewStorageError(err, "inserting plan set entry")
			}
		}
		return nil
	})
	if err != nil {
		return archive.PlanSet{}, err
	}
	return set, nil
}

func (repo archiveRepository) QueryPlanSets(ctx context.Context, schoolID string) ([]archive.PlanSet, error) {
	var rows []planSetRow
	q := repo.db.Rebind(`SELECT ` + planSetColumns + ` FROM archived_plan_sets WHERE school_id = ? ORDER BY archived_at DESC`)
	if err := repo.db.SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, core.NewStorageError(err, "selecting plan sets")
	}
	sets := make([]archive.PlanSet, 0, len(rows))
	for _, r := range rows {
		sets = append(sets, r.planSet())
	}
	return sets, nil
}

func (repo archiveRepository) GetPlanSet(ctx context.Context, schoolID, id string) (archive.PlanSet, error) {
	var r planSetRow
	q := repo.db.Rebind(`SELECT ` + planSetColumns + ` FROM archived_plan_sets WHERE school_id = ? AND id = ?`)
	if err := repo.db.GetContext(ctx, &r, q, schoolID, id); err != nil {
		return archive.PlanSet{}, trapNoRowsErr(err, archive.ErrNotFound, "selecting plan set")
	}

	var rows []planRow
	q = repo.db.Rebind(`SELECT plan_key, lesson, homework, enrichment FROM archived_plan_entries WHERE set_id = ?`)
	if err := repo.db.SelectContext(ctx, &rows, q, id); err != nil {
		return archive.PlanSet{}, core.NewStorageError(err, "selecting plan set entries")
	}
	entries, err := plansFromRows(rows, "reading plan set entries")
	if err != nil {
		return archive.PlanSet{}, err
	}

	set := r.planSet()
	set.Entries = entries
	return set, nil
}
