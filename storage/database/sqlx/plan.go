package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/plan"
)

type planRow struct {
	PlanKey    string      `db:"plan_key"`
	Lesson     null.String `db:"lesson"`
	Homework   null.String `db:"homework"`
	Enrichment null.String `db:"enrichment"`
}

func (r planRow) entry() plan.Entry {
	return plan.Entry{Lesson: r.Lesson, Homework: r.Homework, Enrichment: r.Enrichment}
}

// plansFromRows keys rows by their parsed plan key.
func plansFromRows(rows []planRow, op string) (plan.Plans, error) {
	plans := make(plan.Plans, len(rows))
	for _, r := range rows {
		key, err := plan.ParseKey(r.PlanKey)
		if err != nil {
			return nil, core.NewStorageError(err, op)
		}
		plans[key] = r.entry()
	}
	return plans, nil
}

type planRepository struct {
	db *sqlx.DB
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *sqlx.DB) *planRepository {
	return &planRepository{db: db}
}

func (repo planRepository) QueryPlans(ctx context.Context, schoolID, weekID string) (plan.Plans, error) {
	var rows []planRow
	q := repo.db.Rebind(`SELECT plan_key, lesson, homework, enrichment FROM plans WHERE school_id = ? AND week_id = ?`)
	if err := repo.db.SelectContext(ctx, &rows, q, schoolID, weekID); err != nil {
		return nil, core.NewStorageError(err, "selecting plans")
	}
	return plansFromRows(rows, "reading plans")
}

// SavePlan inserts the entry or merges its set fields into the stored one.
func (repo planRepository) SavePlan(ctx context.Context, schoolID, weekID string, key plan.Key, e plan.Entry) (plan.Entry, error) {
	q := repo.db.Rebind(`
		INSERT INTO plans (school_id, week_id, plan_key, lesson, homework, enrichment, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (school_id, week_id, plan_key) DO UPDATE
		SET lesson = COALESCE(excluded.lesson, plans.lesson),
			homework = COALESCE(excluded.homework, plans.homework),
			enrichment = COALESCE(excluded.enrichment, plans.enrichment),
			updated_at = excluded.updated_at`)
	_, err := repo.db.ExecContext(ctx, q,
		schoolID, weekID, key.String(), e.Lesson, e.Homework, e.Enrichment, time.Now().UTC())
	if err != nil {
		return plan.Entry{}, core.NewStorageError(err, "upserting plan")
	}

	var r planRow
	q = repo.db.Rebind(`SELECT plan_key, lesson, homework, enrichment FROM plans WHERE school_id = ? AND week_id = ? AND plan_key = ?`)
	if err = repo.db.GetContext(ctx, &r, q, schoolID, weekID, key.String()); err != nil {
		return plan.Entry{}, core.NewStorageError(err, "selecting plan")
	}
	return r.entry(), nil
}

func (repo planRepository) ClearWeekPlans(ctx context.Context, schoolID, weekID string) error {
	_, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM plans WHERE school_id = ? AND week_id = ?`), schoolID, weekID)
	if err != nil {
		return core.NewStorageError(err, "deleting plans")
	}
	return nil
}
