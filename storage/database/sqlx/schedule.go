package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/storage/database"
)

type scheduleRow struct {
	ClassTitle string      `db:"class_title"`
	Day        string      `db:"day"`
	Period     int         `db:"period"`
	SubjectID  null.String `db:"subject_id"`
	TeacherID  null.String `db:"teacher_id"`
}

func (r scheduleRow) slot() (schedule.Slot, error) {
	slot, err := schedule.NewSlot(r.Day, r.Period)
	if err != nil {
		return schedule.Slot{}, core.NewStorageError(errors.Errorf("bad slot %s_%d", r.Day, r.Period), "reading schedule")
	}
	return slot, nil
}

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (repo scheduleRepository) GetSchedule(ctx context.Context, schoolID string, class core.ClassTitle) (schedule.Schedule, error) {
	var rows []scheduleRow
	q := repo.db.Rebind(`
		SELECT class_title, day, period, subject_id, teacher_id FROM schedules
		WHERE school_id = ? AND class_title = ?`)
	if err := repo.db.SelectContext(ctx, &rows, q, schoolID, class.String()); err != nil {
		return nil, core.NewStorageError(err, "selecting schedule")
	}

	sch := make(schedule.Schedule, len(rows))
	for _, r := range rows {
		slot, err := r.slot()
		if err != nil {
			return nil, err
		}
		sch[slot] = schedule.Cell{SubjectID: r.SubjectID, TeacherID: r.TeacherID}
	}
	return sch, nil
}

// SaveSchedule upserts the cells in one transaction, all or nothing.
func (repo scheduleRepository) SaveSchedule(ctx context.Context, schoolID string, class core.ClassTitle, cells schedule.Schedule) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`
			INSERT INTO schedules (school_id, class_title, day, period, subject_id, teacher_id, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (school_id, class_title, day, period) DO UPDATE
			SET subject_id = excluded.subject_id, teacher_id = excluded.teacher_id, updated_at = excluded.updated_at`)
		for _, slot := range cells.Slots() {
			cell := cells[slot]
			_, err := tx.ExecContext(ctx, q,
				schoolID, class.String(), string(slot.Day), slot.Period, cell.SubjectID, cell.TeacherID, now)
			if err != nil {
				return core.NewStorageError(err, "upserting schedule cell "+slot.String())
			}
		}
		return nil
	})
}

func (repo scheduleRepository) QuerySchedules(ctx context.Context, schoolID string) (map[core.ClassTitle]schedule.Schedule, error) {
	var rows []scheduleRow
	q := repo.db.Rebind(`SELECT class_title, day, period, subject_id, teacher_id FROM schedules WHERE school_id = ?`)
	if err := repo.db.SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, core.NewStorageError(err, "selecting schedules")
	}

	schedules := make(map[core.ClassTitle]schedule.Schedule)
	for _, r := range rows {
		class, err := core.ParseClassTitle(r.ClassTitle)
		if err != nil {
			return nil, core.NewStorageError(err, "reading schedule")
		}
		slot, err := r.slot()
		if err != nil {
			return nil, err
		}
		sch, ok := schedules[class]
		if !ok {
			sch = make(schedule.Schedule)
			schedules[class] = sch
		}
		sch[slot] = schedule.Cell{SubjectID: r.SubjectID, TeacherID: r.TeacherID}
	}
	return schedules, nil
}
