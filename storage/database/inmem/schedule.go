package inmemdb

import (
	"context"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) GetSchedule(_ context.Context, schoolID string, class core.ClassTitle) (schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sch := make(schedule.Schedule)
	for k, cell := range repo.db.schedules {
		if k.schoolID == schoolID && k.class == class {
			sch[k.slot] = cell
		}
	}
	return sch, nil
}

func (repo *scheduleRepository) SaveSchedule(_ context.Context, schoolID string, class core.ClassTitle, cells schedule.Schedule) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for slot, cell := range cells {
		repo.db.schedules[scheduleKey{schoolID: schoolID, class: class, slot: slot}] = cell
	}
	return nil
}

func (repo *scheduleRepository) QuerySchedules(_ context.Context, schoolID string) (map[core.ClassTitle]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	schedules := make(map[core.ClassTitle]schedule.Schedule)
	for k, cell := range repo.db.schedules {
		if k.schoolID != schoolID {
			continue
		}
		sch, ok := schedules[k.class]
		if !ok {
			sch = make(schedule.Schedule)
			schedules[k.class] = sch
		}
		sch[k.slot] = cell
	}
	return schedules, nil
}
