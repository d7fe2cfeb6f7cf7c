package inmemdb

import (
	"context"

	"github.com/trezcool/madrasa/core/plan"
)

type planRepository struct {
	db *DB
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *DB) *planRepository {
	return &planRepository{db: db}
}

func (repo *planRepository) QueryPlans(_ context.Context, schoolID, weekID string) (plan.Plans, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	plans := make(plan.Plans)
	for k, e := range repo.db.plans {
		if k.schoolID == schoolID && k.weekID == weekID {
			plans[k.key] = e
		}
	}
	return plans, nil
}

func (repo *planRepository) SavePlan(_ context.Context, schoolID, weekID string, key plan.Key, e plan.Entry) (plan.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	pk := planKey{schoolID: schoolID, weekID: weekID, key: key}
	merged := repo.db.plans[pk].Merge(e)
	repo.db.plans[pk] = merged
	return merged, nil
}

func (repo *planRepository) ClearWeekPlans(_ context.Context, schoolID, weekID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for k := range repo.db.plans {
		if k.schoolID == schoolID && k.weekID == weekID {
			delete(repo.db.plans, k)
		}
	}
	return nil
}
