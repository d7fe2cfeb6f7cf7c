package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/madrasa/core/archive"
	"github.com/trezcool/madrasa/core/plan"
)

type archiveRepository struct {
	db *DB
}

var _ archive.Repository = (*archiveRepository)(nil) // interface compliance check

func NewArchiveRepository(db *DB) *archiveRepository {
	return &archiveRepository{db: db}
}

func copyPlans(src plan.Plans) plan.Plans {
	dst := make(plan.Plans, len(src))
	for k, e := range src {
		dst[k] = e
	}
	return dst
}

func (repo *archiveRepository) SavePlanSet(_ context.Context, set archive.PlanSet) (archive.PlanSet, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, other := range repo.db.planSets {
		if other.SchoolID == set.SchoolID && other.WeekID == set.WeekID {
			delete(repo.db.planSets, id)
		}
	}
	set.ArchivedAt = set.ArchivedAt.UTC()
	set.Entries = copyPlans(set.Entries)
	repo.db.planSets[set.ID] = set
	set.Entries = copyPlans(set.Entries)
	return set, nil
}

func (repo *archiveRepository) QueryPlanSets(_ context.Context, schoolID string) ([]archive.PlanSet, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sets := make([]archive.PlanSet, 0)
	for _, s := range repo.db.planSets {
		if s.SchoolID == schoolID {
			s.Entries = nil
			sets = append(sets, s)
		}
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ArchivedAt.After(sets[j].ArchivedAt) })
	return sets, nil
}

func (repo *archiveRepository) GetPlanSet(_ context.Context, schoolID, id string) (archive.PlanSet, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	s, ok := repo.db.planSets[id]
	if !ok || s.SchoolID != schoolID {
		return archive.PlanSet{}, archive.ErrNotFound
	}
	s.Entries = copyPlans(s.Entries)
	return s, nil
}
