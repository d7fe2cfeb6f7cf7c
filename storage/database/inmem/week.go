package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/madrasa/core/week"
)

type weekRepository struct {
	db *DB
}

var _ week.Repository = (*weekRepository)(nil) // interface compliance check

func NewWeekRepository(db *DB) *weekRepository {
	return &weekRepository{db: db}
}

func (repo *weekRepository) CreateWeek(_ context.Context, w week.Week) (week.Week, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	w.IsActive = true
	for _, other := range repo.db.weeks {
		if other.SchoolID == w.SchoolID {
			w.IsActive = false
			break
		}
	}
	w.CreatedAt = w.CreatedAt.UTC()
	repo.db.weeks[w.ID] = w
	return w, nil
}

func (repo *weekRepository) QueryWeeks(_ context.Context, schoolID string) ([]week.Week, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	weeks := make([]week.Week, 0)
	for _, w := range repo.db.weeks {
		if w.SchoolID == schoolID {
			weeks = append(weeks, w)
		}
	}
	sort.Slice(weeks, func(i, j int) bool {
		if !weeks[i].StartDate.Equal(weeks[j].StartDate.Time) {
			return weeks[i].StartDate.After(weeks[j].StartDate.Time)
		}
		return weeks[i].CreatedAt.After(weeks[j].CreatedAt)
	})
	return weeks, nil
}

func (repo *weekRepository) GetWeek(_ context.Context, schoolID, id string) (week.Week, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if w, ok := repo.db.weeks[id]; ok && w.SchoolID == schoolID {
		return w, nil
	}
	return week.Week{}, week.ErrNotFound
}

func (repo *weekRepository) GetActiveWeek(_ context.Context, schoolID string) (week.Week, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, w := range repo.db.weeks {
		if w.SchoolID == schoolID && w.IsActive {
			return w, nil
		}
	}
	return week.Week{}, week.ErrNoActiveWeek
}

func (repo *weekRepository) SetActiveWeek(_ context.Context, schoolID, id string) (week.Week, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	target, ok := repo.db.weeks[id]
	if !ok || target.SchoolID != schoolID {
		return week.Week{}, week.ErrNotFound
	}
	for wid, w := range repo.db.weeks {
		if w.SchoolID == schoolID && w.IsActive {
			w.IsActive = false
			repo.db.weeks[wid] = w
		}
	}
	target.IsActive = true
	repo.db.weeks[id] = target
	return target, nil
}

func (repo *weekRepository) DeleteWeek(_ context.Context, schoolID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if w, ok := repo.db.weeks[id]; !ok || w.SchoolID != schoolID {
		return week.ErrNotFound
	}
	for k := range repo.db.plans {
		if k.schoolID == schoolID && k.weekID == id {
			delete(repo.db.plans, k)
		}
	}
	delete(repo.db.weeks, id)
	return nil
}
