package plan

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/week"
)

type (
	Repository interface {
		QueryPlans(ctx context.Context, schoolID, weekID string) (Plans, error)
		// SavePlan upserts the entry at key, keeping the stored fields that e leaves unset.
		SavePlan(ctx context.Context, schoolID, weekID string, key Key, e Entry) (Entry, error)
		ClearWeekPlans(ctx context.Context, schoolID, weekID string) error
	}

	// WeekGetter checks that a week belongs to a school.
	WeekGetter interface {
		Get(ctx context.Context, schoolID, id string) (week.Week, error)
	}

	Service struct {
		repo  Repository
		weeks WeekGetter
	}
)

func NewService(repo Repository, weeks WeekGetter) *Service {
	return &Service{repo: repo, weeks: weeks}
}

func (svc *Service) checkWeek(ctx context.Context, schoolID, weekID string) error {
	if _, err := svc.weeks.Get(ctx, schoolID, weekID); err != nil {
		return errors.Wrap(err, "getting week")
	}
	return nil
}

// Query returns the plans of a week, an empty Plans when none were recorded.
func (svc *Service) Query(ctx context.Context, schoolID, weekID string) (Plans, error) {
	if err := svc.checkWeek(ctx, schoolID, weekID); err != nil {
		return nil, err
	}
	plans, err := svc.repo.QueryPlans(ctx, schoolID, weekID)
	if err != nil {
		return nil, errors.Wrap(err, "querying plans")
	}
	if plans == nil {
		plans = make(Plans)
	}
	return plans, nil
}

// Save records e at key. The matching schedule cell does not need to exist.
func (svc *Service) Save(ctx context.Context, schoolID, weekID string, key Key, e Entry) (Entry, error) {
	if err := svc.checkWeek(ctx, schoolID, weekID); err != nil {
		return Entry{}, err
	}
	saved, err := svc.repo.SavePlan(ctx, schoolID, weekID, key, e)
	if err != nil {
		return Entry{}, errors.Wrap(err, "saving plan")
	}
	return saved, nil
}

func (svc *Service) ClearWeek(ctx context.Context, schoolID, weekID string) error {
	if err := svc.checkWeek(ctx, schoolID, weekID); err != nil {
		return err
	}
	if err := svc.repo.ClearWeekPlans(ctx, schoolID, weekID); err != nil {
		return errors.Wrap(err, "clearing week plans")
	}
	return nil
}
