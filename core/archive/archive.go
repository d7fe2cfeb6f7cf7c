// Package archive freezes weekly plans into archived sets and toggles the archive flag of attendance reports.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/attendance"
	"github.com/trezcool/madrasa/core/plan"
	"github.com/trezcool/madrasa/core/week"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("archived plan set not found")
	ErrWeekNotActive = core.NewConflictError("only the active week can be archived")
)

type (
	// PlanSet is a frozen copy of the plans of one week.
	// It survives the deletion of its week and of the live plans.
	PlanSet struct {
		ID         string     `json:"id"`
		SchoolID   string     `json:"school_id"`
		WeekID     string     `json:"week_id"`
		WeekName   string     `json:"week_name"`
		StartDate  core.Date  `json:"start_date"`
		EndDate    core.Date  `json:"end_date"`
		ArchivedAt time.Time  `json:"archived_at"` // UTC
		Entries    plan.Plans `json:"entries,omitempty"`
	}

	Repository interface {
		// SavePlanSet stores set with its entries, replacing any set previously archived for the same week.
		SavePlanSet(ctx context.Context, set PlanSet) (PlanSet, error)
		// QueryPlanSets returns the sets of a school without their entries, latest first.
		QueryPlanSets(ctx context.Context, schoolID string) ([]PlanSet, error)
		GetPlanSet(ctx context.Context, schoolID, id string) (PlanSet, error)
	}

	WeekSource interface {
		Get(ctx context.Context, schoolID, id string) (week.Week, error)
	}

	PlanSource interface {
		Query(ctx context.Context, schoolID, weekID string) (plan.Plans, error)
	}

	AttendanceArchiver interface {
		SetArchived(ctx context.Context, schoolID, id string, archived bool) (attendance.Report, error)
	}

	Manager struct {
		repo       Repository
		weeks      WeekSource
		plans      PlanSource
		attendance AttendanceArchiver
	}
)

func NewManager(repo Repository, weeks WeekSource, plans PlanSource, att AttendanceArchiver) *Manager {
	return &Manager{repo: repo, weeks: weeks, plans: plans, attendance: att}
}

// ArchiveWeekPlans snapshots the plans of the active week. A set is recorded even without plans.
func (m *Manager) ArchiveWeekPlans(ctx context.Context, schoolID, weekID string) (PlanSet, error) {
	w, err := m.weeks.Get(ctx, schoolID, weekID)
	if err != nil {
		return PlanSet{}, errors.Wrap(err, "getting week")
	}
	if !w.IsActive {
		return PlanSet{}, ErrWeekNotActive
	}

	plans, err := m.plans.Query(ctx, schoolID, w.ID)
	if err != nil {
		return PlanSet{}, errors.Wrap(err, "querying plans")
	}
	entries := make(plan.Plans, len(plans))
	for k, e := range plans {
		entries[k] = e
	}

	set, err := m.repo.SavePlanSet(ctx, PlanSet{
		ID:         uuid.NewString(),
		SchoolID:   schoolID,
		WeekID:     w.ID,
		WeekName:   w.Name,
		StartDate:  w.StartDate,
		EndDate:    w.EndDate,
		ArchivedAt: time.Now().UTC(),
		Entries:    entries,
	})
	if err != nil {
		return PlanSet{}, errors.Wrap(err, "saving plan set")
	}
	return set, nil
}

func (m *Manager) GetArchivedPlans(ctx context.Context, schoolID string) ([]PlanSet, error) {
	sets, err := m.repo.QueryPlanSets(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying plan sets")
	}
	if sets == nil {
		sets = []PlanSet{}
	}
	return sets, nil
}

func (m *Manager) GetPlanSet(ctx context.Context, schoolID, id string) (PlanSet, error) {
	set, err := m.repo.GetPlanSet(ctx, schoolID, id)
	if err != nil {
		return PlanSet{}, err
	}
	if set.Entries == nil {
		set.Entries = make(plan.Plans)
	}
	return set, nil
}

func (m *Manager) ArchiveAttendance(ctx context.Context, schoolID, id string) (attendance.Report, error) {
	return m.attendance.SetArchived(ctx, schoolID, id, true)
}

func (m *Manager) RestoreAttendance(ctx context.Context, schoolID, id string) (attendance.Report, error) {
	return m.attendance.SetArchived(ctx, schoolID, id, false)
}
