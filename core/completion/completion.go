// Package completion tells, for the active week of a school, which teachers authored
// a lesson plan for every session they teach.
package completion

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/plan"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/core/school"
	"github.com/trezcool/madrasa/core/week"
)

type (
	WeekSource interface {
		GetActive(ctx context.Context, schoolID string) (week.Week, error)
	}

	RosterSource interface {
		QueryTeachers(ctx context.Context, schoolID string) ([]school.Teacher, error)
		QueryClasses(ctx context.Context, schoolID string) ([]school.SchoolClass, error)
	}

	ScheduleSource interface {
		Get(ctx context.Context, schoolID string, class core.ClassTitle) (schedule.Schedule, error)
	}

	PlanSource interface {
		Query(ctx context.Context, schoolID, weekID string) (plan.Plans, error)
	}
)

// Session is one class slot taught by a teacher.
type Session struct {
	Class core.ClassTitle `json:"class"`
	Slot  schedule.Slot   `json:"slot"`
}

func (s Session) Key() plan.Key {
	return plan.NewKey(s.Class, s.Slot)
}

// Progress is the authoring state of one teacher for the active week.
type Progress struct {
	Teacher  school.Teacher `json:"teacher"`
	Sessions []Session      `json:"sessions"`
	Missing  []Session      `json:"missing"`
}

func (p Progress) Completed() bool {
	return len(p.Missing) == 0
}

// Result partitions the teachers having at least one session.
// Week is nil, and both lists empty, when the school has no active week.
type Result struct {
	Week       *week.Week `json:"week"`
	Completed  []Progress `json:"completed"`
	Incomplete []Progress `json:"incomplete"`
}

type Resolver struct {
	weeks     WeekSource
	roster    RosterSource
	schedules ScheduleSource
	plans     PlanSource
}

func NewResolver(weeks WeekSource, roster RosterSource, schedules ScheduleSource, plans PlanSource) *Resolver {
	return &Resolver{weeks: weeks, roster: roster, schedules: schedules, plans: plans}
}

// Resolve computes the completion of every teacher of the school.
// Teachers without sessions are left out, the result keeps the teacher list order.
// Any source failure fails the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, schoolID string) (Result, error) {
	res := Result{Completed: []Progress{}, Incomplete: []Progress{}}

	active, err := r.weeks.GetActive(ctx, schoolID)
	if err != nil {
		if errors.Cause(err) == week.ErrNoActiveWeek {
			return res, nil
		}
		return Result{}, errors.Wrap(err, "getting active week")
	}
	res.Week = &active

	teachers, err := r.roster.QueryTeachers(ctx, schoolID)
	if err != nil {
		return Result{}, errors.Wrap(err, "querying teachers")
	}
	sessions, err := r.sessions(ctx, schoolID)
	if err != nil {
		return Result{}, err
	}
	plans, err := r.plans.Query(ctx, schoolID, active.ID)
	if err != nil {
		return Result{}, errors.Wrap(err, "querying plans")
	}

	for _, t := range teachers {
		own := sessions[t.ID]
		if len(own) == 0 {
			continue
		}
		p := Progress{Teacher: t, Sessions: own, Missing: []Session{}}
		for _, s := range own {
			if !plans.Authored(s.Key()) {
				p.Missing = append(p.Missing, s)
			}
		}
		if p.Completed() {
			res.Completed = append(res.Completed, p)
		} else {
			res.Incomplete = append(res.Incomplete, p)
		}
	}
	return res, nil
}

// sessions reads every class schedule and groups the booked slots by teacher id.
func (r *Resolver) sessions(ctx context.Context, schoolID string) (map[string][]Session, error) {
	classes, err := r.roster.QueryClasses(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}

	byTeacher := make(map[string][]Session)
	for _, c := range classes {
		title := c.Title()
		sch, err := r.schedules.Get(ctx, schoolID, title)
		if err != nil {
			return nil, errors.Wrapf(err, "getting schedule of %s", title)
		}
		for slot, cell := range sch {
			if !cell.TeacherID.Valid {
				continue
			}
			byTeacher[cell.TeacherID.String] = append(byTeacher[cell.TeacherID.String], Session{Class: title, Slot: slot})
		}
	}
	for _, sessions := range byTeacher {
		sort.Slice(sessions, func(i, j int) bool {
			if sessions[i].Class != sessions[j].Class {
				return sessions[i].Class.Less(sessions[j].Class)
			}
			return sessions[i].Slot.Less(sessions[j].Slot)
		})
	}
	return byTeacher, nil
}
