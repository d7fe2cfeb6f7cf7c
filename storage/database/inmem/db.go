// Package inmemdb keeps every table in maps guarded by a single lock.
// It backs the "memory" database engine and the service tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/archive"
	"github.com/trezcool/madrasa/core/attendance"
	"github.com/trezcool/madrasa/core/plan"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/core/school"
	"github.com/trezcool/madrasa/core/week"
)

type (
	scheduleKey struct {
		schoolID string
		class    core.ClassTitle
		slot     schedule.Slot
	}

	planKey struct {
		schoolID string
		weekID   string
		key      plan.Key
	}

	DB struct {
		mutex sync.RWMutex

		schools   map[string]school.School
		teachers  map[string]school.Teacher
		subjects  map[string]school.Subject
		students  map[string]school.Student
		classes   map[string]school.SchoolClass
		schedules map[scheduleKey]schedule.Cell
		weeks     map[string]week.Week
		plans     map[planKey]plan.Entry
		planSets  map[string]archive.PlanSet
		reports   map[string]attendance.Report
	}
)

func Open() *DB {
	return &DB{
		schools:   make(map[string]school.School),
		teachers:  make(map[string]school.Teacher),
		subjects:  make(map[string]school.Subject),
		students:  make(map[string]school.Student),
		classes:   make(map[string]school.SchoolClass),
		schedules: make(map[scheduleKey]schedule.Cell),
		weeks:     make(map[string]week.Week),
		plans:     make(map[planKey]plan.Entry),
		planSets:  make(map[string]archive.PlanSet),
		reports:   make(map[string]attendance.Report),
	}
}

// deleteSchoolData drops every record owned by the school. The caller holds the write lock.
func (db *DB) deleteSchoolData(schoolID string) {
	for id, t := range db.teachers {
		if t.SchoolID == schoolID {
			delete(db.teachers, id)
		}
	}
	for id, s := range db.subjects {
		if s.SchoolID == schoolID {
			delete(db.subjects, id)
		}
	}
	for id, s := range db.students {
		if s.SchoolID == schoolID {
			delete(db.students, id)
		}
	}
	for id, c := range db.classes {
		if c.SchoolID == schoolID {
			delete(db.classes, id)
		}
	}
	for k := range db.schedules {
		if k.schoolID == schoolID {
			delete(db.schedules, k)
		}
	}
	for id, w := range db.weeks {
		if w.SchoolID == schoolID {
			delete(db.weeks, id)
		}
	}
	for k := range db.plans {
		if k.schoolID == schoolID {
			delete(db.plans, k)
		}
	}
	for id, s := range db.planSets {
		if s.SchoolID == schoolID {
			delete(db.planSets, id)
		}
	}
	for id, r := range db.reports {
		if r.SchoolID == schoolID {
			delete(db.reports, id)
		}
	}
}
