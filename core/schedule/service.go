package schedule

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

type (
	Repository interface {
		// GetSchedule returns an empty Schedule when nothing was saved for the class.
		GetSchedule(ctx context.Context, schoolID string, class core.ClassTitle) (Schedule, error)
		// SaveSchedule upserts every supplied cell in one transaction. Other cells are left untouched.
		SaveSchedule(ctx context.Context, schoolID string, class core.ClassTitle, cells Schedule) error
		QuerySchedules(ctx context.Context, schoolID string) (map[core.ClassTitle]Schedule, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, schoolID string, class core.ClassTitle) (Schedule, error) {
	sch, err := svc.repo.GetSchedule(ctx, schoolID, class)
	if err != nil {
		return nil, errors.Wrap(err, "getting schedule")
	}
	if sch == nil {
		sch = make(Schedule)
	}
	return sch, nil
}

// Save merges cells into the class schedule.
func (svc *Service) Save(ctx context.Context, schoolID string, class core.ClassTitle, cells Schedule) error {
	if class.Grade == "" || class.Section == "" {
		return core.NewValidationError(core.ErrInvalidClassTitle, core.FieldError{Field: "class", Error: "grade and section are required"})
	}
	if !class.Valid() {
		return core.NewValidationError(core.ErrInvalidClassTitle, core.FieldError{Field: "class", Error: errClassSep})
	}
	for slot := range cells {
		if !slot.Valid() {
			return core.NewValidationError(ErrSlotValidation, core.FieldError{Field: "cells." + slot.String(), Error: errMalformedSlot})
		}
	}
	if len(cells) == 0 {
		return nil
	}
	if err := svc.repo.SaveSchedule(ctx, schoolID, class, cells); err != nil {
		return errors.Wrap(err, "saving schedule")
	}
	return nil
}

// TeacherClashes reports teachers assigned to several classes at the same slot.
// Saving such schedules is allowed, this is a read-only report.
func (svc *Service) TeacherClashes(ctx context.Context, schoolID string) ([]Clash, error) {
	schedules, err := svc.repo.QuerySchedules(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}

	type bookingKey struct {
		teacherID string
		slot      Slot
	}
	bookings := make(map[bookingKey][]core.ClassTitle)
	for class, sch := range schedules {
		for slot, cell := range sch {
			if !cell.TeacherID.Valid {
				continue
			}
			k := bookingKey{teacherID: cell.TeacherID.String, slot: slot}
			bookings[k] = append(bookings[k], class)
		}
	}

	clashes := make([]Clash, 0)
	for k, classes := range bookings {
		if len(classes) < 2 {
			continue
		}
		sort.Slice(classes, func(i, j int) bool { return classes[i].Less(classes[j]) })
		clashes = append(clashes, Clash{TeacherID: k.teacherID, Slot: k.slot, Classes: classes})
	}
	sort.Slice(clashes, func(i, j int) bool {
		if clashes[i].TeacherID != clashes[j].TeacherID {
			return clashes[i].TeacherID < clashes[j].TeacherID
		}
		return clashes[i].Slot.Less(clashes[j].Slot)
	})
	return clashes, nil
}

// Render resolves subject and teacher names of sch.
// Ids missing from the lookups render as Unknown, unset ids render empty.
func Render(sch Schedule, subjects, teachers map[string]string) []RenderedCell {
	lookup := func(id string, names map[string]string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return Unknown
	}

	cells := make([]RenderedCell, 0, len(sch))
	for _, slot := range sch.Slots() {
		cell := sch[slot]
		rc := RenderedCell{Slot: slot, SubjectID: cell.SubjectID, TeacherID: cell.TeacherID}
		if cell.SubjectID.Valid {
			rc.Subject = lookup(cell.SubjectID.String, subjects)
		}
		if cell.TeacherID.Valid {
			rc.Teacher = lookup(cell.TeacherID.String, teachers)
		}
		cells = append(cells, rc)
	}
	return cells
}
