package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
)

type Day string

// School days
const (
	Sunday    Day = "sun"
	Monday    Day = "mon"
	Tuesday   Day = "tue"
	Wednesday Day = "wed"
	Thursday  Day = "thu"
)

const (
	MinPeriod = 1
	MaxPeriod = 7
)

var (
	Days = []Day{Sunday, Monday, Tuesday, Wednesday, Thursday}

	dayIndex = map[Day]int{Sunday: 0, Monday: 1, Tuesday: 2, Wednesday: 3, Thursday: 4}

	errUnknownDay     = "unknown day"
	errPeriodRange    = fmt.Sprintf("period must be between %d and %d", MinPeriod, MaxPeriod)
	errMalformedSlot  = "malformed slot, expected {day}_{period}"
	errClassSep       = `grade and section cannot contain "` + strings.TrimSpace(core.ClassTitleSep) + `"`
	ErrSlotValidation = errors.New("invalid schedule slot")
)

func (d Day) Valid() bool {
	_, ok := dayIndex[d]
	return ok
}

func ParseDay(s string) (Day, error) {
	d := Day(core.CleanString(s, true /* lower */))
	if !d.Valid() {
		return "", core.NewValidationError(ErrSlotValidation, core.FieldError{Field: "day", Error: errUnknownDay})
	}
	return d, nil
}

func ValidPeriod(p int) bool {
	return p >= MinPeriod && p <= MaxPeriod
}

// Slot is one (day, period) coordinate of the weekly grid.
type Slot struct {
	Day    Day `json:"day"`
	Period int `json:"period"`
}

func NewSlot(day string, period int) (Slot, error) {
	d, err := ParseDay(day)
	if err != nil {
		return Slot{}, err
	}
	if !ValidPeriod(period) {
		return Slot{}, core.NewValidationError(ErrSlotValidation, core.FieldError{Field: "period", Error: errPeriodRange})
	}
	return Slot{Day: d, Period: period}, nil
}

// ParseSlot parses the "{day}_{period}" form of a Slot.
func ParseSlot(s string) (Slot, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 {
		return Slot{}, core.NewValidationError(ErrSlotValidation, core.FieldError{Field: "slot", Error: errMalformedSlot})
	}
	period, err := strconv.Atoi(parts[1])
	if err != nil {
		return Slot{}, core.NewValidationError(ErrSlotValidation, core.FieldError{Field: "period", Error: errPeriodRange})
	}
	return NewSlot(parts[0], period)
}

func (s Slot) String() string {
	return string(s.Day) + "_" + strconv.Itoa(s.Period)
}

func (s Slot) Valid() bool {
	return s.Day.Valid() && ValidPeriod(s.Period)
}

// Less orders slots by weekday, then period.
func (s Slot) Less(other Slot) bool {
	if s.Day != other.Day {
		return dayIndex[s.Day] < dayIndex[other.Day]
	}
	return s.Period < other.Period
}

func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(text []byte) error {
	parsed, err := ParseSlot(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Cell is the assignment of one slot. Both ids are optional.
type Cell struct {
	SubjectID null.String `json:"subject_id"`
	TeacherID null.String `json:"teacher_id"`
}

func (c Cell) IsEmpty() bool {
	return !c.SubjectID.Valid && !c.TeacherID.Valid
}

// Schedule is the sparse weekly grid of a class.
type Schedule map[Slot]Cell

// Slots returns the filled slots in weekday order.
func (sch Schedule) Slots() []Slot {
	slots := make([]Slot, 0, len(sch))
	for s := range sch {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Less(slots[j]) })
	return slots
}

// SaveSchedule is the request body of a schedule update: a "{day}_{period}" keyed cell map.
type SaveSchedule struct {
	Cells map[string]Cell `json:"cells" validate:"required"`
}

// Validate parses the cell keys, blank ids are treated as unset.
func (ss SaveSchedule) Validate() (Schedule, error) {
	if ss.Cells == nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "cells", Error: "this field is required"})
	}
	sch := make(Schedule, len(ss.Cells))
	for key, cell := range ss.Cells {
		slot, err := ParseSlot(key)
		if err != nil {
			msg := errMalformedSlot
			if vErr, ok := err.(*core.ValidationError); ok && len(vErr.Fields) > 0 {
				msg = vErr.Fields[0].Error
			}
			return nil, core.NewValidationError(ErrSlotValidation, core.FieldError{Field: "cells." + key, Error: msg})
		}
		sch[slot] = Cell{SubjectID: cleanID(cell.SubjectID), TeacherID: cleanID(cell.TeacherID)}
	}
	return sch, nil
}

func cleanID(id null.String) null.String {
	if !id.Valid {
		return id
	}
	s := core.CleanString(id.String)
	return null.NewString(s, s != "")
}

// Clash is a teacher booked in more than one class at the same slot.
type Clash struct {
	TeacherID string            `json:"teacher_id"`
	Slot      Slot              `json:"slot"`
	Classes   []core.ClassTitle `json:"classes"`
}

const Unknown = "unknown"

// RenderedCell is a Cell with resolved subject and teacher names.
type RenderedCell struct {
	Slot      Slot        `json:"slot"`
	SubjectID null.String `json:"subject_id"`
	Subject   string      `json:"subject"`
	TeacherID null.String `json:"teacher_id"`
	Teacher   string      `json:"teacher"`
}
