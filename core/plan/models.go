package plan

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/schedule"
)

var ErrKeyValidation = errors.New("invalid plan key")

// Key locates a lesson plan within a week: a class and a schedule slot.
type Key struct {
	Class core.ClassTitle
	Slot  schedule.Slot
}

func NewKey(class core.ClassTitle, slot schedule.Slot) Key {
	return Key{Class: class, Slot: slot}
}

// ParseKey parses "{classTitle}_{day}_{period}". The class title may itself contain underscores.
func ParseKey(s string) (Key, error) {
	invalid := func(msg string) (Key, error) {
		return Key{}, core.NewValidationError(ErrKeyValidation, core.FieldError{Field: "key", Error: msg})
	}

	periodSep := strings.LastIndex(s, "_")
	if periodSep <= 0 {
		return invalid("expected {class}_{day}_{period}")
	}
	daySep := strings.LastIndex(s[:periodSep], "_")
	if daySep <= 0 {
		return invalid("expected {class}_{day}_{period}")
	}

	class, err := core.ParseClassTitle(s[:daySep])
	if err != nil {
		return invalid(core.ErrInvalidClassTitle.Error())
	}
	slot, err := schedule.ParseSlot(s[daySep+1:])
	if err != nil {
		if vErr, ok := err.(*core.ValidationError); ok && len(vErr.Fields) > 0 {
			return invalid(vErr.Fields[0].Error)
		}
		return invalid(err.Error())
	}
	return Key{Class: class, Slot: slot}, nil
}

func (k Key) String() string {
	return k.Class.String() + "_" + k.Slot.String()
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Entry is the content of a lesson plan. Every field is optional.
type Entry struct {
	Lesson     null.String `json:"lesson"`
	Homework   null.String `json:"homework"`
	Enrichment null.String `json:"enrichment"`
}

// Authored reports whether the lesson is filled in, ignoring surrounding whitespace.
func (e Entry) Authored() bool {
	return e.Lesson.Valid && strings.TrimSpace(e.Lesson.String) != ""
}

// Merge returns e overridden by the fields set in update.
func (e Entry) Merge(update Entry) Entry {
	if update.Lesson.Valid {
		e.Lesson = update.Lesson
	}
	if update.Homework.Valid {
		e.Homework = update.Homework
	}
	if update.Enrichment.Valid {
		e.Enrichment = update.Enrichment
	}
	return e
}

// Plans holds the lesson plans of one week.
type Plans map[Key]Entry

// Authored reports whether the plan at k has a lesson.
func (p Plans) Authored(k Key) bool {
	e, ok := p[k]
	return ok && e.Authored()
}
