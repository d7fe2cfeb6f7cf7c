package core

import (
	"strings"

	"github.com/pkg/errors"
)

// ClassTitleSep joins grade and section in the stored class title.
// Neither part may contain it, so that the stored title reads back into the same pair.
const ClassTitleSep = " - فصل "

var ErrInvalidClassTitle = errors.New("invalid class title")

// ClassTitle identifies a teaching group by its (grade, section) pair.
// Its String form is only used as a storage key.
type ClassTitle struct {
	Grade   string `json:"grade" validate:"required,notblank,noclasssep"`
	Section string `json:"section" validate:"required,notblank,noclasssep"`
}

func NewClassTitle(grade, section string) ClassTitle {
	return ClassTitle{Grade: CleanString(grade), Section: CleanString(section)}
}

// ParseClassTitle reads back a title produced by ClassTitle.String.
func ParseClassTitle(s string) (ClassTitle, error) {
	if strings.Count(s, ClassTitleSep) != 1 {
		return ClassTitle{}, errors.Wrapf(ErrInvalidClassTitle, "%q", s)
	}
	idx := strings.Index(s, ClassTitleSep)
	ct := NewClassTitle(s[:idx], s[idx+len(ClassTitleSep):])
	if !ct.Valid() {
		return ClassTitle{}, errors.Wrapf(ErrInvalidClassTitle, "%q", s)
	}
	return ct, nil
}

func (ct ClassTitle) String() string {
	return ct.Grade + ClassTitleSep + ct.Section
}

// Valid reports whether both parts are set and free of ClassTitleSep.
func (ct ClassTitle) Valid() bool {
	return ct.Grade != "" && ct.Section != "" &&
		!strings.Contains(ct.Grade, ClassTitleSep) && !strings.Contains(ct.Section, ClassTitleSep)
}

func (ct ClassTitle) IsZero() bool {
	return ct.Grade == "" && ct.Section == ""
}

// Less orders class titles by grade, then section.
func (ct ClassTitle) Less(other ClassTitle) bool {
	if ct.Grade != other.Grade {
		return ct.Grade < other.Grade
	}
	return ct.Section < other.Section
}
