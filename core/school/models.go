package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/madrasa/core"
)

// Subscription statuses
const (
	SubscriptionTrial   = "trial"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

var SubscriptionStatuses = []string{SubscriptionTrial, SubscriptionActive, SubscriptionExpired}

type Branding struct {
	HeaderText      string `json:"header_text"`
	LogoURL         string `json:"logo_url"`
	GeneralMessages string `json:"general_messages"`
	WeeklyNote      string `json:"weekly_note"`
}

// School is a tenant. Every other record is scoped by a school id.
type School struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	AdminUsername      string    `json:"admin_username"`
	AdminPasswordHash  []byte    `json:"-"`
	SubscriptionStatus string    `json:"subscription_status"`
	Branding           Branding  `json:"branding"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

func (s *School) SetAdminPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.AdminPasswordHash = hash
	return nil
}

func (s *School) CheckAdminPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.AdminPasswordHash, []byte(pwd))
}

type Teacher struct {
	ID           string      `json:"id"`
	SchoolID     string      `json:"school_id"`
	Name         string      `json:"name"`
	Username     string      `json:"username"`
	Email        null.String `json:"email"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

type Subject struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Student struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade"`
	Section   string    `json:"section"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// ClassTitle is the class the student belongs to.
func (s Student) ClassTitle() core.ClassTitle {
	return core.NewClassTitle(s.Grade, s.Section)
}

// SchoolClass is a teaching group. Classes are synced from the student roster
// unless created manually.
type SchoolClass struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Grade     string    `json:"grade"`
	Section   string    `json:"section"`
	Manual    bool      `json:"manual"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (c SchoolClass) Title() core.ClassTitle {
	return core.NewClassTitle(c.Grade, c.Section)
}

// SyncResult lists the classes added and removed by a roster sync.
type SyncResult struct {
	Added   []SchoolClass `json:"added"`
	Removed []SchoolClass `json:"removed"`
}

// GetFilter finds a school by id or slug, in that order.
type GetFilter struct {
	ID   string
	Slug string
}

// NewSchool contains information needed to register a School.
type NewSchool struct {
	Name            string `json:"name" validate:"required,notblank"`
	Slug            string `json:"slug" validate:"required,max=64,slug"`
	AdminUsername   string `json:"admin_username" validate:"required,min=4,alphanum_"`
	AdminPassword   string `json:"admin_password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=AdminPassword"`
}

func (ns *NewSchool) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Slug = core.CleanString(ns.Slug, true /* lower */)
	ns.AdminUsername = core.CleanString(ns.AdminUsername, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckSlugUniqueness(ctx, ns.Slug)
}

// UpdateSchool defines the settings a school admin may change. Nil fields are left untouched.
type UpdateSchool struct {
	Name            *string `json:"name" validate:"omitempty,notblank"`
	HeaderText      *string `json:"header_text"`
	LogoURL         *string `json:"logo_url" validate:"omitempty,url"`
	GeneralMessages *string `json:"general_messages"`
	WeeklyNote      *string `json:"weekly_note"`
}

func (us *UpdateSchool) Validate(validate *validator.Validate) error {
	for _, fld := range []*string{us.Name, us.HeaderText, us.LogoURL, us.GeneralMessages, us.WeeklyNote} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	return validate.Struct(us)
}

type SetSubscription struct {
	Status string `json:"status" validate:"required,oneof=trial active expired"`
}

func (ss *SetSubscription) Validate(validate *validator.Validate) error {
	ss.Status = core.CleanString(ss.Status, true /* lower */)
	return validate.Struct(ss)
}

type NewTeacher struct {
	Name            string `json:"name" validate:"required,notblank"`
	Username        string `json:"username" validate:"required,min=3,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nt *NewTeacher) Validate(ctx context.Context, validate *validator.Validate, svc *Service, schoolID string) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Email = core.CleanString(nt.Email, true /* lower */)

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return svc.CheckUsernameUniqueness(ctx, schoolID, nt.Username)
}

type NewSubject struct {
	Name string `json:"name" validate:"required,notblank"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type NewStudent struct {
	Name    string `json:"name" validate:"required,notblank"`
	Grade   string `json:"grade" validate:"required,notblank,noclasssep"`
	Section string `json:"section" validate:"required,notblank,noclasssep"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
}

func (ns *NewStudent) clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Section = core.CleanString(ns.Section)
	ns.Phone = core.CleanString(ns.Phone)
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.clean()
	return validate.Struct(ns)
}

// BulkStudents is validated per student when saved.
type BulkStudents struct {
	Students []NewStudent `json:"students" validate:"required,min=1"`
}

func (bs *BulkStudents) Validate(validate *validator.Validate) error {
	return validate.Struct(bs)
}

type NewClass struct {
	Grade   string `json:"grade" validate:"required,notblank,noclasssep"`
	Section string `json:"section" validate:"required,notblank,noclasssep"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Grade = core.CleanString(nc.Grade)
	nc.Section = core.CleanString(nc.Section)
	return validate.Struct(nc)
}

// ResetAdminPassword is used by system admins to set a new school admin password.
type ResetAdminPassword struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	// used for the password similarity check
	username string
	name     string
}

func (rp *ResetAdminPassword) Validate(validate *validator.Validate, sch School) error {
	rp.username = sch.AdminUsername
	rp.name = sch.Name
	return validate.Struct(rp)
}
