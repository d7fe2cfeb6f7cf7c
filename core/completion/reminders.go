package completion

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

const reminderTemplate = "plan_reminder"

type reminderData struct {
	TeacherName string
	WeekName    string
	Missing     []string
}

// Reminders emails the incomplete teachers that have an email address.
type Reminders struct {
	resolver *Resolver
	mailSvc  core.EmailService
}

func NewReminders(resolver *Resolver, mailSvc core.EmailService) *Reminders {
	return &Reminders{resolver: resolver, mailSvc: mailSvc}
}

// Send returns the number of reminders sent.
func (r *Reminders) Send(ctx context.Context, schoolID string) (int, error) {
	res, err := r.resolver.Resolve(ctx, schoolID)
	if err != nil {
		return 0, errors.Wrap(err, "resolving completion")
	}
	if res.Week == nil {
		return 0, nil
	}

	messages := make([]*core.EmailMessage, 0, len(res.Incomplete))
	for _, p := range res.Incomplete {
		if !p.Teacher.Email.Valid || p.Teacher.Email.String == "" {
			continue
		}
		missing := make([]string, 0, len(p.Missing))
		for _, s := range p.Missing {
			missing = append(missing, s.Key().String())
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: p.Teacher.Name, Address: p.Teacher.Email.String}},
			Subject:      "Lesson plans reminder: " + res.Week.Name,
			TemplateName: reminderTemplate,
			TemplateData: reminderData{
				TeacherName: p.Teacher.Name,
				WeekName:    res.Week.Name,
				Missing:     missing,
			},
		})
	}
	if len(messages) > 0 {
		r.mailSvc.SendMessages(messages...)
	}
	return len(messages), nil
}
