package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/devlohani99/sehat-scheduler/internal/scheduling"
)

// EmailNotifier sends booking email to the patient via the Resend API.
// All notifications are best-effort; the scheduling service logs failures
// and never fails a booking because of one.
type EmailNotifier struct {
	client *resend.Client
	from   string
}

func NewEmailNotifier(apiKey, from string) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (n *EmailNotifier) BookingConfirmed(ctx context.Context, detail *scheduling.AppointmentDetail) error {
	if detail.User == nil || detail.User.Email == nil || detail.Doctor == nil || detail.Hospital == nil {
		return nil
	}

	subject := fmt.Sprintf("Appointment confirmed with Dr. %s", detail.Doctor.Name)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your appointment with Dr. %s (%s) at %s is confirmed for <b>%s</b>.</p>",
		detail.User.Name,
		detail.Doctor.Name,
		detail.Doctor.Specialization,
		detail.Hospital.Name,
		detail.AppointmentDate.Format("Mon, 2 Jan 2006 15:04 MST"),
	)

	return n.send(ctx, *detail.User.Email, subject, html)
}

func (n *EmailNotifier) BookingCancelled(ctx context.Context, detail *scheduling.AppointmentDetail) error {
	if detail.User == nil || detail.User.Email == nil || detail.Doctor == nil {
		return nil
	}

	subject := fmt.Sprintf("Appointment with Dr. %s cancelled", detail.Doctor.Name)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your appointment with Dr. %s on %s has been cancelled.</p>",
		detail.User.Name,
		detail.Doctor.Name,
		detail.AppointmentDate.Format("Mon, 2 Jan 2006 15:04 MST"),
	)

	return n.send(ctx, *detail.User.Email, subject, html)
}

func (n *EmailNotifier) send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	return nil
}
