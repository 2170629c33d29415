package service

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"campusbus/internal/config"
)

// EmailSender delivers SOS mail. Delivery is best-effort; callers never fail
// on a send error.
type EmailSender interface {
	SendSOSEmail(emails []string, driverName, reason, mapLink string) error
}

// EmailService sends SOS alert mail over SMTP.
type EmailService struct {
	cfg config.SMTPConfig
}

// NewEmailService creates a new EmailService.
func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendSOSEmail mails every passenger on the bus about an emergency, with a
// map link to the driver's position.
func (s *EmailService) SendSOSEmail(emails []string, driverName, reason, mapLink string) error {
	if !s.cfg.Enabled || len(emails) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", emails...)
	m.SetHeader("Subject", fmt.Sprintf("🚨 SOS Alert from your bus driver %s", driverName))
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Driver <b>%s</b> has raised an SOS alert.</p>
<p>Reason: <b>%s</b></p>
<p><a href="%s">View last known location on the map</a></p>
<p>Please contact the institute immediately if you are on this route.</p>`,
		driverName, reason, mapLink,
	))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

// Ensure EmailService implements EmailSender.
var _ EmailSender = (*EmailService)(nil)
