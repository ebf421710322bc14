// Package mail delivers the confirmation codes and tokens issued by
// the auth flow. Delivery failures are returned to the caller; the
// signup and confirm operations fail loudly rather than continuing
// with an unsent secret.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer is the external collaborator interface consumed by services.
type Mailer interface {
	Send(subject, body string, to []string) error
}

type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (m *SMTPMailer) Send(subject, body string, to []string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, to, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
