package notify

import (
	"io"

	gomail "gopkg.in/gomail.v2"

	"github.com/casadocigano/fidelidade-api/internal/config"
)

// Mailer sends the loyalty emails over SMTP. When host, user or password
// are unset, it stays unconfigured and every send is skipped.
type Mailer struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

// NewMailer builds a mailer from the SMTP configuration. SMTP_SSL=true or
// port 465 selects implicit SSL; otherwise STARTTLS is negotiated.
func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{fromName: cfg.SMTPFromName, fromEmail: cfg.SMTPFromEmail}
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		return m
	}
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	d.SSL = cfg.SMTPSSL || cfg.SMTPPort == 465
	m.dialer = d
	return m
}

// Configured reports whether SMTP credentials are present.
func (m *Mailer) Configured() bool { return m.dialer != nil }

// Send delivers one email with a plain-text body, an optional HTML
// alternative and an optional inline PNG card.
func (m *Mailer) Send(to, subject, text, html string, card []byte) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	if html != "" {
		msg.AddAlternative("text/html", html)
	}
	if len(card) > 0 {
		msg.Attach("fidelidade.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(card)
			return err
		}))
	}
	return m.dialer.DialAndSend(msg)
}
