package main

import (
	"io"

	"github.com/go-gomail/gomail"
)

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

// Attachment is an in-memory file attached to a mail.
type Attachment struct {
	Filename string
	Data     []byte
}

// smtpMailer sends generated coupon batches to the configured address.
type smtpMailer struct {
	smtp  SMTPConfig
	email EmailConfig
}

// newMailer returns nil when mailing is not configured.
func newMailer(cfg *Config) *smtpMailer {
	if cfg.SMTP.Host == "" || cfg.Email.To == "" {
		return nil
	}
	return &smtpMailer{smtp: cfg.SMTP, email: cfg.Email}
}

// buildMessage assembles the mail with all attachments.
func buildMessage(email EmailConfig, subject string, attachments ...Attachment) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", email.From)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", "Gutscheine anbei.<br>")

	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	return msg
}

// Send delivers the attachments via SMTP.
func (m *smtpMailer) Send(subject string, attachments ...Attachment) error {
	msg := buildMessage(m.email, subject, attachments...)
	dialer := gomail.NewDialer(m.smtp.Host, m.smtp.Port, m.smtp.Username, m.smtp.Password)
	return dialer.DialAndSend(msg)
}
