package notifier

import (
	"context"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTP sends notifications through a plain SMTP relay with STARTTLS,
// the way the original deployment used a Gmail app password.
type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTP constructs an SMTP notifier.
func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{host: host, port: port, username: username, password: password, from: from}
}

// Notify builds and sends one message.  The context is accepted for
// interface symmetry; gomail does not support cancellation mid-dial.
func (s *SMTP) Notify(_ context.Context, recipient, subject, body string, attachment *Attachment) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if attachment != nil {
		m.Attach(attachment.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(attachment.Data)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {attachment.ContentType},
			}),
		)
	}
	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	return d.DialAndSend(m)
}
