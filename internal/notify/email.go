package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	mail "gopkg.in/mail.v2"

	"github.com/wardle-dev/lookout/internal/models"
)

// Mailer sends one rendered email. The SMTP implementation below satisfies
// it; tests substitute a recording fake.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Dialer abstracts mail.v2's DialAndSend so transports can be faked.
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPMailer delivers mail through a configured SMTP relay.
type SMTPMailer struct {
	from   string
	dialer Dialer
}

// NewSMTPMailer builds a mailer for the given relay.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		from:   from,
		dialer: mail.NewDialer(host, port, username, password),
	}
}

// Send composes and delivers one HTML email.
func (s *SMTPMailer) Send(to, subject, htmlBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	return s.dialer.DialAndSend(m)
}

var emailTemplate = template.Must(template.New("status").Parse(`<html>
<body>
  <h2>Monitor {{.Name}} is {{.StatusWord}}</h2>
  <p>The monitor <strong>{{.Name}}</strong> ({{.URL}}) changed status to <strong>{{.StatusWord}}</strong> at {{.At}}.</p>
</body>
</html>`))

// EmailChannel renders a status-appropriate message and hands it to the
// mailer.
type EmailChannel struct {
	mailer Mailer
	to     string
}

func NewEmailChannel(mailer Mailer, to string) *EmailChannel {
	return &EmailChannel{mailer: mailer, to: to}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Notify(ctx context.Context, event Event) error {
	statusWord := "DOWN"
	if event.NewStatus == models.StatusUp {
		statusWord = "UP"
	}

	subject := fmt.Sprintf("Monitor '%s' is %s", event.Monitor.Name, statusWord)

	var body bytes.Buffer
	err := emailTemplate.Execute(&body, map[string]string{
		"Name":       event.Monitor.Name,
		"URL":        event.Monitor.URL,
		"StatusWord": statusWord,
		"At":         event.At.Format("2006-01-02 15:04:05 MST"),
	})
	if err != nil {
		return fmt.Errorf("render email template: %w", err)
	}

	if err := e.mailer.Send(e.to, subject, body.String()); err != nil {
		return fmt.Errorf("send email to %s: %w", e.to, err)
	}
	return nil
}
