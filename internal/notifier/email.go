package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSink sends plain-text mail over SMTP with STARTTLS and plain auth.
type EmailSink struct {
	Server   string
	Port     int
	From     string
	Password string
	To       string
}

// NewEmailSink creates an SMTP sink.
func NewEmailSink(server string, port int, from, password, to string) *EmailSink {
	return &EmailSink{Server: server, Port: port, From: from, Password: password, To: to}
}

func (e *EmailSink) Name() string { return "email" }

func (e *EmailSink) Send(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", e.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", e.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", title))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", e.Server, e.Port)
	auth := smtp.PlainAuth("", e.From, e.Password, e.Server)
	if err := smtp.SendMail(addr, auth, e.From, []string{e.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
