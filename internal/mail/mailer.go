// Package mail sends HTML notification mails over SMTP.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers one rendered mail. The worker depends on this interface
// so tests can capture deliveries without a live SMTP server.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Mailer is the SMTP-backed Sender. It authenticates with PLAIN auth and
// relies on the server for STARTTLS (port 587 submission).
type Mailer struct {
	host     string
	port     int
	from     string
	password string
}

func NewMailer(host string, port int, from, password string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		from:     from,
		password: password,
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
