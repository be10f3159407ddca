// Package notify sends transactional email over SMTP. Delivery is best
// effort: an unconfigured or unreachable relay is logged, never fatal.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	lg       *zap.SugaredLogger
}

func NewMailer(host string, port int, username, password, from string, lg *zap.SugaredLogger) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password, from: from, lg: lg}
}

// Send delivers one message and reports whether it went out. When htmlBody
// is non-empty the message is sent as text/html.
func (m *Mailer) Send(subject, body string, recipients []string, htmlBody string) bool {
	if m.host == "" || len(recipients) == 0 {
		m.lg.Debugw("mail delivery skipped", "configured", m.host != "", "recipients", len(recipients))
		return false
	}

	contentType := "text/plain"
	if htmlBody != "" {
		contentType = "text/html"
		body = htmlBody
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\nContent-Type: %s; charset=\"UTF-8\"\r\n\r\n", contentType)
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, recipients, []byte(msg.String())); err != nil {
		m.lg.Errorw("mail delivery failed", "subject", subject, "error", err)
		return false
	}
	m.lg.Infow("mail sent", "subject", subject, "recipients", len(recipients))
	return true
}
