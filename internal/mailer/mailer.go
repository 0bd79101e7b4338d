package mailer

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

var ErrNotConfigured = errors.New("mailer not configured")

// Mailer sends fire-and-forget operator notices over SMTP.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	operator string
}

func New(host, port, username, password, from, operator string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		operator: operator,
	}
}

// SendSubscriptionNotice tells the operator address about a new
// subscription signup. Failure is returned to the caller so it can
// degrade to a "try again" response.
func (m *Mailer) SendSubscriptionNotice(subscriberEmail string) error {
	if m == nil || m.host == "" || m.operator == "" {
		return ErrNotConfigured
	}
	from := m.from
	if from == "" {
		from = m.username
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", m.operator)
	fmt.Fprintf(&b, "Subject: New subscription signup\r\n")
	fmt.Fprintf(&b, "\r\n")
	fmt.Fprintf(&b, "New subscriber: %s\r\n", subscriberEmail)

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(addr, auth, from, []string{m.operator}, []byte(b.String()))
}
