package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/lukimgather/gather-api/internal/config"
)

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// NewMailerFromConfig returns an SMTPMailer when SMTP is configured, or a
// LogMailer so unconfigured environments still drain the queue.
func NewMailerFromConfig(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
}

// Send delivers one message.
func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: Lukim Gather <%s>\r\n", m.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Password, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg.String()))
}

// LogMailer logs instead of sending; used when no SMTP relay is
// configured and in tests.
type LogMailer struct{}

// Send logs the message.
func (m *LogMailer) Send(to, subject, body string) error {
	log.Printf("mail (not sent, SMTP unconfigured): to=%s subject=%q", to, subject)
	return nil
}
