package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// MailerConfig holds the SMTP settings for outgoing reset codes.
type MailerConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// UseTLS dials the server over implicit TLS (usually port 465). Without it
	// the connection is upgraded with STARTTLS when the server offers it.
	UseTLS bool
	// PerMinute caps outgoing messages. Zero means no pacing.
	PerMinute int
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type PasswordResetMailer struct {
	cfg     MailerConfig
	limiter *rate.Limiter
	send    sendFunc
}

func NewPasswordResetMailer(cfg MailerConfig) *PasswordResetMailer {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.From = strings.TrimSpace(cfg.From)

	m := &PasswordResetMailer{cfg: cfg, send: smtp.SendMail}
	if cfg.UseTLS {
		m.send = m.sendImplicitTLS
	}
	if cfg.PerMinute > 0 {
		m.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PerMinute)), 1)
	}
	return m
}

// SendPasswordReset waits for a send slot, then delivers the code. It returns
// ctx.Err() if the context ends while waiting.
func (m *PasswordResetMailer) SendPasswordReset(ctx context.Context, email, name, otp string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.cfg.Host == "" || m.cfg.Port == "" || m.cfg.From == "" {
		return errors.New("mailer missing configuration")
	}
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("mail pacing: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" || m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return m.send(addr, auth, m.cfg.From, []string{email}, buildResetMessage(m.cfg.From, email, name, otp))
}

func buildResetMessage(from, to, name, otp string) []byte {
	if name == "" {
		name = "resident"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your password reset code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", name)
	fmt.Fprintf(&b, "Use the following code to reset your password: %s\r\n\r\n", otp)
	b.WriteString("The code expires in 10 minutes and can be used once.\r\n")
	b.WriteString("If you did not request this, ignore this email.\r\n")
	return []byte(b.String())
}

func (m *PasswordResetMailer) sendImplicitTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
