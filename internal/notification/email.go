package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

// DefaultFromAddress is used when no SMTP user is configured
const DefaultFromAddress = "wms-bot@localhost"

// EmailSink mails the plain-text summary through an SMTP relay
type EmailSink struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	recipients []string
}

// NewEmailSink creates the email sink. It is disabled unless both the
// server and at least one recipient are set.
func NewEmailSink(cfg config.EmailConfig) *EmailSink {
	from := cfg.User
	if from == "" {
		from = DefaultFromAddress
	}

	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	return &EmailSink{
		host:       cfg.SMTPServer,
		port:       port,
		username:   cfg.User,
		password:   cfg.Password,
		from:       from,
		recipients: splitRecipients(cfg.To),
	}
}

func (s *EmailSink) Name() string  { return "email" }
func (s *EmailSink) Enabled() bool { return s.host != "" && len(s.recipients) > 0 }

// Send delivers the summary. STARTTLS is used when the server offers it;
// a refused upgrade is logged and the session continues in plain text.
// Login happens only when both user and password are set.
func (s *EmailSink) Send(ctx context.Context, summary *Summary) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			slog.Warn("SMTP STARTTLS failed, continuing without TLS", "error", err, "host", s.host)
		}
	}

	if s.username != "" && s.password != "" {
		var auth smtp.Auth = smtp.PlainAuth("", s.username, s.password, s.host)
		if _, encrypted := c.TLSConnectionState(); !encrypted {
			slog.Warn("SMTP relay has no TLS, sending credentials in plain text", "host", s.host)
			auth = plainTextAuth{auth}
		}
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(s.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range s.recipients {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(s.buildMessage(summary)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end of data: %w", err)
	}

	return c.Quit()
}

func (s *EmailSink) buildMessage(summary *Summary) []byte {
	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + strings.Join(s.recipients, ", ") + "\r\n")
	msg.WriteString("Subject: " + summary.Subject + "\r\n")
	msg.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(summary.Text, "\n", "\r\n"))
	msg.WriteString("\r\n")
	return []byte(msg.String())
}

// plainTextAuth lets PLAIN auth proceed on a relay without TLS.
// smtp.PlainAuth only allows that for localhost.
type plainTextAuth struct {
	smtp.Auth
}

func (a plainTextAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	info := *server
	info.TLS = true
	return a.Auth.Start(&info)
}

func splitRecipients(to string) []string {
	var out []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
