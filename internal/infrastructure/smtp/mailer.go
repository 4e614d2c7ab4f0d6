package smtp

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/pkg/id"
)

// Mailer sends a single email and returns the relay-visible message id.
type Mailer interface {
	Send(to, subject, htmlBody, textBody string) (messageID string, err error)
}

type mailer struct {
	host       string
	port       string
	from       string
	senderName string
	username   string
	password   string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		from:       cfg.SMTPFrom,
		senderName: cfg.SMTPSenderName,
		username:   cfg.SMTPUsername,
		password:   cfg.SMTPPassword,
	}
}

// Send builds a multipart/alternative message (text + HTML) and submits it.
// When textBody is empty only the HTML part is sent.
func (m *mailer) Send(to, subject, htmlBody, textBody string) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", id.New(), m.host)
	boundary := id.New()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", m.senderName), m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	b.WriteString("MIME-Version: 1.0\r\n")

	if textBody == "" {
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(htmlBody)
	} else {
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, textBody)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, htmlBody)
		fmt.Fprintf(&b, "--%s--\r\n", boundary)
	}

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(b.String())); err != nil {
		return "", err
	}
	return messageID, nil
}
