package mailer

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"

	"ms-registration/internal/config"
)

// Sender is the outbound-mail port used by the registration and attendance
// flows. Implementations must be safe for concurrent use.
type Sender interface {
	Send(to, subject, htmlBody string) error
	SendWithInlinePNG(to, subject, htmlBody, cid string, png []byte) error
}

// SMTPMailer sends mail over implicit TLS (port 465 style). The dial timeout
// keeps a hung transport from hanging request handlers indefinitely.
type SMTPMailer struct {
	cfg config.EmailConfig
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\n", m.cfg.Address) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"utf-8\"\r\n" +
		"\r\n" +
		htmlBody

	return m.deliver(to, []byte(msg))
}

// SendWithInlinePNG builds a multipart/related message so the HTML body can
// reference the attached image via <img src="cid:...">.
func (m *SMTPMailer) SendWithInlinePNG(to, subject, htmlBody, cid string, png []byte) error {
	var body strings.Builder
	mw := multipart.NewWriter(&body)

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=\"utf-8\""},
	})
	if err != nil {
		return err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return err
	}

	imgPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"image/png"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-ID":                {"<" + cid + ">"},
		"Content-Disposition":       {fmt.Sprintf("inline; filename=%q", cid+".png")},
	})
	if err != nil {
		return err
	}
	if _, err := imgPart.Write([]byte(base64.StdEncoding.EncodeToString(png))); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\n", m.cfg.Address) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		fmt.Sprintf("Content-Type: multipart/related; boundary=%q\r\n", mw.Boundary()) +
		"\r\n" +
		body.String()

	return m.deliver(to, []byte(msg))
}

func (m *SMTPMailer) deliver(to string, msg []byte) error {
	if m.cfg.Address == "" || m.cfg.AppPassword == "" {
		return fmt.Errorf("smtp not configured")
	}

	serverAddr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	dialer := &net.Dialer{Timeout: m.cfg.DialTimeout}

	conn, err := tls.DialWithDialer(dialer, "tcp", serverAddr, &tls.Config{
		ServerName: m.cfg.SMTPHost,
	})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.SMTPHost)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", m.cfg.Address, m.cfg.AppPassword, m.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(m.cfg.Address); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
