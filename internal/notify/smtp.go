package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"github.com/authgate/api/internal/config"
)

// SMTPNotifier sends OTP codes by email over implicit TLS (port 465 style).
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	expiry time.Duration
}

func NewSMTPNotifier(cfg config.SMTPConfig, expiry time.Duration) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, expiry: expiry}
}

func (n *SMTPNotifier) Deliver(_ context.Context, identifier, code string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", n.cfg.Sender) +
			fmt.Sprintf("To: %s\r\n", identifier) +
			"Subject: Your verification code\r\n" +
			"\r\n" +
			fmt.Sprintf("Your verification code is: %s\r\n", code) +
			fmt.Sprintf("It is valid for %d minutes.\r\n", int(n.expiry.Minutes())),
	)

	serverAddr := n.cfg.Host + ":" + n.cfg.Port

	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: n.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", n.cfg.Sender, n.cfg.Password, n.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(n.cfg.Sender); err != nil {
		return err
	}
	if err := client.Rcpt(identifier); err != nil {
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
