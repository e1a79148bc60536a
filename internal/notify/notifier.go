package notify

import (
	"context"
	"time"

	"github.com/authgate/api/internal/config"
	"github.com/authgate/api/internal/models"
	"github.com/authgate/api/pkg/logger"
)

// Notifier delivers a one-time code to the owner of an identifier. Delivery is
// best-effort; the auth service never blocks challenge creation on it.
type Notifier interface {
	Deliver(ctx context.Context, identifier, code string) error
}

// Gateway routes delivery by identifier shape: email addresses go to SMTP,
// phone numbers to SMS. When a channel is unconfigured or its send fails, the
// code falls back to the operator-visible console sink so a dead gateway
// cannot brick registration.
type Gateway struct {
	email   Notifier
	sms     Notifier
	console *ConsoleSink
}

func NewGateway(cfg *config.Config) *Gateway {
	expiry := time.Duration(cfg.Security.OTPExpiryMinutes) * time.Minute
	g := &Gateway{console: NewConsoleSink(expiry)}

	if cfg.SMTP.Sender != "" && cfg.SMTP.Password != "" {
		g.email = NewSMTPNotifier(cfg.SMTP, expiry)
	}
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		g.sms = NewTwilioNotifier(cfg.Twilio, expiry)
	}

	return g
}

func (g *Gateway) Deliver(ctx context.Context, identifier, code string) error {
	var channel Notifier
	var channelName string

	switch models.KindOfIdentifier(identifier) {
	case models.IdentifierEmail:
		channel, channelName = g.email, "email"
	default:
		channel, channelName = g.sms, "sms"
	}

	if channel == nil {
		logger.Warn("otp_channel_unconfigured", map[string]interface{}{
			"channel":    channelName,
			"identifier": identifier,
		})
		return g.console.Deliver(ctx, identifier, code)
	}

	if err := channel.Deliver(ctx, identifier, code); err != nil {
		logger.Error("otp_delivery_failed", err, map[string]interface{}{
			"channel":    channelName,
			"identifier": identifier,
		})
		return g.console.Deliver(ctx, identifier, code)
	}

	logger.Info("otp_delivered", map[string]interface{}{
		"channel":    channelName,
		"identifier": identifier,
	})
	return nil
}
