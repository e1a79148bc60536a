package notify

import (
	"context"
	"time"

	"github.com/authgate/api/pkg/logger"
)

// ConsoleSink surfaces the code on the operator log stream. It is the only
// place the plaintext code is allowed to appear, and only as a last resort
// when no real delivery channel is available.
type ConsoleSink struct {
	expiry time.Duration
}

func NewConsoleSink(expiry time.Duration) *ConsoleSink {
	return &ConsoleSink{expiry: expiry}
}

func (n *ConsoleSink) Deliver(_ context.Context, identifier, code string) error {
	logger.Warn("otp_console_fallback", map[string]interface{}{
		"identifier":     identifier,
		"otp":            code,
		"expiry_minutes": int(n.expiry.Minutes()),
	})
	return nil
}
