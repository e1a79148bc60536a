package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/authgate/api/internal/config"
)

// TwilioNotifier sends OTP codes as SMS via the Twilio REST API.
type TwilioNotifier struct {
	cfg    config.TwilioConfig
	expiry time.Duration
	client *http.Client
}

func NewTwilioNotifier(cfg config.TwilioConfig, expiry time.Duration) *TwilioNotifier {
	return &TwilioNotifier{
		cfg:    cfg,
		expiry: expiry,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *TwilioNotifier) Deliver(ctx context.Context, identifier, code string) error {
	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", n.cfg.AccountSID)

	body := fmt.Sprintf("Your verification code is %s. It is valid for %d minutes.",
		code, int(n.expiry.Minutes()))

	data := url.Values{}
	data.Set("To", identifier)
	data.Set("From", n.cfg.FromNumber)
	data.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(n.cfg.AccountSID, n.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio send failed: status=%d body=%s", resp.StatusCode, string(detail))
	}
	return nil
}
