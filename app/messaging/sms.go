package messaging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Robaed/changachanga-dev/app/retry"
)

// Sender delivers a text message to a phone number. It is an external
// collaborator of the platform, used by the invite flow only.
type Sender interface {
	SendMessage(ctx context.Context, text, phoneNumber string) error
}

type BongaConfig struct {
	URL         string
	ClientID    string
	APIKey      string
	Secret      string
	ServiceID   string
	HTTPTimeout time.Duration
}

// BongaClient sends SMS through the Bonga gateway.
type BongaClient struct {
	cfg    BongaConfig
	client *http.Client
	retry  retry.Policy
}

func NewBongaClient(cfg BongaConfig, policy retry.Policy) *BongaClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &BongaClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		retry:  policy,
	}
}

func (c *BongaClient) SendMessage(ctx context.Context, text, phoneNumber string) error {
	form := url.Values{
		"apiClientID": {c.cfg.ClientID},
		"key":         {c.cfg.APIKey},
		"secret":      {c.cfg.Secret},
		"txtMessage":  {text},
		"MSISDN":      {phoneNumber},
		"serviceID":   {c.cfg.ServiceID},
	}

	return c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("sms gateway returned status=%d body=%s", resp.StatusCode, string(body))
		}
		return nil
	})
}

// LogSender writes messages to the log instead of a gateway. Used in
// development and tests.
type LogSender struct {
	Logger logrus.FieldLogger
}

func (s *LogSender) SendMessage(_ context.Context, text, phoneNumber string) error {
	s.Logger.WithFields(logrus.Fields{
		"phone_number": phoneNumber,
		"message":      text,
	}).Info("sms_sent")
	return nil
}
