package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Robaed/changachanga-dev/app/entity"
	"github.com/Robaed/changachanga-dev/app/retry"
)

const cybersourceProviderName = "cybersource"

type CyberSourceConfig struct {
	APIKey      string
	MerchantID  string
	PaymentsURL string
	HTTPTimeout time.Duration
}

// CyberSourceClient drives the card rail. The charge is synchronous: the
// response carries a transaction id and terminal status, no callback follows.
type CyberSourceClient struct {
	cfg    CyberSourceConfig
	client *http.Client
	retry  retry.Policy
}

func NewCyberSourceClient(cfg CyberSourceConfig, policy retry.Policy) *CyberSourceClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &CyberSourceClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		retry:  policy.WithRetryable(IsRetryable),
	}
}

func (c *CyberSourceClient) Method() string {
	return entity.PaymentMethodCard
}

func (c *CyberSourceClient) MakePayment(ctx context.Context, input *PaymentInput) (*Result, error) {
	if input.Card == nil {
		return nil, errors.New("card details are required for card payments")
	}

	amount, _ := input.Amount.Float64()
	payload := map[string]interface{}{
		"card_number":    input.Card.Number,
		"card_exp_month": input.Card.ExpMonth,
		"card_exp_year":  input.Card.ExpYear,
		"amount":         amount,
		"merchant_id":    c.cfg.MerchantID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var responseBody []byte
	err = c.retry.Do(ctx, func() error {
		responseBody, err = c.charge(ctx, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	var charge struct {
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(responseBody, &charge); err != nil {
		return nil, &Error{Provider: cybersourceProviderName, Kind: KindFault, Err: err}
	}

	status := StatusSuccess
	if strings.EqualFold(charge.Status, "FAILED") || strings.EqualFold(charge.Status, "DECLINED") {
		status = StatusFailed
	}

	return &Result{Status: status, ProviderData: responseBody}, nil
}

func (c *CyberSourceClient) charge(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.PaymentsURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: cybersourceProviderName, Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: cybersourceProviderName, Kind: KindTransient, Err: err}
	}
	if resp.StatusCode >= 500 {
		return nil, &Error{
			Provider: cybersourceProviderName,
			Kind:     KindFault,
			Err:      fmt.Errorf("card payment failed: status=%d body=%s", resp.StatusCode, string(responseBody)),
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &Error{
			Provider: cybersourceProviderName,
			Kind:     KindRejected,
			Err:      fmt.Errorf("card payment rejected: status=%d body=%s", resp.StatusCode, string(responseBody)),
		}
	}

	return responseBody, nil
}
