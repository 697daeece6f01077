package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Robaed/changachanga-dev/app/entity"
	"github.com/Robaed/changachanga-dev/app/retry"
)

const (
	kcbProviderName         = "kcb"
	kcbTransactionDesc      = "ChangaChanga Contribution"
	defaultTokenTTL         = 50 * time.Minute
	tokenExpirySafetyMargin = 30 * time.Second
)

type KCBConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	StkPushURL   string

	OrgShortCode    string
	OrgPassKey      string
	SharedShortCode bool
	CallbackURL     string

	HTTPTimeout time.Duration
}

// KCBClient drives the mobile-money push rail. A push acceptance only means
// the request was queued for processing; the outcome arrives later through
// the provider callback, so MakePayment reports StatusPending.
type KCBClient struct {
	cfg    KCBConfig
	client *http.Client
	retry  retry.Policy

	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

func NewKCBClient(cfg KCBConfig, policy retry.Policy) *KCBClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &KCBClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		retry:  policy.WithRetryable(IsRetryable),
	}
}

func (c *KCBClient) Method() string {
	return entity.PaymentMethodMpesa
}

type stkPushRequest struct {
	PhoneNumber            string `json:"phoneNumber"`
	Amount                 string `json:"amount"`
	InvoiceNumber          string `json:"invoiceNumber"`
	SharedShortCode        bool   `json:"sharedShortCode"`
	OrgShortCode           string `json:"orgShortCode"`
	OrgPassKey             string `json:"orgPassKey"`
	CallbackURL            string `json:"callbackUrl"`
	TransactionDescription string `json:"transactionDescription"`
}

func (c *KCBClient) MakePayment(ctx context.Context, input *PaymentInput) (*Result, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := &stkPushRequest{
		PhoneNumber:            input.PhoneNumber,
		Amount:                 input.Amount.String(),
		InvoiceNumber:          input.RequestID,
		SharedShortCode:        c.cfg.SharedShortCode,
		OrgShortCode:           c.cfg.OrgShortCode,
		OrgPassKey:             c.cfg.OrgPassKey,
		CallbackURL:            c.cfg.CallbackURL,
		TransactionDescription: kcbTransactionDesc,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var responseBody []byte
	err = c.retry.Do(ctx, func() error {
		responseBody, err = c.push(ctx, token, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Result{Status: StatusPending, ProviderData: responseBody}, nil
}

func (c *KCBClient) push(ctx context.Context, token string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.StkPushURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: kcbProviderName, Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: kcbProviderName, Kind: KindTransient, Err: err}
	}
	if resp.StatusCode >= 500 {
		return nil, &Error{
			Provider: kcbProviderName,
			Kind:     KindFault,
			Err:      fmt.Errorf("stk push failed: status=%d body=%s", resp.StatusCode, string(responseBody)),
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &Error{
			Provider: kcbProviderName,
			Kind:     KindRejected,
			Err:      fmt.Errorf("stk push rejected: status=%d body=%s", resp.StatusCode, string(responseBody)),
		}
	}

	return responseBody, nil
}

// accessToken returns the cached bearer token, refreshing it when absent or
// expired. Concurrent callers that miss the cache share a single fetch: the
// write lock is held across the refresh so waiters observe the new token
// instead of issuing their own requests.
func (c *KCBClient) accessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		token := c.token
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var token string
	var ttl time.Duration
	err := c.retry.Do(ctx, func() error {
		var fetchErr error
		token, ttl, fetchErr = c.fetchToken(ctx)
		return fetchErr
	})
	if err != nil {
		return "", err
	}

	// Clamp the margin so a short-lived token still caches for its TTL
	// instead of expiring in the past.
	margin := tokenExpirySafetyMargin
	if ttl <= margin {
		margin = 0
	}

	c.token = token
	c.tokenExpiry = time.Now().Add(ttl - margin)
	return token, nil
}

func (c *KCBClient) fetchToken(ctx context.Context) (string, time.Duration, error) {
	endpoint := c.cfg.TokenURL + "?" + url.Values{"grant_type": {"client_credentials"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", 0, err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, &Error{Provider: kcbProviderName, Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &Error{Provider: kcbProviderName, Kind: KindTransient, Err: err}
	}
	if resp.StatusCode >= 500 {
		return "", 0, &Error{
			Provider: kcbProviderName,
			Kind:     KindFault,
			Err:      fmt.Errorf("token request failed: status=%d body=%s", resp.StatusCode, string(body)),
		}
	}
	if resp.StatusCode >= 400 {
		return "", 0, &Error{
			Provider: kcbProviderName,
			Kind:     KindRejected,
			Err:      fmt.Errorf("token request rejected: status=%d body=%s", resp.StatusCode, string(body)),
		}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", 0, &Error{Provider: kcbProviderName, Kind: KindFault, Err: err}
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", 0, &Error{
			Provider: kcbProviderName,
			Kind:     KindFault,
			Err:      fmt.Errorf("token response missing access_token: body=%s", string(body)),
		}
	}

	ttl := defaultTokenTTL
	if payload.ExpiresIn > 0 {
		ttl = time.Duration(payload.ExpiresIn) * time.Second
	}

	return payload.AccessToken, ttl, nil
}
