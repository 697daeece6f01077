package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func cardInput() *PaymentInput {
	return &PaymentInput{
		RequestID: "REQ7654321",
		Amount:    decimal.NewFromInt(1000),
		Currency:  "KES",
		Card: &CardDetails{
			Number:   "4111111111111111",
			ExpMonth: "09",
			ExpYear:  "2027",
		},
	}
}

func newCyberSourceClientForTest(paymentsURL string) *CyberSourceClient {
	return NewCyberSourceClient(CyberSourceConfig{
		APIKey:      "api-key",
		MerchantID:  "merchant-1",
		PaymentsURL: paymentsURL,
		HTTPTimeout: time.Second,
	}, testRetryPolicy())
}

func TestCyberSourceChargeSucceeds(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer api-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"transaction_id": "tx-1", "status": "SUCCEEDED"})
	}))
	defer srv.Close()

	client := newCyberSourceClientForTest(srv.URL)
	result, err := client.MakePayment(context.Background(), cardInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("expected success status, got %s", result.Status)
	}
	if gotPayload["card_number"] != "4111111111111111" {
		t.Fatalf("unexpected card number %v", gotPayload["card_number"])
	}
	if gotPayload["merchant_id"] != "merchant-1" {
		t.Fatalf("unexpected merchant id %v", gotPayload["merchant_id"])
	}
}

func TestCyberSourceDeclinedChargeIsFailedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"transaction_id": "tx-2", "status": "DECLINED"})
	}))
	defer srv.Close()

	client := newCyberSourceClientForTest(srv.URL)
	result, err := client.MakePayment(context.Background(), cardInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", result.Status)
	}
}

func TestCyberSourceRetriesServerFaults(t *testing.T) {
	var charges int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt64(&charges, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"transaction_id": "tx-3", "status": "SUCCEEDED"})
	}))
	defer srv.Close()

	client := newCyberSourceClientForTest(srv.URL)
	result, err := client.MakePayment(context.Background(), cardInput())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("expected success status, got %s", result.Status)
	}
	if got := atomic.LoadInt64(&charges); got != 3 {
		t.Fatalf("expected 3 charge attempts, got %d", got)
	}
}

func TestCyberSourceDoesNotRetryRejections(t *testing.T) {
	var charges int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&charges, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := newCyberSourceClientForTest(srv.URL)
	_, err := client.MakePayment(context.Background(), cardInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRejected(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if got := atomic.LoadInt64(&charges); got != 1 {
		t.Fatalf("expected 1 charge attempt, got %d", got)
	}
}

func TestCyberSourceRequiresCardDetails(t *testing.T) {
	client := newCyberSourceClientForTest("http://localhost:0")

	input := cardInput()
	input.Card = nil
	if _, err := client.MakePayment(context.Background(), input); err == nil {
		t.Fatal("expected error for missing card details")
	}
}
