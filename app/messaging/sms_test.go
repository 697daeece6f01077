package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Robaed/changachanga-dev/app/retry"
)

func testRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestBongaSendMessagePostsForm(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotForm = map[string]string{
			"apiClientID": r.PostFormValue("apiClientID"),
			"key":         r.PostFormValue("key"),
			"txtMessage":  r.PostFormValue("txtMessage"),
			"MSISDN":      r.PostFormValue("MSISDN"),
			"serviceID":   r.PostFormValue("serviceID"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewBongaClient(BongaConfig{
		URL:       srv.URL,
		ClientID:  "client-1",
		APIKey:    "key-1",
		Secret:    "secret-1",
		ServiceID: "svc-1",
	}, testRetryPolicy())

	err := client.SendMessage(context.Background(), "You are invited", "254700000001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotForm["MSISDN"] != "254700000001" {
		t.Fatalf("unexpected MSISDN %s", gotForm["MSISDN"])
	}
	if gotForm["txtMessage"] != "You are invited" {
		t.Fatalf("unexpected message %s", gotForm["txtMessage"])
	}
	if gotForm["apiClientID"] != "client-1" || gotForm["serviceID"] != "svc-1" {
		t.Fatalf("unexpected credentials: %+v", gotForm)
	}
}

func TestBongaSendMessageRetriesFailures(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewBongaClient(BongaConfig{URL: srv.URL}, testRetryPolicy())
	if err := client.SendMessage(context.Background(), "hi", "254700000001"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestBongaSendMessageReturnsErrorAfterExhaustion(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewBongaClient(BongaConfig{URL: srv.URL}, testRetryPolicy())
	if err := client.SendMessage(context.Background(), "hi", "254700000001"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}
