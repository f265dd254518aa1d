package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := Do(srv.Client(), newRequest(t, srv.URL), Policy{Retries: 3, BaseDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	resp.Body.Close()

	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestDoRetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := Do(srv.Client(), newRequest(t, srv.URL), Policy{Retries: 3, BaseDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	resp.Body.Close()

	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Do(srv.Client(), newRequest(t, srv.URL), Policy{Retries: 3, BaseDelay: time.Millisecond})
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}

	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want exactly 3", got)
	}
}

func TestDoHonoursContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = Do(srv.Client(), req, Policy{Retries: 3, BaseDelay: time.Minute})
	if err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}

func TestPolicyNormalized(t *testing.T) {
	p := Policy{}.normalized()
	if p.Retries != DefaultRetries {
		t.Errorf("Retries = %d, want %d", p.Retries, DefaultRetries)
	}
	if p.BaseDelay != time.Duration(0) {
		t.Errorf("BaseDelay = %v, want 0", p.BaseDelay)
	}

	p = Policy{Retries: -1, BaseDelay: -time.Second}.normalized()
	if p.Retries != DefaultRetries || p.BaseDelay != DefaultBaseDelay {
		t.Errorf("normalized() = %+v, want defaults", p)
	}
}
