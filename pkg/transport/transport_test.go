package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewAppliesOptions(t *testing.T) {
	client := New(WithClientTimeout(5*time.Second), WithMaxIdleConnsPerHost(42))
	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.Timeout)
	}
	tr, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport type = %T, want *http.Transport", client.Transport)
	}
	if tr.MaxIdleConnsPerHost != 42 {
		t.Errorf("MaxIdleConnsPerHost = %d, want 42", tr.MaxIdleConnsPerHost)
	}
}

func TestNewDefaults(t *testing.T) {
	client := New()
	if client.Timeout != DefaultClientTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, DefaultClientTimeout)
	}
	tr, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport type = %T, want *http.Transport", client.Transport)
	}
	if tr.MaxIdleConns != DefaultMaxIdleConns {
		t.Errorf("MaxIdleConns = %d, want %d", tr.MaxIdleConns, DefaultMaxIdleConns)
	}
}

func TestDoPerformsSingleAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New()
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := Do(client, req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestDoPropagatesTransportError(t *testing.T) {
	client := New()
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if _, err := Do(client, req); err == nil {
		t.Fatal("Do() = nil error, want connection failure")
	}
}
