package engine

import (
	"net/http"
	"strings"
	"testing"

	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
)

func TestClassifyResponseStatusBuckets(t *testing.T) {
	tests := []struct {
		status int
		want   ferrors.Kind
	}{
		{400, ferrors.KindClient},
		{404, ferrors.KindClient},
		{429, ferrors.KindClient},
		{500, ferrors.KindService},
		{503, ferrors.KindService},
		{451, ferrors.KindModule}, // outside both buckets
	}
	for _, tt := range tests {
		resp := &http.Response{
			StatusCode: tt.status,
			Status:     http.StatusText(tt.status),
			Header:     http.Header{},
		}
		fe := classifyResponseStatus(resp, curlContext{method: "GET", url: "http://x"})
		if fe.Kind != tt.want {
			t.Errorf("status %d: Kind = %v, want %v", tt.status, fe.Kind, tt.want)
		}
		if fe.Status != tt.status {
			t.Errorf("status %d: Status = %d, want %d", tt.status, fe.Status, tt.status)
		}
		if fe.RequestCurl == "" {
			t.Errorf("status %d: expected non-empty RequestCurl", tt.status)
		}
	}
}

func TestParseRetryExhaustedInnerStatus(t *testing.T) {
	tests := []struct {
		msg      string
		wantOK   bool
		wantCode int
	}{
		{"max retries exceeded with url: /x (Caused by ResponseError('status 503'))", true, 503},
		{"Max retries exceeded, status 404 returned", true, 404},
		{"no status mentioned here", false, 0},
	}
	for _, tt := range tests {
		status, ok := parseRetryExhaustedInnerStatus(tt.msg)
		if ok != tt.wantOK {
			t.Errorf("%q: ok = %v, want %v", tt.msg, ok, tt.wantOK)
			continue
		}
		if ok && status != tt.wantCode {
			t.Errorf("%q: status = %d, want %d", tt.msg, status, tt.wantCode)
		}
	}
}

func TestClassifyTransportErrorFallsBackToSoftware(t *testing.T) {
	fe := classifyTransportError(errUnmatched{}, curlContext{method: "GET", url: "http://x"})
	if fe.Code != ferrors.CodeSoftware {
		t.Errorf("Code = %v, want CodeSoftware", fe.Code)
	}
}

type errUnmatched struct{}

func (errUnmatched) Error() string { return "totally unrecognized error shape" }

func TestClassifyResponseStatusDetailsShape(t *testing.T) {
	resp := &http.Response{
		StatusCode: 500,
		Status:     "500 Internal Server Error",
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
	fe := classifyResponseStatus(resp, curlContext{method: "POST", url: "http://x"})
	details, ok := fe.Details.(map[string]any)
	if !ok {
		t.Fatalf("Details = %v, want map[string]any", fe.Details)
	}
	if ct, _ := details["content_type"].(string); !strings.Contains(ct, "json") {
		t.Errorf("content_type = %v, want application/json", details["content_type"])
	}
}
