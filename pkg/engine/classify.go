package engine

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fortified-go/fortifiedhttp/pkg/curl"
	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
)

// clientStatuses/serviceStatuses are the three-way HTTP status split from
// §4.6: a non-2xx/3xx ACCEPTed response is re-raised as a ClientError,
// ServiceError or ModuleError depending on which bucket its status falls
// in.
var clientStatuses = map[int]bool{
	400: true, 401: true, 403: true, 404: true, 405: true,
	406: true, 408: true, 409: true, 410: true, 422: true, 429: true,
}

var serviceStatuses = map[int]bool{
	500: true, 501: true, 502: true, 503: true, 511: true,
}

// classifyTransportError translates the error shapes Go's net/http client
// returns into the ferrors taxonomy, mirroring requests_fortified.py's
// request() except-cascade. Go wraps transport failures in *url.Error
// rather than raising typed exceptions, so this inspects the Unwrap chain
// instead of an exception class hierarchy.
func classifyTransportError(err error, req curlContext) *ferrors.Error {
	requestCurl := curl.Reconstruct(req.toCurlRequest())

	if errors.Is(err, context.DeadlineExceeded) {
		return ferrors.Service(ferrors.Code(http.StatusGatewayTimeout), "request timed out",
			ferrors.WithCause(err), ferrors.WithStatus(http.StatusGatewayTimeout), ferrors.WithRequestCurl(requestCurl))
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ferrors.Service(ferrors.Code(http.StatusGatewayTimeout), "request timed out",
			ferrors.WithCause(err), ferrors.WithStatus(http.StatusGatewayTimeout), ferrors.WithRequestCurl(requestCurl))
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if strings.Contains(urlErr.Err.Error(), "stopped after") && strings.Contains(urlErr.Err.Error(), "redirect") {
			return ferrors.Client(ferrors.CodeRequestRedirects, "too many redirects",
				ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
		}

		var tlsErr *tls.CertificateVerificationError
		var x509Err x509.UnknownAuthorityError
		if errors.As(urlErr.Err, &tlsErr) || errors.As(urlErr.Err, &x509Err) {
			return ferrors.Client(ferrors.CodeRequestConnect, "TLS/SSL error",
				ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
		}

		var opErr *net.OpError
		if errors.As(urlErr.Err, &opErr) {
			if opErr.Op == "dial" {
				return ferrors.Client(ferrors.CodeRequestConnect, "connection error",
					ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
			}
			return ferrors.Client(ferrors.CodeConnect, "connection error",
				ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
		}

		if errors.Is(urlErr.Err, io.ErrUnexpectedEOF) || errors.Is(urlErr.Err, io.EOF) {
			return ferrors.Client(ferrors.CodeConnect, "connection closed unexpectedly",
				ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
		}

		if status, ok := parseRetryExhaustedInnerStatus(urlErr.Err.Error()); ok {
			msg := fmt.Sprintf("max retries exceeded: inner status %d", status)
			if clientStatuses[status] {
				return ferrors.Client(ferrors.Code(status), msg, ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
			}
			if serviceStatuses[status] {
				return ferrors.Service(ferrors.Code(status), msg, ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
			}
		}

		return ferrors.Module(ferrors.CodeRequest, "request failed",
			ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
	}

	return ferrors.Module(ferrors.CodeSoftware, "unexpected error during request",
		ferrors.WithCause(err), ferrors.WithRequestCurl(requestCurl))
}

// curlContext carries just enough of RequestSpec for curl.Reconstruct,
// decoupled so classify.go doesn't need the full request-building logic
// that lives in engine.go.
type curlContext struct {
	method         string
	url            string
	header         http.Header
	query          url.Values
	body           string
	basicUser      string
	basicPass      string
	cookies        map[string]string
	allowRedirects bool
}

func (c curlContext) toCurlRequest() curl.Request {
	return curl.Request{
		Method:         c.method,
		URL:            c.url,
		Header:         c.header,
		Params:         c.query,
		Body:           c.body,
		BasicAuthUser:  c.basicUser,
		BasicAuthPass:  c.basicPass,
		Cookies:        c.cookies,
		AllowRedirects: c.allowRedirects,
	}
}

// classifyResponseStatus builds the detailed error envelope for an
// ACCEPTed response whose status is outside 2xx/3xx, per §4.6: status,
// phrase, content-type, content-length, transfer-encoding and the first
// responseExcerptLimit bytes of the body as raw text (no JSON/HTML/XML
// decoding is applied), split three ways by status bucket.
func classifyResponseStatus(resp *http.Response, req curlContext) *ferrors.Error {
	status := resp.StatusCode
	excerpt := responseExcerpt(resp)
	requestCurl := curl.Reconstruct(req.toCurlRequest())

	details := map[string]any{
		"content_type":      resp.Header.Get("Content-Type"),
		"content_length":    resp.ContentLength,
		"transfer_encoding": resp.TransferEncoding,
		"body_excerpt":      excerpt,
	}

	msg := fmt.Sprintf("unexpected response status: %d %s", status, http.StatusText(status))
	opts := []ferrors.Option{
		ferrors.WithStatus(status),
		ferrors.WithReason(resp.Status),
		ferrors.WithDetails(details),
		ferrors.WithRequestCurl(requestCurl),
	}

	switch {
	case clientStatuses[status]:
		return ferrors.Client(ferrors.Code(status), msg, opts...)
	case serviceStatuses[status]:
		return ferrors.Service(ferrors.Code(status), msg, opts...)
	default:
		return ferrors.Module(ferrors.Code(status), msg, opts...)
	}
}

// responseExcerpt reads and restores a small, bounded prefix of resp.Body
// so both this error envelope and any subsequent caller can read the full
// body. Capped well below typical error-page sizes.
const responseExcerptLimit = 4096

func responseExcerpt(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	buf := make([]byte, responseExcerptLimit)
	n, _ := io.ReadFull(resp.Body, buf)
	excerpt := string(buf[:n])

	rest, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(io.MultiReader(strings.NewReader(excerpt), strings.NewReader(string(rest))))

	return excerpt
}

// parseRetryExhaustedInnerStatus extracts a status code embedded in a
// retry-exhausted message like "max retries exceeded ... status 503",
// matching the original's parsing of urllib3's MaxRetryError description
// to recover the inner response's status for the client/service split.
func parseRetryExhaustedInnerStatus(msg string) (int, bool) {
	idx := strings.LastIndex(msg, "status ")
	if idx == -1 {
		return 0, false
	}
	rest := strings.TrimSpace(msg[idx+len("status "):])
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	status, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return status, true
}
