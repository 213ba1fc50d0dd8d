// Package validate implements the HTTP response validation and decoding
// gates ported from pyfortified_requests/support/response/validate.py:
// status-code gating, content-type gating for JSON responses, and HTML/XML
// body cleaning for attaching a readable excerpt to errors.
package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
)

// Response raises ferrors.CodeSoftware when resp is nil or its status is
// outside the 2xx range, matching validate_response's
// is_http_status_successful gate.
func Response(resp *http.Response) error {
	if resp == nil {
		return ferrors.Module(ferrors.CodeSoftware, "no response received")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ferrors.Module(ferrors.CodeSoftware,
			fmt.Sprintf("unexpected response status: %d %s", resp.StatusCode, resp.Status),
			ferrors.WithStatus(resp.StatusCode))
	}
	return nil
}

// JSON validates resp, gates on its Content-Type against
// expectedContentType, and decodes the body into v. Matching
// validate_json_response's three-way split:
//   - missing Content-Type: CodeUnexpectedContentType
//   - exact match or prefix match: decode, wrapping failures via
//     HandleJSONDecodeError
//   - "text/html" prefix: CleanHTML extraction attached as Details,
//     CodeUnexpectedContentType
//   - anything else: CodeUnexpectedContentType, no details
func JSON(resp *http.Response, v any, expectedContentType string) error {
	if err := Response(resp); err != nil {
		return err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return ferrors.Module(ferrors.CodeUnexpectedContentType, "response has no Content-Type header",
			ferrors.WithStatus(resp.StatusCode))
	}

	switch {
	case contentType == expectedContentType || strings.HasPrefix(contentType, expectedContentType):
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return ferrors.Module(ferrors.CodeJSONDecoding, "failed to read response body", ferrors.WithCause(err))
		}
		if err := json.Unmarshal(body, v); err != nil {
			return HandleJSONDecodeError(body, err)
		}
		return nil

	case strings.HasPrefix(contentType, "text/html"):
		lines, _ := CleanHTML(resp.Body)
		return ferrors.Module(ferrors.CodeUnexpectedContentType,
			fmt.Sprintf("expected content-type %q, got %q", expectedContentType, contentType),
			ferrors.WithStatus(resp.StatusCode), ferrors.WithDetails(lines))

	default:
		return ferrors.Module(ferrors.CodeUnexpectedContentType,
			fmt.Sprintf("expected content-type %q, got %q", expectedContentType, contentType),
			ferrors.WithStatus(resp.StatusCode))
	}
}

// HandleJSONDecodeError wraps a json.Unmarshal/Decode failure as
// CodeSoftware (per §4.4: "JSON decode failure is reported as
// REQ_ERR_SOFTWARE via handle_json_decode_error"), attaching an HTML/XML
// excerpt of body when it looks like markup rather than JSON — the
// decode failure is otherwise opaque to a caller debugging a
// misconfigured upstream.
func HandleJSONDecodeError(body []byte, cause error) error {
	trimmed := strings.TrimSpace(string(body))
	opts := []ferrors.Option{ferrors.WithCause(cause)}

	switch {
	case strings.HasPrefix(trimmed, "<?xml"), strings.HasPrefix(trimmed, "<"):
		if m, err := XMLToMap(strings.NewReader(trimmed)); err == nil {
			opts = append(opts, ferrors.WithDetails(m))
		} else if lines, err := CleanHTML(strings.NewReader(trimmed)); err == nil {
			opts = append(opts, ferrors.WithDetails(lines))
		}
	}

	return ferrors.Module(ferrors.CodeSoftware, "failed to decode JSON response", opts...)
}
