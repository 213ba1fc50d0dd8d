// Package curl reconstructs the curl command line that would reproduce a
// request, for attaching to errors as a diagnostic aid. Ported from
// requests_fortified/support/curl.py's command_line_request_curl: best
// effort only, never itself a source of failure.
package curl

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"sort"
	"strings"
)

// defaultUserAgent mirrors engine.UserAgent()'s "(name/version,
// Go/runtime-version)" shape; duplicated here rather than imported to
// avoid curl depending on engine (engine already depends on curl).
func defaultUserAgent() string {
	return fmt.Sprintf("(fortifiedhttp/1.0.0, Go/%s)", runtime.Version())
}

// Request is the subset of an outgoing request Reconstruct needs. It
// mirrors the arguments command_line_request_curl takes rather than a
// live *http.Request so callers can build it up before or after the call.
type Request struct {
	Method         string
	URL            string
	Header         http.Header
	Params         url.Values // query-string style params, GET-shaped
	Body           string     // raw body for POST/PUT/PATCH
	BasicAuthUser  string
	BasicAuthPass  string
	Cookies        map[string]string
	AllowRedirects bool
}

// Reconstruct builds a curl command string for req. It never returns an
// error: anything it cannot render is simply omitted, matching the
// original's purely-advisory role (attached to ferrors.Error.RequestCurl,
// never raised on its own).
func Reconstruct(req Request) string {
	var b strings.Builder
	b.WriteString("curl -X ")
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	b.WriteString(method)
	b.WriteString(" '")
	b.WriteString(req.URL)
	b.WriteString("'")

	headers := sortedHeaderKeys(req.Header)
	hasAuthHeader := false
	hasUserAgentHeader := false
	for _, k := range headers {
		if strings.EqualFold(k, "Authorization") {
			hasAuthHeader = true
		}
		if strings.EqualFold(k, "User-Agent") {
			hasUserAgentHeader = true
		}
		for _, v := range req.Header.Values(k) {
			fmt.Fprintf(&b, " -H '%s: %s'", k, v)
		}
	}

	if !hasAuthHeader && req.BasicAuthUser != "" {
		token := base64.StdEncoding.EncodeToString([]byte(req.BasicAuthUser + ":" + req.BasicAuthPass))
		fmt.Fprintf(&b, " -H 'Authorization: Basic %s'", token)
	}

	if !hasUserAgentHeader {
		fmt.Fprintf(&b, " -H 'User-Agent: %s'", defaultUserAgent())
	}

	switch strings.ToUpper(method) {
	case http.MethodGet:
		for _, k := range sortedValuesKeys(req.Params) {
			for _, v := range req.Params[k] {
				fmt.Fprintf(&b, " -G --data '%s=%s'", k, v)
			}
		}
	default:
		if req.Body != "" {
			fmt.Fprintf(&b, " --data '%s'", req.Body)
		}
	}

	if len(req.Cookies) > 0 {
		keys := make([]string, 0, len(req.Cookies))
		for k := range req.Cookies {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+req.Cookies[k])
		}
		fmt.Fprintf(&b, " --cookie \"%s\"", strings.Join(pairs, " "))
	}

	if req.AllowRedirects {
		b.WriteString(" -L")
	}

	return b.String()
}

func sortedHeaderKeys(h http.Header) []string {
	if h == nil {
		return nil
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedValuesKeys(v url.Values) []string {
	if v == nil {
		return nil
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
