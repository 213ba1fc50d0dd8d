package engine

import (
	"fmt"
	"net/http"
	"runtime"
)

// Default header values, per §6.
const (
	HeaderContentTypeJSON           = "application/json"
	HeaderContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

// ModuleName/ModuleVersion identify this module in the User-Agent header
// this engine injects when a caller hasn't set one.
const (
	ModuleName    = "fortifiedhttp"
	ModuleVersion = "1.0.0"
)

// UserAgent renders the default User-Agent string: "(name/version,
// Go/runtime-version)", the same two-element structure as the original
// "(pyfortified-requests/version, Python/version)", substituting the Go
// runtime identifier for Python's.
func UserAgent() string {
	return fmt.Sprintf("(%s/%s, Go/%s)", ModuleName, ModuleVersion, runtime.Version())
}

// HeaderContentTypeJSONHeader and HeaderContentTypeFormHeader are the
// http.Header-constructor conveniences §6 calls for.
func HeaderContentTypeJSONHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", HeaderContentTypeJSON)
	return h
}

func HeaderContentTypeFormHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", HeaderContentTypeFormURLEncoded)
	return h
}
