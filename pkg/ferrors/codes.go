// Package ferrors implements the stable error taxonomy shared by every
// other package in this module: a single concrete error type carrying a
// numeric code, a canonical message, and optional HTTP/curl/debug context.
package ferrors

// Code is a stable, numeric error identifier. Values 600-615 and 699 are
// module-specific; any other value in the 400-599 range is an HTTP status
// code passed through unchanged.
type Code int

const (
	CodeNone Code = 0

	CodeModule                Code = 600
	CodeArgument              Code = 601
	CodeRequest               Code = 602
	CodeSoftware              Code = 603
	CodeUnexpectedValue       Code = 604
	CodeRequestHTTP           Code = 605
	CodeRequestConnect        Code = 606
	CodeRequestRedirects      Code = 607
	CodeRetryExhausted        Code = 608
	CodeUnexpectedContentType Code = 609
	CodeUploadData            Code = 610
	CodeAuthError             Code = 611
	CodeAuthJSONError         Code = 612
	CodeAuthRespError         Code = 613
	CodeJSONDecoding          Code = 614
	CodeConnect               Code = 615

	CodeUnexpected Code = 699
)

var nameDict = map[Code]string{
	CodeModule:                "Module Error",
	CodeArgument:              "Argument Error",
	CodeRequest:               "Request Error",
	CodeSoftware:              "Software Error",
	CodeUnexpectedValue:       "Unexpected Value",
	CodeRequestHTTP:           "Request HTTP",
	CodeRequestConnect:        "Request Connect",
	CodeRequestRedirects:      "Request Redirect",
	CodeRetryExhausted:        "Retry Exhausted",
	CodeUnexpectedContentType: "Unexpected content-type returned",
	CodeUploadData:            "Upload Data Error",
	CodeAuthError:             "Auth Error",
	CodeAuthJSONError:         "Auth JSON Error",
	CodeAuthRespError:         "Auth Response Error",
	CodeJSONDecoding:          "JSON Decoding Error",
	CodeConnect:               "Connect Error",
	CodeUnexpected:            "Unexpected Error",
}

var descDict = map[Code]string{
	CodeModule:                "Error occurred somewhere within module",
	CodeArgument:              "Invalid or missing argument provided",
	CodeRequest:               "Unexpected request failure",
	CodeSoftware:              "Unexpected software error was detected",
	CodeUnexpectedValue:       "Unexpected value returned",
	CodeRequestHTTP:           "Request HTTP error occurred",
	CodeRequestConnect:        "Request Connection error occurred",
	CodeRequestRedirects:      "Request Redirect",
	CodeRetryExhausted:        "Retry Exhausted",
	CodeUnexpectedContentType: "Unexpected content-type returned",
	CodeUploadData:            "Upload Data Error",
	CodeAuthError:             "Auth Error",
	CodeAuthJSONError:         "Auth JSON Error",
	CodeAuthRespError:         "Auth Response Error",
	CodeJSONDecoding:          "JSON Decoding Error",
	CodeConnect:               "Connection error originating below the transport",
	CodeUnexpected:            "Unexpected Error",
}

// httpPhrase/httpDesc cover the subset of HTTP statuses this module treats
// specially; any other code falls through to the module dictionaries and
// then to "Undefined" (net/http.StatusText is not consulted).
var httpPhrase = map[Code]string{
	400: "Bad Request", 401: "Unauthorized", 403: "Forbidden", 404: "Not Found",
	405: "Method Not Allowed", 406: "Not Acceptable", 408: "Request Timeout",
	409: "Conflict", 410: "Gone", 422: "Unprocessable Entity",
	429: "Too Many Requests", 500: "Internal Server Error",
	501: "Not Implemented", 502: "Bad Gateway", 503: "Service Unavailable",
	504: "Gateway Timeout", 511: "Network Authentication Required",
}

var httpDesc = map[Code]string{
	400: "The request could not be understood by the server",
	401: "Authentication is required and has failed or has not been provided",
	403: "The server understood the request but refuses to authorize it",
	404: "The requested resource could not be found",
	405: "The method is not allowed for the requested resource",
	406: "The requested resource is not capable of generating acceptable content",
	408: "The server timed out waiting for the request",
	409: "The request conflicts with the current state of the resource",
	410: "The requested resource is no longer available",
	422: "The request was well-formed but contains semantic errors",
	429: "Too many requests have been sent in a given amount of time",
	500: "An unexpected condition was encountered on the server",
	501: "The server does not support the functionality required",
	502: "The server received an invalid response from an upstream server",
	503: "The server is temporarily unable to handle the request",
	504: "The upstream server failed to respond in time",
	511: "The client needs to authenticate to gain network access",
}

// Name returns the short, stable identifier for code, preferring the HTTP
// status phrase table before falling back to the module dictionary.
func Name(code Code) string {
	if phrase, ok := httpPhrase[code]; ok {
		return phrase
	}
	if name, ok := nameDict[code]; ok {
		return name
	}
	return "Undefined"
}

// Desc returns the human-readable description for code, preferring the
// HTTP status description table before falling back to the module
// dictionary.
func Desc(code Code) string {
	if desc, ok := httpDesc[code]; ok {
		return desc
	}
	if desc, ok := descDict[code]; ok {
		return desc
	}
	return "Undefined"
}
