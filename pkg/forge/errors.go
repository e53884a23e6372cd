// Package forge implements a minimal client for the Forge org-scoped
// deployment API. It issues authenticated JSON requests against a fixed
// host and classifies HTTP responses into typed errors so that callers
// can distinguish transport problems, malformed payloads, and the
// platform's own error responses.
package forge

import "fmt"

// ErrorKind classifies an API failure. The HTTP status codes the platform
// is known to return map onto a closed set of kinds; anything else falls
// through to KindUnclassified, which keeps the raw code instead of losing it.
type ErrorKind int

const (
	// KindTransport is a network-level failure (connection refused, DNS,
	// TLS) carrying the underlying cause.
	KindTransport ErrorKind = iota

	// KindParse means the response body was non-empty but not valid JSON,
	// or a required field was missing from an otherwise successful response.
	KindParse

	// KindAuthentication is HTTP 401: the API token was rejected.
	KindAuthentication

	// KindAuthorization is HTTP 403: the token is valid but not permitted
	// to act on this resource.
	KindAuthorization

	// KindNotFound is HTTP 404: the organization, server, or site
	// identifiers are likely wrong.
	KindNotFound

	// KindInvalidRequest is HTTP 422.
	KindInvalidRequest

	// KindRateLimited is HTTP 429.
	KindRateLimited

	// KindRemote is HTTP 500 or 503: the platform itself failed.
	KindRemote

	// KindUnclassified is any other non-success status.
	KindUnclassified
)

// String returns a human-readable description of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindParse:
		return "parse error"
	case KindAuthentication:
		return "authentication failed (check API token)"
	case KindAuthorization:
		return "authorization failed (token lacks access)"
	case KindNotFound:
		return "resource not found (check org, server, and site identifiers)"
	case KindInvalidRequest:
		return "invalid request"
	case KindRateLimited:
		return "rate limited"
	case KindRemote:
		return "remote service error"
	default:
		return "unexpected response"
	}
}

// APIError is a classified failure from the Forge API.
type APIError struct {
	// Kind of failure
	Kind ErrorKind

	// StatusCode is the HTTP status, when one was received
	StatusCode int

	// Message is the human-readable message from the error payload, if any
	Message string

	// Err is the underlying cause for transport and parse failures
	Err error
}

func (e *APIError) Error() string {
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(code int) ErrorKind {
	switch code {
	case 401:
		return KindAuthentication
	case 403:
		return KindAuthorization
	case 404:
		return KindNotFound
	case 422:
		return KindInvalidRequest
	case 429:
		return KindRateLimited
	case 500, 503:
		return KindRemote
	default:
		return KindUnclassified
	}
}
