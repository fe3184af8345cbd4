package routing

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrProviderNotFound is returned by the registry when a request names an
// unregistered provider. Callers should use errors.Is.
var ErrProviderNotFound = errors.New("routing: provider not found")

// ErrorKind classifies adapter failures independently of the backend vendor.
type ErrorKind string

const (
	// KindInvalidInput: the backend rejected the coordinates or profile.
	KindInvalidInput ErrorKind = "InvalidInput"
	// KindNoRouteFound: the backend understood the request but found no path.
	KindNoRouteFound ErrorKind = "NoRouteFound"
	// KindRateLimited: the backend is throttling us.
	KindRateLimited ErrorKind = "RateLimited"
	// KindUnauthorized: bad or missing backend credentials. This is an
	// operational misconfiguration, not a user error.
	KindUnauthorized ErrorKind = "Unauthorized"
	// KindTimeout: the outbound call exceeded its deadline.
	KindTimeout ErrorKind = "Timeout"
	// KindUnavailable: network-level failure reaching the backend.
	KindUnavailable ErrorKind = "ServiceUnavailable"
	// KindUnknown: unclassified backend failure. The original message is
	// always retained for diagnostics.
	KindUnknown ErrorKind = "Unknown"
)

// ProviderError is the canonical adapter failure. It always names the
// provider so the HTTP layer can attach it to 5xx responses.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("routing: %s: %s: %s: %v", e.Provider, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("routing: %s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retriable reports whether the failure came from the network layer, in
// which case the client may retry against a different provider.
func (e *ProviderError) Retriable() bool {
	return e.Kind == KindTimeout || e.Kind == KindUnavailable
}

// providerErr builds a ProviderError without a wrapped cause.
func providerErr(provider string, kind ErrorKind, format string, args ...any) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// transportErr classifies a transport-level error from an outbound call:
// deadline expiry maps to Timeout, everything else (connection refused, DNS
// failure, reset) to ServiceUnavailable.
func transportErr(provider string, err error) *ProviderError {
	kind := KindUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Message: "backend unreachable", Err: err}
}

// InvalidProfileError is returned by the registry when the requested profile
// is not in the chosen provider's catalog. ValidProfiles is carried so
// clients can display the acceptable ids.
type InvalidProfileError struct {
	Provider      string
	Profile       string
	ValidProfiles []string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("routing: profile %q is not valid for provider %q (valid: %v)",
		e.Profile, e.Provider, e.ValidProfiles)
}
