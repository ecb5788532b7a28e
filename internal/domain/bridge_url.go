package domain

import (
	"errors"
	"net/url"
	"strings"
)

// DefaultBridgeURLString is the relay used when the caller does not override it.
const DefaultBridgeURLString = "https://bridge.worldcoin.org"

var (
	// ErrInvalidURL is returned for strings that do not parse as an absolute URL.
	ErrInvalidURL = errors.New("bridge URL must be an absolute URL")
	// ErrNotHTTPS is returned when a non-loopback bridge does not use HTTPS.
	ErrNotHTTPS = errors.New("bridge URL must use HTTPS")
	// ErrNotDefaultPort is returned when a non-loopback bridge sets an explicit port.
	ErrNotDefaultPort = errors.New("bridge URL must use the default port")
	// ErrContainsPath is returned when the bridge URL has a path other than "/".
	ErrContainsPath = errors.New("bridge URL must not contain a path")
	// ErrContainsQuery is returned when the bridge URL has a query string.
	ErrContainsQuery = errors.New("bridge URL must not contain a query")
	// ErrContainsFragment is returned when the bridge URL has a fragment.
	ErrContainsFragment = errors.New("bridge URL must not contain a fragment")
)

// DefaultBridgeURL is the validated form of DefaultBridgeURLString.
var DefaultBridgeURL = MustParseBridgeURL(DefaultBridgeURLString)

// BridgeURL is a validated relay endpoint. The zero value is not valid; use
// ParseBridgeURL or DefaultBridgeURL.
type BridgeURL struct {
	raw string
	u   *url.URL
}

// ParseBridgeURL validates raw as a relay endpoint.
//
// Loopback hosts (localhost, 127.0.0.1) are accepted as-is for local relays.
// Any other host must use https on the default port with no path, query or
// fragment.
func ParseBridgeURL(raw string) (BridgeURL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return BridgeURL{}, ErrInvalidURL
	}

	if isLoopback(u.Hostname()) {
		return BridgeURL{raw: raw, u: u}, nil
	}

	switch {
	case u.Scheme != "https":
		return BridgeURL{}, ErrNotHTTPS
	case u.Port() != "":
		return BridgeURL{}, ErrNotDefaultPort
	case u.Path != "" && u.Path != "/":
		return BridgeURL{}, ErrContainsPath
	case u.RawQuery != "" || u.ForceQuery:
		return BridgeURL{}, ErrContainsQuery
	case u.Fragment != "" || strings.Contains(raw, "#"):
		return BridgeURL{}, ErrContainsFragment
	}
	return BridgeURL{raw: raw, u: u}, nil
}

// MustParseBridgeURL is ParseBridgeURL for constants; it panics on error.
func MustParseBridgeURL(raw string) BridgeURL {
	b, err := ParseBridgeURL(raw)
	if err != nil {
		panic(err)
	}
	return b
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1"
}

// String returns the URL exactly as it was validated.
func (b BridgeURL) String() string { return b.raw }

// IsZero reports whether b was never validated.
func (b BridgeURL) IsZero() bool { return b.u == nil }

// IsDefault reports whether b is the well-known default relay.
func (b BridgeURL) IsDefault() bool { return b.Equal(DefaultBridgeURL) }

// Equal compares two bridge URLs by their URL form.
func (b BridgeURL) Equal(other BridgeURL) bool {
	if b.u == nil || other.u == nil {
		return b.u == other.u
	}
	return b.u.String() == other.u.String()
}

// Host returns the host (and port, if any) of the relay.
func (b BridgeURL) Host() string {
	if b.u == nil {
		return ""
	}
	return b.u.Host
}

// Endpoint joins path elements onto the relay base URL.
func (b BridgeURL) Endpoint(elem ...string) string {
	if b.u == nil {
		return ""
	}
	return b.u.JoinPath(elem...).String()
}
