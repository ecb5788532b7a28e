package app

import (
	"net/http"
	"os"
	"time"
)

// Environment fallbacks for flags left at their zero value.
const (
	EnvBridgeURL = "IDKIT_BRIDGE_URL"
	EnvLogLevel  = "IDKIT_LOG_LEVEL"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	RelayURL     string        // bridge base URL; empty means the default relay
	HTTP         *http.Client  // optional; defaults to a client with HTTPTimeout
	HTTPTimeout  time.Duration // zero means DefaultHTTPTimeout
	PollInterval time.Duration // zero means session.DefaultPollInterval
	Timeout      time.Duration // overall wait for the wallet; zero waits forever
	LogLevel     string        // zerolog level name; empty means info
	UserAgent    string        // optional
}

// DefaultHTTPTimeout bounds a single relay round trip.
const DefaultHTTPTimeout = 30 * time.Second

// FromEnv fills unset fields from the environment.
func (c Config) FromEnv() Config {
	if c.RelayURL == "" {
		c.RelayURL = os.Getenv(EnvBridgeURL)
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv(EnvLogLevel)
	}
	return c
}
