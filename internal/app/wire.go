package app

import (
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"idkit/internal/domain"
	"idkit/internal/logger"
	"idkit/internal/relay"
	"idkit/internal/services/verification"
)

// Wire bundles the logger, clients and services for the CLI.
type Wire struct {
	Config       Config
	Log          zerolog.Logger
	Relay        *relay.HTTP
	Verification *verification.Service
}

// NewWire validates cfg and constructs the dependency graph. Logs go to
// logOut in console format. No network I/O happens here.
func NewWire(cfg Config, logOut io.Writer) (*Wire, error) {
	bridge := domain.DefaultBridgeURL
	if cfg.RelayURL != "" {
		b, err := domain.ParseBridgeURL(cfg.RelayURL)
		if err != nil {
			return nil, fmt.Errorf("bridge url: %w", err)
		}
		bridge = b
	}
	if cfg.PollInterval < 0 {
		return nil, fmt.Errorf("poll interval must not be negative: %s", cfg.PollInterval)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", cfg.Timeout)
	}

	log, err := logger.New(logOut, cfg.LogLevel, logger.Console)
	if err != nil {
		return nil, err
	}

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = DefaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	rc := relay.NewHTTP(httpClient, log)
	if cfg.UserAgent != "" {
		rc.UserAgent = cfg.UserAgent
	}

	return &Wire{
		Config:       cfg,
		Log:          log,
		Relay:        rc,
		Verification: verification.New(rc, bridge, cfg.PollInterval, log),
	}, nil
}
