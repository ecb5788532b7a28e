package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"idkit/internal/domain"
)

// DefaultUserAgent is sent with every relay request.
const DefaultUserAgent = "idkit-go"

// HTTP is a stateless relay client. The relay endpoint is passed per call so
// one client can serve sessions against different bridges.
type HTTP struct {
	HTTP      *http.Client
	UserAgent string
	Log       zerolog.Logger
}

// NewHTTP returns a client using hc, or http.DefaultClient when hc is nil.
func NewHTTP(hc *http.Client, log zerolog.Logger) *HTTP {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTP{HTTP: hc, UserAgent: DefaultUserAgent, Log: log}
}

var (
	_ domain.RelayClient       = (*HTTP)(nil)
	_ domain.WalletRelayClient = (*HTTP)(nil)
)

// CreateRequest posts the sealed request and returns the id the relay
// allocated for it.
func (c *HTTP) CreateRequest(ctx context.Context, bridge domain.BridgeURL, env domain.Envelope) (domain.RequestID, error) {
	u := bridge.Endpoint("request")
	resp, err := c.do(ctx, http.MethodPost, u, env)
	if err != nil {
		return uuid.Nil, classify(ctx, err, domain.ErrorUnrecognizedBridgeResponse)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return uuid.Nil, fmt.Errorf("%w: relay post %s: %s", domain.ErrorBridgeRequestFailed, u, resp.Status)
	}

	var out domain.CreateRequestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return uuid.Nil, fmt.Errorf("%w: relay post %s: %v", domain.ErrorUnexpectedResponse, u, err)
	}
	if out.RequestID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: relay post %s: missing request_id", domain.ErrorUnexpectedResponse, u)
	}
	return out.RequestID, nil
}

// FetchStatus reads the current state of request id.
func (c *HTTP) FetchStatus(ctx context.Context, bridge domain.BridgeURL, id domain.RequestID) (domain.RelayStatus, error) {
	u := bridge.Endpoint("response", id.String())
	var out domain.RelayStatus
	if err := c.getJSON(ctx, u, &out); err != nil {
		return domain.RelayStatus{}, err
	}

	switch out.Status {
	case domain.RelayStatusInitialized, domain.RelayStatusRetrieved:
	case domain.RelayStatusCompleted:
		if out.Response == nil {
			return domain.RelayStatus{}, fmt.Errorf("%w: completed without response", domain.ErrorUnexpectedResponse)
		}
	default:
		return domain.RelayStatus{}, fmt.Errorf("%w: unknown status %q", domain.ErrorUnexpectedResponse, out.Status)
	}
	return out, nil
}

// FetchRequest retrieves the sealed request for id, as the wallet does after
// scanning the connector URL.
func (c *HTTP) FetchRequest(ctx context.Context, bridge domain.BridgeURL, id domain.RequestID) (domain.Envelope, error) {
	var out domain.Envelope
	if err := c.getJSON(ctx, bridge.Endpoint("request", id.String()), &out); err != nil {
		return domain.Envelope{}, err
	}
	return out, nil
}

// PostResponse stores the wallet's sealed answer for id.
func (c *HTTP) PostResponse(ctx context.Context, bridge domain.BridgeURL, id domain.RequestID, env domain.Envelope) error {
	u := bridge.Endpoint("response", id.String())
	resp, err := c.do(ctx, http.MethodPut, u, env)
	if err != nil {
		return classify(ctx, err, domain.ErrorConnectionFailed)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: relay put %s: %s", domain.ErrorConnectionFailed, u, resp.Status)
	}
	return nil
}

func (c *HTTP) getJSON(ctx context.Context, u string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return classify(ctx, err, domain.ErrorConnectionFailed)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: relay get %s: %s", domain.ErrorConnectionFailed, u, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: relay get %s: %v", domain.ErrorUnexpectedResponse, u, err)
	}
	return nil
}

func (c *HTTP) do(ctx context.Context, method, u string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return nil, err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	ev := c.Log.Debug().Str("method", method).Str("url", u).Dur("elapsed", time.Since(start))
	if err != nil {
		ev.Err(err).Msg("relay request failed")
		return nil, err
	}
	ev.Int("status", resp.StatusCode).Msg("relay request")
	return resp, nil
}

// classify maps an http.Client error onto the relay error taxonomy.
// Errors caused by ctx itself pass through untouched. Network-level failures,
// client timeouts included, become connection_failed; anything else means the
// peer did not speak HTTP and is reported as fallback.
func classify(ctx context.Context, err error, fallback domain.ErrorCode) error {
	if ctx.Err() != nil {
		return err
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", domain.ErrorConnectionFailed, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
