package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"idkit/internal/crypto"
	"idkit/internal/domain"
	"idkit/internal/util/memzero"
)

// DefaultPollInterval is the wait between two consecutive polls.
const DefaultPollInterval = 3 * time.Second

// Options tune Open. Zero values select the defaults.
type Options struct {
	BridgeURL    domain.BridgeURL // default: domain.DefaultBridgeURL
	LinkType     string           // default: domain.LinkTypeUniqueness
	PollInterval time.Duration    // default: DefaultPollInterval
	Log          zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.BridgeURL.IsZero() {
		o.BridgeURL = domain.DefaultBridgeURL
	}
	if o.LinkType == "" {
		o.LinkType = domain.LinkTypeUniqueness
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// Session is one request posted to the relay, typed by the result R the
// wallet answers with. Its key material never leaves the process except
// inside the connector URL.
type Session[R any] struct {
	relay     domain.RelayClient
	bridge    domain.BridgeURL
	linkType  string
	keys      crypto.KeyMaterial
	requestID domain.RequestID
	interval  time.Duration
	log       zerolog.Logger
}

// Open seals payload under fresh key material and creates the request on
// the relay.
func Open[R any](ctx context.Context, relay domain.RelayClient, payload any, opts Options) (*Session[R], error) {
	opts = opts.withDefaults()

	keys, err := crypto.NewKeyMaterial()
	if err != nil {
		return nil, fmt.Errorf("generate session keys: %w", err)
	}
	env, err := crypto.SealJSON(payload, keys.Key, keys.Nonce)
	if err != nil {
		return nil, err
	}
	id, err := relay.CreateRequest(ctx, opts.BridgeURL, env)
	if err != nil {
		return nil, err
	}

	log := opts.Log.With().Str("request_id", id.String()).Logger()
	log.Info().
		Str("link_type", opts.LinkType).
		Str("bridge", opts.BridgeURL.Host()).
		Msg("bridge request created")

	return &Session[R]{
		relay:     relay,
		bridge:    opts.BridgeURL,
		linkType:  opts.LinkType,
		keys:      keys,
		requestID: id,
		interval:  opts.PollInterval,
		log:       log,
	}, nil
}

// RequestID returns the relay id of the request.
func (s *Session[R]) RequestID() domain.RequestID { return s.requestID }

// BridgeURL returns the relay the request was posted to.
func (s *Session[R]) BridgeURL() domain.BridgeURL { return s.bridge }

// ConnectorURL is the URL the wallet opens, typically shown as a QR code.
// It is identical on every call.
func (s *Session[R]) ConnectorURL() string {
	return Connector{
		LinkType:  s.linkType,
		RequestID: s.requestID,
		Key:       s.keys.Key,
		BridgeURL: s.bridge,
	}.String()
}

// PollOnce fetches the relay status once and maps it onto the status union,
// decrypting the wallet's answer when the request is completed.
func (s *Session[R]) PollOnce(ctx context.Context) (domain.Status[R], error) {
	raw, err := s.relay.FetchStatus(ctx, s.bridge, s.requestID)
	if err != nil {
		return domain.Status[R]{}, err
	}

	switch raw.Status {
	case domain.RelayStatusInitialized:
		return domain.StatusWaiting[R](), nil
	case domain.RelayStatusRetrieved:
		return domain.StatusAwaiting[R](), nil
	case domain.RelayStatusCompleted:
		if raw.Response == nil {
			return domain.Status[R]{}, fmt.Errorf("%w: completed without response", domain.ErrorUnexpectedResponse)
		}
		pt, err := crypto.Open(*raw.Response, s.keys.Key)
		if err != nil {
			return domain.Status[R]{}, fmt.Errorf("open wallet response: %w", err)
		}
		defer memzero.Zero(pt)
		return decodeResponse[R](pt)
	default:
		return domain.Status[R]{}, fmt.Errorf("%w: unknown status %q", domain.ErrorUnexpectedResponse, raw.Status)
	}
}

// decodeResponse reads the wallet's answer: an object carrying error_code
// is a failure, anything else must decode as R.
func decodeResponse[R any](pt []byte) (domain.Status[R], error) {
	var probe struct {
		ErrorCode *domain.ErrorCode `json:"error_code"`
	}
	if err := json.Unmarshal(pt, &probe); err == nil && probe.ErrorCode != nil && *probe.ErrorCode != "" {
		return domain.StatusFailed[R](*probe.ErrorCode), nil
	}

	var result R
	if err := json.Unmarshal(pt, &result); err != nil {
		return domain.Status[R]{}, fmt.Errorf("%w: decode result: %v", domain.ErrorUnexpectedResponse, err)
	}
	return domain.StatusConfirmed(result), nil
}
