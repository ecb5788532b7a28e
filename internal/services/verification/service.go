package verification

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"idkit/internal/crypto"
	"idkit/internal/domain"
	"idkit/internal/services/session"
)

// ErrNoCategories is returned when a credential-category request names no
// non-empty category.
var ErrNoCategories = errors.New("at least one credential category is required")

// UniquenessParams describe a uniqueness request before validation.
type UniquenessParams struct {
	AppID       string
	Action      string
	Signal      string // raw signal, hashed before sending
	Description string // optional
	Level       string // default: orb
}

// CategoryParams describe a credential-category request before validation.
type CategoryParams struct {
	AppID       string
	Action      string
	Signal      string
	Description string
	Categories  []string
}

// Service opens verification sessions against one relay.
type Service struct {
	relay    domain.RelayClient
	bridge   domain.BridgeURL
	interval time.Duration
	log      zerolog.Logger
}

// New constructs a Service. A zero bridge selects the default relay and a
// zero interval the default poll interval.
func New(relay domain.RelayClient, bridge domain.BridgeURL, interval time.Duration, log zerolog.Logger) *Service {
	return &Service{relay: relay, bridge: bridge, interval: interval, log: log}
}

// NewUniquenessRequest validates p and builds the request payload.
func NewUniquenessRequest(p UniquenessParams) (domain.UniquenessRequest, error) {
	appID, err := domain.ParseAppID(p.AppID)
	if err != nil {
		return domain.UniquenessRequest{}, err
	}
	level := domain.LevelOrb
	if p.Level != "" {
		if level, err = domain.ParseVerificationLevel(p.Level); err != nil {
			return domain.UniquenessRequest{}, err
		}
	}
	return domain.UniquenessRequest{
		AppID:             appID,
		Action:            p.Action,
		Signal:            crypto.HashSignal(p.Signal),
		ActionDescription: optional(p.Description),
		VerificationLevel: level,
		CredentialTypes:   level.CredentialTypes(),
	}, nil
}

// NewCredentialCategoryRequest validates p and builds the request payload.
// Categories are de-duplicated and sorted.
func NewCredentialCategoryRequest(p CategoryParams) (domain.CredentialCategoryRequest, error) {
	appID, err := domain.ParseAppID(p.AppID)
	if err != nil {
		return domain.CredentialCategoryRequest{}, err
	}
	var cats []string
	for _, c := range p.Categories {
		if c != "" {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		return domain.CredentialCategoryRequest{}, ErrNoCategories
	}
	slices.Sort(cats)
	cats = slices.Compact(cats)

	return domain.CredentialCategoryRequest{
		AppID:                appID,
		Action:               p.Action,
		Signal:               crypto.HashSignal(p.Signal),
		ActionDescription:    optional(p.Description),
		CredentialCategories: cats,
	}, nil
}

// Uniqueness validates p, then posts the request to the relay.
func (s *Service) Uniqueness(ctx context.Context, p UniquenessParams) (*session.Session[domain.Proof], error) {
	req, err := NewUniquenessRequest(p)
	if err != nil {
		return nil, err
	}
	s.logRequest(req.AppID, req.Action, domain.LinkTypeUniqueness)
	return session.Open[domain.Proof](ctx, s.relay, req, s.options(domain.LinkTypeUniqueness))
}

// CredentialCategory validates p, then posts the request to the relay. The
// wallet's answer is returned undecoded.
func (s *Service) CredentialCategory(ctx context.Context, p CategoryParams) (*session.Session[json.RawMessage], error) {
	req, err := NewCredentialCategoryRequest(p)
	if err != nil {
		return nil, err
	}
	s.logRequest(req.AppID, req.Action, domain.LinkTypeCredentialCategory)
	return session.Open[json.RawMessage](ctx, s.relay, req, s.options(domain.LinkTypeCredentialCategory))
}

func (s *Service) options(linkType string) session.Options {
	return session.Options{
		BridgeURL:    s.bridge,
		LinkType:     linkType,
		PollInterval: s.interval,
		Log:          s.log,
	}
}

func (s *Service) logRequest(appID domain.AppID, action, linkType string) {
	s.log.Debug().
		Stringer("app_id", appID).
		Bool("staging", appID.IsStaging()).
		Str("action", action).
		Str("link_type", linkType).
		Msg("opening verification session")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
