package domain

import "context"

// RelayClient is the requester's side of the relay: create a request and poll
// for the wallet's answer. Implementations perform no retries.
type RelayClient interface {
	CreateRequest(ctx context.Context, bridge BridgeURL, env Envelope) (RequestID, error)
	FetchStatus(ctx context.Context, bridge BridgeURL, id RequestID) (RelayStatus, error)
}

// WalletRelayClient is the wallet's side of the relay.
type WalletRelayClient interface {
	FetchRequest(ctx context.Context, bridge BridgeURL, id RequestID) (Envelope, error)
	PostResponse(ctx context.Context, bridge BridgeURL, id RequestID, env Envelope) error
}
