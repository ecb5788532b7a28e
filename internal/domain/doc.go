// Package domain defines the wallet bridge data model shared across idkit:
// relay endpoints, transport envelopes, the status union, error codes and the
// request/response payloads exchanged with the wallet. It also declares the
// relay contracts implemented by internal/relay.
package domain
