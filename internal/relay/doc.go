// Package relay talks to the wallet bridge relay over HTTP and provides an
// in-memory relay for development and tests.
//
// The relay is a store-and-forward service for encrypted envelopes addressed
// by a request id. It never sees plaintext or keys.
//
// Client operations:
//   - CreateRequest: POST /request with the sealed request, returns its id.
//   - FetchStatus: GET /response/{id}, the requester's poll.
//   - FetchRequest: GET /request/{id}, the wallet retrieving the request.
//   - PostResponse: PUT /response/{id}, the wallet answering.
//
// All calls accept a context; cancelling it aborts the in-flight request.
// The client never retries. Failures are wrapped domain.ErrorCode values so
// callers can match them with errors.Is.
package relay
