// Package session drives one wallet bridge request from the requester's side.
//
// Open seals the request payload under fresh key material and posts it to the
// relay. The session then exposes the connector URL the wallet opens and a
// status stream that polls the relay until the wallet answers.
//
// # Status stream
//
// Status emits WaitingForConnection immediately, then polls on a fixed
// interval and emits only when the status kind changes. Confirmed and Failed
// end the stream. A transport or decode failure ends it with an error and no
// further status. Cancelling the context aborts the in-flight poll and stops
// polling, including mid-sleep.
//
// Wait consumes the stream under an optional deadline and turns timeout and
// cancellation into Failed statuses.
package session
