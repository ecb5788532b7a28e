// Package crypto holds the primitives behind the wallet bridge.
//
// Contents
//
//   - Per-session key material: a 256-bit AES key and a 96-bit nonce
//     (NewKeyMaterial)
//   - The envelope codec: AES-256-GCM sealing of JSON documents into the
//     {iv, payload} transport form and back (SealJSON, OpenJSON)
//   - Signal hashing for proof requests (HashSignal)
//   - Standard base64 helpers (B64, FromB64)
//
// # Notes
//
// A key/nonce pair seals exactly one request. The wallet answers under the
// same key with a nonce of its own, carried in the response envelope.
// Plaintext buffers are wiped after sealing; callers own the key material and
// must not reuse it across sessions.
package crypto
