package domain

import "github.com/google/uuid"

// RequestID addresses a request stored on the relay. It is allocated by the
// relay when a request is created and is used for the whole session.
type RequestID = uuid.UUID

// Envelope is the wire form of an AES-256-GCM sealed JSON document. Both
// fields are standard base64; Payload is the ciphertext followed by the
// 16-byte authentication tag.
type Envelope struct {
	IV      string `json:"iv"`
	Payload string `json:"payload"`
}

// Raw relay status values.
const (
	RelayStatusInitialized = "initialized"
	RelayStatusRetrieved   = "retrieved"
	RelayStatusCompleted   = "completed"
)

// CreateRequestResponse is the relay reply to POST /request.
type CreateRequestResponse struct {
	RequestID RequestID `json:"request_id"`
}

// RelayStatus is the relay reply to GET /response/{id}. Response is set only
// when Status is "completed".
type RelayStatus struct {
	Status   string    `json:"status"`
	Response *Envelope `json:"response"`
}
