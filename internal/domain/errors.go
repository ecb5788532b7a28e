package domain

// ErrorCode identifies why a bridge request failed. Codes reported by the
// wallet arrive as Failed statuses; transport codes are returned as errors,
// so ErrorCode implements error and can be matched with errors.Is.
type ErrorCode string

// Codes reported by the wallet or the relay.
const (
	ErrorConnectionFailed           ErrorCode = "connection_failed"
	ErrorVerificationRejected       ErrorCode = "verification_rejected"
	ErrorMaxVerificationsReached    ErrorCode = "max_verifications_reached"
	ErrorCredentialUnavailable      ErrorCode = "credential_unavailable"
	ErrorMalformedRequest           ErrorCode = "malformed_request"
	ErrorInvalidNetwork             ErrorCode = "invalid_network"
	ErrorInclusionProofFailed       ErrorCode = "inclusion_proof_failed"
	ErrorInclusionProofPending      ErrorCode = "inclusion_proof_pending"
	ErrorUnexpectedResponse         ErrorCode = "unexpected_response"
	ErrorFailedByHostApp            ErrorCode = "failed_by_host_app"
	ErrorBridgeRequestFailed        ErrorCode = "bridge_failed_to_add_request"
	ErrorUnrecognizedBridgeResponse ErrorCode = "unrecognized_bridge_response"
	ErrorGeneric                    ErrorCode = "generic_error"
)

// Client-side codes produced by Session.Wait, never sent by the wallet.
const (
	ErrorTimeout   ErrorCode = "timeout"
	ErrorCancelled ErrorCode = "cancelled"
)

var errorDescriptions = map[ErrorCode]string{
	ErrorConnectionFailed:           "Failed to connect to the World App. Please create a new session and try again.",
	ErrorVerificationRejected:       "The user rejected the verification request in the World App.",
	ErrorMaxVerificationsReached:    "The user already verified the maximum number of times for this action.",
	ErrorCredentialUnavailable:      "The user does not have the verification level required by this app.",
	ErrorMalformedRequest:           "There was a problem with this request. Please try again or contact the app owner.",
	ErrorInvalidNetwork:             "Invalid network. If you are the app owner, visit docs.worldcoin.org/test for details.",
	ErrorInclusionProofFailed:       "There was an issue fetching the user's credential. Please try again.",
	ErrorInclusionProofPending:      "The user's identity is still being registered. Please wait a few minutes and try again.",
	ErrorUnexpectedResponse:         "Unexpected response from the user's World App. Please try again.",
	ErrorFailedByHostApp:            "Verification failed by the app. Please contact the app owner for details.",
	ErrorBridgeRequestFailed:        "Wallet Bridge failed to add the request. Please try again.",
	ErrorUnrecognizedBridgeResponse: "Wallet Bridge returned something other than HTTP/S. Use a different bridge.",
	ErrorGeneric:                    "Something unexpected went wrong. Please try again.",
	ErrorTimeout:                    "Verification timed out before completing.",
	ErrorCancelled:                  "Verification was cancelled.",
}

// Known reports whether c is one of the codes defined above.
func (c ErrorCode) Known() bool {
	_, ok := errorDescriptions[c]
	return ok
}

// Description returns a human readable explanation of c.
func (c ErrorCode) Description() string {
	if d, ok := errorDescriptions[c]; ok {
		return d
	}
	return errorDescriptions[ErrorGeneric]
}

func (c ErrorCode) Error() string { return string(c) + ": " + c.Description() }
