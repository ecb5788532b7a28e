package domain

import "fmt"

// StatusKind is the tag of a Status.
type StatusKind int

const (
	// WaitingForConnection: the wallet has not retrieved the request yet.
	WaitingForConnection StatusKind = iota
	// AwaitingConfirmation: the wallet retrieved the request; the user has not answered.
	AwaitingConfirmation
	// Confirmed: the wallet answered with a result.
	Confirmed
	// Failed: the wallet answered with an error code.
	Failed
)

func (k StatusKind) String() string {
	switch k {
	case WaitingForConnection:
		return "waiting_for_connection"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status_kind(%d)", int(k))
	}
}

// Status is the state of a bridge request as seen by the requester.
// Result is meaningful only for Confirmed, Code only for Failed.
type Status[R any] struct {
	Kind   StatusKind
	Result R
	Code   ErrorCode
}

// StatusWaiting returns a WaitingForConnection status.
func StatusWaiting[R any]() Status[R] { return Status[R]{Kind: WaitingForConnection} }

// StatusAwaiting returns an AwaitingConfirmation status.
func StatusAwaiting[R any]() Status[R] { return Status[R]{Kind: AwaitingConfirmation} }

// StatusConfirmed returns a Confirmed status carrying result.
func StatusConfirmed[R any](result R) Status[R] { return Status[R]{Kind: Confirmed, Result: result} }

// StatusFailed returns a Failed status carrying code.
func StatusFailed[R any](code ErrorCode) Status[R] { return Status[R]{Kind: Failed, Code: code} }

// SameKind compares tags only: any two Confirmed statuses are the same kind,
// whatever their results. Used for stream de-duplication.
func (s Status[R]) SameKind(other Status[R]) bool { return s.Kind == other.Kind }

// Terminal reports whether s is Confirmed or Failed.
func (s Status[R]) Terminal() bool { return s.Kind == Confirmed || s.Kind == Failed }

func (s Status[R]) String() string {
	if s.Kind == Failed {
		return s.Kind.String() + "(" + string(s.Code) + ")"
	}
	return s.Kind.String()
}
