package session

import (
	"context"
	"errors"
	"time"

	"idkit/internal/domain"
)

// Stream delivers the status transitions of one session. Updates is closed
// when the stream ends; Err then reports why it ended early, or nil after a
// terminal status.
type Stream[R any] struct {
	updates chan domain.Status[R]
	cancel  context.CancelFunc
	err     error
}

// Updates returns the channel of status transitions.
func (st *Stream[R]) Updates() <-chan domain.Status[R] { return st.updates }

// Err is valid once Updates is closed.
func (st *Stream[R]) Err() error { return st.err }

// Close stops polling and waits for the poller to exit. It is safe to call
// more than once and after the stream ended on its own.
func (st *Stream[R]) Close() {
	st.cancel()
	for range st.updates {
	}
}

// Status starts polling the relay in the background. Exactly one poll is in
// flight at a time; polls are spaced by the session poll interval.
func (s *Session[R]) Status(ctx context.Context) *Stream[R] {
	ctx, cancel := context.WithCancel(ctx)
	st := &Stream[R]{
		updates: make(chan domain.Status[R]),
		cancel:  cancel,
	}
	go s.poll(ctx, st)
	return st
}

func (s *Session[R]) poll(ctx context.Context, st *Stream[R]) {
	defer close(st.updates)
	defer st.cancel()

	current := domain.StatusWaiting[R]()
	if st.err = emit(ctx, st, current); st.err != nil {
		return
	}

	for {
		if st.err = ctx.Err(); st.err != nil {
			return
		}
		next, err := s.PollOnce(ctx)
		if err != nil {
			s.log.Debug().Err(err).Msg("poll failed")
			st.err = err
			return
		}

		if !next.SameKind(current) {
			s.log.Debug().Stringer("from", current.Kind).Stringer("to", next.Kind).Msg("status changed")
			current = next
			if st.err = emit(ctx, st, current); st.err != nil {
				return
			}
		}
		if current.Terminal() {
			s.log.Info().Str("outcome", current.String()).Msg("bridge request finished")
			return
		}

		t := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			st.err = ctx.Err()
			return
		case <-t.C:
		}
	}
}

func emit[R any](ctx context.Context, st *Stream[R], status domain.Status[R]) error {
	select {
	case st.updates <- status:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait consumes the status stream until the wallet answers. A positive
// timeout bounds the wait: on expiry it returns Failed(timeout). If ctx is
// cancelled it returns Failed(cancelled). Transport and decode failures are
// returned as errors.
func (s *Session[R]) Wait(ctx context.Context, timeout time.Duration) (domain.Status[R], error) {
	return s.Watch(ctx, timeout, nil)
}

// Watch is Wait with a callback observing every status change, terminal one
// included. onStatus may be nil.
func (s *Session[R]) Watch(ctx context.Context, timeout time.Duration, onStatus func(domain.Status[R])) (domain.Status[R], error) {
	wctx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		wctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	st := s.Status(wctx)
	defer st.Close()

	var last domain.Status[R]
	for status := range st.Updates() {
		if onStatus != nil {
			onStatus(status)
		}
		last = status
	}
	if last.Terminal() {
		return last, nil
	}

	switch err := st.Err(); {
	case errors.Is(wctx.Err(), context.DeadlineExceeded):
		return domain.StatusFailed[R](domain.ErrorTimeout), nil
	case ctx.Err() != nil:
		return domain.StatusFailed[R](domain.ErrorCancelled), nil
	default:
		return last, err
	}
}
