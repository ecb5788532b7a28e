package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"idkit/internal/domain"
	"idkit/internal/services/session"
	"idkit/internal/services/verification"
)

// verify: open a uniqueness session and wait for the wallet's proof.
func (c *cli) verifyCmd() *cobra.Command {
	var p verification.UniquenessParams
	var retries uint64
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Request a proof of personhood from a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openWithRetry(ctx, c, retries, func() (*session.Session[domain.Proof], error) {
				return c.wire.Verification.Uniqueness(ctx, p)
			})
			if err != nil {
				return err
			}
			return follow(cmd, c, s)
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.AppID, "app-id", "", "app id, starting with app_")
	f.StringVar(&p.Action, "action", "", "action identifier")
	f.StringVar(&p.Signal, "signal", "", "signal to bind to the proof")
	f.StringVar(&p.Description, "description", "", "action description shown in the wallet")
	f.StringVar(&p.Level, "level", string(domain.LevelOrb), "minimum verification level: orb, device, document, secure_document")
	f.Uint64Var(&retries, "retries", 0, "retry opening the session this many times on relay failures")
	_ = cmd.MarkFlagRequired("app-id")
	return cmd
}

// verify-category: open a credential-category session and wait for the answer.
func (c *cli) verifyCategoryCmd() *cobra.Command {
	var p verification.CategoryParams
	var retries uint64
	cmd := &cobra.Command{
		Use:   "verify-category",
		Short: "Request a credential-category proof from a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openWithRetry(ctx, c, retries, func() (*session.Session[json.RawMessage], error) {
				return c.wire.Verification.CredentialCategory(ctx, p)
			})
			if err != nil {
				return err
			}
			return follow(cmd, c, s)
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.AppID, "app-id", "", "app id, starting with app_")
	f.StringVar(&p.Action, "action", "", "action identifier")
	f.StringVar(&p.Signal, "signal", "", "signal to bind to the proof")
	f.StringVar(&p.Description, "description", "", "action description shown in the wallet")
	f.StringSliceVar(&p.Categories, "category", nil, "accepted credential category (repeatable)")
	f.Uint64Var(&retries, "retries", 0, "retry opening the session this many times on relay failures")
	_ = cmd.MarkFlagRequired("app-id")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

// openWithRetry retries open on relay failures only. Validation errors are
// returned at once.
func openWithRetry[R any](ctx context.Context, c *cli, retries uint64, open func() (*session.Session[R], error)) (*session.Session[R], error) {
	var s *session.Session[R]
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond

	err := backoff.RetryNotify(
		func() error {
			var err error
			s, err = open()
			if err != nil && !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		},
		backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx),
		func(err error, d time.Duration) {
			c.wire.Log.Warn().Err(err).Dur("backoff", d).Msg("opening session failed, retrying")
		},
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrorConnectionFailed) ||
		errors.Is(err, domain.ErrorBridgeRequestFailed)
}

// follow prints the connector URL, reports every status change on stderr and
// prints the result as JSON once the wallet confirms. Any other outcome is
// returned as an error code.
func follow[R any](cmd *cobra.Command, c *cli, s *session.Session[R]) error {
	fmt.Fprintln(cmd.OutOrStdout(), s.ConnectorURL())

	last, err := s.Watch(cmd.Context(), c.wire.Config.Timeout, func(u domain.Status[R]) {
		fmt.Fprintln(cmd.ErrOrStderr(), "status:", u)
	})
	if err != nil {
		return err
	}

	switch last.Kind {
	case domain.Confirmed:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(last.Result)
	case domain.Failed:
		if !last.Code.Known() {
			c.wire.Log.Warn().Str("code", string(last.Code)).Msg("wallet returned an unknown error code")
		}
		return last.Code
	default:
		return fmt.Errorf("session ended without an answer: %s", last)
	}
}
