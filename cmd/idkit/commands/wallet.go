package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"idkit/internal/crypto"
	"idkit/internal/domain"
	"idkit/internal/services/session"
)

func (c *cli) walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet-side tools for testing against a local relay",
	}
	cmd.AddCommand(c.walletRespondCmd())
	return cmd
}

// wallet respond <connector-url>: fetch and decrypt the request, then post an
// answer sealed under the session key with a fresh nonce.
func (c *cli) walletRespondCmd() *cobra.Command {
	var errorCode, result string
	cmd := &cobra.Command{
		Use:   "respond <connector-url>",
		Short: "Answer a connector URL as a wallet would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var wc domain.WalletRelayClient = c.wire.Relay
			conn, err := session.ParseConnectorURL(args[0])
			if err != nil {
				return err
			}

			env, err := wc.FetchRequest(ctx, conn.BridgeURL, conn.RequestID)
			if err != nil {
				return err
			}
			var req json.RawMessage
			if err := crypto.OpenJSON(env, conn.Key, &req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(req))

			answer, err := walletAnswer(conn.LinkType, req, errorCode, result)
			if err != nil {
				return err
			}
			nonce, err := crypto.NewNonce()
			if err != nil {
				return err
			}
			sealed, err := crypto.SealJSON(answer, conn.Key, nonce)
			if err != nil {
				return err
			}
			if err := wc.PostResponse(ctx, conn.BridgeURL, conn.RequestID, sealed); err != nil {
				return err
			}
			c.wire.Log.Info().Str("request_id", conn.RequestID.String()).Msg("response posted")
			return nil
		},
	}
	cmd.Flags().StringVar(&errorCode, "error-code", "", "answer with this error code instead of a result")
	cmd.Flags().StringVar(&result, "result", "", "answer with this JSON result")
	cmd.MarkFlagsMutuallyExclusive("error-code", "result")
	return cmd
}

// walletAnswer picks the body the simulated wallet sends back. Without
// flags a uniqueness request gets a placeholder proof at the requested level.
func walletAnswer(linkType string, req json.RawMessage, errorCode, result string) (any, error) {
	switch {
	case errorCode != "":
		return map[string]string{"error_code": errorCode}, nil
	case result != "":
		if !json.Valid([]byte(result)) {
			return nil, errors.New("--result is not valid JSON")
		}
		return json.RawMessage(result), nil
	case linkType == domain.LinkTypeUniqueness:
		var r domain.UniquenessRequest
		if err := json.Unmarshal(req, &r); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		level := domain.CredentialType(r.VerificationLevel)
		if level == "" {
			level = domain.CredentialOrb
		}
		return domain.Proof{
			Proof:             "0x" + strings.Repeat("ab", 32),
			MerkleRoot:        "0x" + strings.Repeat("cd", 32),
			NullifierHash:     "0x" + strings.Repeat("ef", 32),
			VerificationLevel: level,
		}, nil
	default:
		return nil, fmt.Errorf("link type %q needs --result or --error-code", linkType)
	}
}
