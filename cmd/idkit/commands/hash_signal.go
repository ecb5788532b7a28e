package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"idkit/internal/crypto"
)

// hash-signal <signal>: print the hashed signal sent in requests.
func hashSignalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-signal <signal>",
		Short: "Print the field element a signal hashes to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), crypto.HashSignal(args[0]))
			return nil
		},
	}
}
