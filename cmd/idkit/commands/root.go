package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"idkit/internal/app"
)

// cli holds the state shared by one command tree.
type cli struct {
	cfg  app.Config
	wire *app.Wire
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "idkit",
		Short:        "Request identity proofs from a wallet through the Wallet Bridge",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.NewWire(c.cfg.FromEnv(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.wire = w
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfg.RelayURL, "bridge", "", "bridge base URL (default https://bridge.worldcoin.org, env "+app.EnvBridgeURL+")")
	pf.StringVar(&c.cfg.LogLevel, "log-level", "", "log level: debug, info, warn, error (env "+app.EnvLogLevel+")")
	pf.DurationVar(&c.cfg.PollInterval, "poll-interval", 0, "wait between status polls (default 3s)")
	pf.DurationVar(&c.cfg.Timeout, "timeout", 0, "give up waiting for the wallet after this long (0 waits forever)")
	pf.DurationVar(&c.cfg.HTTPTimeout, "http-timeout", app.DefaultHTTPTimeout, "timeout for a single relay request")

	root.AddCommand(
		c.verifyCmd(),
		c.verifyCategoryCmd(),
		hashSignalCmd(),
		c.walletCmd(),
	)
	return root
}
