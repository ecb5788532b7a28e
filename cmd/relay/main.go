package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/handlers"
	"github.com/spf13/cobra"

	"idkit/internal/logger"
	"idkit/internal/relay"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr     string
		ttl      time.Duration
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "Run the in-memory Wallet Bridge relay for local development",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(os.Stdout, logLevel, logger.JSON)
			if err != nil {
				return err
			}
			srv := relay.NewServer(ttl, log)

			hs := &http.Server{
				Addr:              addr,
				Handler:           handlers.CombinedLoggingHandler(os.Stderr, srv.Handler()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = hs.Shutdown(shutdown)
			}()

			log.Info().Str("addr", addr).Dur("ttl", ttl).Msg("relay listening")
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			log.Info().Msg("relay stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&ttl, "ttl", relay.DefaultTTL, "how long a request is kept")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	return cmd
}
