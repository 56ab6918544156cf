package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/backstage/internal/httpapi"
	"github.com/mesh-intelligence/backstage/internal/metrics"
	"github.com/mesh-intelligence/backstage/internal/tabs"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := metrics.New()
			s, err := openSession(cmd, flags, m)
			if err != nil {
				return err
			}
			defer s.close()

			if addr == "" {
				addr = s.settings.HTTPAddr
			}
			srv := &http.Server{
				Addr: addr,
				Handler: httpapi.NewRouter(httpapi.Options{
					Console:     s.console,
					Tabs:        tabs.New(),
					Logger:      s.logger,
					Metrics:     m,
					CORSOrigins: s.settings.CORSOrigins,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				s.logger.Info().Str("addr", addr).Str("backend", s.settings.Console.Backend).Msg("serving")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return sysError("serve: %v", err)
				}
				return nil
			case <-ctx.Done():
			}

			s.logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return sysError("shutdown: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from http.addr)")
	return cmd
}
