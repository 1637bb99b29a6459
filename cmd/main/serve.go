package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	recHnd "price-recon/internal/reconcile/handler"
	serverhttp "price-recon/server/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP comparison service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
			runtime.GOMAXPROCS(runtime.NumCPU())
		}

		// nil-интерфейс, а не (*store.SQLite)(nil): иначе роутер решит, что история включена
		var runs recHnd.RunStore
		if cfg.DBPath != "" {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			runs = st
		}

		r := serverhttp.NewRouter(cfg, logger, runs)
		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info().Str("addr", cfg.Addr()).Bool("history", runs != nil).Msg("server starting")

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		// graceful shutdown
		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}
		logger.Info().Msg("server shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		logger.Info().Msg("bye")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
