package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinoosan/bookkeeper/db"
	v1 "github.com/tinoosan/bookkeeper/internal/httpapi/v1"
	"github.com/tinoosan/bookkeeper/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: "Run the HTTP API.\n\n" +
			"With LEDGER_FILE the server reloads the file whenever another process, such as a\n" +
			"`bookkeeper record` run, has replaced it. Writes from two processes at the same\n" +
			"instant are not coordinated; use DATABASE_URL for concurrent writers.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)
			return withApp(cmd, opts, serve)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	handler := v1.New(v1.Deps{
		Journal:     a.journal,
		Accounts:    a.accounts,
		Reports:     a.reports,
		Idempotency: a.store,
		Ready:       a.ready,
		Auth:        a.cfg.Auth,
		Logger:      a.log,
	}).Handler()

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("bookkeeper listening", "addr", srv.Addr, "backend", a.cfg.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			a.log.Error("server shutdown error", "err", err)
			return err
		}
		a.log.Info("server stopped")
		return nil
	case err := <-errCh:
		a.log.Error("server error", "err", err)
		return err
	}
}

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				pg, ok := a.store.(*postgres.Store)
				if !ok {
					return fmt.Errorf("migrate needs DATABASE_URL; backend is %s", a.cfg.Backend())
				}
				scripts, err := db.Migrations()
				if err != nil {
					return err
				}
				for _, m := range scripts {
					if err := pg.Migrate(ctx, m.Script); err != nil {
						return fmt.Errorf("%s: %w", m.Name, err)
					}
					a.log.Info("applied migration", "name", m.Name)
				}
				return nil
			})
		},
	}
}
