package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	httpadapter "biosync/internal/adapters/http"
	"biosync/internal/adapters/repository/memory"
	"biosync/internal/adapters/sink/jsonfile"
	"biosync/internal/config"
	"biosync/internal/core/ports"
	"biosync/internal/core/services"
)

type ServeOptions struct {
	*RootOptions
	Port string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sync and stored-data HTTP API",
		Long: `Start the HTTP API.

  GET /api/sync                                 run a sync and return the records
  GET /api/health                               service and device info
  GET /api/stats                                runs performed by this process
  GET /api/employees                            employees stored by the json sink
  GET /api/employees/{employee_id}/attendance   one employee's stored attendance
  GET /docs/index.html                          API documentation`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (defaults to PORT)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
		if err := cfg.Validate(); err != nil {
			return WrapExitError(ExitCommandError, "invalid flags", err)
		}
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := services.NewStatsService(memory.NewRunStatsRepository())
	svc, closeSinks, err := newSyncService(ctx, cfg, stats)
	if err != nil {
		return WrapExitError(ExitCommandError, "setup", err)
	}
	defer closeSinks()

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	httpadapter.RegisterRoutes(r, svc, storedReader(cfg), stats, protocolLabel(cfg))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.Port, "device", svc.DeviceID())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	// A sync in flight gets its own timeouts to finish and release the device.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*cfg.DeviceTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}

// storedReader serves stored data only when the json sink writes it.
func storedReader(cfg *config.Config) ports.AttendanceReader {
	if !cfg.HasSink(config.SinkJSON) {
		return nil
	}
	return jsonfile.NewReader(cfg.DataDir)
}
