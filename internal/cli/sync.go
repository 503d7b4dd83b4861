package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"biosync/internal/config"
	"biosync/internal/core/domain"
	coreerrors "biosync/internal/core/errors"
)

// SyncOptions holds flags for the sync command. Empty values keep the
// configured setting.
type SyncOptions struct {
	*RootOptions
	Strategy  string
	StartDate string
	Sinks     string
	DataDir   string
}

// SyncSummary is the outcome of one run as printed by the CLI.
type SyncSummary struct {
	RunID       string   `json:"runId"`
	Device      string   `json:"device"`
	Strategy    string   `json:"strategy"`
	StartDate   string   `json:"startDate,omitempty"`
	Employees   int      `json:"employees"`
	Records     int      `json:"records"`
	CheckIns    int      `json:"checkins"`
	CheckOuts   int      `json:"checkouts"`
	Unknown     int      `json:"unknown"`
	Sinks       []string `json:"sinks"`
	FailedSinks []string `json:"failedSinks,omitempty"`
}

func (s SyncSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sync %s on %s (%s)\n", s.RunID, s.Device, s.Strategy)
	fmt.Fprintf(&b, "  employees: %d\n", s.Employees)
	fmt.Fprintf(&b, "  records:   %d (in %d, out %d, unknown %d)\n", s.Records, s.CheckIns, s.CheckOuts, s.Unknown)
	fmt.Fprintf(&b, "  sinks:     %s\n", strings.Join(s.Sinks, ", "))
	if len(s.FailedSinks) > 0 {
		fmt.Fprintf(&b, "  failed:    %s\n", strings.Join(s.FailedSinks, ", "))
	}
	return b.String()
}

func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync against the device",
		Long: `Connect to the device, read its directory and punch log, reconcile
the punches and export the result to every configured sink.

The device is re-enabled and disconnected on every path, including
failures. Runs against the same device are serialised.

Example:
  biosync sync
  biosync sync --strategy clock-hour --start-date 2026-01-01 --sinks json,csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "classification strategy ("+strings.Join(domain.Strategies(), "|")+")")
	cmd.Flags().StringVar(&opts.StartDate, "start-date", "", "ignore punches before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Sinks, "sinks", "", "comma separated sinks (json,csv,docstore,sql)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "root directory of the file sinks")

	return cmd
}

// apply overlays flag values on cfg and re-validates it.
func (o *SyncOptions) apply(cfg *config.Config) error {
	if o.Strategy != "" {
		cfg.Strategy = o.Strategy
	}
	if o.StartDate != "" {
		start, err := config.ParseDate(o.StartDate, cfg.Location)
		if err != nil {
			return fmt.Errorf("--start-date: %w", err)
		}
		cfg.StartDate = start
	}
	if o.Sinks != "" {
		cfg.Sinks = config.SplitList(o.Sinks)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	return cfg.Validate()
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd.OutOrStdout())

	cfg, err := opts.config()
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeSinks, err := newSyncService(ctx, cfg, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "setup", err)
	}
	defer closeSinks()

	result, err := svc.Sync(ctx)
	if err != nil && result == nil {
		_ = formatter.Error(err)
		return WrapExitError(ExitFailure, "sync failed", err)
	}

	summary := summarize(result, cfg)
	if err != nil {
		for _, f := range coreerrors.ExportFailures(err) {
			summary.FailedSinks = append(summary.FailedSinks, f.Sink)
		}
		_ = formatter.Partial(summary, err)
		return WrapExitError(ExitFailure, "sync finished with export failures", err)
	}
	return formatter.Success(summary)
}

func summarize(res *domain.SyncResult, cfg *config.Config) SyncSummary {
	m := res.Metadata
	s := SyncSummary{
		RunID:     m.RunID,
		Device:    m.DeviceID,
		Strategy:  m.Strategy,
		Employees: m.TotalEmployees,
		Records:   m.TotalRecords,
		CheckIns:  m.TotalCheckins,
		CheckOuts: m.TotalCheckouts,
		Unknown:   m.TotalUnknown,
		Sinks:     cfg.Sinks,
	}
	if !m.StartDate.IsZero() {
		s.StartDate = m.StartDate.Format(domain.DateLayout)
	}
	return s
}
