// Package cli holds the biosync commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"biosync/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// LoadConfig reads the configuration; tests replace it.
	LoadConfig func() (*config.Config, error)
	// LogOutput receives structured logs; stderr when nil.
	LogOutput io.Writer
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the biosync CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: config.Load})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "biosync",
		Short: "Read-only attendance sync for ZK time clocks",
		Long: `biosync reads the user directory and punch log from a ZK biometric
time clock, reconciles punches into check-in/check-out events per employee
and month, and exports them to files, a document store or a SQL archive.
The device is never written to.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			setupLogging(opts, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

func setupLogging(opts *RootOptions, fallback io.Writer) {
	w := opts.LogOutput
	if w == nil {
		w = fallback
	}
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func (o *RootOptions) formatter(w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: w}
}

func (o *RootOptions) config() (*config.Config, error) {
	load := o.LoadConfig
	if load == nil {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	return cfg, nil
}
