package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"biosync/internal/adapters/sink/jsonfile"
	"biosync/internal/core/domain"
	coreerrors "biosync/internal/core/errors"
)

type ReportOptions struct {
	*RootOptions
	DataDir string
}

// EmployeeReport is one line of the check-in/check-out report.
type EmployeeReport struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CheckIns  int     `json:"checkins"`
	CheckOuts int     `json:"checkouts"`
	Unknown   int     `json:"unknown"`
	Ratio     float64 `json:"checkoutRatio"`
}

// Report summarises stored attendance per employee.
type Report struct {
	LastSync    *domain.SyncMetadata `json:"lastSync,omitempty"`
	Employees   []EmployeeReport     `json:"employees"`
	CheckIns    int                  `json:"checkins"`
	CheckOuts   int                  `json:"checkouts"`
	Unknown     int                  `json:"unknown"`
	Ratio       float64              `json:"checkoutRatio"`
	NoCheckouts []string             `json:"noCheckouts"`
}

const maxListed = 10

func (r Report) Text() string {
	var b strings.Builder
	if r.LastSync != nil {
		fmt.Fprintf(&b, "Last sync %s (%s, %s)\n\n", r.LastSync.LastSync.Format("2006-01-02 15:04:05"), r.LastSync.DeviceID, r.LastSync.Strategy)
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tIN\tOUT\tUNKNOWN\tOUT/IN")
	for _, e := range r.Employees {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f%%\n", e.ID, e.Name, e.CheckIns, e.CheckOuts, e.Unknown, e.Ratio)
	}
	tw.Flush()

	fmt.Fprintf(&b, "\nTotal: in %d, out %d, unknown %d, out/in %.1f%%\n", r.CheckIns, r.CheckOuts, r.Unknown, r.Ratio)
	fmt.Fprintf(&b, "Employees without any check-out: %d\n", len(r.NoCheckouts))
	for i, name := range r.NoCheckouts {
		if i == maxListed {
			fmt.Fprintf(&b, "  ... and %d more\n", len(r.NoCheckouts)-maxListed)
			break
		}
		fmt.Fprintf(&b, "  - %s\n", name)
	}
	return b.String()
}

func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise stored check-ins and check-outs",
		Long: `Read the employee files written by the json sink and print per-employee
check-in and check-out counts, the check-out ratio, and the employees
that never checked out. Does not contact the device.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "root directory of the json sink (defaults to DATA_DIR)")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd.OutOrStdout())

	dir := opts.DataDir
	if dir == "" {
		cfg, err := opts.config()
		if err != nil {
			return err
		}
		dir = cfg.DataDir
	}

	reader := jsonfile.NewReader(dir)
	stored, err := reader.Load()
	if err != nil {
		if errors.Is(err, coreerrors.ErrNoData) {
			return WrapExitError(ExitCommandError, "nothing to report in "+dir, err)
		}
		return WrapExitError(ExitFailure, "read stored attendance", err)
	}

	report := buildReport(stored)
	if meta, err := reader.Metadata(); err == nil {
		report.LastSync = meta
	}
	return formatter.Success(report)
}

func buildReport(stored []domain.EmployeeAttendance) Report {
	r := Report{Employees: make([]EmployeeReport, 0, len(stored)), NoCheckouts: []string{}}
	for _, emp := range stored {
		r.Employees = append(r.Employees, EmployeeReport{
			ID:        emp.Profile.ID,
			Name:      emp.Profile.Name,
			CheckIns:  emp.CheckIns,
			CheckOuts: emp.CheckOuts,
			Unknown:   emp.Unknown,
			Ratio:     ratio(emp.CheckOuts, emp.CheckIns),
		})
		r.CheckIns += emp.CheckIns
		r.CheckOuts += emp.CheckOuts
		r.Unknown += emp.Unknown
		if emp.CheckOuts == 0 {
			r.NoCheckouts = append(r.NoCheckouts, emp.Profile.Name)
		}
	}
	r.Ratio = ratio(r.CheckOuts, r.CheckIns)
	return r
}

// ratio is out/in as a percentage, 0 when there are no check-ins.
func ratio(out, in int) float64 {
	if in == 0 {
		return 0
	}
	return float64(out) / float64(in) * 100
}
