package run

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/workflowpro/qaharness/internal/report"
	"github.com/workflowpro/qaharness/internal/runner"
)

// NewRunCommand builds the `run` subcommand: test selection, parallelism,
// and report output.
func NewRunCommand(r *runner.Runner, w *report.Writer) *cobra.Command {
	var (
		packages     string
		pattern      string
		parallel     int
		reportFormat string
		outDir       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run test suites and write a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(reportFormat)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rep, err := r.Run(ctx, runner.Options{
				Packages: packages,
				Pattern:  pattern,
				Parallel: parallel,
			})
			if err != nil {
				return err
			}

			path, err := w.Write(rep, format, outDir)
			if err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", path)

			if !rep.Passed() {
				return fmt.Errorf("test run %s had failures", rep.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&packages, "tests", "./tests/...", "package pattern to run")
	cmd.Flags().StringVar(&pattern, "run", "", "regexp selecting tests to run")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "maximum parallel tests (0 for the go default)")
	cmd.Flags().StringVar(&reportFormat, "report", "json", "report format: json or junit")
	cmd.Flags().StringVar(&outDir, "out", "reports", "directory for run reports")

	return cmd
}
