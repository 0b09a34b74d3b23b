package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/scenario"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scenario's steps and report the notifications they caused",
	Long: `Execute the scenario's steps against the seeded desktop and print a report of
each step's outcome and the notifications delivered to the scenario's observers.

With --stdin the steps are read from stdin as a YAML list instead.

Example:
  axsim run --stdin <<'EOF'
  - set: { element: App, attribute: AXMainWindow, value: App/Window 1 }
  - move: { app: App, window: Window 1, width: 200, height: 200 }
  EOF`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("diff", false, "Include the element changes caused by each step")
	runCmd.Flags().Bool("stop-on-error", true, "Stop at the first failing step (overrides the scenario)")
	runCmd.Flags().Bool("stdin", false, "Read the steps from stdin")
}

// newRunner builds a runner from the session's scenario and the command's
// run flags.
func newRunner(cmd *cobra.Command, extra ...scenario.RunnerOption) (*scenario.Runner, error) {
	if current == nil {
		return nil, fmt.Errorf("desktop not initialized")
	}
	sc := current.scenario
	if fromStdin, _ := cmd.Flags().GetBool("stdin"); fromStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if sc, err = sc.ReplaceSteps(data); err != nil {
			return nil, err
		}
	}

	diff, _ := cmd.Flags().GetBool("diff")
	opts := []scenario.RunnerOption{
		scenario.WithDiff(diff),
		scenario.WithRunLogger(current.log.Logger),
	}
	if cmd.Flags().Changed("stop-on-error") {
		stop, _ := cmd.Flags().GetBool("stop-on-error")
		opts = append(opts, scenario.WithStopOnError(stop))
	}
	return scenario.NewRunner(current.env, sc, append(opts, extra...)...), nil
}

func runRun(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	current.log.Info().
		Bool("ok", report.OK).
		Int("completed", report.Completed).
		Int("events", len(report.Events)).
		Msg("scenario run")
	return printResult(cmd, report)
}
