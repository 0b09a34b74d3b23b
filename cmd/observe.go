package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/output"
	"github.com/mj1618/axsim/internal/platform"
	"github.com/mj1618/axsim/internal/scenario"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Run the scenario's steps and stream notifications as JSONL",
	Long: `Run the scenario's steps and write one JSON object per line to stdout for
every notification delivered to the scenario's observers, as it is delivered.

Each step is followed by a "step" line; with --diff the element changes the
step caused follow as "added", "removed" and "changed" lines. The stream
starts with a "snapshot" line and ends with a "done" line.

Output is always JSONL regardless of the --format flag.`,
	RunE: runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().Bool("diff", false, "Stream element changes after each step")
	observeCmd.Flags().Bool("stop-on-error", true, "Stop at the first failing step (overrides the scenario)")
	observeCmd.Flags().Bool("stdin", false, "Read the steps from stdin")
	observeCmd.Flags().Bool("ignore-bounds", false, "Ignore element position and size changes")
	observeCmd.Flags().Bool("ignore-focus", false, "Ignore focus changes")
}

// eventLine is a delivered notification in the stream.
type eventLine struct {
	Type string `json:"type"`
	model.Event
}

// stepLine is a finished step in the stream.
type stepLine struct {
	Type    string `json:"type"`
	Step    int    `json:"step"`
	OK      bool   `json:"ok"`
	Action  string `json:"action"`
	Error   string `json:"error,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

func runObserve(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}
	if provider.Reader == nil {
		return fmt.Errorf("reader not available on this platform")
	}
	ignoreBounds, _ := cmd.Flags().GetBool("ignore-bounds")
	ignoreFocus, _ := cmd.Flags().GetBool("ignore-focus")

	w := output.NewJSONLWriter(cmd.OutOrStdout())
	start := time.Now()

	runner, err := newRunner(cmd, scenario.WithStepHook(func(r scenario.StepResult) {
		w.Write(stepLine{
			Type:    "step",
			Step:    r.Step,
			OK:      r.OK,
			Action:  r.Action,
			Error:   r.Error,
			Elapsed: r.Elapsed,
		})
		for _, change := range r.Changes {
			if change.Type == model.ChangeChanged {
				if ignoreBounds {
					delete(change.Changes, "b")
				}
				if ignoreFocus {
					delete(change.Changes, "f")
				}
				if len(change.Changes) == 0 {
					continue
				}
			}
			w.Write(change)
		}
	}))
	if err != nil {
		return err
	}

	elements, err := provider.Reader.ReadElements(platform.ReadOptions{})
	if err != nil {
		return fmt.Errorf("initial read failed: %w", err)
	}
	w.Write(map[string]any{
		"type":      "snapshot",
		"ts":        time.Now().Unix(),
		"count":     len(model.FlattenElements(elements)),
		"observers": current.env.ObserverNames(),
	})

	current.env.OnEvent(func(ev model.Event) {
		w.Write(eventLine{Type: "event", Event: ev})
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	done := map[string]any{
		"type":      "done",
		"ts":        time.Now().Unix(),
		"elapsed":   fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
		"ok":        report.OK,
		"completed": report.Completed,
		"events":    len(report.Events),
	}
	if report.Error != "" {
		done["error"] = report.Error
	}
	return w.Write(done)
}
