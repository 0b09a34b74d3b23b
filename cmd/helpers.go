package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/output"
	"github.com/mj1618/axsim/internal/platform"
)

// newProvider returns the provider over the seeded desktop.
func newProvider() (*platform.Provider, error) {
	if current == nil {
		return nil, fmt.Errorf("desktop not initialized")
	}
	return platform.NewProvider()
}

// printResult writes v to the command's output in the --format format.
func printResult(cmd *cobra.Command, v any) error {
	return output.Fprint(cmd.OutOrStdout(), v)
}

// addTargetFlags adds the --app, --window, --window-id and --pid flags.
func addTargetFlags(cmd *cobra.Command, verb string) {
	cmd.Flags().String("app", "", verb+" application by name")
	cmd.Flags().String("window", "", verb+" window by title substring")
	cmd.Flags().Int("window-id", 0, verb+" window by element ID")
	cmd.Flags().Int("pid", 0, verb+" application by PID")
}

// getTargetFlags reads the flags added by addTargetFlags.
func getTargetFlags(cmd *cobra.Command) platform.Target {
	appName, _ := cmd.Flags().GetString("app")
	window, _ := cmd.Flags().GetString("window")
	windowID, _ := cmd.Flags().GetInt("window-id")
	pid, _ := cmd.Flags().GetInt("pid")
	return platform.Target{App: appName, Window: window, WindowID: windowID, PID: pid}
}

// requireTarget checks that at least one targeting flag is set.
func requireTarget(t platform.Target) error {
	if t.IsZero() {
		return fmt.Errorf("specify --app, --window, --window-id, or --pid")
	}
	return nil
}

// findElementByID searches the tree depth-first for the element with id.
func findElementByID(elements []model.Element, id int) *model.Element {
	for i := range elements {
		if elements[i].ID == id {
			return &elements[i]
		}
		if found := findElementByID(elements[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}
