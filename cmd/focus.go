package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/platform"
)

// FocusResult is the output of a successful focus.
type FocusResult struct {
	OK        bool   `yaml:"ok"                  json:"ok"`
	Action    string `yaml:"action"              json:"action"`
	App       string `yaml:"app,omitempty"       json:"app,omitempty"`
	Window    string `yaml:"window,omitempty"    json:"window,omitempty"`
	PID       int    `yaml:"pid,omitempty"       json:"pid,omitempty"`
	Frontmost string `yaml:"frontmost,omitempty" json:"frontmost,omitempty"`
}

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Bring a window or application to the foreground",
	Long: `Make a window its application's main window and the application frontmost.
With only --app or --pid the application is brought forward unchanged.`,
	RunE: runFocus,
}

func init() {
	rootCmd.AddCommand(focusCmd)
	addTargetFlags(focusCmd, "Focus")
}

func runFocus(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}

	target := getTargetFlags(cmd)
	if err := requireTarget(target); err != nil {
		return err
	}
	if provider.WindowManager == nil {
		return fmt.Errorf("window management not available on this platform")
	}

	if err := provider.WindowManager.FocusWindow(platform.FocusOptions{Target: target}); err != nil {
		return err
	}
	front, pid, err := provider.WindowManager.GetFrontmostApp()
	if err != nil {
		return err
	}

	return printResult(cmd, FocusResult{
		OK:        true,
		Action:    "focus",
		App:       target.App,
		Window:    target.Window,
		PID:       pid,
		Frontmost: front,
	})
}
