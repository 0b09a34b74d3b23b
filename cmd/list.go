package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/platform"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List windows and applications",
	Long:  "List the simulated desktop's windows, or its applications with --apps, with app name, title, PID and bounds.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("apps", false, "List running applications")
	listCmd.Flags().Bool("windows", false, "List all windows (default)")
	listCmd.Flags().Int("pid", 0, "Filter by PID")
	listCmd.Flags().String("app", "", "Filter by app name")
}

func runList(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}

	apps, _ := cmd.Flags().GetBool("apps")
	pid, _ := cmd.Flags().GetInt("pid")
	appName, _ := cmd.Flags().GetString("app")

	if provider.Reader == nil {
		return fmt.Errorf("reader not available on this platform")
	}

	opts := platform.ListOptions{
		Apps: apps,
		PID:  pid,
		App:  appName,
	}

	if apps {
		entries, err := provider.Reader.ListApps(opts)
		if err != nil {
			return err
		}
		if entries == nil {
			entries = []model.App{}
		}
		return printResult(cmd, entries)
	}

	windows, err := provider.Reader.ListWindows(opts)
	if err != nil {
		return err
	}
	if windows == nil {
		windows = []model.Window{}
	}
	return printResult(cmd, windows)
}
