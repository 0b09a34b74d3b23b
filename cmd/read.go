package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/output"
	"github.com/mj1618/axsim/internal/platform"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the UI element tree",
	Long: `Read the simulated accessibility tree: every application, one application
with its windows, or a single window.`,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	addTargetFlags(readCmd, "Read")
	readCmd.Flags().Int("depth", 0, "Max depth to traverse (0 = unlimited, 1 = applications only)")
	readCmd.Flags().Int("id", 0, "Only output the subtree of the element with this ID")
	readCmd.Flags().Bool("flat", false, "Flatten the tree into a list with paths")
}

func runRead(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}
	if provider.Reader == nil {
		return fmt.Errorf("reader not available on this platform")
	}

	target := getTargetFlags(cmd)
	depth, _ := cmd.Flags().GetInt("depth")
	id, _ := cmd.Flags().GetInt("id")
	flat, _ := cmd.Flags().GetBool("flat")

	elements, err := provider.Reader.ReadElements(platform.ReadOptions{Target: target, Depth: depth})
	if err != nil {
		return err
	}
	if id > 0 {
		el := findElementByID(elements, id)
		if el == nil {
			return fmt.Errorf("element with id %d not found", id)
		}
		elements = []model.Element{*el}
	}
	if elements == nil {
		elements = []model.Element{}
	}

	ts := time.Now().Unix()
	if flat {
		return printResult(cmd, output.ReadFlatResult{
			App:      target.App,
			PID:      target.PID,
			Window:   target.Window,
			TS:       ts,
			Elements: model.FlattenElements(elements),
		})
	}
	return printResult(cmd, output.ReadResult{
		App:      target.App,
		PID:      target.PID,
		Window:   target.Window,
		TS:       ts,
		Elements: elements,
	})
}
