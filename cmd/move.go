package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/platform"
)

// MoveResult is the output of a successful move.
type MoveResult struct {
	OK     bool    `yaml:"ok"               json:"ok"`
	Action string  `yaml:"action"           json:"action"`
	App    string  `yaml:"app,omitempty"    json:"app,omitempty"`
	Window string  `yaml:"window,omitempty" json:"window,omitempty"`
	ID     int     `yaml:"id,omitempty"     json:"id,omitempty"`
	Bounds *[4]int `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

var moveCmd = &cobra.Command{
	Use:   "move",
	Short: "Move and/or resize a window",
	Long: `Set a window's position (--x, --y) and/or size (--width, --height).
Without --window or --window-id the application's main window moves.`,
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
	addTargetFlags(moveCmd, "Move")
	moveCmd.Flags().Int("x", 0, "New left edge")
	moveCmd.Flags().Int("y", 0, "New top edge")
	moveCmd.Flags().Int("width", 0, "New width")
	moveCmd.Flags().Int("height", 0, "New height")
}

func runMove(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}

	target := getTargetFlags(cmd)
	if err := requireTarget(target); err != nil {
		return err
	}
	if provider.WindowMover == nil {
		return fmt.Errorf("window moving not available on this platform")
	}

	flags := cmd.Flags()
	x, _ := flags.GetInt("x")
	y, _ := flags.GetInt("y")
	width, _ := flags.GetInt("width")
	height, _ := flags.GetInt("height")
	opts := platform.MoveOptions{
		Target:      target,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		SetPosition: flags.Changed("x") || flags.Changed("y"),
		SetSize:     flags.Changed("width") || flags.Changed("height"),
	}
	// A half-given pair keeps the other coordinate.
	if opts.SetPosition != (flags.Changed("x") && flags.Changed("y")) ||
		opts.SetSize != (flags.Changed("width") && flags.Changed("height")) {
		if err := fillMoveDefaults(provider, &opts, flags.Changed); err != nil {
			return err
		}
	}

	if err := provider.WindowMover.MoveWindow(opts); err != nil {
		return err
	}

	result := MoveResult{OK: true, Action: "move", App: target.App, Window: target.Window}
	if target.Window != "" || target.WindowID != 0 {
		if elements, err := provider.Reader.ReadElements(platform.ReadOptions{Target: target}); err == nil && len(elements) == 1 {
			result.ID = elements[0].ID
			result.Bounds = &elements[0].Bounds
		}
	}
	return printResult(cmd, result)
}

// fillMoveDefaults completes a partly given position or size from the
// window's current bounds.
func fillMoveDefaults(provider *platform.Provider, opts *platform.MoveOptions, changed func(string) bool) error {
	if opts.Window == "" && opts.WindowID == 0 {
		return fmt.Errorf("--window or --window-id is required when only one of x/y or width/height is given")
	}
	elements, err := provider.Reader.ReadElements(platform.ReadOptions{Target: opts.Target})
	if err != nil {
		return err
	}
	if len(elements) != 1 {
		return fmt.Errorf("window not found")
	}
	b := elements[0].Bounds
	if !changed("x") {
		opts.X = b[0]
	}
	if !changed("y") {
		opts.Y = b[1]
	}
	if !changed("width") {
		opts.Width = b[2]
	}
	if !changed("height") {
		opts.Height = b[3]
	}
	return nil
}
