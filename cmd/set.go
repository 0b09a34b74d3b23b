package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/platform"
)

// SetResult is the output of a successful attribute write.
type SetResult struct {
	OK        bool   `yaml:"ok"        json:"ok"`
	Action    string `yaml:"action"    json:"action"`
	Element   string `yaml:"element"   json:"element"`
	Attribute string `yaml:"attribute" json:"attribute"`
	Value     string `yaml:"value"     json:"value"`
}

var setCmd = &cobra.Command{
	Use:   "set <element> <attribute> <value>",
	Short: "Write one accessibility attribute",
	Long: `Write an attribute of an element, named "App" or "App/Window".

Values: true/false, text, "x,y" for AXPosition, "w,h" for AXSize, "x,y,w,h"
for AXFrame, or an element reference for AXMainWindow and AXFocusedWindow.

Examples:
  axsim set "App/Window 1" AXSize 200,200
  axsim set App AXMainWindow "App/Window 2"`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}
	if provider.AttributeWriter == nil {
		return fmt.Errorf("attribute writes not available on this platform")
	}

	opts := platform.SetAttributeOptions{Element: args[0], Attribute: args[1], Value: args[2]}
	if err := provider.AttributeWriter.SetAttribute(opts); err != nil {
		return err
	}
	return printResult(cmd, SetResult{
		OK:        true,
		Action:    "set",
		Element:   args[0],
		Attribute: args[1],
		Value:     args[2],
	})
}
