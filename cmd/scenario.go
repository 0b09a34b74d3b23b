package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/scenario"
)

// ScenarioSummary is the output of scenario check.
type ScenarioSummary struct {
	OK           bool     `yaml:"ok"            json:"ok"`
	Applications []string `yaml:"applications"  json:"applications"`
	Windows      int      `yaml:"windows"       json:"windows"`
	Observers    []string `yaml:"observers"     json:"observers"`
	Steps        int      `yaml:"steps"         json:"steps"`
	StopOnError  bool     `yaml:"stop_on_error" json:"stop_on_error"`
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Inspect scenario files",
}

var scenarioCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the scenario and summarize what it seeds",
	Long:  "Validate the scenario given with --scenario (or the built-in demo) and summarize it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := current.scenario
		summary := ScenarioSummary{
			OK:           true,
			Applications: []string{},
			Observers:    current.env.ObserverNames(),
			Steps:        len(sc.Steps),
			StopOnError:  sc.StopsOnError(),
		}
		for _, app := range sc.Applications {
			summary.Applications = append(summary.Applications, app.Name)
			summary.Windows += len(app.Windows)
		}
		if summary.Observers == nil {
			summary.Observers = []string{}
		}
		return printResult(cmd, summary)
	},
}

var scenarioDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Print the built-in demo scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(scenario.DemoSource())
		return err
	},
}

var scenarioStepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the supported step types",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write([]byte(strings.Join(scenario.StepKinds(), "\n") + "\n"))
		return err
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
	scenarioCmd.AddCommand(scenarioCheckCmd, scenarioDemoCmd, scenarioStepsCmd)
}
