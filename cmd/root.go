package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/config"
	"github.com/mj1618/axsim/internal/logging"
	"github.com/mj1618/axsim/internal/metrics"
	"github.com/mj1618/axsim/internal/output"
	"github.com/mj1618/axsim/internal/platform/fake"
	"github.com/mj1618/axsim/internal/scenario"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// session is what PersistentPreRunE sets up for a subcommand: the
// configuration, the logger and the seeded desktop.
type session struct {
	cfg      *config.Config
	log      *logging.Logger
	metrics  *metrics.Metrics
	tree     *ax.Tree
	scenario *scenario.Scenario
	env      *scenario.Env
}

var current *session

// logWriter replaces stderr as the console log sink when set.
var logWriter io.Writer

var rootCmd = &cobra.Command{
	Use:   "axsim",
	Short: "Simulate the macOS accessibility tree",
	Long: `A simulated macOS accessibility layer: applications, windows, attributes and
observer notifications, seeded from a YAML scenario.

Without --scenario the built-in demo scenario is loaded.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentPostRunE = teardown
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (YAML)")
	flags.String("scenario", "", "Scenario file seeding the desktop (default: built-in demo)")
	flags.String("format", "yaml", "Output format: yaml, json")
	flags.Bool("pretty", false, "Pretty-print JSON")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("log-file", "", "Also write logs to this file, rotated")
}

func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Root().PersistentFlags()

	format, _ := flags.GetString("format")
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	output.OutputFormat = f
	output.PrettyOutput, _ = flags.GetBool("pretty")

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if flags.Changed("scenario") {
		cfg.Scenario, _ = flags.GetString("scenario")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Writer: logWriter})
	if err != nil {
		return err
	}

	sc := scenario.Demo()
	if cfg.Scenario != "" {
		if sc, err = scenario.Load(cfg.Scenario); err != nil {
			logger.Close()
			return err
		}
	}

	m := metrics.New()
	tree := ax.NewTree(
		ax.WithLogger(logger.Logger),
		ax.WithRecorder(m),
		ax.WithMessagingTimeout(cfg.MessagingTimeout),
	)
	env, err := scenario.Build(tree, sc, scenario.WithLogger(logger.Logger))
	if err != nil {
		tree.Close()
		logger.Close()
		return fmt.Errorf("failed to seed desktop: %w", err)
	}
	fake.Register(env.Desktop)

	current = &session{
		cfg:      cfg,
		log:      logger,
		metrics:  m,
		tree:     tree,
		scenario: sc,
		env:      env,
	}
	logger.Debug().
		Str("command", cmd.Name()).
		Str("scenario", cfg.Scenario).
		Msg("desktop seeded")
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if current == nil {
		return nil
	}
	current.tree.Close()
	err := current.log.Close()
	current = nil
	return err
}
