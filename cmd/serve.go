package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mj1618/axsim/internal/config"
	"github.com/mj1618/axsim/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server over the simulated desktop",
	Long: `Start a Model Context Protocol (MCP) server that exposes the simulated desktop
as tools: list, read, focus, move, set_attribute, frontmost, and subscribe,
events and unsubscribe for notifications.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  axsim serve
  axsim serve --transport streamable-http --port 8080 --metrics-addr :9090
  axsim serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", config.TransportStdio, "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Duration("cache-ttl", 0, "Element tree cache TTL, e.g. 500ms (0 disables; default from config)")
	serveCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
}

// serverConfig applies the serve flags the user set over the configuration.
func serverConfig(cmd *cobra.Command, cfg *config.Config) (config.ServerConfig, error) {
	flags := cmd.Flags()
	if flags.Changed("transport") {
		cfg.Server.Transport, _ = flags.GetString("transport")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cache-ttl") {
		cfg.Server.CacheTTL, _ = flags.GetDuration("cache-ttl")
	}
	if flags.Changed("metrics-addr") {
		cfg.Server.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if err := config.Validate(cfg); err != nil {
		return config.ServerConfig{}, err
	}
	return cfg.Server, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if current == nil {
		return fmt.Errorf("desktop not initialized")
	}
	cfg, err := serverConfig(cmd, current.cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, current.env.Desktop,
		server.WithLogger(current.log.Logger),
		server.WithMetrics(current.metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(ctx)
}
