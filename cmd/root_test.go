package cmd

import (
	"strings"
	"testing"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"read", "list", "focus", "move", "set", "run", "observe", "serve", "scenario"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "scenario", "format", "pretty", "log-level", "log-file"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag %q not found", name)
		}
	}
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "", "list", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestRootCommand_ConfigFile(t *testing.T) {
	path := writeScenario(t, "log_level: nonsense\n")
	if _, err := execute(t, "", "list", "--config", path); err == nil {
		t.Fatal("expected an invalid log level to fail")
	}

	path = writeScenario(t, "server:\n  transport: carrier-pigeon\n")
	if _, err := execute(t, "", "list", "--config", path); err == nil {
		t.Fatal("expected an invalid transport to fail")
	}
}

func TestRootCommand_ScenarioFlag(t *testing.T) {
	path := writeScenario(t, `
applications:
  - name: Notes
    pid: 300
    windows:
      - title: Scratch
`)
	out, err := execute(t, "", "list", "--scenario", path)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Scratch") || strings.Contains(out, "Window 1") {
		t.Fatalf("expected the scenario's window only, got:\n%s", out)
	}

	if _, err := execute(t, "", "list", "--scenario", t.TempDir()+"/missing.yaml"); err == nil {
		t.Fatal("expected a missing scenario file to fail")
	}
}

func TestRootCommand_SessionHooks(t *testing.T) {
	if rootCmd.PersistentPreRunE == nil || rootCmd.PersistentPostRunE == nil {
		t.Fatal("root command should set up and tear down the session")
	}
	if _, err := execute(t, "", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if current != nil {
		t.Error("session should be torn down after the command")
	}
}
