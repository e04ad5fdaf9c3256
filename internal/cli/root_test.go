package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root, _ := newRootCommand()

	want := []string{"run", "tui", "config", "kill-thread", "signal", "unblock"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("root command is missing subcommand %q", name)
		}
	}

	flag := root.PersistentFlags().Lookup("file")
	if flag == nil {
		t.Fatalf("root command is missing the --file flag")
	}
	if flag.DefValue != "harness.yaml" {
		t.Fatalf("--file default = %q, want harness.yaml", flag.DefValue)
	}
}

func TestConfigLintValidManifest(t *testing.T) {
	path := writeManifest(t, `
version: "1"
runtime:
  home: ./prefix
  module: suite.entry
`)

	root, _ := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"--file", path, "config", "lint"})

	if err := root.Execute(); err != nil {
		t.Fatalf("config lint: %v (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "is valid") {
		t.Fatalf("expected validity confirmation, got %q", out.String())
	}
}

func TestConfigLintRejectsBrokenManifest(t *testing.T) {
	path := writeManifest(t, `
version: "1"
streams:
  stdout:
    severity: shout
`)

	root, _ := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"--file", path, "config", "lint"})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected lint failure for an invalid manifest")
	}
	if !strings.Contains(errOut.String(), "streams.stdout") {
		t.Fatalf("expected the offending field on stderr, got %q", errOut.String())
	}
}

func TestRunRejectsMissingManifest(t *testing.T) {
	root, _ := newRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "absent.yaml"), "run"})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected run to fail without a manifest")
	}
}

func TestParseSignal(t *testing.T) {
	if sig, err := parseSignal("12"); err != nil || sig != 12 {
		t.Fatalf("parseSignal(12) = %d, %v", sig, err)
	}
	for _, bad := range []string{"0", "-4", "TERM", ""} {
		if _, err := parseSignal(bad); err == nil {
			t.Fatalf("parseSignal(%q) accepted an invalid value", bad)
		}
	}
}

func TestKillThreadManifestProvidesDefaults(t *testing.T) {
	path := writeManifest(t, `
version: "1"
kill:
  signal: 10
  grace: 25ms
`)

	root, cliCtx := newRootCommand()
	killCmd, _, err := root.Find([]string{"kill-thread"})
	if err != nil {
		t.Fatalf("find kill-thread: %v", err)
	}
	if err := root.PersistentFlags().Set("file", path); err != nil {
		t.Fatalf("set file flag: %v", err)
	}

	sig, grace, err := resolveKillSettings(killCmd, cliCtx, 0, 0)
	if err != nil {
		t.Fatalf("resolveKillSettings: %v", err)
	}
	if sig != 10 {
		t.Fatalf("signal = %d, want the manifest's 10", sig)
	}
	if grace != 25*time.Millisecond {
		t.Fatalf("grace = %v, want the manifest's 25ms", grace)
	}
}

func TestKillThreadFlagsOverrideManifest(t *testing.T) {
	path := writeManifest(t, `
version: "1"
kill:
  signal: 10
  grace: 25ms
`)

	root, cliCtx := newRootCommand()
	killCmd, _, err := root.Find([]string{"kill-thread"})
	if err != nil {
		t.Fatalf("find kill-thread: %v", err)
	}
	if err := root.PersistentFlags().Set("file", path); err != nil {
		t.Fatalf("set file flag: %v", err)
	}
	if err := killCmd.Flags().Set("signal", "12"); err != nil {
		t.Fatalf("set signal flag: %v", err)
	}
	if err := killCmd.Flags().Set("grace", "50ms"); err != nil {
		t.Fatalf("set grace flag: %v", err)
	}

	sig, grace, err := resolveKillSettings(killCmd, cliCtx, 12, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("resolveKillSettings: %v", err)
	}
	if sig != 12 {
		t.Fatalf("signal = %d, explicit flag must win over the manifest", sig)
	}
	if grace != 50*time.Millisecond {
		t.Fatalf("grace = %v, explicit flag must win over the manifest", grace)
	}
}

func TestKillThreadSurfacesBrokenManifest(t *testing.T) {
	path := writeManifest(t, `
version: "1"
kill:
  signal: 99
`)

	root, cliCtx := newRootCommand()
	killCmd, _, err := root.Find([]string{"kill-thread"})
	if err != nil {
		t.Fatalf("find kill-thread: %v", err)
	}
	if err := root.PersistentFlags().Set("file", path); err != nil {
		t.Fatalf("set file flag: %v", err)
	}

	if _, _, err := resolveKillSettings(killCmd, cliCtx, 0, 0); err == nil {
		t.Fatalf("a manifest named via --file must load")
	}
}

func TestKillThreadToleratesMissingDefaultManifest(t *testing.T) {
	root, cliCtx := newRootCommand()
	killCmd, _, err := root.Find([]string{"kill-thread"})
	if err != nil {
		t.Fatalf("find kill-thread: %v", err)
	}

	sig, grace, err := resolveKillSettings(killCmd, cliCtx, 0, 0)
	if err != nil {
		t.Fatalf("a missing default manifest must not fail: %v", err)
	}
	if sig != 0 || grace != 0 {
		t.Fatalf("expected terminator defaults, got signal %d grace %v", sig, grace)
	}
}

func TestKillThreadRejectsBadThreadID(t *testing.T) {
	root, _ := newRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"kill-thread", "not-a-tid"})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected kill-thread to reject a non-numeric thread id")
	}
}
