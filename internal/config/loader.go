package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ravenfell/cradle/internal/sink"
)

// Load reads a harness manifest from the provided path, applies defaults, and
// validates it. Relative paths inside the manifest resolve against the
// manifest's own directory.
func Load(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var doc Manifest
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	baseDir := filepath.Dir(absPath)
	doc.Harness.Workdir = resolvePath(baseDir, os.ExpandEnv(doc.Harness.Workdir))
	if doc.Runtime.Home != "" {
		doc.Runtime.Home = resolvePath(doc.Harness.Workdir, os.ExpandEnv(doc.Runtime.Home))
	}
	if doc.Logging.Path != "" {
		doc.Logging.Path = resolvePath(doc.Harness.Workdir, os.ExpandEnv(doc.Logging.Path))
	}
	if len(doc.Runtime.Env) > 0 {
		expanded := make(map[string]string, len(doc.Runtime.Env))
		for k, v := range doc.Runtime.Env {
			expanded[k] = os.ExpandEnv(v)
		}
		doc.Runtime.Env = expanded
	}

	doc.ApplyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &doc, nil
}

func resolvePath(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}

// ApplyDefaults fills in unset fields with harness defaults.
func (m *Manifest) ApplyDefaults() {
	if m.Version == "" {
		m.Version = "1"
	}
	if m.Harness.Name == "" {
		m.Harness.Name = "cradle"
	}
	if len(m.Runtime.Command) == 0 {
		m.Runtime.Command = []string{"{home}/bin/python3", "-m", "{module}"}
	}
	if m.Streams.Stdout.Tag == "" {
		m.Streams.Stdout.Tag = "native.stdout"
	}
	if m.Streams.Stdout.Severity == "" {
		m.Streams.Stdout.Severity = "info"
	}
	if m.Streams.Stderr.Tag == "" {
		m.Streams.Stderr.Tag = "native.stderr"
	}
	if m.Streams.Stderr.Severity == "" {
		m.Streams.Stderr.Severity = "warn"
	}
	if m.Logging.Buffer <= 0 {
		m.Logging.Buffer = 256
	}
}

// Validate reports the first configuration problem found.
func (m *Manifest) Validate() error {
	if m.Version != "1" {
		return fmt.Errorf("unsupported manifest version %q", m.Version)
	}
	if _, err := sink.ParseSeverity(m.Streams.Stdout.Severity); err != nil {
		return fmt.Errorf("streams.stdout: %w", err)
	}
	if _, err := sink.ParseSeverity(m.Streams.Stderr.Severity); err != nil {
		return fmt.Errorf("streams.stderr: %w", err)
	}
	if m.Kill.Signal < 0 || m.Kill.Signal > 64 {
		return fmt.Errorf("kill.signal: invalid signal %d", m.Kill.Signal)
	}
	if m.Kill.Grace.Duration < 0 {
		return fmt.Errorf("kill.grace: must not be negative")
	}
	for _, arg := range m.Runtime.Command {
		if arg == "" {
			return fmt.Errorf("runtime.command: empty argument")
		}
	}
	return nil
}
