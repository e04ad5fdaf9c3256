package config

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
	explicit bool
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	d.explicit = true
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsSet reports whether the duration was explicitly provided or non-zero.
func (d Duration) IsSet() bool {
	return d.explicit || d.Duration != 0
}

// Manifest mirrors the harness.yaml document structure.
type Manifest struct {
	Version string      `yaml:"version"`
	Harness HarnessMeta `yaml:"harness"`
	Runtime RuntimeSpec `yaml:"runtime"`
	Streams StreamsSpec `yaml:"streams"`
	Logging LoggingSpec `yaml:"logging"`
	Kill    KillSpec    `yaml:"kill"`
}

// HarnessMeta contains metadata about the harness document.
type HarnessMeta struct {
	Name    string `yaml:"name"`
	Workdir string `yaml:"workdir"`
}

// RuntimeSpec configures the embedded runtime invocation. Command is an argv
// template; {home} and {module} expand to Home and Module.
type RuntimeSpec struct {
	Home     string            `yaml:"home"`
	Module   string            `yaml:"module"`
	Command  []string          `yaml:"command"`
	Env      map[string]string `yaml:"env"`
	Isolated *bool             `yaml:"isolated"`
}

// StreamSpec overrides the tag and severity stamped on one captured stream.
type StreamSpec struct {
	Tag      string `yaml:"tag"`
	Severity string `yaml:"severity"`
}

// StreamsSpec configures both captured standard streams.
type StreamsSpec struct {
	Stdout StreamSpec `yaml:"stdout"`
	Stderr StreamSpec `yaml:"stderr"`
}

// LoggingSpec configures the record sink. An empty Path keeps records on a
// duplicate of the original stderr descriptor.
type LoggingSpec struct {
	Path   string `yaml:"path"`
	Buffer int    `yaml:"buffer"`
}

// KillSpec configures forced thread termination. A zero Signal selects the
// reserved default.
type KillSpec struct {
	Signal int      `yaml:"signal"`
	Grace  Duration `yaml:"grace"`
}

// IsolatedEnabled reports whether the runtime environment should be isolated,
// defaulting to true when unspecified.
func (r RuntimeSpec) IsolatedEnabled() bool {
	if r.Isolated == nil {
		return true
	}
	return *r.Isolated
}
