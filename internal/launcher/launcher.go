// Package launcher builds an isolated configuration for the embedded
// scripting runtime and runs its entry module to completion. It is a thin
// boundary over the operating system's process facilities: the interesting
// native engineering (stream capture, thread termination) lives elsewhere,
// and the runtime's own diagnostics are surfaced verbatim on failure.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Spec describes one runtime invocation. Command is an argv template in which
// {home} and {module} expand to the runtime home path and the entry module
// name; Env values expand the same way.
type Spec struct {
	Home    string
	Module  string
	Command []string
	Env     map[string]string
	Dir     string

	// Isolated starts the runtime from a minimal environment instead of
	// inheriting the harness's, keeping host configuration out of the
	// embedded interpreter.
	Isolated bool
}

// Launcher runs the embedded runtime and reports its exit status.
type Launcher interface {
	// Run executes the runtime described by spec to completion and returns
	// its integer exit code. A non-zero exit code is a result, not an error;
	// errors are reserved for configuration and startup failures.
	Run(ctx context.Context, spec Spec) (int, error)
}

type execLauncher struct{}

// New constructs a launcher backed by os/exec. The runtime inherits the
// harness's standard descriptors, so once stdio has been redirected the
// runtime's native output flows into the log sink like the harness's own.
func New() Launcher {
	return &execLauncher{}
}

func (l *execLauncher) Run(ctx context.Context, spec Spec) (int, error) {
	argv, err := buildCommand(spec)
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = buildEnv(spec)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start runtime: %w", err)
	}

	err = cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Exited() {
			return 0, fmt.Errorf("runtime did not exit: %v", exitErr)
		}
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("run runtime: %w", err)
	}
	return 0, nil
}

func buildCommand(spec Spec) ([]string, error) {
	if len(spec.Command) == 0 {
		return nil, errors.New("runtime requires a command")
	}
	argv := make([]string, len(spec.Command))
	for i, arg := range spec.Command {
		if strings.Contains(arg, "{module}") && spec.Module == "" {
			return nil, errors.New("runtime command references {module} but no entry module was provided")
		}
		if strings.Contains(arg, "{home}") && spec.Home == "" {
			return nil, errors.New("runtime command references {home} but no home path was provided")
		}
		argv[i] = expand(arg, spec)
	}
	return argv, nil
}

func buildEnv(spec Spec) []string {
	var env []string
	if spec.Isolated {
		env = []string{"PATH=" + os.Getenv("PATH")}
		if spec.Home != "" {
			env = append(env, "HOME="+spec.Home)
		}
	} else {
		env = os.Environ()
	}
	if len(spec.Env) == 0 {
		return env
	}
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, expand(spec.Env[k], spec)))
	}
	return env
}

func expand(value string, spec Spec) string {
	value = strings.ReplaceAll(value, "{home}", spec.Home)
	return strings.ReplaceAll(value, "{module}", spec.Module)
}
