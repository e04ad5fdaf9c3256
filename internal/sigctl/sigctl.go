// Package sigctl manipulates process signal state on behalf of the harness:
// unblocking a signal on the calling thread, raising a signal against the
// whole process, and forcibly terminating a single OS thread that may be
// blocked indefinitely.
//
// Signal disposition is process-wide mutable state. The terminator's
// install/restore pairing is the only synchronization discipline available
// for it, so restoration happens on every exit path, including the
// liveness-warning path.
package sigctl

import (
	"fmt"
	"os"
	"time"
)

// DefaultGrace is how long a termination request waits after signal delivery
// before probing whether the target thread still exists.
const DefaultGrace = 100 * time.Millisecond

// Terminator forcibly terminates one OS thread of this process. The zero
// value uses the reserved termination signal (SIGUSR2, chosen to not collide
// with signals meaningful to the embedded runtime) and DefaultGrace, and
// writes liveness warnings to stderr.
type Terminator struct {
	// Signal is the reserved signal number; 0 selects SIGUSR2.
	Signal int
	// Grace is the delay before the liveness probe; 0 selects DefaultGrace.
	Grace time.Duration
	// Warnf receives the non-fatal liveness warning. Nil writes to stderr.
	Warnf func(format string, args ...any)
}

func (t *Terminator) warnf(format string, args ...any) {
	if t.Warnf != nil {
		t.Warnf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// KillThread terminates the thread with the given kernel thread id using a
// zero-value Terminator.
func KillThread(tid int) error {
	t := Terminator{}
	return t.Kill(tid)
}
