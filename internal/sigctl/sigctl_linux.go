//go:build linux

package sigctl

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ravenfell/cradle/internal/metrics"
	"github.com/ravenfell/cradle/internal/thread"
)

// Unblock removes sig from the calling thread's blocked-signal set, leaving
// every other blocked signal untouched. The goroutine should be locked to its
// OS thread if it matters which thread's mask changes; an unlocked goroutine
// alters the mask of whichever thread it happens to occupy.
func Unblock(sig int) error {
	var set unix.Sigset_t
	if err := sigaddset(&set, sig); err != nil {
		return fmt.Errorf("sigaddset: %w", err)
	}
	if err := unix.PthreadSigmask(unix.SIG_UNBLOCK, &set, nil); err != nil {
		return fmt.Errorf("pthread_sigmask: %w", err)
	}
	return nil
}

// Send delivers sig to the current process.
func Send(sig int) error {
	if sig < 1 || sig > maxSignal {
		return fmt.Errorf("kill: invalid signal %d", sig)
	}
	if err := unix.Kill(unix.Getpid(), unix.Signal(sig)); err != nil {
		return fmt.Errorf("kill: %w", err)
	}
	return nil
}

// Kill terminates the thread with the given kernel thread id, which must
// belong to this process.
//
// The kernel offers no cancellation primitive for a thread blocked at an
// arbitrary point, so termination is emulated: the reserved signal is
// directed at the target thread, and the worker registered for that thread is
// told to exit. The locked worker goroutine returning without unlocking makes
// the runtime destroy the thread, which is the minimal thread-scoped
// termination; no process exit, no teardown, nothing that could deadlock
// against locks the interrupted code holds. After the grace period the
// thread's continued existence is reported as a non-fatal warning, not an
// error.
func (t *Terminator) Kill(tid int) error {
	sig := t.Signal
	if sig == 0 {
		sig = int(unix.SIGUSR2)
	}
	if sig < 1 || sig > maxSignal {
		return fmt.Errorf("signal (install): invalid signal %d", sig)
	}
	grace := t.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}

	// Install: route the reserved signal through the runtime's dispatcher so
	// delivery cannot take the whole process down. Stop is the restore of the
	// previous disposition and runs on every exit path.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.Signal(sig))
	defer signal.Stop(ch)

	pid := unix.Getpid()
	if err := unix.Tgkill(pid, tid, unix.Signal(sig)); err != nil {
		return fmt.Errorf("tgkill: %w", err)
	}
	metrics.IncrementThreadKill()

	if w, ok := thread.Lookup(tid); ok {
		w.Kill()
	}

	time.Sleep(grace)

	// Probe with signal 0: an existence check without a second delivery, so a
	// surviving thread is not hit twice.
	if err := unix.Tgkill(pid, tid, 0); err == nil {
		metrics.IncrementThreadKillWarning()
		t.warnf("thread %d still exists - downstream tests may be unreliable", tid)
	}
	return nil
}

// maxSignal bounds valid signal numbers for the sigset representation below.
const maxSignal = 64

func sigaddset(set *unix.Sigset_t, sig int) error {
	if sig < 1 || sig > maxSignal {
		return unix.EINVAL
	}
	set.Val[(sig-1)/64] |= 1 << uint((sig-1)%64)
	return nil
}
