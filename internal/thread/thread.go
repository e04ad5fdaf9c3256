//go:build linux

// Package thread runs functions on dedicated, killable OS threads.
//
// Each worker goroutine is locked to its OS thread and never unlocked, so
// when the function returns the Go runtime destroys the thread instead of
// returning it to the scheduler pool. That is the thread-scoped termination
// path the terminator in sigctl relies on: no process exit, no standard
// teardown, just the one thread disappearing. Workers block through Read or
// Wait, which poll a per-worker quit descriptor alongside any work
// descriptor, so a termination request interrupts a worker that would
// otherwise block indefinitely.
package thread

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrKilled is returned from blocking helpers after a termination request has
// been issued for the worker's thread.
var ErrKilled = errors.New("thread killed")

var (
	mu      sync.Mutex
	workers = make(map[int]*Worker)
)

// Worker is a function running on its own OS thread, addressable by kernel
// thread id.
type Worker struct {
	name string
	tid  int

	quitR    int
	quitW    int
	killOnce sync.Once

	started chan struct{}
	done    chan struct{}
	err     error
}

// Spawn starts fn on a dedicated OS thread and returns once the worker has a
// thread id. fn receives the worker so it can use the killable blocking
// helpers; its return value is available via Err after Done is closed.
func Spawn(name string, fn func(w *Worker) error) (*Worker, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("pipe2: %w", err)
	}
	w := &Worker{
		name:    name,
		quitR:   p[0],
		quitW:   p[1],
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go func() {
		// Never unlocked: the thread dies with the goroutine.
		runtime.LockOSThread()
		w.tid = unix.Gettid()
		register(w)
		close(w.started)
		w.err = fn(w)
		unregister(w.tid)
		w.Kill()
		_ = unix.Close(w.quitR)
		close(w.done)
	}()
	<-w.started
	return w, nil
}

// Lookup finds the live worker running on the given thread, if any.
func Lookup(tid int) (*Worker, bool) {
	mu.Lock()
	defer mu.Unlock()
	w, ok := workers[tid]
	return w, ok
}

func register(w *Worker) {
	mu.Lock()
	workers[w.tid] = w
	mu.Unlock()
}

func unregister(tid int) {
	mu.Lock()
	delete(workers, tid)
	mu.Unlock()
}

// Name returns the label supplied at Spawn.
func (w *Worker) Name() string { return w.name }

// TID returns the kernel thread id the worker runs on.
func (w *Worker) TID() int { return w.tid }

// Done is closed once the worker function has returned and the thread is
// exiting.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Err blocks until the worker has finished and returns its error.
func (w *Worker) Err() error {
	<-w.done
	return w.err
}

// Kill requests termination by closing the quit descriptor, waking any
// blocked Read or Wait. Kill is idempotent and safe from any goroutine.
func (w *Worker) Kill() {
	w.killOnce.Do(func() {
		_ = unix.Close(w.quitW)
	})
}

// Read blocks until fd is readable or the worker is killed, then performs a
// single read. After a termination request it returns ErrKilled.
func (w *Worker) Read(fd int, buf []byte) (int, error) {
	fds := []unix.PollFd{
		{Fd: int32(fd), Events: unix.POLLIN},
		{Fd: int32(w.quitR), Events: unix.POLLIN},
	}
	for {
		fds[0].Revents = 0
		fds[1].Revents = 0
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, fmt.Errorf("poll: %w", err)
		}
		if fds[1].Revents != 0 {
			return 0, ErrKilled
		}
		if fds[0].Revents == 0 {
			continue
		}
		n, err := unix.Read(fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("read: %w", err)
		}
		return n, nil
	}
}

// Wait blocks until the worker is killed and returns ErrKilled.
func (w *Worker) Wait() error {
	fds := []unix.PollFd{{Fd: int32(w.quitR), Events: unix.POLLIN}}
	for {
		fds[0].Revents = 0
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}
		return ErrKilled
	}
}
