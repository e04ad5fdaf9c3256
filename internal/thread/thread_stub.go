//go:build !linux

package thread

import "errors"

var (
	errUnsupported = errors.New("killable threads require linux")

	// ErrKilled is returned from blocking helpers after a termination request
	// has been issued for the worker's thread.
	ErrKilled = errors.New("thread killed")
)

// Worker is a function running on its own OS thread, addressable by kernel
// thread id.
type Worker struct{}

// Spawn is unavailable without gettid support.
func Spawn(name string, fn func(w *Worker) error) (*Worker, error) {
	return nil, errUnsupported
}

// Lookup finds the live worker running on the given thread, if any.
func Lookup(tid int) (*Worker, bool) {
	return nil, false
}

func (w *Worker) Name() string          { return "" }
func (w *Worker) TID() int              { return 0 }
func (w *Worker) Done() <-chan struct{} { return nil }
func (w *Worker) Err() error            { return errUnsupported }
func (w *Worker) Kill()                 {}

func (w *Worker) Read(fd int, buf []byte) (int, error) {
	return 0, errUnsupported
}

func (w *Worker) Wait() error {
	return errUnsupported
}
