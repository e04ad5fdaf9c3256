//go:build !linux

package sigctl

import "errors"

var errUnsupported = errors.New("signal control requires linux")

// Unblock is unavailable without pthread_sigmask support.
func Unblock(sig int) error {
	return errUnsupported
}

// Send is unavailable without kill support.
func Send(sig int) error {
	return errUnsupported
}

// Kill is unavailable without tgkill support.
func (t *Terminator) Kill(tid int) error {
	return errUnsupported
}
