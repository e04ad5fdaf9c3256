//go:build !linux

package redirect

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("stream redirection requires linux")

func (r *Redirector) redirectStream(s *Stream) error {
	return errUnsupported
}

// KeepOriginal is unavailable without descriptor duplication support.
func KeepOriginal(fd int) (*os.File, error) {
	return nil, errUnsupported
}
