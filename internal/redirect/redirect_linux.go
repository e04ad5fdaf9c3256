//go:build linux

package redirect

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/ravenfell/cradle/internal/metrics"
	"github.com/ravenfell/cradle/internal/sink"
)

// redirectStream wires one stream into the sink. os.Stdout and os.Stderr are
// already unbuffered at the handle level, so no unbuffering step precedes the
// descriptor surgery. The write end of the pipe is duplicated onto the
// stream's descriptor number so that every subsequent write to that
// descriptor is captured, including writes that never pass through s.file.
func (r *Redirector) redirectStream(s *Stream) error {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return fmt.Errorf("pipe: %w", err)
	}
	if err := unix.Dup3(p[1], s.fd, 0); err != nil {
		return fmt.Errorf("dup3: %w", err)
	}
	s.pipe = p
	go r.drain(s)
	return nil
}

// drain is the stream's dedicated reader thread. It is detached by design:
// nothing joins or stops it, and because both the duplicated descriptor and
// the pipe's own write end stay open for the life of the process, the read
// below never sees end-of-file in practice. On a read error the loop stops
// permanently; there is no restart or reopening.
func (r *Redirector) drain(s *Stream) {
	runtime.LockOSThread()
	buf := make([]byte, sink.MaxPayload-1)
	for {
		n, err := unix.Read(s.pipe[0], buf)
		if err == unix.EINTR {
			continue
		}
		if n <= 0 {
			return
		}
		r.sink.Write(sink.Record{Severity: s.severity, Tag: s.tag, Message: string(buf[:n])})
		metrics.AddRecordForwarded(s.tag, n)
	}
}

// KeepOriginal duplicates a descriptor before redirection so the caller keeps
// a handle on the stream's original destination. The duplicate is marked
// close-on-exec so it does not leak into the embedded runtime's process.
func KeepOriginal(fd int) (*os.File, error) {
	dup, err := unix.Dup(fd)
	if err != nil {
		return nil, fmt.Errorf("dup: %w", err)
	}
	unix.CloseOnExec(dup)
	file := os.NewFile(uintptr(dup), "original")
	if file == nil {
		_ = unix.Close(dup)
		return nil, fmt.Errorf("dup: invalid descriptor %d", dup)
	}
	return file, nil
}
