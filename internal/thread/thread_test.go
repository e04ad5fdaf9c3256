//go:build linux

package thread

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func workPipe(t *testing.T) [2]int {
	t.Helper()
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe2: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(p[0])
		unix.Close(p[1])
	})
	return p
}

func TestSpawnRegistersThreadID(t *testing.T) {
	w, err := Spawn("registered", func(w *Worker) error {
		return w.Wait()
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if w.TID() <= 0 {
		t.Fatalf("expected positive thread id, got %d", w.TID())
	}
	if got, ok := Lookup(w.TID()); !ok || got != w {
		t.Fatalf("Lookup(%d) did not return the live worker", w.TID())
	}

	w.Kill()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop after Kill")
	}
	if _, ok := Lookup(w.TID()); ok {
		t.Fatalf("worker still registered after exit")
	}
}

func TestKillInterruptsBlockedRead(t *testing.T) {
	p := workPipe(t)
	w, err := Spawn("blocked-read", func(w *Worker) error {
		buf := make([]byte, 1)
		_, err := w.Read(p[0], buf)
		return err
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	w.Kill()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("blocked worker did not stop after Kill")
	}
	if !errors.Is(w.Err(), ErrKilled) {
		t.Fatalf("worker error = %v, want ErrKilled", w.Err())
	}
}

func TestReadDeliversDataBeforeKill(t *testing.T) {
	p := workPipe(t)
	got := make(chan string, 1)
	w, err := Spawn("reader", func(w *Worker) error {
		buf := make([]byte, 16)
		n, err := w.Read(p[0], buf)
		if err != nil {
			return err
		}
		got <- string(buf[:n])
		return nil
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	if _, err := unix.Write(p[1], []byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case data := <-got:
		if data != "payload" {
			t.Fatalf("read %q, want payload", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("worker never observed the write")
	}
	if err := w.Err(); err != nil {
		t.Fatalf("worker error = %v, want nil", err)
	}
}

func TestKillIsIdempotent(t *testing.T) {
	w, err := Spawn("idempotent", func(w *Worker) error {
		return w.Wait()
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	w.Kill()
	w.Kill()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop")
	}
	if !errors.Is(w.Err(), ErrKilled) {
		t.Fatalf("worker error = %v, want ErrKilled", w.Err())
	}
}
