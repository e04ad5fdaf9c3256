// Package tui renders a live view of forwarded log records for interactive
// harness sessions.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ravenfell/cradle/internal/sink"
)

const defaultRetention = 500

// Option configures viewer behaviour.
type Option func(*Viewer)

// WithMaxRecords sets the maximum number of records retained on screen.
func WithMaxRecords(n int) Option {
	return func(v *Viewer) {
		if n > 0 {
			v.maxRecords = n
		}
	}
}

// Viewer is a scrolling record display backed by tview. It implements
// sink.Sink so the capture pipeline can feed it directly.
type Viewer struct {
	app  *tview.Application
	text *tview.TextView

	mu         sync.Mutex
	count      int
	maxRecords int

	stopOnce sync.Once
	done     chan struct{}
}

// New constructs a viewer configured with the supplied options.
func New(opts ...Option) *Viewer {
	app := tview.NewApplication()
	text := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetMaxLines(defaultRetention)
	text.SetBorder(true).SetTitle("Records")
	text.SetChangedFunc(func() {
		app.Draw()
	})
	app.SetRoot(text, true)

	v := &Viewer{
		app:        app,
		text:       text,
		maxRecords: defaultRetention,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	text.SetMaxLines(v.maxRecords)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && (event.Rune() == 'q' || event.Rune() == 'Q') {
			v.Stop()
			return nil
		}
		return event
	})
	return v
}

// Write appends one record to the display. Safe to call from reader threads.
func (v *Viewer) Write(rec sink.Record) {
	message, _ := sink.Clamp(rec.Message)
	v.mu.Lock()
	v.count++
	v.mu.Unlock()
	fmt.Fprintf(v.text, "[%s]%s %s[-] %s\n",
		severityColor(rec.Severity),
		rec.Time.Format("15:04:05.000"),
		tview.Escape(rec.Tag),
		tview.Escape(message),
	)
}

// Count reports how many records have been displayed.
func (v *Viewer) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.count
}

// Done returns a channel that is closed when the viewer stops.
func (v *Viewer) Done() <-chan struct{} {
	return v.done
}

// Run starts the application loop until Stop is invoked or the context is
// cancelled. A viewer stopped before Run is called does not start.
func (v *Viewer) Run(ctx context.Context) error {
	select {
	case <-v.done:
		return nil
	default:
	}

	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			v.Stop()
		case <-v.done:
		case <-finished:
			return
		}
		// Stopping before the screen exists is a no-op inside tview, so keep
		// nudging until the event loop has actually exited.
		for {
			select {
			case <-finished:
				return
			case <-time.After(10 * time.Millisecond):
				v.app.Stop()
			}
		}
	}()

	err := v.app.Run()
	close(finished)
	v.Stop()
	return err
}

// Stop terminates the application loop.
func (v *Viewer) Stop() {
	v.stopOnce.Do(func() {
		v.app.Stop()
		close(v.done)
	})
}

func severityColor(s sink.Severity) string {
	switch s {
	case sink.SeverityError:
		return "red"
	case sink.SeverityWarn:
		return "yellow"
	case sink.SeverityDebug, sink.SeverityVerbose:
		return "gray"
	default:
		return "white"
	}
}
