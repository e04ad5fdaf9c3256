package sink

import (
	"fmt"
	"sync"
	"time"

	"github.com/ravenfell/cradle/internal/metrics"
)

// Mux fans in records from multiple streams and delivers them via a bounded
// channel. When downstream consumers cannot keep up and the output buffer
// would overflow, the mux drops records and emits a synthesized warning record
// to surface the number of discarded entries.
type Mux struct {
	out chan Record

	mu     sync.Mutex
	drops  map[string]int
	inputs sync.WaitGroup
}

// NewMux constructs a mux backed by a channel of the provided size. A size of
// zero results in a minimally buffered channel.
func NewMux(size int) *Mux {
	if size <= 0 {
		size = 1
	}
	return &Mux{
		out:   make(chan Record, size),
		drops: make(map[string]int),
	}
}

// Output exposes the muxed record channel.
func (m *Mux) Output() <-chan Record {
	return m.out
}

// Write delivers a record without blocking. Records that cannot be delivered
// are dropped and accounted per tag. Write makes Mux usable anywhere a Sink
// is expected, including as the destination of a stream redirector whose
// reader threads must never stall on a slow consumer.
func (m *Mux) Write(rec Record) {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	m.deliver(rec)
}

// Add registers a source channel. The mux consumes records until the source
// channel is closed.
func (m *Mux) Add(source <-chan Record) {
	if source == nil {
		return
	}
	m.inputs.Add(1)
	go func() {
		defer m.inputs.Done()
		for rec := range source {
			m.Write(rec)
		}
	}()
}

// Close waits for all registered sources to be drained, emits any pending
// drop metadata, and closes the output channel. Close must not be called
// while direct writers may still call Write.
func (m *Mux) Close() {
	m.inputs.Wait()
	m.flushDrops()
	close(m.out)
}

func (m *Mux) deliver(rec Record) {
	if !m.flushPending(rec.Tag) {
		m.drop(rec.Tag)
		return
	}
	if m.trySend(rec) {
		return
	}
	m.drop(rec.Tag)
}

func (m *Mux) drop(tag string) {
	metrics.AddRecordsDropped(tag, 1)
	m.recordDrop(tag, 1)
}

func (m *Mux) flushPending(tag string) bool {
	for {
		count := m.takeDrops(tag)
		if count == 0 {
			return true
		}
		if m.trySend(synthesizeDropRecord(tag, count)) {
			continue
		}
		m.recordDrop(tag, count)
		return false
	}
}

func (m *Mux) takeDrops(tag string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := m.drops[tag]
	if count != 0 {
		delete(m.drops, tag)
	}
	return count
}

func (m *Mux) recordDrop(tag string, count int) {
	if count <= 0 {
		return
	}
	m.mu.Lock()
	m.drops[tag] += count
	m.mu.Unlock()
}

func (m *Mux) flushDrops() {
	m.mu.Lock()
	pending := m.drops
	m.drops = make(map[string]int)
	m.mu.Unlock()

	for tag, count := range pending {
		if count <= 0 {
			continue
		}
		m.out <- synthesizeDropRecord(tag, count)
	}
}

func (m *Mux) trySend(rec Record) bool {
	select {
	case m.out <- rec:
		return true
	default:
		return false
	}
}

func synthesizeDropRecord(tag string, count int) Record {
	return Record{
		Time:     time.Now(),
		Severity: SeverityWarn,
		Tag:      tag,
		Message:  fmt.Sprintf("dropped=%d", count),
	}
}
