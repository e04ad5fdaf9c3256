package sink

import (
	"testing"
	"time"
)

func TestMuxFansInMultipleSources(t *testing.T) {
	mux := NewMux(4)
	src1 := make(chan Record)
	src2 := make(chan Record)

	mux.Add(src1)
	mux.Add(src2)

	go func() {
		src1 <- Record{Tag: "native.stdout", Message: "runtime ready"}
		src1 <- Record{Tag: "native.stdout", Message: "runtime ok"}
		close(src1)
	}()

	go func() {
		src2 <- Record{Tag: "native.stderr", Message: "warning issued"}
		close(src2)
	}()

	go mux.Close()

	var tags []string
	var messages []string
	for rec := range mux.Output() {
		tags = append(tags, rec.Tag)
		messages = append(messages, rec.Message)
	}

	if len(messages) != 3 {
		t.Fatalf("expected 3 records, got %d", len(messages))
	}

	seen := map[string]int{}
	for _, tag := range tags {
		seen[tag]++
	}
	if seen["native.stdout"] != 2 || seen["native.stderr"] != 1 {
		t.Fatalf("unexpected tag distribution: %v", seen)
	}
}

func TestMuxEmitsDropMetaRecords(t *testing.T) {
	mux := NewMux(1)
	src := make(chan Record)

	mux.Add(src)

	done := make(chan struct{})
	go func() {
		src <- Record{Tag: "native.stdout", Message: "line-1"}
		src <- Record{Tag: "native.stdout", Message: "line-2"}
		src <- Record{Tag: "native.stdout", Message: "line-3"}
		close(src)
		close(done)
	}()

	<-done

	go mux.Close()

	var records []Record
	for rec := range mux.Output() {
		records = append(records, rec)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records (1 log + 1 meta), got %d", len(records))
	}

	if records[0].Message != "line-1" {
		t.Fatalf("expected first record to be the original log, got %q", records[0].Message)
	}

	meta := records[1]
	if meta.Tag != "native.stdout" {
		t.Fatalf("meta record tag mismatch: got %s", meta.Tag)
	}
	if meta.Message != "dropped=2" {
		t.Fatalf("expected drop metadata, got %q", meta.Message)
	}
	if meta.Severity != SeverityWarn {
		t.Fatalf("expected meta severity warn, got %v", meta.Severity)
	}
	if time.Since(meta.Time) > time.Second {
		t.Fatalf("expected recent timestamp, got %v", meta.Time)
	}
}

func TestMuxDirectWritesDoNotBlock(t *testing.T) {
	mux := NewMux(1)

	// No consumer: every write past the first must drop instead of blocking.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			mux.Write(Record{Tag: "native.stderr", Message: "spam"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("Write blocked with a full output buffer")
	}
}
