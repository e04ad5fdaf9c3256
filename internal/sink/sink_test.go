package sink

import (
	"strings"
	"testing"
)

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"verbose": SeverityVerbose,
		"debug":   SeverityDebug,
		"info":    SeverityInfo,
		"Warn":    SeverityWarn,
		"warning": SeverityWarn,
		" error ": SeverityError,
	}
	for input, want := range cases {
		got, err := ParseSeverity(input)
		if err != nil {
			t.Fatalf("ParseSeverity(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseSeverity(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseSeverity("shout"); err == nil {
		t.Fatalf("expected error for unknown severity")
	}
}

func TestSeverityString(t *testing.T) {
	if got := SeverityWarn.String(); got != "warn" {
		t.Fatalf("SeverityWarn.String() = %q", got)
	}
	if got := Severity(99).String(); !strings.Contains(got, "99") {
		t.Fatalf("unknown severity string = %q", got)
	}
}

func TestClampBoundsMessage(t *testing.T) {
	short := strings.Repeat("a", MaxPayload)
	if got, truncated := Clamp(short); truncated || got != short {
		t.Fatalf("expected message at the limit to pass through untouched")
	}

	long := strings.Repeat("b", MaxPayload+100)
	got, truncated := Clamp(long)
	if !truncated {
		t.Fatalf("expected truncation for %d bytes", len(long))
	}
	if len(got) != MaxPayload {
		t.Fatalf("clamped length = %d, want %d", len(got), MaxPayload)
	}
}

func TestRecorderTruncatesAndTimestamps(t *testing.T) {
	rec := NewRecorder()
	rec.Write(Record{Severity: SeverityInfo, Tag: "native.stdout", Message: strings.Repeat("x", MaxPayload*2)})

	records := rec.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(records[0].Message) != MaxPayload {
		t.Fatalf("recorded message length = %d, want %d", len(records[0].Message), MaxPayload)
	}
	if records[0].Time.IsZero() {
		t.Fatalf("expected recorder to stamp a timestamp")
	}
}
