package diag

import (
	"io"
	"strings"
	"testing"
)

func TestErrorfCountsAndCapsOutput(t *testing.T) {
	var buf strings.Builder
	rep := NewReporter(&buf, 2)

	rep.Errorf("parse", 1, "x = 1;", "bad token")
	rep.Errorf("parse", 2, "y = 2;", "bad token")
	rep.Errorf("parse", 3, "z = 3;", "bad token")

	if rep.ErrorCount() != 3 {
		t.Errorf("ErrorCount() = %d, want 3 (counts past the cap)", rep.ErrorCount())
	}
	if !rep.HasErrors() {
		t.Error("HasErrors() should be true")
	}
	if len(rep.Entries) != 2 {
		t.Errorf("Entries recorded = %d, want 2 (capped)", len(rep.Entries))
	}
	if !strings.Contains(buf.String(), "further errors suppressed") {
		t.Error("expected a suppression note once the cap is exceeded")
	}
}

func TestNewReporterDefaultsCapWhenNonPositive(t *testing.T) {
	rep := NewReporter(io.Discard, 0)
	for i := 0; i < 4; i++ {
		rep.Errorf("x", i, "", "err %d", i)
	}
	if len(rep.Entries) != 3 {
		t.Errorf("Entries = %d, want 3 (default cap)", len(rep.Entries))
	}
}

func TestWarnfIsNeverCapped(t *testing.T) {
	rep := NewReporter(io.Discard, 1)
	for i := 0; i < 5; i++ {
		rep.Warnf("x", i, "warn %d", i)
	}
	if rep.HasErrors() {
		t.Error("warnings should not count as errors")
	}
	if len(rep.Entries) != 5 {
		t.Errorf("Entries = %d, want 5 uncapped warnings", len(rep.Entries))
	}
}
