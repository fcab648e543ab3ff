package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/desbma/bdf/internal/stats"
)

func TestReporterRendersFinalFrame(t *testing.T) {
	var buf bytes.Buffer
	st := &stats.Run{}
	st.AddBytesToHash(100)
	st.AddFileHashed(100)

	r := New(&buf, st)
	r.Stop()

	if !strings.Contains(buf.String(), "100%") {
		t.Fatalf("expected final frame to show completion, got %q", buf.String())
	}
}

func TestPctHandlesZeroTotal(t *testing.T) {
	if got := pct(0, 0); got != "100%" {
		t.Fatalf("expected 100%% for zero total, got %q", got)
	}
}

func TestPctComputesRatio(t *testing.T) {
	if got := pct(50, 200); got != "25%" {
		t.Fatalf("expected 25%%, got %q", got)
	}
}
