package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordComposition(t *testing.T) {
	before := testutil.ToFloat64(Compositions.WithLabelValues("recommend", "fallback"))
	RecordComposition("recommend", "fallback", 10)
	after := testutil.ToFloat64(Compositions.WithLabelValues("recommend", "fallback"))

	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestRecordDataCall(t *testing.T) {
	// Histograms can't be read with ToFloat64; ensure both label sets register.
	RecordDataCall("find_items", 5*time.Millisecond, nil)
	RecordDataCall("find_items", time.Second, errors.New("timeout"))

	if n := testutil.CollectAndCount(DataCallDuration); n < 2 {
		t.Errorf("expected at least 2 series, got %d", n)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	tests := []struct {
		to   string
		want float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}

	from := "closed"
	for _, tt := range tests {
		RecordCircuitBreakerTransition("catalog-test", from, tt.to)
		if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("catalog-test")); got != tt.want {
			t.Errorf("state %s: gauge = %v, want %v", tt.to, got, tt.want)
		}
		from = tt.to
	}
}
