package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Analyses.WithLabelValues("image", "success").Inc()
	m.Duration.WithLabelValues("image").Observe(1.2)
	m.InFlight.Inc()
	m.CleanupDeletions.WithLabelValues("scheduled", "ok").Add(2)

	if got := testutil.ToFloat64(m.Analyses.WithLabelValues("image", "success")); got != 1 {
		t.Errorf("analyses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CleanupDeletions.WithLabelValues("scheduled", "ok")); got != 2 {
		t.Errorf("cleanup deletions = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 4 {
		t.Errorf("gathered %d metric families, want 4", len(families))
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	New(reg)
}
