package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/petrijr/asyncvalue/pkg/api"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusObserver_RecordsDispatches(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusObserver(WithRegistry(reg))
	ctx := context.Background()

	o.OnDispatch(ctx, "users", api.Action{Type: "user/fetch/perform"}, true, time.Millisecond)
	o.OnDispatch(ctx, "users", api.Action{Type: "unrelated"}, false, time.Millisecond)
	o.OnDispatch(ctx, "users", api.Action{Type: "user/fetch/fulfill"}, true, time.Millisecond)

	if got := metricCounterValue(t, o.dispatches.WithLabelValues("users", "true")); got != 2 {
		t.Fatalf("changed dispatches = %v, want 2", got)
	}
	if got := metricCounterValue(t, o.dispatches.WithLabelValues("users", "false")); got != 1 {
		t.Fatalf("unchanged dispatches = %v, want 1", got)
	}
	if got := metricHistogramCount(t, o.dispatchDuration.WithLabelValues("users")); got != 3 {
		t.Fatalf("duration samples = %d, want 3", got)
	}
}

func TestPrometheusObserver_RecordsPersistence(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusObserver(WithRegistry(reg), WithNamespace("app"), WithSubsystem("state"))
	ctx := context.Background()

	o.OnPersist(ctx, "users", nil)
	o.OnPersist(ctx, "users", errors.New("disk full"))
	o.OnRehydrate(ctx, "users", true, nil)
	o.OnRehydrate(ctx, "users", false, nil)
	o.OnRehydrate(ctx, "users", false, errors.New("corrupt"))

	if got := metricCounterValue(t, o.persists.WithLabelValues("users", "ok")); got != 1 {
		t.Fatalf("ok persists = %v, want 1", got)
	}
	if got := metricCounterValue(t, o.persists.WithLabelValues("users", "error")); got != 1 {
		t.Fatalf("failed persists = %v, want 1", got)
	}
	for _, result := range []string{"restored", "empty", "error"} {
		if got := metricCounterValue(t, o.rehydrates.WithLabelValues("users", result)); got != 1 {
			t.Fatalf("rehydrates[%s] = %v, want 1", result, got)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	if !names["app_state_persists_total"] || !names["app_state_rehydrates_total"] {
		t.Fatalf("expected namespaced metric names, got %v", names)
	}
}

func TestPrometheusObserver_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusObserver(WithRegistry(reg))

	defer func() {
		if recover() == nil {
			t.Fatal("expected second registration on the same registry to panic")
		}
	}()
	NewPrometheusObserver(WithRegistry(reg))
}
