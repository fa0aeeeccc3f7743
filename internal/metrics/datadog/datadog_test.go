package datadog

import (
	"reflect"
	"testing"

	"flightprep/internal/metrics"
)

type call struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type recordingSink struct {
	calls  []call
	closed bool
}

func (r *recordingSink) Count(name string, value int64, tags []string, _ float64) error {
	r.calls = append(r.calls, call{"count", name, float64(value), tags})
	return nil
}

func (r *recordingSink) Distribution(name string, value float64, tags []string, _ float64) error {
	r.calls = append(r.calls, call{"distribution", name, value, tags})
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	for _, addr := range []string{"", "  "} {
		if b, err := NewBackend(Config{Addr: addr}); err == nil || b != nil {
			t.Fatalf("NewBackend(%q)=%v, %v; want an error", addr, b, err)
		}
	}
}

func TestNewBackend_UDP(t *testing.T) {
	t.Parallel()

	// A UDP client needs no listening agent.
	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "flightprep.", GlobalTags: []string{"env:test"}})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"year": "2023"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestBackend_RoutesToSink(t *testing.T) {
	t.Parallel()

	s := &recordingSink{}
	b := &Backend{sink: s}
	b.IncCounter(metrics.RecordsTotal, 250, metrics.Labels{"kind": "written", "job": "nightly"})
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.75, metrics.Labels{"step": "convert", "status": "success"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := []call{
		{"count", metrics.RecordsTotal, 250, []string{"job:nightly", "kind:written"}},
		{"distribution", metrics.StepDurationSeconds, 0.75, []string{"status:success", "step:convert"}},
	}
	if !reflect.DeepEqual(s.calls, want) {
		t.Fatalf("calls=%+v; want %+v", s.calls, want)
	}
	if !s.closed {
		t.Fatalf("Flush did not close the client")
	}
}

func TestBackend_ZeroValue(t *testing.T) {
	t.Parallel()

	var b Backend
	b.IncCounter(metrics.BytesTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDurationSeconds, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := tags(nil); got != nil {
		t.Fatalf("tags(nil)=%v; want nil", got)
	}
}
