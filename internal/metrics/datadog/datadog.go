// Package datadog forwards flightprep metrics to a DogStatsD agent.
package datadog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/DataDog/datadog-go/v5/statsd"

	"flightprep/internal/metrics"
)

// Config holds the agent address and the tags stamped on every metric.
type Config struct {
	// Addr is "host:port" for UDP or "unix:///path" for a socket.
	Addr string
	// Namespace prefixes every metric name, e.g. "flightprep.".
	Namespace  string
	GlobalTags []string
}

// sink is the slice of *statsd.Client the backend uses.
type sink interface {
	Count(name string, value int64, tags []string, rate float64) error
	Distribution(name string, value float64, tags []string, rate float64) error
	Close() error
}

// Backend implements metrics.Backend on DogStatsD. Durations are sent as
// distributions so percentiles aggregate across hosts.
type Backend struct {
	sink sink
}

// NewBackend dials the agent described by cfg.
func NewBackend(cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("datadog: agent address is required")
	}
	opts := []statsd.Option{statsd.WithTags(cfg.GlobalTags)}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: dial %s: %w", cfg.Addr, err)
	}
	return &Backend{sink: c}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.sink == nil {
		return
	}
	_ = b.sink.Count(name, int64(delta), tags(labels), 1)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.sink == nil {
		return
	}
	_ = b.sink.Distribution(name, value, tags(labels), 1)
}

// Flush closes the client, which drains its buffers.
func (b *Backend) Flush() error {
	if b.sink == nil {
		return nil
	}
	return b.sink.Close()
}

// tags renders labels as sorted "key:value" pairs.
func tags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
