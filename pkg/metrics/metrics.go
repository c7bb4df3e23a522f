// Package metrics exports the switch counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/itohio/kvmswitch/pkg/kvm"
	"github.com/itohio/kvmswitch/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kvmswitch"

// Source provides the snapshot to export. *kvm.System implements it.
type Source interface {
	Snapshot() kvm.Snapshot
}

// Collector is a prometheus.Collector reading a Source on every scrape.
type Collector struct {
	src Source

	relayBytes     *prometheus.Desc
	relayFrames    *prometheus.Desc
	relayRequests  *prometheus.Desc
	relayOverflows *prometheus.Desc
	relayErrors    *prometheus.Desc
	requests       *prometheus.Desc
	dropped        *prometheus.Desc
	target         *prometheus.Desc
	feature        *prometheus.Desc
	ledPhase       *prometheus.Desc
}

// Ensure Collector implements prometheus.Collector.
var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector for src.
func NewCollector(src Source) *Collector {
	desc := func(subsystem, name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, labels, nil)
	}
	return &Collector{
		src:            src,
		relayBytes:     desc("relay", "bytes_total", "Bytes forwarded by the relay", "direction"),
		relayFrames:    desc("relay", "middle_frames_total", "Middle-click frames consumed by the filter"),
		relayRequests:  desc("relay", "switch_requests_total", "Switch requests raised by middle-click frames and accepted by the queue"),
		relayOverflows: desc("relay", "overflows_total", "Channel overflow recoveries"),
		relayErrors:    desc("relay", "errors_total", "Channel read and write failures"),
		requests:       desc("switch", "requests_total", "Switch and toggle requests by lockout result", "result"),
		dropped:        desc("switch", "dropped_total", "Requests dropped because the queue was full", "source"),
		target:         desc("switch", "target", "Active target, 0 for A and 1 for B"),
		feature:        desc("switch", "feature_enabled", "Feature flags", "feature"),
		ledPhase:       desc("led", "phase", "LED engine phase, 0 idle, 1 burst, 2 breathing"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.relayBytes
	ch <- c.relayFrames
	ch <- c.relayRequests
	ch <- c.relayOverflows
	ch <- c.relayErrors
	ch <- c.requests
	ch <- c.dropped
	ch <- c.target
	ch <- c.feature
	ch <- c.ledPhase
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Snapshot()

	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}
	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	counter(c.relayBytes, float64(s.Relay.Down), "down")
	counter(c.relayBytes, float64(s.Relay.Up), "up")
	counter(c.relayFrames, float64(s.Relay.Frames))
	counter(c.relayRequests, float64(s.Relay.Requests))
	counter(c.relayOverflows, float64(s.Relay.Overflows))
	counter(c.relayErrors, float64(s.Relay.Errors))
	counter(c.requests, float64(s.Accepted), "accepted")
	counter(c.requests, float64(s.Rejected), "rejected")
	counter(c.dropped, float64(s.ButtonDrops), "button")
	counter(c.dropped, float64(s.RequestDrops), "queue")

	target := 0.0
	if s.Target == state.TargetB {
		target = 1
	}
	gauge(c.target, target)
	gauge(c.feature, boolValue(s.MouseMiddle), "mouse_middle")
	gauge(c.feature, boolValue(s.Led), "led")
	gauge(c.ledPhase, float64(s.Phase))
}

// Handler returns an HTTP handler serving the metrics of src together with
// the Go runtime collectors.
func Handler(src Source) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(src)); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
