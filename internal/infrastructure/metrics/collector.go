// Package metrics exposes tokenizer counters through a private Prometheus
// registry. Nothing is served over HTTP; the REPL prints a snapshot.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "tokenlens"

// DurationBuckets covers tokenization latencies from 10µs to 1s.
var DurationBuckets = []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// Collector owns the tokenizer metrics and the registry they live in.
//
// Metrics:
//   - tokenlens_tokenizations_total{strategy}: tokenizations by strategy (bpe, heuristic)
//   - tokenlens_bpe_fallbacks_total: BPE-backed models served by the heuristic
//   - tokenlens_cache_hits_total: results served from the memo
//   - tokenlens_cache_misses_total: results that had to be computed
//   - tokenlens_tokenize_seconds: tokenization latency
type Collector struct {
	registry *prometheus.Registry

	tokenizations *prometheus.CounterVec
	fallbacks     prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	duration      prometheus.Histogram
}

// NewCollector creates a collector registered with registry. A nil
// registry gets a fresh private one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		tokenizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "tokenizations_total",
				Help:      "Total number of tokenizations by strategy",
			},
			[]string{"strategy"},
		),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bpe_fallbacks_total",
			Help:      "Total number of BPE-backed tokenizations served by the heuristic",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of tokenization results served from the memo",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of tokenization results that were computed",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "tokenize_seconds",
			Help:      "Time spent tokenizing text for one model",
			Buckets:   DurationBuckets,
		}),
	}

	registry.MustRegister(c.tokenizations, c.fallbacks, c.cacheHits, c.cacheMisses, c.duration)
	return c
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordTokenization records one computed tokenization.
func (c *Collector) RecordTokenization(strategy string, elapsed time.Duration, degraded bool) {
	c.tokenizations.WithLabelValues(strategy).Inc()
	c.duration.Observe(elapsed.Seconds())
	if degraded {
		c.fallbacks.Inc()
	}
}

// RecordCacheHit records a result reused from the memo.
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordCacheMiss records a memo lookup that found nothing.
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

// Sample is one flattened metric value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers the registry into flat samples sorted by name.
// Histograms contribute _count and _sum samples.
func (c *Collector) Snapshot() ([]Sample, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var samples []Sample
	for _, family := range families {
		name := family.GetName()
		for _, m := range family.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				pairs = append(pairs, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			labels := strings.Join(pairs, ",")

			switch {
			case m.GetCounter() != nil:
				samples = append(samples, Sample{Name: name, Labels: labels, Value: m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				samples = append(samples, Sample{Name: name, Labels: labels, Value: m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				samples = append(samples,
					Sample{Name: name + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: name + "_sum", Labels: labels, Value: h.GetSampleSum()},
				)
			}
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}

// WriteText writes the snapshot as "name{labels} value" lines.
func (c *Collector) WriteText(w io.Writer) error {
	samples, err := c.Snapshot()
	if err != nil {
		return err
	}
	for _, s := range samples {
		name := s.Name
		if s.Labels != "" {
			name += "{" + s.Labels + "}"
		}
		if _, err := fmt.Fprintf(w, "%s %g\n", name, s.Value); err != nil {
			return err
		}
	}
	return nil
}
