package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTokenization(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	tests := []struct {
		strategy string
		degraded bool
	}{
		{"bpe", false},
		{"heuristic", false},
		{"heuristic", true},
	}

	for _, tt := range tests {
		collector.RecordTokenization(tt.strategy, time.Millisecond, tt.degraded)
	}

	if got := testutil.ToFloat64(collector.tokenizations.WithLabelValues("bpe")); got != 1 {
		t.Errorf("bpe tokenizations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.tokenizations.WithLabelValues("heuristic")); got != 2 {
		t.Errorf("heuristic tokenizations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.fallbacks); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
}

func TestCacheCounters(t *testing.T) {
	collector := NewCollector(nil)

	collector.RecordCacheHit()
	collector.RecordCacheHit()
	collector.RecordCacheMiss()

	if got := testutil.ToFloat64(collector.cacheHits); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.cacheMisses); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
}

func TestPrivateRegistries(t *testing.T) {
	a := NewCollector(nil)
	b := NewCollector(nil)

	a.RecordCacheHit()

	if got := testutil.ToFloat64(b.cacheHits); got != 0 {
		t.Errorf("collectors should not share counters, got %v", got)
	}
	if a.Registry() == b.Registry() {
		t.Error("expected distinct registries")
	}
}

func TestSnapshot(t *testing.T) {
	collector := NewCollector(nil)
	collector.RecordTokenization("heuristic", 2*time.Millisecond, false)
	collector.RecordTokenization("heuristic", 3*time.Millisecond, false)

	samples, err := collector.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}

	values := make(map[string]float64)
	for _, s := range samples {
		key := s.Name
		if s.Labels != "" {
			key += "{" + s.Labels + "}"
		}
		values[key] = s.Value
	}

	if got := values[`tokenlens_tokenizations_total{strategy="heuristic"}`]; got != 2 {
		t.Errorf("tokenizations sample = %v, want 2", got)
	}
	if got := values["tokenlens_tokenize_seconds_count"]; got != 2 {
		t.Errorf("histogram count = %v, want 2", got)
	}
	if got := values["tokenlens_tokenize_seconds_sum"]; got < 0.0049 || got > 0.0051 {
		t.Errorf("histogram sum = %v, want ~0.005", got)
	}

	for i := 1; i < len(samples); i++ {
		if samples[i-1].Name > samples[i].Name {
			t.Fatalf("samples not sorted: %q before %q", samples[i-1].Name, samples[i].Name)
		}
	}
}

func TestWriteText(t *testing.T) {
	collector := NewCollector(nil)
	collector.RecordCacheHit()

	var buf bytes.Buffer
	if err := collector.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"tokenlens_cache_hits_total 1\n",
		"tokenlens_bpe_fallbacks_total 0\n",
		"tokenlens_tokenize_seconds_count 0\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
