// Package metrics provides domain types for analysis run records and their
// aggregation.
package metrics

import (
	"time"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunRecord represents a single analysis run over one text.
type RunRecord struct {
	ID            string        // Unique run ID
	Operation     string        // tokenize_all, detail, stats, ...
	Status        string        // completed or failed
	Characters    int           // Rune count of the analysed text
	ModelCount    int           // Number of models tokenized
	TotalTokens   int           // Sum of token counts across models
	CacheHits     int           // Results served from the memo
	CacheMisses   int           // Results that had to be computed
	Fallbacks     int           // BPE-backed models served by the heuristic
	Duration      time.Duration // Wall time of the run
	StartedAt     time.Time
	CompletedAt   time.Time
	CorrelationID string
	ErrorMessage  string
	Models        []ModelRecord
}

// ModelRecord represents the tokenization of the run's text for one model.
type ModelRecord struct {
	ModelID  string
	Provider string
	Strategy string
	Tokens   int
	Cost     float64 // input cost of the text
	CacheHit bool
	Degraded bool
	Duration time.Duration
}

// TimePeriod represents a time period for metrics aggregation.
type TimePeriod struct {
	Start time.Time
	End   time.Time
}

// Duration returns the duration of the time period.
func (p TimePeriod) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// Contains reports whether t falls within the period. A zero bound is open.
func (p TimePeriod) Contains(t time.Time) bool {
	if !p.Start.IsZero() && t.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && t.After(p.End) {
		return false
	}
	return true
}

// Summary aggregates a set of run records.
type Summary struct {
	Period       TimePeriod
	Runs         int64
	Completed    int64
	Failed       int64
	TotalTokens  int64
	CacheHits    int64
	CacheMisses  int64
	CacheHitRate float64 // 0.0 to 1.0
	Fallbacks    int64
	AvgDuration  time.Duration
	MinDuration  time.Duration
	MaxDuration  time.Duration
	ByOperation  map[string]int64
	ByModel      map[string]int64 // tokens per model
}

// NewSummary creates an initialized Summary.
func NewSummary(period TimePeriod) *Summary {
	return &Summary{
		Period:      period,
		ByOperation: make(map[string]int64),
		ByModel:     make(map[string]int64),
	}
}

// Summarize aggregates the records that fall within period.
func Summarize(records []RunRecord, period TimePeriod) *Summary {
	s := NewSummary(period)

	var total time.Duration
	for _, r := range records {
		if !period.Contains(r.StartedAt) {
			continue
		}

		s.Runs++
		switch r.Status {
		case StatusFailed:
			s.Failed++
		default:
			s.Completed++
		}
		s.TotalTokens += int64(r.TotalTokens)
		s.CacheHits += int64(r.CacheHits)
		s.CacheMisses += int64(r.CacheMisses)
		s.Fallbacks += int64(r.Fallbacks)
		s.ByOperation[r.Operation]++
		for _, m := range r.Models {
			s.ByModel[m.ModelID] += int64(m.Tokens)
		}

		total += r.Duration
		if s.Runs == 1 || r.Duration < s.MinDuration {
			s.MinDuration = r.Duration
		}
		if r.Duration > s.MaxDuration {
			s.MaxDuration = r.Duration
		}
	}

	if s.Runs > 0 {
		s.AvgDuration = total / time.Duration(s.Runs)
	}
	if lookups := s.CacheHits + s.CacheMisses; lookups > 0 {
		s.CacheHitRate = float64(s.CacheHits) / float64(lookups)
	}
	return s
}

// Filter defines criteria for selecting run records.
type Filter struct {
	Operation string // empty for all
	Status    string // empty for all
	Period    TimePeriod
	Limit     int // 0 for no limit
}

// Apply returns the records matching f, most recent last.
func (f Filter) Apply(records []RunRecord) []RunRecord {
	var out []RunRecord
	for _, r := range records {
		if f.Operation != "" && r.Operation != f.Operation {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if !f.Period.Contains(r.StartedAt) {
			continue
		}
		out = append(out, r)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

// LastHour returns a filter for runs started in the past hour.
func LastHour() Filter {
	now := time.Now()
	return Filter{Period: TimePeriod{Start: now.Add(-time.Hour), End: now}}
}
