// Package analytics ranks and aggregates per-model tokenization results for
// a single text.
package analytics

import (
	"fmt"
	"sort"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
)

// Entry pairs a model with its result for the analysed text.
type Entry struct {
	Model  provider.Model                  `json:"model"`
	Result tokenization.TokenizationResult `json:"result"`
}

// TotalCost returns the combined input and output cost of the entry.
func (e Entry) TotalCost() float64 {
	return e.Result.TotalCost()
}

// CostRange is the span of total costs in a report.
type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ProviderStats is the rollup of one provider's entries.
type ProviderStats struct {
	Provider   string  `json:"provider"`
	Count      int     `json:"count"`
	MeanCost   float64 `json:"mean_cost"`
	MeanTokens float64 `json:"mean_tokens"`
}

// Ranked is an entry with its derived per-model figures.
type Ranked struct {
	Entry
	TotalCost          float64 `json:"total_cost"`
	RelativeEfficiency float64 `json:"relative_efficiency"`
}

// Report is the comparative summary of a result set.
type Report struct {
	Entries        []Ranked        `json:"entries"`
	CheapestInput  Entry           `json:"cheapest_input"`
	CheapestOutput Entry           `json:"cheapest_output"`
	Cheapest       Entry           `json:"cheapest"`
	MostTokens     Entry           `json:"most_tokens"`
	LeastTokens    Entry           `json:"least_tokens"`
	MeanCost       float64         `json:"mean_cost"`
	CostRange      CostRange       `json:"cost_range"`
	MeanTokens     float64         `json:"mean_tokens"`
	TokenSpread    float64         `json:"token_spread"`
	ProviderStats  []ProviderStats `json:"provider_stats"`
}

// Compare reduces entries into a Report. Extremes use strict comparisons,
// so ties go to the first entry in input order. An empty set is an error.
func Compare(entries []Entry) (Report, error) {
	if len(entries) == 0 {
		return Report{}, domainErrors.ErrEmptyResultSet
	}

	first := entries[0]
	r := Report{
		CheapestInput:  first,
		CheapestOutput: first,
		Cheapest:       first,
		MostTokens:     first,
		LeastTokens:    first,
		CostRange:      CostRange{Min: first.TotalCost(), Max: first.TotalCost()},
	}

	type rollup struct {
		count  int
		cost   float64
		tokens int
	}
	rollups := make(map[string]*rollup)
	var providers []string

	costSum, tokenSum := 0.0, 0
	for _, e := range entries {
		total := e.TotalCost()
		costSum += total
		tokenSum += e.Result.TokenCount

		if e.Result.InputCost < r.CheapestInput.Result.InputCost {
			r.CheapestInput = e
		}
		if e.Result.OutputCost < r.CheapestOutput.Result.OutputCost {
			r.CheapestOutput = e
		}
		if total < r.Cheapest.TotalCost() {
			r.Cheapest = e
		}
		if e.Result.TokenCount > r.MostTokens.Result.TokenCount {
			r.MostTokens = e
		}
		if e.Result.TokenCount < r.LeastTokens.Result.TokenCount {
			r.LeastTokens = e
		}
		if total < r.CostRange.Min {
			r.CostRange.Min = total
		}
		if total > r.CostRange.Max {
			r.CostRange.Max = total
		}

		ru, ok := rollups[e.Model.Provider]
		if !ok {
			ru = &rollup{}
			rollups[e.Model.Provider] = ru
			providers = append(providers, e.Model.Provider)
		}
		ru.count++
		ru.cost += total
		ru.tokens += e.Result.TokenCount
	}

	n := float64(len(entries))
	r.MeanCost = costSum / n
	r.MeanTokens = float64(tokenSum) / n

	least := r.LeastTokens.Result.TokenCount
	if least > 0 {
		r.TokenSpread = float64(r.MostTokens.Result.TokenCount-least) / float64(least)
	}

	r.Entries = make([]Ranked, len(entries))
	for i, e := range entries {
		r.Entries[i] = Ranked{Entry: e, TotalCost: e.TotalCost()}
		if e.Result.TokenCount > 0 {
			r.Entries[i].RelativeEfficiency = float64(least) / float64(e.Result.TokenCount) * 100
		}
	}

	r.ProviderStats = make([]ProviderStats, 0, len(providers))
	for _, p := range providers {
		ru := rollups[p]
		r.ProviderStats = append(r.ProviderStats, ProviderStats{
			Provider:   p,
			Count:      ru.count,
			MeanCost:   ru.cost / float64(ru.count),
			MeanTokens: float64(ru.tokens) / float64(ru.count),
		})
	}
	return r, nil
}

// SortKey selects the ordering used by Sort.
type SortKey string

const (
	SortByTokens SortKey = "tokens"
	SortByInput  SortKey = "input"
	SortByOutput SortKey = "output"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByTokens, SortByInput, SortByOutput:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort key %q: expected tokens, input or output", s)
}

// Sort returns a copy of entries ordered ascending by key. Equal keys keep
// their input order. An unknown key leaves the order unchanged.
func Sort(entries []Entry, key SortKey) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	var less func(a, b Entry) bool
	switch key {
	case SortByTokens:
		less = func(a, b Entry) bool { return a.Result.TokenCount < b.Result.TokenCount }
	case SortByInput:
		less = func(a, b Entry) bool { return a.Result.InputCost < b.Result.InputCost }
	case SortByOutput:
		less = func(a, b Entry) bool { return a.Result.OutputCost < b.Result.OutputCost }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// FilterProvider returns the entries whose model belongs to p. An empty p
// returns every entry.
func FilterProvider(entries []Entry, p string) []Entry {
	if p == "" {
		out := make([]Entry, len(entries))
		copy(out, entries)
		return out
	}
	var out []Entry
	for _, e := range entries {
		if e.Model.Provider == p {
			out = append(out, e)
		}
	}
	return out
}
