package analytics

import (
	"errors"
	"math"
	"slices"
	"testing"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
)

func entry(id, prov string, tokens int, in, out float64) Entry {
	return Entry{
		Model: provider.Model{ID: id, Provider: prov},
		Result: tokenization.TokenizationResult{
			ModelID:    id,
			TokenCount: tokens,
			InputCost:  in,
			OutputCost: out,
		},
	}
}

func ids(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Model.ID
	}
	return out
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCompare(t *testing.T) {
	entries := []Entry{
		entry("a", "X", 10, 0.5, 0.5),
		entry("b", "Y", 20, 1.0, 1.0),
		entry("c", "X", 5, 2.0, 1.0),
	}

	r, err := Compare(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !approxEqual(r.MeanCost, 2.0) {
		t.Errorf("mean cost = %v, want 2", r.MeanCost)
	}
	if want := (CostRange{Min: 1, Max: 3}); r.CostRange != want {
		t.Errorf("cost range = %+v, want %+v", r.CostRange, want)
	}

	picks := []struct {
		name string
		got  string
		want string
	}{
		{"cheapest", r.Cheapest.Model.ID, "a"},
		{"cheapest input", r.CheapestInput.Model.ID, "a"},
		{"cheapest output", r.CheapestOutput.Model.ID, "a"},
		{"most tokens", r.MostTokens.Model.ID, "b"},
		{"least tokens", r.LeastTokens.Model.ID, "c"},
	}
	for _, p := range picks {
		if p.got != p.want {
			t.Errorf("%s = %s, want %s", p.name, p.got, p.want)
		}
	}

	if !approxEqual(r.MeanTokens, 35.0/3.0) {
		t.Errorf("mean tokens = %v, want 35/3", r.MeanTokens)
	}
	if !approxEqual(r.TokenSpread, 3.0) {
		t.Errorf("token spread = %v, want 3", r.TokenSpread)
	}

	if len(r.Entries) != 3 {
		t.Fatalf("expected 3 ranked entries, got %d", len(r.Entries))
	}
	if !approxEqual(r.Entries[0].RelativeEfficiency, 50.0) || !approxEqual(r.Entries[2].RelativeEfficiency, 100.0) {
		t.Errorf("relative efficiency = %v, %v, want 50, 100", r.Entries[0].RelativeEfficiency, r.Entries[2].RelativeEfficiency)
	}
	if !approxEqual(r.Entries[2].TotalCost, 3.0) {
		t.Errorf("total cost = %v, want 3", r.Entries[2].TotalCost)
	}

	if len(r.ProviderStats) != 2 {
		t.Fatalf("expected 2 provider rollups, got %d", len(r.ProviderStats))
	}
	if want := (ProviderStats{Provider: "X", Count: 2, MeanCost: 2, MeanTokens: 7.5}); r.ProviderStats[0] != want {
		t.Errorf("provider X = %+v, want %+v", r.ProviderStats[0], want)
	}
	if r.ProviderStats[1].Provider != "Y" {
		t.Errorf("expected Y second, got %s", r.ProviderStats[1].Provider)
	}
}

func TestCompare_TiesGoToFirstEntry(t *testing.T) {
	entries := []Entry{
		entry("first", "X", 10, 1, 1),
		entry("second", "X", 10, 1, 1),
	}

	r, err := Compare(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, got := range []string{r.Cheapest.Model.ID, r.CheapestInput.Model.ID, r.MostTokens.Model.ID, r.LeastTokens.Model.ID} {
		if got != "first" {
			t.Errorf("expected ties to keep first, got %s", got)
		}
	}
	if r.TokenSpread != 0 {
		t.Errorf("expected zero spread, got %v", r.TokenSpread)
	}
}

func TestCompare_ZeroTokens(t *testing.T) {
	r, err := Compare([]Entry{entry("a", "X", 0, 0, 0), entry("b", "Y", 0, 0, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.TokenSpread != 0 || r.Entries[0].RelativeEfficiency != 0 {
		t.Errorf("expected zero spread and efficiency, got %v, %v", r.TokenSpread, r.Entries[0].RelativeEfficiency)
	}
}

func TestCompare_Empty(t *testing.T) {
	if _, err := Compare(nil); !errors.Is(err, domainErrors.ErrEmptyResultSet) {
		t.Errorf("expected ErrEmptyResultSet, got %v", err)
	}
}

func TestSort(t *testing.T) {
	entries := []Entry{
		entry("a", "X", 30, 0.3, 0.1),
		entry("b", "X", 10, 0.3, 0.3),
		entry("c", "X", 20, 0.1, 0.2),
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByTokens, []string{"b", "c", "a"}},
		// Equal input cost keeps catalog order.
		{SortByInput, []string{"c", "a", "b"}},
		{SortByOutput, []string{"a", "c", "b"}},
		{"bogus", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := ids(Sort(entries, tt.key)); !slices.Equal(got, tt.want) {
				t.Errorf("Sort(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	if got := ids(entries); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("input was modified: %v", got)
	}
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("input")
	if err != nil || k != SortByInput {
		t.Errorf("ParseSortKey(input) = %v, %v", k, err)
	}

	if _, err := ParseSortKey("price"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestFilterProvider(t *testing.T) {
	entries := []Entry{
		entry("a", "X", 1, 0, 0),
		entry("b", "Y", 1, 0, 0),
		entry("c", "X", 1, 0, 0),
	}

	if got := ids(FilterProvider(entries, "X")); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("filter X = %v, want [a c]", got)
	}
	if got := FilterProvider(entries, ""); len(got) != 3 {
		t.Errorf("empty filter kept %d entries, want 3", len(got))
	}
	if got := FilterProvider(entries, "Z"); len(got) != 0 {
		t.Errorf("filter Z = %v, want none", ids(got))
	}
}

func TestCompare_DefaultCatalog(t *testing.T) {
	est := tokenization.NewEstimator(nil)
	text := "Comparing every model in the default catalog."

	var entries []Entry
	for _, m := range provider.DefaultCatalog().All() {
		entries = append(entries, Entry{Model: m, Result: est.Count(text, m)})
	}

	r, err := Compare(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Cheapest.Model.ID != "gemini-1.5-flash" {
		t.Errorf("cheapest = %s, want gemini-1.5-flash", r.Cheapest.Model.ID)
	}
	if got, want := len(r.ProviderStats), len(provider.DefaultCatalog().Providers()); got != want {
		t.Errorf("provider rollups = %d, want %d", got, want)
	}
	if r.CostRange.Min > r.MeanCost || r.CostRange.Max < r.MeanCost {
		t.Errorf("mean %v outside range %+v", r.MeanCost, r.CostRange)
	}
}
