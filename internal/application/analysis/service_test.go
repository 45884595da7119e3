package analysis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbctechsolutions/tokenlens/internal/adapters/cache"
	"github.com/jbctechsolutions/tokenlens/internal/application/observability"
	"github.com/jbctechsolutions/tokenlens/internal/domain/analytics"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/metrics"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/logging"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/storage"
)

// runeCodec is a fake BPE codec with one token per rune.
type runeCodec struct {
	err error
}

func (c runeCodec) Name() string { return "runes" }

func (c runeCodec) Encode(text string) ([]int, error) {
	if c.err != nil {
		return nil, c.err
	}
	var ids []int
	for _, r := range text {
		ids = append(ids, int(r))
	}
	return ids, nil
}

func (c runeCodec) Decode(ids []int) (string, error) {
	runes := make([]rune, len(ids))
	for i, id := range ids {
		runes[i] = rune(id)
	}
	return string(runes), nil
}

// countingCodec records how many times Encode runs.
type countingCodec struct {
	runeCodec
	calls *atomic.Int64
}

func (c countingCodec) Encode(text string) ([]int, error) {
	c.calls.Add(1)
	return c.runeCodec.Encode(text)
}

type fixture struct {
	service *Service
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, codec provider.BPECodec, cacheSize int) fixture {
	t.Helper()

	logs := &bytes.Buffer{}
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatText, Output: logs})

	cfg := Config{
		Estimator: tokenization.NewEstimator(codec),
		Observability: observability.NewService(observability.ServiceConfig{
			Logger: logger,
			Runs:   storage.NewRunRepository(100),
		}),
	}
	if cacheSize > 0 {
		memo, err := cache.NewMemoryCache(cacheSize)
		require.NoError(t, err)
		cfg.Memo = memo
	}
	return fixture{service: NewService(cfg), logs: logs}
}

func entryFor(t *testing.T, entries []analytics.Entry, id string) analytics.Entry {
	t.Helper()
	for _, e := range entries {
		if e.Model.ID == id {
			return e
		}
	}
	t.Fatalf("no entry for %s", id)
	return analytics.Entry{}
}

func TestNewService_Defaults(t *testing.T) {
	s := NewService(Config{})

	assert.Equal(t, provider.DefaultCatalog().Len(), s.Catalog().Len())
	assert.False(t, s.Estimator().HasBPE())
	assert.Equal(t, analytics.SortByTokens, s.DefaultSort())
	assert.Equal(t, 10, s.topN)
	assert.Positive(t, s.workers)
	assert.Zero(t, s.CacheStats())
}

func TestModels(t *testing.T) {
	s := NewService(Config{})

	tests := []struct {
		name     string
		provider string
		family   string
		want     int
	}{
		{"all", "", "", 15},
		{"by provider", "Anthropic", "", 3},
		{"by family", "", "gpt", 4},
		{"provider and family", "Google", "gemini", 3},
		{"no match", "Google", "claude", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models, err := s.Models(tt.provider, tt.family)
			require.NoError(t, err)
			assert.Len(t, models, tt.want)
		})
	}

	_, err := s.Models("", "palm")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrUnknownFamily)
}

func TestTokenizeAll(t *testing.T) {
	f := newFixture(t, runeCodec{}, 0)

	entries, err := f.service.TokenizeAll(context.Background(), "hello world", Selection{})
	require.NoError(t, err)
	require.Len(t, entries, 15)

	assert.Equal(t, "gpt-4o", entries[0].Model.ID, "catalog order is kept")
	assert.Equal(t, 11, entryFor(t, entries, "gpt-4o").Result.TokenCount, "BPE path counts runes")
	assert.Equal(t, 5, entryFor(t, entries, "claude-3-opus").Result.TokenCount)
	assert.Equal(t, 5, entryFor(t, entries, "command-r-plus").Result.TokenCount)

	for _, e := range entries {
		assert.Equal(t, e.Model.ID, e.Result.ModelID)
		assert.Equal(t, 11, e.Result.CharacterCount)
		assert.Equal(t, 2, e.Result.WordCount)
	}
}

func TestTokenizeAll_Selection(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	t.Run("explicit models keep their order", func(t *testing.T) {
		entries, err := f.service.TokenizeAll(ctx, "hi", Selection{ModelIDs: []string{"mistral-large", "gpt-4o"}})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "mistral-large", entries[0].Model.ID)
		assert.Equal(t, "gpt-4o", entries[1].Model.ID)
	})

	t.Run("provider filter", func(t *testing.T) {
		entries, err := f.service.TokenizeAll(ctx, "hi", Selection{Provider: "Meta"})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.Equal(t, "Meta", e.Model.Provider)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := f.service.TokenizeAll(ctx, "hi", Selection{Provider: "Nope"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domainErrors.ErrModelNotFound)
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := f.service.TokenizeAll(ctx, "hi", Selection{ModelIDs: []string{"gpt-5"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, domainErrors.ErrModelNotFound)
	})

	t.Run("sorted by input cost", func(t *testing.T) {
		entries, err := f.service.TokenizeAll(ctx, "some text to price", Selection{Sort: analytics.SortByInput})
		require.NoError(t, err)
		for i := 1; i < len(entries); i++ {
			assert.LessOrEqual(t, entries[i-1].Result.InputCost, entries[i].Result.InputCost)
		}
	})
}

func TestTokenizeAll_Cancelled(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.TokenizeAll(ctx, "hello", Selection{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	runs, err := f.service.obs.Runs(context.Background(), metrics.Filter{Status: metrics.StatusFailed})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestTokenizeAll_Memo(t *testing.T) {
	f := newFixture(t, runeCodec{}, 64)
	ctx := context.Background()

	first, err := f.service.TokenizeAll(ctx, "hello world", Selection{})
	require.NoError(t, err)
	second, err := f.service.TokenizeAll(ctx, "hello world", Selection{})
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Result.TokenCount, second[i].Result.TokenCount)
	}

	stats := f.service.CacheStats()
	assert.Equal(t, int64(15), stats.Hits)
	assert.Equal(t, int64(15), stats.Misses)
	assert.Equal(t, 15, stats.Entries)

	summary, err := f.service.Summary(ctx, metrics.TimePeriod{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Runs)
	assert.Equal(t, 0.5, summary.CacheHitRate)

	var buf bytes.Buffer
	require.NoError(t, f.service.WriteMetrics(&buf))
	assert.Contains(t, buf.String(), "tokenlens_cache_hits_total 15")
	assert.Contains(t, buf.String(), `tokenlens_tokenizations_total{strategy="bpe"} 4`)
	assert.Contains(t, buf.String(), `tokenlens_tokenizations_total{strategy="heuristic"} 11`)
}

func TestTokenizeAll_BPEFallback(t *testing.T) {
	f := newFixture(t, runeCodec{err: errors.New("vocabulary missing")}, 0)

	entries, err := f.service.TokenizeAll(context.Background(), "hello world", Selection{Provider: "OpenAI"})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.Equal(t, 5, e.Result.TokenCount, "heuristic result for %s", e.Model.ID)
	}

	summary, err := f.service.Summary(context.Background(), metrics.TimePeriod{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.Fallbacks)
	assert.Contains(t, f.logs.String(), "vocabulary missing")
}

func TestTokenizeAll_EncodesOncePerModel(t *testing.T) {
	tests := []struct {
		name  string
		codec runeCodec
	}{
		{"bpe", runeCodec{}},
		{"fallback", runeCodec{err: errors.New("vocabulary missing")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := &atomic.Int64{}
			f := newFixture(t, countingCodec{runeCodec: tt.codec, calls: calls}, 0)

			_, err := f.service.TokenizeAll(context.Background(), "hello world", Selection{Provider: "OpenAI"})
			require.NoError(t, err)
			assert.Equal(t, int64(4), calls.Load())
		})
	}
}

func TestDetail_MemoKeepsFallbackReason(t *testing.T) {
	f := newFixture(t, nil, 16)
	ctx := context.Background()

	first, err := f.service.Detail(ctx, "hello", "gpt-4o")
	require.NoError(t, err)
	second, err := f.service.Detail(ctx, "hello", "gpt-4o")
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.service.CacheStats().Hits)
	assert.Contains(t, first.FallbackReason, domainErrors.ErrTokenizerDisabled.Error())
	assert.Equal(t, first.FallbackReason, second.FallbackReason)
}

func TestTokenizeAll_DisabledBPEIsQuiet(t *testing.T) {
	f := newFixture(t, nil, 0)

	_, err := f.service.TokenizeAll(context.Background(), "hello", Selection{Provider: "OpenAI"})
	require.NoError(t, err)

	assert.NotContains(t, f.logs.String(), "level=WARN")
	assert.Contains(t, f.logs.String(), "bpe tokenizer disabled")
}

func TestDetail(t *testing.T) {
	f := newFixture(t, nil, 0)

	report, err := f.service.Detail(context.Background(), "hello world", "claude-3-opus")
	require.NoError(t, err)

	assert.Equal(t, "claude-3-opus", report.Model.ID)
	assert.Equal(t, []string{"hel", "lo", " ", "wor", "ld"}, report.Result.TokenStrings)
	assert.True(t, report.Result.Exact)
	assert.Equal(t, "hello world", report.Result.Reconstruct())
	require.Len(t, report.Tokens, 5)
	assert.Equal(t, 5, report.Analytics.TotalTokens)
	assert.Equal(t, 5, report.Cost.Tokens)
	assert.InDelta(t, 5*0.015/1000, report.Cost.InputCost, 1e-12)
	assert.True(t, report.FitsContext)
	assert.Empty(t, report.FallbackReason)
}

func TestDetail_Degraded(t *testing.T) {
	f := newFixture(t, nil, 0)

	report, err := f.service.Detail(context.Background(), "hello", "gpt-4o")
	require.NoError(t, err)

	assert.True(t, report.Result.Degraded)
	assert.Equal(t, provider.StrategyHeuristic, report.Result.Strategy)
	assert.Contains(t, report.FallbackReason, domainErrors.ErrTokenizerDisabled.Error())
}

func TestDetail_UnknownModel(t *testing.T) {
	f := newFixture(t, nil, 0)

	_, err := f.service.Detail(context.Background(), "hello", "nope")
	require.Error(t, err)

	var tlErr *domainErrors.TokenlensError
	require.True(t, errors.As(err, &tlErr))
	assert.Equal(t, domainErrors.CodeNotFound, tlErr.Code)
}

func TestDetail_MemoReturnsCopies(t *testing.T) {
	f := newFixture(t, nil, 8)
	ctx := context.Background()

	first, err := f.service.Detail(ctx, "a b", "claude-3-haiku")
	require.NoError(t, err)
	first.Result.TokenStrings[0] = "mutated"

	second, err := f.service.Detail(ctx, "a b", "claude-3-haiku")
	require.NoError(t, err)
	assert.Equal(t, "a", second.Result.TokenStrings[0])
	assert.Equal(t, int64(1), f.service.CacheStats().Hits)
}

func TestCompare(t *testing.T) {
	f := newFixture(t, runeCodec{}, 0)

	cmp, err := f.service.Compare(context.Background(), "hello world", []string{"gpt-4o", "claude-3-opus"})
	require.NoError(t, err)

	require.Len(t, cmp.Results, 2)
	assert.Equal(t, "claude-3-opus", cmp.BestEfficiency.ModelID)
	assert.Equal(t, "gpt-4o", cmp.WorstEfficiency.ModelID)
	assert.InDelta(t, 8.0, cmp.AverageTokenCount, 1e-9)
	assert.InDelta(t, 9.0, cmp.TokenCountVariance, 1e-9)
}

func TestCompare_AllModels(t *testing.T) {
	f := newFixture(t, nil, 0)

	cmp, err := f.service.Compare(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Len(t, cmp.Results, 15)
}

func TestReport(t *testing.T) {
	f := newFixture(t, nil, 0)

	report, err := f.service.Report(context.Background(), "the quick brown fox", Selection{})
	require.NoError(t, err)

	assert.Len(t, report.Entries, 15)
	assert.Equal(t, "gemini-1.5-flash", report.Cheapest.Model.ID)
	assert.NotEmpty(t, report.ProviderStats)
}

func TestStatsAndCharacters(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	stats := f.service.Stats(ctx, "aab", 0)
	assert.Equal(t, 3, stats.TotalCharacters)
	assert.Equal(t, 2, stats.UniqueCharacters)
	require.NotEmpty(t, stats.TopCharacters)
	assert.Equal(t, "a", stats.TopCharacters[0].Char)

	limited := f.service.Stats(ctx, "abcdef", 2)
	assert.Len(t, limited.TopCharacters, 2)

	chars := f.service.Characters(ctx, "aab")
	require.Len(t, chars, 2)
	assert.Equal(t, 'a', chars[0].CodePoint)
	assert.Equal(t, 2, chars[0].Frequency)
}

func TestEncodeDecodeConvert(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	enc := f.service.Encode(ctx, "Hi", "hex")
	require.True(t, enc.Success)
	assert.Equal(t, "48 69", enc.Content)

	dec := f.service.Decode(ctx, enc.Content, "hex")
	require.True(t, dec.Success)
	assert.Equal(t, "Hi", dec.Content)

	bad := f.service.Decode(ctx, "4", "hex")
	assert.False(t, bad.Success)
	assert.NotEmpty(t, bad.Error)

	conv := f.service.Convert(ctx, "line one\nline two", "csv")
	require.True(t, conv.Success)
	assert.True(t, strings.HasPrefix(conv.Content, "Line,Content"))

	runs, err := f.service.obs.Runs(ctx, metrics.Filter{})
	require.NoError(t, err)
	assert.Len(t, runs, 4)
}
