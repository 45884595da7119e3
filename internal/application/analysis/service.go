// Package analysis is the instrumented facade the CLI and REPL talk to.
// It selects models from the catalog, memoizes tokenizations and reports
// every run through the observability service.
package analysis

import (
	"context"
	"io"
	"runtime"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jbctechsolutions/tokenlens/internal/application/observability"
	"github.com/jbctechsolutions/tokenlens/internal/application/ports"
	"github.com/jbctechsolutions/tokenlens/internal/domain/analytics"
	"github.com/jbctechsolutions/tokenlens/internal/domain/conversion"
	"github.com/jbctechsolutions/tokenlens/internal/domain/encoding"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/metrics"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
	"github.com/jbctechsolutions/tokenlens/internal/domain/textstats"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
)

// Service runs analyses over text.
type Service struct {
	catalog   *provider.Catalog
	estimator *tokenization.Estimator
	obs       *observability.Service
	memo      ports.ResultCachePort
	topN      int
	sortKey   analytics.SortKey
	workers   int
}

// Config holds the dependencies of a Service.
type Config struct {
	Catalog       *provider.Catalog
	Estimator     *tokenization.Estimator
	Observability *observability.Service
	Memo          ports.ResultCachePort // nil disables memoization
	TopCharacters int
	DefaultSort   analytics.SortKey
	Workers       int // concurrent tokenizations, defaults to GOMAXPROCS
}

// NewService creates a Service. Nil dependencies get defaults: the built-in
// catalog, a heuristic-only estimator and a default observability service.
func NewService(cfg Config) *Service {
	s := &Service{
		catalog:   cfg.Catalog,
		estimator: cfg.Estimator,
		obs:       cfg.Observability,
		memo:      cfg.Memo,
		topN:      cfg.TopCharacters,
		sortKey:   cfg.DefaultSort,
		workers:   cfg.Workers,
	}
	if s.catalog == nil {
		s.catalog = provider.DefaultCatalog()
	}
	if s.estimator == nil {
		s.estimator = tokenization.NewEstimator(nil)
	}
	if s.obs == nil {
		s.obs = observability.NewService(observability.ServiceConfig{})
	}
	if s.topN <= 0 {
		s.topN = textstats.DefaultTopN
	}
	if s.sortKey == "" {
		s.sortKey = analytics.SortByTokens
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// Catalog returns the model catalog.
func (s *Service) Catalog() *provider.Catalog {
	return s.catalog
}

// Estimator returns the token estimator.
func (s *Service) Estimator() *tokenization.Estimator {
	return s.estimator
}

// DefaultSort returns the configured sort key.
func (s *Service) DefaultSort() analytics.SortKey {
	return s.sortKey
}

// Models lists catalog models, optionally narrowed by provider and family.
func (s *Service) Models(providerName, family string) ([]provider.Model, error) {
	models := s.catalog.All()
	if providerName != "" {
		models = s.catalog.ByProvider(providerName)
	}
	if family != "" {
		f, err := provider.ParseFamily(family)
		if err != nil {
			return nil, domainErrors.NewError(domainErrors.CodeValidation, "invalid family", err)
		}
		var out []provider.Model
		for _, m := range models {
			if m.Family == f {
				out = append(out, m)
			}
		}
		models = out
	}
	return models, nil
}

// Selection picks the models an analysis runs over.
type Selection struct {
	ModelIDs []string          // explicit models, in order; empty means all
	Provider string            // keep only this provider
	Sort     analytics.SortKey // result order; empty keeps catalog order
}

func (s *Service) selectModels(sel Selection) ([]provider.Model, error) {
	var models []provider.Model
	if len(sel.ModelIDs) > 0 {
		for _, id := range sel.ModelIDs {
			m, err := s.catalog.Lookup(id)
			if err != nil {
				return nil, err
			}
			models = append(models, m)
		}
	} else {
		models = s.catalog.All()
	}

	if sel.Provider == "" {
		return models, nil
	}

	var out []provider.Model
	for _, m := range models {
		if m.Provider == sel.Provider {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, domainErrors.NotFound("provider", sel.Provider, domainErrors.ErrModelNotFound)
	}
	return out, nil
}

// TokenizeAll counts text on every selected model. Results follow catalog
// (or ModelIDs) order unless sel.Sort is set.
func (s *Service) TokenizeAll(ctx context.Context, text string, sel Selection) ([]analytics.Entry, error) {
	models, err := s.selectModels(sel)
	if err != nil {
		return nil, err
	}

	ctx, obs := s.obs.StartAnalysis(ctx, "tokenize_all", len(models), utf8.RuneCountInString(text))

	entries := make([]analytics.Entry, len(models))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, m := range models {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = analytics.Entry{
				Model:  m,
				Result: s.count(gctx, obs, text, m),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		obs.Fail(ctx, err)
		return nil, err
	}
	obs.Complete(ctx)

	if sel.Sort != "" {
		entries = analytics.Sort(entries, sel.Sort)
	}
	return entries, nil
}

// count runs the count path for one model through the memo.
func (s *Service) count(ctx context.Context, obs *observability.AnalysisObserver, text string, m provider.Model) tokenization.TokenizationResult {
	mctx, mo := obs.StartModel(ctx, m)
	key := ports.NewMemoKey(m.ID, text, false)

	if s.memo != nil {
		if cached, ok := s.memo.Get(key); ok {
			mo.Complete(mctx, outcome(cached, true))
			return cached.TokenizationResult
		}
	}

	result := s.estimator.Measure(text, m)
	if s.memo != nil {
		s.memo.Add(key, result)
	}
	mo.Complete(mctx, outcome(result, false))
	return result.TokenizationResult
}

// tokenize runs the detailed path for one model through the memo.
func (s *Service) tokenize(ctx context.Context, obs *observability.AnalysisObserver, text string, m provider.Model) tokenization.DetailedTokenizationResult {
	mctx, mo := obs.StartModel(ctx, m)
	key := ports.NewMemoKey(m.ID, text, true)

	if s.memo != nil {
		if cached, ok := s.memo.Get(key); ok {
			mo.Complete(mctx, outcome(cached, true))
			return cached
		}
	}

	result := s.estimator.Tokenize(text, m)
	if s.memo != nil {
		s.memo.Add(key, result)
	}
	mo.Complete(mctx, outcome(result, false))
	return result
}

func outcome(r tokenization.DetailedTokenizationResult, hit bool) observability.Outcome {
	return observability.Outcome{
		Strategy: r.Strategy,
		Tokens:   r.TokenCount,
		Cost:     r.InputCost,
		CacheHit: hit,
		Degraded: r.Degraded,
		Reason:   r.Fallback,
	}
}

// DetailReport is the full tokenization of text on one model.
type DetailReport struct {
	Model          provider.Model                          `json:"model"`
	Result         tokenization.DetailedTokenizationResult `json:"result"`
	Tokens         []tokenization.TokenInfo                `json:"tokens"`
	Analytics      tokenization.TokenAnalytics             `json:"analytics"`
	Cost           provider.CostBreakdown                  `json:"cost"`
	FitsContext    bool                                    `json:"fits_context"`
	FallbackReason string                                  `json:"fallback_reason,omitempty"`
}

// Detail tokenizes text on modelID and analyses the resulting tokens.
func (s *Service) Detail(ctx context.Context, text, modelID string) (*DetailReport, error) {
	m, err := s.catalog.Lookup(modelID)
	if err != nil {
		return nil, err
	}

	ctx, obs := s.obs.StartAnalysis(ctx, "detail", 1, utf8.RuneCountInString(text))
	result := s.tokenize(ctx, obs, text, m)
	obs.Complete(ctx)

	infos := tokenization.TokenInfos(result)
	report := &DetailReport{
		Model:       m,
		Result:      result,
		Tokens:      infos,
		Analytics:   tokenization.Analyze(infos),
		Cost:        provider.CalculateCost(m, result.TokenCount),
		FitsContext: m.FitsContext(result.TokenCount),
	}
	if result.Fallback != nil {
		report.FallbackReason = result.Fallback.Error()
	}
	return report, nil
}

// Compare tokenizes text in detail on each model and summarizes efficiency.
// An empty modelIDs compares every catalog model.
func (s *Service) Compare(ctx context.Context, text string, modelIDs []string) (tokenization.Comparison, error) {
	models, err := s.selectModels(Selection{ModelIDs: modelIDs})
	if err != nil {
		return tokenization.Comparison{}, err
	}

	ctx, obs := s.obs.StartAnalysis(ctx, "compare", len(models), utf8.RuneCountInString(text))
	results := make([]tokenization.DetailedTokenizationResult, 0, len(models))
	for _, m := range models {
		results = append(results, s.tokenize(ctx, obs, text, m))
	}

	comparison, err := tokenization.Compare(results)
	if err != nil {
		obs.Fail(ctx, err)
		return tokenization.Comparison{}, err
	}
	obs.Complete(ctx)
	return comparison, nil
}

// Report tokenizes text on the selected models and builds the cost report.
func (s *Service) Report(ctx context.Context, text string, sel Selection) (analytics.Report, error) {
	entries, err := s.TokenizeAll(ctx, text, sel)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Compare(entries)
}

// Stats computes text statistics. topN <= 0 uses the configured default.
func (s *Service) Stats(ctx context.Context, text string, topN int) textstats.TextStatistics {
	if topN <= 0 {
		topN = s.topN
	}
	ctx, obs := s.obs.StartAnalysis(ctx, "stats", 0, utf8.RuneCountInString(text))
	stats := textstats.Compute(text, topN)
	obs.Complete(ctx)
	return stats
}

// Characters describes every distinct character of text, most frequent first.
func (s *Service) Characters(ctx context.Context, text string) []textstats.CharacterAnalysis {
	ctx, obs := s.obs.StartAnalysis(ctx, "characters", 0, utf8.RuneCountInString(text))
	chars := textstats.AnalyzeCharacters(text)
	obs.Complete(ctx)
	return chars
}

// Encode renders text in format.
func (s *Service) Encode(ctx context.Context, text, format string) encoding.Result {
	return s.codec(ctx, "encode", text, func() encoding.Result { return encoding.Encode(text, format) })
}

// Decode parses content in format back to text.
func (s *Service) Decode(ctx context.Context, content, format string) encoding.Result {
	return s.codec(ctx, "decode", content, func() encoding.Result { return encoding.Decode(content, format) })
}

// codec observes an encode or decode. Malformed input is a failure value,
// not a failed run.
func (s *Service) codec(ctx context.Context, op, input string, run func() encoding.Result) encoding.Result {
	ctx, obs := s.obs.StartAnalysis(ctx, op, 0, utf8.RuneCountInString(input))
	result := run()
	obs.Complete(ctx)
	return result
}

// Convert renders text as a structured document in format.
func (s *Service) Convert(ctx context.Context, text, format string) conversion.Result {
	ctx, obs := s.obs.StartAnalysis(ctx, "convert", 0, utf8.RuneCountInString(text))
	result := conversion.Convert(text, format)
	obs.Complete(ctx)
	return result
}

// CacheStats returns memo statistics. The zero value means memoization is off.
func (s *Service) CacheStats() ports.CacheStats {
	if s.memo == nil {
		return ports.CacheStats{}
	}
	return s.memo.Stats()
}

// WriteMetrics writes the Prometheus counters to w.
func (s *Service) WriteMetrics(w io.Writer) error {
	return s.obs.WriteMetrics(w)
}

// Summary aggregates the recorded runs within period.
func (s *Service) Summary(ctx context.Context, period metrics.TimePeriod) (*metrics.Summary, error) {
	return s.obs.Summary(ctx, period)
}
