// Package observability integrates structured logging, Prometheus counters,
// tracing and run records into analysis operations.
package observability

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/tokenlens/internal/application/ports"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/metrics"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/logging"
	promMetrics "github.com/jbctechsolutions/tokenlens/internal/infrastructure/metrics"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/tracing"
)

// Service provides observability features for analysis operations.
type Service struct {
	logger    *logging.Logger
	tracer    *tracing.Tracer
	collector *promMetrics.Collector
	runs      ports.RunStoragePort
}

// ServiceConfig holds configuration for the observability service.
type ServiceConfig struct {
	Logger    *logging.Logger
	Tracer    *tracing.Tracer
	Collector *promMetrics.Collector
	Runs      ports.RunStoragePort
}

// NewService creates a new observability service. Missing pieces get
// defaults; a nil Runs disables run records.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracing.Default()
	}

	collector := cfg.Collector
	if collector == nil {
		collector = promMetrics.NewCollector(nil)
	}

	return &Service{
		logger:    logger,
		tracer:    tracer,
		collector: collector,
		runs:      cfg.Runs,
	}
}

// Logger returns the service logger.
func (s *Service) Logger() *logging.Logger {
	return s.logger
}

// Collector returns the Prometheus collector.
func (s *Service) Collector() *promMetrics.Collector {
	return s.collector
}

// WriteMetrics writes a snapshot of the Prometheus counters to w.
func (s *Service) WriteMetrics(w io.Writer) error {
	return s.collector.WriteText(w)
}

// Summary aggregates the recorded runs within period. It returns an empty
// summary when run records are disabled.
func (s *Service) Summary(ctx context.Context, period metrics.TimePeriod) (*metrics.Summary, error) {
	if s.runs == nil {
		return metrics.NewSummary(period), nil
	}
	return s.runs.GetSummary(ctx, period)
}

// Runs returns the recorded runs matching filter.
func (s *Service) Runs(ctx context.Context, filter metrics.Filter) ([]metrics.RunRecord, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.GetRuns(ctx, filter)
}

// AnalysisObserver provides observability for one analysis run.
type AnalysisObserver struct {
	service       *Service
	mu            sync.Mutex // guards record
	record        metrics.RunRecord
	correlationID string
	span          *tracing.AnalysisSpan
}

// StartAnalysis begins observing an operation over a text of characters runes.
func (s *Service) StartAnalysis(ctx context.Context, operation string, models, characters int) (context.Context, *AnalysisObserver) {
	ctx = logging.EnsureCorrelationID(ctx)
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	logging.LogAnalysisStart(ctx, s.logger, operation, models, characters)

	ctx, span := s.tracer.StartAnalysisSpan(ctx, operation, characters)
	span.SetModelCount(models)

	return ctx, &AnalysisObserver{
		service:       s,
		correlationID: logging.CorrelationID(ctx),
		span:          span,
		record: metrics.RunRecord{
			ID:         runID,
			Operation:  operation,
			Characters: characters,
			ModelCount: models,
			StartedAt:  time.Now(),
		},
	}
}

// RunID returns the ID of the observed run.
func (ao *AnalysisObserver) RunID() string {
	return ao.record.ID
}

// CorrelationID returns the correlation ID of the observed run.
func (ao *AnalysisObserver) CorrelationID() string {
	return ao.correlationID
}

// ModelObserver provides observability for tokenizing with one model.
type ModelObserver struct {
	analysis  *AnalysisObserver
	model     provider.Model
	startTime time.Time
	span      *tracing.ModelSpan
}

// StartModel begins observing tokenization with model.
func (ao *AnalysisObserver) StartModel(ctx context.Context, model provider.Model) (context.Context, *ModelObserver) {
	ctx = logging.WithModel(ctx, model.ID)
	ctx = logging.WithProvider(ctx, model.Provider)
	ctx, span := ao.service.tracer.StartModelSpan(ctx, model.ID, model.Provider)

	return ctx, &ModelObserver{
		analysis:  ao,
		model:     model,
		startTime: time.Now(),
		span:      span,
	}
}

// Outcome describes how a model's tokenization went.
type Outcome struct {
	Strategy provider.Strategy
	Tokens   int
	Cost     float64
	CacheHit bool
	Degraded bool
	Reason   error // why BPE was not used, when Degraded
}

// Complete ends the model observation. Observers of the same analysis may
// complete concurrently.
func (mo *ModelObserver) Complete(ctx context.Context, out Outcome) {
	s := mo.analysis.service
	elapsed := time.Since(mo.startTime)

	if out.CacheHit {
		s.collector.RecordCacheHit()
		logging.LogCacheHit(ctx, s.logger, mo.model.ID, out.Tokens)
	} else {
		s.collector.RecordCacheMiss()
		s.collector.RecordTokenization(string(out.Strategy), elapsed, out.Degraded)
	}

	if out.Degraded {
		switch {
		case out.CacheHit:
		case errors.Is(out.Reason, domainErrors.ErrTokenizerDisabled):
			s.logger.DebugContext(ctx, "bpe tokenizer disabled, using heuristic", "model_id", mo.model.ID)
		default:
			logging.LogBPEFallback(ctx, s.logger, mo.model.ID, out.Reason)
		}
		reason := "unknown"
		if out.Reason != nil {
			reason = out.Reason.Error()
		}
		mo.span.SetFallback(reason)
	}

	mo.span.SetResult(string(out.Strategy), out.Tokens)
	mo.span.SetCacheHit(out.CacheHit)
	mo.span.End()

	ao := mo.analysis
	ao.mu.Lock()
	defer ao.mu.Unlock()

	if out.CacheHit {
		ao.record.CacheHits++
	} else {
		ao.record.CacheMisses++
	}
	if out.Degraded {
		ao.record.Fallbacks++
	}
	ao.record.TotalTokens += out.Tokens
	ao.record.Models = append(ao.record.Models, metrics.ModelRecord{
		ModelID:  mo.model.ID,
		Provider: mo.model.Provider,
		Strategy: string(out.Strategy),
		Tokens:   out.Tokens,
		Cost:     out.Cost,
		CacheHit: out.CacheHit,
		Degraded: out.Degraded,
		Duration: elapsed,
	})
}

// Complete ends the analysis observation with success.
func (ao *AnalysisObserver) Complete(ctx context.Context) {
	s := ao.service
	ao.finish(metrics.StatusCompleted, "")

	logging.LogAnalysisComplete(ctx, s.logger, ao.record.Operation, ao.record.Duration, ao.record.TotalTokens)

	ao.span.SetTotalTokens(ao.record.TotalTokens)
	ao.span.SetCacheStats(ao.record.CacheHits, ao.record.CacheMisses)
	ao.span.End()

	ao.save(ctx)
}

// Fail ends the analysis observation with an error.
func (ao *AnalysisObserver) Fail(ctx context.Context, err error) {
	s := ao.service
	ao.finish(metrics.StatusFailed, err.Error())

	s.logger.ErrorContext(ctx, "analysis failed",
		"operation", ao.record.Operation,
		"error", err,
		"duration_ms", ao.record.Duration.Milliseconds(),
	)

	ao.span.EndWithError(err)
	ao.save(ctx)
}

func (ao *AnalysisObserver) finish(status, message string) {
	ao.mu.Lock()
	defer ao.mu.Unlock()

	now := time.Now()
	ao.record.Status = status
	ao.record.ErrorMessage = message
	ao.record.CompletedAt = now
	ao.record.Duration = now.Sub(ao.record.StartedAt)
	ao.record.CorrelationID = ao.correlationID
}

func (ao *AnalysisObserver) save(ctx context.Context) {
	if ao.service.runs == nil {
		return
	}
	if err := ao.service.runs.SaveRun(ctx, &ao.record); err != nil {
		ao.service.logger.ErrorContext(ctx, "failed to save run record",
			"error", err,
			"run_id", ao.record.ID,
		)
	}
}
