// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"fmt"

	"github.com/jbctechsolutions/tokenlens/internal/adapters/cache"
	"github.com/jbctechsolutions/tokenlens/internal/application/analysis"
	"github.com/jbctechsolutions/tokenlens/internal/application/observability"
	"github.com/jbctechsolutions/tokenlens/internal/application/ports"
	"github.com/jbctechsolutions/tokenlens/internal/domain/analytics"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/config"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/logging"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/metrics"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/storage"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order.
type Container struct {
	config  *config.Config
	verbose bool // Override log level to debug when true

	// Observability
	logger               *logging.Logger
	tracer               *tracing.Tracer
	collector            *metrics.Collector
	runRepo              ports.RunStoragePort
	observabilityService *observability.Service

	// Domain
	catalog        *provider.Catalog
	costCalculator *provider.CostCalculator
	codec          provider.BPECodec
	estimator      *tokenization.Estimator

	// Application services
	memo            *cache.MemoryCache
	analysisService *analysis.Service
}

// NewContainer creates a new dependency injection container with all services
// initialized based on the provided configuration.
func NewContainer(cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := &Container{
		config:  cfg,
		verbose: verbose,
	}

	if err := c.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	if err := c.initCatalog(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	c.initTokenizer()

	if err := c.initServices(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return c, nil
}

// initObservability sets up the logger, tracer, Prometheus collector and
// run history.
func (c *Container) initObservability() error {
	ctx := context.Background()

	logLevel := logging.Level(c.config.Logging.Level)
	if logLevel == "" {
		logLevel = logging.LevelWarn
	}
	if c.verbose {
		logLevel = logging.LevelDebug
	}

	logFormat := logging.FormatText
	if c.config.Logging.Format == "json" {
		logFormat = logging.FormatJSON
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logLevel
	logCfg.Format = logFormat
	logCfg.File = c.config.Logging.File
	logCfg.MaxSizeMB = c.config.Logging.MaxSizeMB
	logCfg.MaxBackups = c.config.Logging.MaxBackups
	c.logger = logging.New(logCfg)

	if c.config.Tracing.Enabled {
		tracer, err := tracing.New(ctx, tracing.Config{
			Enabled:      true,
			ExporterType: tracing.ExporterType(c.config.Tracing.ExporterType),
			OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
			ServiceName:  c.config.Tracing.ServiceName,
			Environment:  "production",
			SampleRate:   c.config.Tracing.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("failed to create tracer: %w", err)
		}
		c.tracer = tracer
	} else {
		c.tracer = tracing.Default()
	}

	c.collector = metrics.NewCollector(nil)
	c.runRepo = storage.NewRunRepository(storage.DefaultRunCapacity)

	c.observabilityService = observability.NewService(observability.ServiceConfig{
		Logger:    c.logger,
		Tracer:    c.tracer,
		Collector: c.collector,
		Runs:      c.runRepo,
	})

	return nil
}

// initCatalog loads the model table, from file when one is configured.
func (c *Container) initCatalog() error {
	catalog, err := config.LoadCatalog(c.config.Catalog.File)
	if err != nil {
		return err
	}
	c.catalog = catalog
	c.costCalculator = provider.NewCostCalculator(catalog)
	return nil
}

// initTokenizer attaches the configured BPE backend. A backend that cannot
// be built leaves BPE-backed models on the heuristic.
func (c *Container) initTokenizer() {
	codec, err := tokenizer.New(c.config.Tokenizer.Backend, c.config.Tokenizer.Encoding)
	if err != nil {
		c.logger.Warn("bpe tokenizer unavailable, using heuristic",
			"backend", c.config.Tokenizer.Backend,
			"encoding", c.config.Tokenizer.Encoding,
			"error", err,
		)
	}
	c.codec = codec
	c.estimator = tokenization.NewEstimator(codec)
}

// initServices builds the memo and the analysis service.
func (c *Container) initServices() error {
	var memo ports.ResultCachePort
	if size := c.config.Tokenizer.CacheSize; size > 0 {
		mc, err := cache.NewMemoryCache(size)
		if err != nil {
			return err
		}
		c.memo = mc
		memo = mc
	}

	sortKey, err := analytics.ParseSortKey(c.config.Analysis.DefaultSort)
	if err != nil {
		sortKey = analytics.SortByTokens
	}

	c.analysisService = analysis.NewService(analysis.Config{
		Catalog:       c.catalog,
		Estimator:     c.estimator,
		Observability: c.observabilityService,
		Memo:          memo,
		TopCharacters: c.config.Analysis.TopCharacters,
		DefaultSort:   sortKey,
	})
	return nil
}

// Close flushes traces and releases the log file.
func (c *Container) Close() error {
	ctx := context.Background()

	if c.tracer != nil {
		_ = c.tracer.Shutdown(ctx)
	}

	if c.logger != nil {
		return c.logger.Close()
	}
	return nil
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the application tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}

// Collector returns the Prometheus collector.
func (c *Container) Collector() *metrics.Collector {
	return c.collector
}

// RunRepository returns the run history.
func (c *Container) RunRepository() ports.RunStoragePort {
	return c.runRepo
}

// ObservabilityService returns the observability service.
func (c *Container) ObservabilityService() *observability.Service {
	return c.observabilityService
}

// Catalog returns the model catalog.
func (c *Container) Catalog() *provider.Catalog {
	return c.catalog
}

// CostCalculator returns the cost calculator bound to the catalog.
func (c *Container) CostCalculator() *provider.CostCalculator {
	return c.costCalculator
}

// Codec returns the BPE capability, or nil when BPE-backed models use the
// heuristic.
func (c *Container) Codec() provider.BPECodec {
	return c.codec
}

// Estimator returns the token estimator.
func (c *Container) Estimator() *tokenization.Estimator {
	return c.estimator
}

// Memo returns the tokenization memo, or nil when it is disabled.
func (c *Container) Memo() *cache.MemoryCache {
	return c.memo
}

// AnalysisService returns the analysis service.
func (c *Container) AnalysisService() *analysis.Service {
	return c.analysisService
}
