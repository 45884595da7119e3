// Package commands implements the CLI commands for tokenlens.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/application"
	"github.com/jbctechsolutions/tokenlens/internal/application/analysis"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/infrastructure/config"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// Version information - set at build time via ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GlobalFlags holds the global CLI flags.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	Verbose    bool
}

// AppContext holds the application runtime context.
type AppContext struct {
	Config     *config.Config
	Formatter  *output.Formatter
	Flags      *GlobalFlags
	Container  *application.Container
	ctx        context.Context
	cancelFunc context.CancelFunc
}

var (
	globalFlags GlobalFlags
	appCtx      *AppContext
	appCtxMu    sync.RWMutex // Protects appCtx for thread-safe access
)

// NewRootCmd creates the root command for the tokenlens CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tl",
		Short: "tokenlens - multi-model token counting and text analysis",
		Long: `tokenlens (tl) estimates how many tokens a text costs on popular LLMs.

It counts tokens for every model in its catalog, prices the result,
compares models against each other and breaks the text down by character.

Key features:
  • Exact BPE counts for GPT models, calibrated estimates for the rest
  • Per-model input and output cost with cheapest-model analytics
  • Token boundary diffs between two models
  • Character statistics, encodings and document conversion`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help, version, and completion commands
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			return initializeApp(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "config file path (default: ~/.tokenlens/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", "text", "output format: text, json, table")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "enable verbose output")

	// Analysis
	rootCmd.AddCommand(NewModelsCmd())
	rootCmd.AddCommand(NewTokenizeCmd())
	rootCmd.AddCommand(NewDetailCmd())
	rootCmd.AddCommand(NewCompareCmd())
	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewCharsCmd())

	// Encodings and conversion
	rootCmd.AddCommand(NewEncodeCmd())
	rootCmd.AddCommand(NewDecodeCmd())
	rootCmd.AddCommand(NewConvertCmd())

	rootCmd.AddCommand(NewReplCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeApp initializes the application context.
func initializeApp(cmd *cobra.Command) error {
	format, err := output.ParseFormat(globalFlags.Output)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeValidation,
			fmt.Sprintf("invalid output format %q (valid options: text, json, table)", globalFlags.Output), err)
	}

	formatter := output.NewFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	cfg, err := loadConfig(globalFlags.ConfigFile)
	if err != nil {
		// An explicit --config must load; the default location is optional.
		if globalFlags.ConfigFile != "" {
			return err
		}
		if globalFlags.Verbose {
			formatter.Warning("Could not load config: %v, using defaults", err)
		}
		cfg = config.NewDefaultConfig()
	}

	container, err := application.NewContainer(cfg, globalFlags.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	appCtxMu.Lock()
	previous := appCtx
	appCtx = &AppContext{
		Config:     cfg,
		Formatter:  formatter,
		Flags:      &globalFlags,
		Container:  container,
		ctx:        ctx,
		cancelFunc: cancel,
	}
	appCtxMu.Unlock()

	if previous != nil {
		previous.close()
	}
	return nil
}

// loadConfig loads configuration from the specified file or default location.
func loadConfig(configPath string) (*config.Config, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}

	if configPath != "" {
		return loader.LoadFromFile(configPath)
	}
	return loader.Load("")
}

// GetAppContext returns the current application context.
// Returns nil if the app hasn't been initialized.
func GetAppContext() *AppContext {
	appCtxMu.RLock()
	defer appCtxMu.RUnlock()
	return appCtx
}

// GetFormatter returns the output formatter.
// Creates a default formatter if app context is not initialized.
func GetFormatter() *output.Formatter {
	if ctx := GetAppContext(); ctx != nil {
		return ctx.Formatter
	}
	return output.NewFormatter(output.WithColor(output.IsColorSupported()))
}

// GetContainer returns the application container.
// Returns nil if the app hasn't been initialized.
func GetContainer() *application.Container {
	if ctx := GetAppContext(); ctx != nil {
		return ctx.Container
	}
	return nil
}

// analysisService returns the analysis service of the initialized app.
func analysisService() (*analysis.Service, error) {
	container := GetContainer()
	if container == nil {
		return nil, domainErrors.NewError(domainErrors.CodeConfiguration, "application not initialized", nil)
	}
	return container.AnalysisService(), nil
}

// runContext returns the cancellable context of the current invocation.
func runContext() context.Context {
	if ctx := GetAppContext(); ctx != nil && ctx.ctx != nil {
		return ctx.ctx
	}
	return context.Background()
}

func (a *AppContext) close() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	if a.Container != nil {
		_ = a.Container.Close()
	}
}

// Shutdown performs graceful shutdown of the application.
// Cancels the context, flushes traces and closes the log file.
func Shutdown() {
	appCtxMu.Lock()
	current := appCtx
	appCtx = nil
	appCtxMu.Unlock()

	if current != nil {
		current.close()
	}
}

// Execute runs the root command with graceful shutdown support.
func Execute() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		rootCmd := NewRootCmd()
		errChan <- rootCmd.Execute()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			formatter := GetFormatter()
			formatter.Error("%s", err.Error())
			Shutdown()
			os.Exit(exitCode(err))
		}
	case sig := <-sigChan:
		formatter := GetFormatter()
		formatter.Warning("Received signal %v, shutting down...", sig)
		Shutdown()
		os.Exit(130) // Standard exit code for SIGINT
	}

	Shutdown()
}

// exitCode maps coded errors to process exit codes: 2 for usage and input
// problems, 1 for everything else.
func exitCode(err error) int {
	var tlErr *domainErrors.TokenlensError
	if domainErrors.As(err, &tlErr) {
		switch tlErr.Code {
		case domainErrors.CodeValidation, domainErrors.CodeInput:
			return 2
		}
	}
	return 1
}
