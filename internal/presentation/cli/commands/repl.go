package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/application/analysis"
	"github.com/jbctechsolutions/tokenlens/internal/domain/encoding"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/metrics"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// NewReplCmd creates the repl command for interactive analysis.
func NewReplCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive analysis shell",
		Long: `Start an interactive shell. Every line you enter is tokenized on all
models, or on one model after /model.

Special commands:
  /model [id]     - Analyse on one model, or on all models without an id
  /models         - List model IDs
  /encode [fmt]   - Also encode every line, /encode off to stop
  /stats          - Text statistics of the last line
  /metrics        - Counters, cache statistics and run summary
  /help           - Show help message
  /quit, /exit    - Leave the shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := analysisService()
			if err != nil {
				return err
			}
			session := newReplSession(svc, GetFormatter())
			if model != "" {
				if _, err := session.handle(runContext(), "/model "+model); err != nil {
					return err
				}
			}
			return session.run(runContext())
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "start with one model selected")

	return cmd
}

// replSession is the state of one interactive shell.
type replSession struct {
	svc          *analysis.Service
	formatter    *output.Formatter
	model        string // empty means every model
	encodeFormat string // empty means no encoding
	last         string
}

func newReplSession(svc *analysis.Service, formatter *output.Formatter) *replSession {
	return &replSession{svc: svc, formatter: formatter}
}

// run reads lines until EOF or /quit.
func (s *replSession) run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tl> ",
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	s.formatter.Info("Type text to analyse it. Type /help for commands.")
	s.formatter.Println("")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				break
			}
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		exit, err := s.handle(ctx, line)
		if err != nil {
			s.formatter.Error("%s", err.Error())
			continue
		}
		if exit {
			break
		}
	}

	s.formatter.Info("Goodbye!")
	return nil
}

func (s *replSession) completer() *readline.PrefixCompleter {
	modelIDs := func(string) []string {
		models := s.svc.Catalog().All()
		ids := make([]string, 0, len(models))
		for _, m := range models {
			ids = append(ids, m.ID)
		}
		return ids
	}
	formats := func(string) []string {
		ids := []string{"off"}
		for _, f := range encoding.Formats() {
			ids = append(ids, f.ID)
		}
		return ids
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("/model", readline.PcItemDynamic(modelIDs)),
		readline.PcItem("/models"),
		readline.PcItem("/encode", readline.PcItemDynamic(formats)),
		readline.PcItem("/stats"),
		readline.PcItem("/metrics"),
		readline.PcItem("/help"),
		readline.PcItem("/quit"),
		readline.PcItem("/exit"),
	)
}

// handle processes one line. It returns true when the shell should exit.
func (s *replSession) handle(ctx context.Context, line string) (bool, error) {
	if strings.TrimSpace(line) == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return false, s.analyse(ctx, line)
	}

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch command {
	case "/quit", "/exit":
		return true, nil

	case "/help":
		s.help()
		return false, nil

	case "/model":
		if arg == "" {
			s.model = ""
			s.formatter.Success("Analysing on all models")
			return false, nil
		}
		m, err := s.svc.Catalog().Lookup(arg)
		if err != nil {
			return false, err
		}
		s.model = m.ID
		s.formatter.Success("Switched to model: %s (%s)", m.ID, s.svc.Estimator().Strategy(m))
		return false, nil

	case "/models":
		for _, m := range s.svc.Catalog().All() {
			s.formatter.BulletItem(fmt.Sprintf("%s %s", m.ID, s.formatter.Dim(m.Provider)))
		}
		return false, nil

	case "/encode":
		return false, s.setEncoding(ctx, arg)

	case "/stats":
		if s.last == "" {
			return false, domainErrors.NewError(domainErrors.CodeInput, "nothing analysed yet", domainErrors.ErrEmptyInput)
		}
		return false, renderStats(s.formatter, s.svc.Stats(ctx, s.last, 0))

	case "/metrics":
		return false, s.metrics(ctx)
	}

	return false, domainErrors.NewError(domainErrors.CodeValidation,
		fmt.Sprintf("unknown command: %s (type /help for help)", command), nil)
}

func (s *replSession) help() {
	s.formatter.Header("REPL Commands")
	s.formatter.Item("/model [id]", "Analyse on one model, or on all models without an id")
	s.formatter.Item("/models", "List model IDs")
	s.formatter.Item("/encode [fmt|off]", "Also encode every line")
	s.formatter.Item("/stats", "Text statistics of the last line")
	s.formatter.Item("/metrics", "Counters, cache statistics and run summary")
	s.formatter.Item("/help", "Show this help message")
	s.formatter.Item("/quit, /exit", "Leave the shell")
	s.formatter.Println("")
}

func (s *replSession) analyse(ctx context.Context, text string) error {
	s.last = text

	if s.model != "" {
		report, err := s.svc.Detail(ctx, text, s.model)
		if err != nil {
			return err
		}
		r := report.Result
		s.formatter.Println("%s %s tokens  %s  %s",
			s.formatter.Bold(report.Model.ID),
			strconv.Itoa(r.TokenCount),
			formatCost(report.Cost.TotalCost),
			s.formatter.Dim(strategyLabel(r.Strategy, r.Degraded)))
		s.formatter.Println("%s", tokenStrip(s.formatter, r.TokenStrings))
	} else {
		entries, err := s.svc.TokenizeAll(ctx, text, analysis.Selection{Sort: s.svc.DefaultSort()})
		if err != nil {
			return err
		}
		out := TokenizeOutput{Results: make([]TokenizeRow, 0, len(entries))}
		for _, e := range entries {
			out.Characters = e.Result.CharacterCount
			out.Words = e.Result.WordCount
			out.Results = append(out.Results, TokenizeRow{
				ModelID:    e.Model.ID,
				Provider:   e.Model.Provider,
				Strategy:   string(s.svc.Estimator().Strategy(e.Model)),
				Tokens:     e.Result.TokenCount,
				InputCost:  e.Result.InputCost,
				OutputCost: e.Result.OutputCost,
			})
		}
		if err := renderTokenizeTable(s.formatter, out); err != nil {
			return err
		}
	}

	if s.encodeFormat != "" {
		return s.encode(ctx, text)
	}
	s.formatter.Println("")
	return nil
}

func (s *replSession) setEncoding(ctx context.Context, format string) error {
	switch strings.ToLower(format) {
	case "":
		if s.encodeFormat == "" {
			s.formatter.Info("Encoding is off")
		} else {
			s.formatter.Info("Encoding every line as %s", s.encodeFormat)
		}
		return nil
	case "off":
		s.encodeFormat = ""
		s.formatter.Success("Encoding turned off")
		return nil
	}

	if check := encoding.Encode("", format); !check.Success {
		return domainErrors.NewError(domainErrors.CodeValidation, check.Error, domainErrors.ErrUnsupportedFormat)
	}
	s.encodeFormat = strings.ToLower(format)
	s.formatter.Success("Encoding every line as %s", s.encodeFormat)
	if s.last != "" {
		return s.encode(ctx, s.last)
	}
	return nil
}

func (s *replSession) encode(ctx context.Context, text string) error {
	r := s.svc.Encode(ctx, text, s.encodeFormat)
	if !r.Success {
		return domainErrors.NewError(domainErrors.CodeInput, r.Error, nil)
	}
	s.formatter.Println("%s %s", s.formatter.Dim(r.Format+":"), r.Content)
	s.formatter.Println("")
	return nil
}

func (s *replSession) metrics(ctx context.Context) error {
	s.formatter.SubHeader("Counters")
	if err := s.svc.WriteMetrics(s.formatter); err != nil {
		return err
	}
	s.formatter.Println("")

	stats := s.svc.CacheStats()
	s.formatter.SubHeader("Cache")
	if stats.Capacity == 0 {
		s.formatter.Item("Memo", "disabled")
	} else {
		s.formatter.Item("Entries", fmt.Sprintf("%d of %d", stats.Entries, stats.Capacity))
		s.formatter.Item("Hits", strconv.FormatInt(stats.Hits, 10))
		s.formatter.Item("Misses", strconv.FormatInt(stats.Misses, 10))
		s.formatter.Item("Evictions", strconv.FormatInt(stats.Evictions, 10))
		s.formatter.Item("Hit rate", fmt.Sprintf("%.1f%%", stats.HitRate*100))
	}
	s.formatter.Println("")

	summary, err := s.svc.Summary(ctx, metrics.TimePeriod{})
	if err != nil {
		return err
	}
	s.formatter.SubHeader("Session")
	s.formatter.Item("Runs", strconv.FormatInt(summary.Runs, 10))
	s.formatter.Item("Failed", strconv.FormatInt(summary.Failed, 10))
	s.formatter.Item("Tokens counted", strconv.FormatInt(summary.TotalTokens, 10))
	s.formatter.Item("BPE fallbacks", strconv.FormatInt(summary.Fallbacks, 10))
	s.formatter.Item("Average run", summary.AvgDuration.String())
	s.formatter.Println("")
	return nil
}

// tokenStrip joins tokens with a dim separator, whitespace made visible.
func tokenStrip(formatter *output.Formatter, tokens []string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = visible(t)
	}
	return strings.Join(parts, formatter.Dim("|"))
}
