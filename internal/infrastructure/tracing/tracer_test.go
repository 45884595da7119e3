package tracing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func stdoutTracer(t *testing.T, buf *bytes.Buffer) *Tracer {
	t.Helper()
	tracer, err := New(context.Background(), Config{
		Enabled:      true,
		ExporterType: ExporterStdout,
		ServiceName:  "test-service",
		Environment:  "test",
		SampleRate:   1.0,
		Output:       buf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tracer
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Enabled {
		t.Error("expected tracing to be disabled by default")
	}
	if cfg.ExporterType != ExporterNone {
		t.Errorf("expected exporter type 'none', got %s", cfg.ExporterType)
	}
	if cfg.ServiceName != "tokenlens" {
		t.Errorf("expected service name 'tokenlens', got %s", cfg.ServiceName)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.SampleRate)
	}
}

func TestNew_Disabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"disabled", Config{Enabled: false, ExporterType: ExporterStdout}},
		{"none exporter", Config{Enabled: true, ExporterType: ExporterNone}},
		{"empty exporter", Config{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tracer.Enabled() {
				t.Error("expected no-op tracer")
			}

			_, span := tracer.Start(context.Background(), "test-span")
			span.End()

			if err := tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() on no-op tracer: %v", err)
			}
		})
	}
}

func TestNew_UnsupportedExporter(t *testing.T) {
	_, err := New(context.Background(), Config{Enabled: true, ExporterType: "jaeger"})
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
	if !strings.Contains(err.Error(), "unsupported exporter type") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_StdoutExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	tracer := stdoutTracer(t, buf)
	defer tracer.Shutdown(context.Background())

	if !tracer.Enabled() {
		t.Error("expected enabled tracer to have a provider")
	}
}

func TestAnalysisSpan(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	tracer := stdoutTracer(t, buf)

	ctx, as := tracer.StartAnalysisSpan(ctx, "tokenize_all", 11)
	as.SetModelCount(15)
	as.SetTotalTokens(48)
	as.SetCacheStats(3, 12)
	as.End()

	tracer.Shutdown(ctx)

	out := buf.String()
	if !strings.Contains(out, "analysis.tokenize_all") {
		t.Errorf("expected span name in output, got %q", out)
	}
	if !strings.Contains(out, "analysis.model_count") {
		t.Errorf("expected model count attribute in output")
	}
}

func TestAnalysisSpan_Error(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	tracer := stdoutTracer(t, buf)

	ctx, as := tracer.StartAnalysisSpan(ctx, "detail", 5)
	as.EndWithError(errors.New("model not found"))

	tracer.Shutdown(ctx)

	if !strings.Contains(buf.String(), "model not found") {
		t.Error("expected recorded error in trace output")
	}
}

func TestModelSpan(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	tracer := stdoutTracer(t, buf)

	ctx, as := tracer.StartAnalysisSpan(ctx, "tokenize_all", 11)
	mctx, ms := tracer.StartModelSpan(ctx, "gpt-4o", "OpenAI")
	ms.SetResult("heuristic", 3)
	ms.SetCacheHit(false)
	ms.SetFallback("vocabulary missing")
	ms.End()
	as.End()

	if !SpanFromContext(mctx).SpanContext().IsValid() {
		t.Error("expected a valid model span context")
	}

	tracer.Shutdown(ctx)

	out := buf.String()
	for _, want := range []string{"tokenize.model", "gpt-4o", "bpe.fallback"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in trace output", want)
		}
	}
}

func TestDefault(t *testing.T) {
	global = nil

	tracer := Default()
	if tracer == nil {
		t.Fatal("expected non-nil default tracer")
	}

	_, span := tracer.Start(context.Background(), "test")
	span.End()
}

func TestSpanHelpers(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	tracer := stdoutTracer(t, buf)

	ctx, span := tracer.Start(ctx, "test-span")

	AddEvent(ctx, "test-event")
	RecordError(ctx, errors.New("test error"))
	SetAttribute(ctx, "string-attr", "value")
	SetAttribute(ctx, "int-attr", 42)
	SetAttribute(ctx, "int64-attr", int64(100))
	SetAttribute(ctx, "float-attr", 3.14)
	SetAttribute(ctx, "bool-attr", true)

	span.End()
	tracer.Shutdown(ctx)

	if buf.Len() == 0 {
		t.Error("expected trace output to be written")
	}
}

func TestSamplers(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
	}{
		{"always sample", 1.0},
		{"never sample", 0.0},
		{"ratio sample", 0.5},
		{"above max", 1.5},
		{"below min", -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sampler(tt.sampleRate) == nil {
				t.Fatal("expected a sampler")
			}

			tracer, err := New(context.Background(), Config{
				Enabled:      true,
				ExporterType: ExporterStdout,
				ServiceName:  "test-service",
				SampleRate:   tt.sampleRate,
				Output:       &bytes.Buffer{},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tracer.Shutdown(context.Background())
		})
	}
}
