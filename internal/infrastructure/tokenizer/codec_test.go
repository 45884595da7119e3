package tokenizer

import (
	"strings"
	"testing"

	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
)

func backends(t *testing.T) map[string]provider.BPECodec {
	t.Helper()

	embedded, err := NewEmbedded(DefaultEncoding)
	if err != nil {
		t.Fatalf("NewEmbedded() error: %v", err)
	}
	tik, err := NewTikToken(DefaultEncoding)
	if err != nil {
		t.Fatalf("NewTikToken() error: %v", err)
	}
	return map[string]provider.BPECodec{
		BackendEmbedded: embedded,
		BackendTikToken: tik,
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		wantNil  bool
		wantErr  bool
		wantName string
	}{
		{name: "default backend", backend: "", wantName: "embedded/cl100k_base"},
		{name: "embedded", backend: "embedded", wantName: "embedded/cl100k_base"},
		{name: "tiktoken", backend: "TikToken", wantName: "tiktoken/cl100k_base"},
		{name: "none", backend: "none", wantNil: true},
		{name: "unknown", backend: "sentencepiece", wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := New(tt.backend, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if (codec == nil) != tt.wantNil {
				t.Fatalf("New(%q) codec = %v, wantNil %v", tt.backend, codec, tt.wantNil)
			}
			if codec != nil && codec.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", codec.Name(), tt.wantName)
			}
		})
	}
}

func TestNewEmbedded_UnknownEncoding(t *testing.T) {
	if _, err := NewEmbedded("no_such_encoding"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestCodec_Encode(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		minTokens int
		maxTokens int
	}{
		{name: "empty string", text: "", minTokens: 0, maxTokens: 0},
		{name: "single word", text: "hello", minTokens: 1, maxTokens: 2},
		{name: "simple sentence", text: "Hello, world!", minTokens: 3, maxTokens: 6},
		{name: "longer text", text: "The quick brown fox jumps over the lazy dog.", minTokens: 8, maxTokens: 15},
		{name: "code snippet", text: "func main() { fmt.Println(\"Hello, World!\") }", minTokens: 10, maxTokens: 25},
		{name: "json data", text: `{"name": "test", "value": 123, "nested": {"key": "value"}}`, minTokens: 15, maxTokens: 40},
	}

	for backend, codec := range backends(t) {
		for _, tt := range tests {
			t.Run(backend+"/"+tt.name, func(t *testing.T) {
				ids, err := codec.Encode(tt.text)
				if err != nil {
					t.Fatalf("Encode(%q) error: %v", tt.text, err)
				}
				if len(ids) < tt.minTokens || len(ids) > tt.maxTokens {
					t.Errorf("Encode(%q) = %d tokens, expected between %d and %d",
						tt.text, len(ids), tt.minTokens, tt.maxTokens)
				}
			})
		}
	}
}

func TestCodec_DecodeRoundTrip(t *testing.T) {
	text := "Round trip: naïve café, 日本語, and emoji 😀."

	for backend, codec := range backends(t) {
		t.Run(backend, func(t *testing.T) {
			ids, err := codec.Encode(text)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			got, err := codec.Decode(ids)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got != text {
				t.Errorf("Decode(Encode(text)) = %q, want %q", got, text)
			}
		})
	}
}

func TestBackends_Agree(t *testing.T) {
	text := "Both backends load the same cl100k_base vocabulary."
	codecs := backends(t)

	a, _ := codecs[BackendEmbedded].Encode(text)
	b, _ := codecs[BackendTikToken].Encode(text)
	if len(a) != len(b) {
		t.Fatalf("token counts differ: embedded=%d tiktoken=%d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("token %d differs: embedded=%d tiktoken=%d", i, a[i], b[i])
		}
	}
}

func TestCodec_WithEstimator(t *testing.T) {
	codec, err := New(BackendEmbedded, DefaultEncoding)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	model, _ := provider.DefaultCatalog().Get("gpt-4o")
	est := tokenization.NewEstimator(codec)

	text := "The quick brown fox jumps over the lazy dog."
	result := est.Tokenize(text, model)

	if result.Strategy != provider.StrategyBPE {
		t.Errorf("Strategy = %q, want bpe", result.Strategy)
	}
	if result.Degraded {
		t.Error("expected a non-degraded result")
	}
	if !result.Exact || result.Reconstruct() != text {
		t.Errorf("expected token strings to reconstruct the text, got %q", strings.Join(result.TokenStrings, "|"))
	}
}

func TestTikToken_ThreadSafety(t *testing.T) {
	codec, err := NewTikToken(DefaultEncoding)
	if err != nil {
		t.Fatalf("NewTikToken() error: %v", err)
	}

	text := "Thread safety test text."
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_, _ = codec.Encode(text)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
