// Package tokenizer provides byte-pair encoding backends for the token
// estimator. Both backends work offline: vocabularies are compiled into the
// binary or loaded from an embedded loader, never downloaded.
package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"github.com/tiktoken-go/tokenizer"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
)

// Backend names accepted by New.
const (
	BackendEmbedded = "embedded"
	BackendTikToken = "tiktoken"
	BackendNone     = "none"
)

// DefaultEncoding is the vocabulary used when none is configured.
const DefaultEncoding = "cl100k_base"

var loaderOnce sync.Once

// Backends lists the valid backend names.
func Backends() []string {
	return []string{BackendEmbedded, BackendTikToken, BackendNone}
}

// New returns the codec for backend with the named encoding. BackendNone
// returns a nil codec and no error so callers fall back to heuristics.
func New(backend, encoding string) (provider.BPECodec, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	switch strings.ToLower(backend) {
	case "", BackendEmbedded:
		codec, err := NewEmbedded(encoding)
		if err != nil {
			return nil, err
		}
		return codec, nil
	case BackendTikToken:
		codec, err := NewTikToken(encoding)
		if err != nil {
			return nil, err
		}
		return codec, nil
	case BackendNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown tokenizer backend %q", backend)
}

// Embedded wraps github.com/tiktoken-go/tokenizer, whose vocabularies are
// compiled into the binary.
type Embedded struct {
	codec    tokenizer.Codec
	encoding string
}

var _ provider.BPECodec = (*Embedded)(nil)

// NewEmbedded loads the embedded vocabulary for encoding.
func NewEmbedded(encoding string) (*Embedded, error) {
	codec, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrTokenizerFailed, err)
	}
	return &Embedded{codec: codec, encoding: encoding}, nil
}

// Name returns the backend and encoding, e.g. "embedded/cl100k_base".
func (e *Embedded) Name() string {
	return BackendEmbedded + "/" + e.encoding
}

// Encode returns the token ids of text.
func (e *Embedded) Encode(text string) ([]int, error) {
	ids, _, err := e.codec.Encode(text)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out, nil
}

// Decode returns the text of ids. Negative ids are rejected.
func (e *Embedded) Decode(ids []int) (string, error) {
	in := make([]uint, len(ids))
	for i, id := range ids {
		if id < 0 {
			return "", fmt.Errorf("invalid token id %d", id)
		}
		in[i] = uint(id)
	}
	return e.codec.Decode(in)
}

// TikToken wraps github.com/pkoukk/tiktoken-go with the offline BPE loader.
type TikToken struct {
	enc      *tiktoken.Tiktoken
	encoding string
	mu       sync.RWMutex
}

var _ provider.BPECodec = (*TikToken)(nil)

// NewTikToken loads encoding through the offline loader.
func NewTikToken(encoding string) (*TikToken, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrTokenizerFailed, err)
	}
	return &TikToken{enc: enc, encoding: encoding}, nil
}

// Name returns the backend and encoding, e.g. "tiktoken/cl100k_base".
func (t *TikToken) Name() string {
	return BackendTikToken + "/" + t.encoding
}

// Encode returns the token ids of text. This method is thread-safe.
func (t *TikToken) Encode(text string) ([]int, error) {
	if text == "" {
		return []int{}, nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enc.Encode(text, nil, nil), nil
}

// Decode returns the text of ids.
func (t *TikToken) Decode(ids []int) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enc.Decode(ids), nil
}
