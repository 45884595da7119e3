// Package tokenization estimates how many tokens a text costs on a model.
//
// BPE-backed families are delegated to a provider.BPECodec; every other
// family, and any BPE failure, goes through the deterministic whitespace-run
// segmenter calibrated by the family's characters-per-token constant.
package tokenization

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
)

// Estimator dispatches tokenization per model family.
// It holds no mutable state and is safe for concurrent use as long as the
// BPE capability is.
type Estimator struct {
	bpe provider.BPECodec
}

// NewEstimator creates an Estimator. bpe may be nil, in which case BPE-backed
// families use the heuristic segmenter.
func NewEstimator(bpe provider.BPECodec) *Estimator {
	return &Estimator{bpe: bpe}
}

// HasBPE reports whether a BPE capability is attached.
func (e *Estimator) HasBPE() bool {
	return e.bpe != nil
}

// segmentation is the raw output of one strategy.
type segmentation struct {
	ids      []int
	pieces   []string
	strategy provider.Strategy
	exact    bool
	fallback error // set when a BPE-backed model used the heuristic
}

// Tokenize produces the full token sequence and costs for text on model.
func (e *Estimator) Tokenize(text string, model provider.Model) DetailedTokenizationResult {
	start := time.Now()
	seg := e.segment(text, model.Profile(), true)
	elapsed := time.Since(start)

	r := e.detail(text, model, seg, elapsed)
	r.Tokens = seg.ids
	r.TokenStrings = seg.pieces
	r.Exact = seg.exact
	return r
}

// Measure counts text on model like Count and also reports the strategy
// that ran and, when it degraded, why. Tokens and TokenStrings are empty.
func (e *Estimator) Measure(text string, model provider.Model) DetailedTokenizationResult {
	start := time.Now()
	seg := e.segment(text, model.Profile(), false)
	return e.detail(text, model, seg, time.Since(start))
}

// Count produces the token count and costs for text on model without
// rendering token strings.
func (e *Estimator) Count(text string, model provider.Model) TokenizationResult {
	return e.Measure(text, model).TokenizationResult
}

// CountAll runs Count for every model, preserving model order.
func (e *Estimator) CountAll(text string, models []provider.Model) []TokenizationResult {
	results := make([]TokenizationResult, 0, len(models))
	for _, m := range models {
		results = append(results, e.Count(text, m))
	}
	return results
}

// Strategy returns the strategy that would actually run for model, taking
// a missing BPE capability into account.
func (e *Estimator) Strategy(model provider.Model) provider.Strategy {
	if model.Profile().Strategy == provider.StrategyBPE && e.bpe != nil {
		return provider.StrategyBPE
	}
	return provider.StrategyHeuristic
}

func (e *Estimator) detail(text string, model provider.Model, seg segmentation, elapsed time.Duration) DetailedTokenizationResult {
	tokens := len(seg.ids)
	chars := utf8.RuneCountInString(text)
	cost := provider.CalculateCost(model, tokens)
	return DetailedTokenizationResult{
		TokenizationResult: TokenizationResult{
			ModelID:        model.ID,
			TokenCount:     tokens,
			CharacterCount: chars,
			WordCount:      CountWords(text),
			InputCost:      cost.InputCost,
			OutputCost:     cost.OutputCost,
			ProcessingTime: elapsed,
		},
		Efficiency:       Efficiency(chars, tokens),
		CompressionRatio: CompressionRatio(chars, tokens),
		Strategy:         seg.strategy,
		Degraded:         seg.fallback != nil,
		Fallback:         seg.fallback,
	}
}

func (e *Estimator) segment(text string, profile provider.FamilyProfile, withStrings bool) segmentation {
	if profile.Strategy == provider.StrategyBPE {
		seg, err := e.bpeSegment(text, withStrings)
		if err == nil {
			return seg
		}
		fallback := heuristicSegment(text, profile.CharsPerToken)
		fallback.fallback = err
		return fallback
	}
	return heuristicSegment(text, profile.CharsPerToken)
}

func heuristicSegment(text string, charsPerToken float64) segmentation {
	pieces := Segment(text, charsPerToken)
	ids := make([]int, len(pieces))
	for i := range ids {
		ids[i] = i
	}
	return segmentation{
		ids:      ids,
		pieces:   pieces,
		strategy: provider.StrategyHeuristic,
		exact:    true,
	}
}

// bpeSegment runs the external capability. Panics inside the capability
// are converted to errors.
func (e *Estimator) bpeSegment(text string, withStrings bool) (seg segmentation, err error) {
	if e.bpe == nil {
		return segmentation{}, domainErrors.ErrTokenizerDisabled
	}
	if !utf8.ValidString(text) {
		return segmentation{}, domainErrors.ErrInvalidUTF8
	}

	defer func() {
		if r := recover(); r != nil {
			seg = segmentation{}
			err = fmt.Errorf("%w: %s: %v", domainErrors.ErrTokenizerFailed, e.bpe.Name(), r)
		}
	}()

	ids, err := e.bpe.Encode(text)
	if err != nil {
		return segmentation{}, fmt.Errorf("%w: %s: %v", domainErrors.ErrTokenizerFailed, e.bpe.Name(), err)
	}
	if text != "" && len(ids) == 0 {
		return segmentation{}, fmt.Errorf("%w: %s returned no tokens", domainErrors.ErrTokenizerFailed, e.bpe.Name())
	}

	seg = segmentation{ids: ids, strategy: provider.StrategyBPE}
	if !withStrings {
		return seg, nil
	}

	seg.pieces = make([]string, len(ids))
	for i, id := range ids {
		piece, decodeErr := e.bpe.Decode([]int{id})
		if decodeErr != nil {
			piece = fmt.Sprintf("<%d>", id)
		}
		seg.pieces[i] = piece
	}
	seg.exact = strings.Join(seg.pieces, "") == text
	return seg, nil
}
