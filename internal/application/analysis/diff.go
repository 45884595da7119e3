package analysis

import (
	"context"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp marks which side of a boundary diff a segment belongs to.
type DiffOp string

const (
	DiffEqual DiffOp = "equal"
	DiffOnlyA DiffOp = "only_a"
	DiffOnlyB DiffOp = "only_b"
)

// DiffSegment is a run of tokens with the same DiffOp.
type DiffSegment struct {
	Op     DiffOp   `json:"op"`
	Tokens []string `json:"tokens"`
}

// BoundaryDiff compares where two models place token boundaries in the
// same text.
type BoundaryDiff struct {
	ModelA     string        `json:"model_a"`
	ModelB     string        `json:"model_b"`
	TokensA    int           `json:"tokens_a"`
	TokensB    int           `json:"tokens_b"`
	Shared     int           `json:"shared"`
	Similarity float64       `json:"similarity"` // 2*shared/(tokens_a+tokens_b)
	Segments   []DiffSegment `json:"segments"`
}

// Diff tokenizes text on two models and diffs the token sequences.
func (s *Service) Diff(ctx context.Context, text, modelA, modelB string) (*BoundaryDiff, error) {
	a, err := s.catalog.Lookup(modelA)
	if err != nil {
		return nil, err
	}
	b, err := s.catalog.Lookup(modelB)
	if err != nil {
		return nil, err
	}

	ctx, obs := s.obs.StartAnalysis(ctx, "diff", 2, utf8.RuneCountInString(text))
	ra := s.tokenize(ctx, obs, text, a)
	rb := s.tokenize(ctx, obs, text, b)
	obs.Complete(ctx)

	d := DiffTokens(ra.TokenStrings, rb.TokenStrings)
	d.ModelA = a.ID
	d.ModelB = b.ID
	return d, nil
}

// DiffTokens diffs two token sequences token by token. Each distinct token
// is mapped to one rune so the character diff works at token granularity.
func DiffTokens(a, b []string) *BoundaryDiff {
	d := &BoundaryDiff{TokensA: len(a), TokensB: len(b)}
	if len(a) == 0 && len(b) == 0 {
		d.Similarity = 1
		return d
	}

	vocab := newTokenVocab()
	ra := vocab.encode(a)
	rb := vocab.encode(b)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	for _, diff := range dmp.DiffMainRunes(ra, rb, false) {
		tokens := vocab.decode(diff.Text)
		if len(tokens) == 0 {
			continue
		}
		op := DiffEqual
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffOnlyA
		case diffmatchpatch.DiffInsert:
			op = DiffOnlyB
		default:
			d.Shared += len(tokens)
		}

		if n := len(d.Segments); n > 0 && d.Segments[n-1].Op == op {
			d.Segments[n-1].Tokens = append(d.Segments[n-1].Tokens, tokens...)
			continue
		}
		d.Segments = append(d.Segments, DiffSegment{Op: op, Tokens: tokens})
	}

	d.Similarity = 2 * float64(d.Shared) / float64(len(a)+len(b))
	return d
}

// tokenVocab assigns each distinct token a valid, non-surrogate rune.
type tokenVocab struct {
	ids    map[string]rune
	tokens []string
}

func newTokenVocab() *tokenVocab {
	return &tokenVocab{ids: make(map[string]rune)}
}

const surrogateMin, surrogateMax = 0xD800, 0xDFFF

func (v *tokenVocab) id(token string) rune {
	if r, ok := v.ids[token]; ok {
		return r
	}
	r := rune(len(v.tokens) + 1)
	if r >= surrogateMin {
		r += surrogateMax - surrogateMin + 1
	}
	v.ids[token] = r
	v.tokens = append(v.tokens, token)
	return r
}

func (v *tokenVocab) index(r rune) int {
	if r > surrogateMax {
		r -= surrogateMax - surrogateMin + 1
	}
	return int(r) - 1
}

func (v *tokenVocab) encode(tokens []string) []rune {
	out := make([]rune, len(tokens))
	for i, t := range tokens {
		out[i] = v.id(t)
	}
	return out
}

func (v *tokenVocab) decode(s string) []string {
	var out []string
	for _, r := range s {
		out = append(out, v.tokens[v.index(r)])
	}
	return out
}
