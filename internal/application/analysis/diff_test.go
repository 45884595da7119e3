package analysis

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
)

// side rebuilds one input sequence from the diff segments.
func side(d *BoundaryDiff, keep DiffOp) []string {
	var out []string
	for _, seg := range d.Segments {
		if seg.Op == DiffEqual || seg.Op == keep {
			out = append(out, seg.Tokens...)
		}
	}
	return out
}

func TestDiffTokens(t *testing.T) {
	tests := []struct {
		name       string
		a, b       []string
		shared     int
		similarity float64
		ops        []DiffOp
	}{
		{
			name:       "identical",
			a:          []string{"hel", "lo"},
			b:          []string{"hel", "lo"},
			shared:     2,
			similarity: 1,
			ops:        []DiffOp{DiffEqual},
		},
		{
			name:       "one token replaced",
			a:          []string{"a", "b", "c"},
			b:          []string{"a", "x", "c"},
			shared:     2,
			similarity: 4.0 / 6.0,
			ops:        []DiffOp{DiffEqual, DiffOnlyA, DiffOnlyB, DiffEqual},
		},
		{
			name:       "disjoint",
			a:          []string{"hell", "o"},
			b:          []string{"hel", "lo"},
			shared:     0,
			similarity: 0,
		},
		{
			name:       "one side empty",
			a:          nil,
			b:          []string{"x"},
			shared:     0,
			similarity: 0,
			ops:        []DiffOp{DiffOnlyB},
		},
		{
			name:       "both empty",
			shared:     0,
			similarity: 1,
		},
		{
			name:       "tokens with newlines",
			a:          []string{"a", "\n", "b"},
			b:          []string{"a", "\n\n", "b"},
			shared:     2,
			similarity: 4.0 / 6.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DiffTokens(tt.a, tt.b)

			assert.Equal(t, len(tt.a), d.TokensA)
			assert.Equal(t, len(tt.b), d.TokensB)
			assert.Equal(t, tt.shared, d.Shared)
			assert.InDelta(t, tt.similarity, d.Similarity, 1e-9)
			assert.Equal(t, tt.a, side(d, DiffOnlyA))
			assert.Equal(t, tt.b, side(d, DiffOnlyB))

			if tt.ops != nil {
				var ops []DiffOp
				for _, seg := range d.Segments {
					ops = append(ops, seg.Op)
				}
				assert.Equal(t, tt.ops, ops)
			}
		})
	}
}

func TestDiffTokens_LargeVocabulary(t *testing.T) {
	// Enough distinct tokens to cross the surrogate range.
	n := 0xD800 + 10
	a := make([]string, n)
	for i := range a {
		a[i] = string(rune('a'+i%26)) + string(rune(0x4E00+i%1000)) + strconv.Itoa(i)
	}
	b := append([]string(nil), a...)
	b[n-1] = "changed"

	d := DiffTokens(a, b)

	assert.Equal(t, n-1, d.Shared)
	assert.Equal(t, a, side(d, DiffOnlyA))
	assert.Equal(t, b, side(d, DiffOnlyB))
}

func TestDiff(t *testing.T) {
	f := newFixture(t, nil, 0)

	d, err := f.service.Diff(context.Background(), "hello world", "claude-3-opus", "llama-3.1-70b")
	require.NoError(t, err)

	assert.Equal(t, "claude-3-opus", d.ModelA)
	assert.Equal(t, "llama-3.1-70b", d.ModelB)
	assert.Equal(t, []string{"hel", "lo", " ", "wor", "ld"}, side(d, DiffOnlyA))
	assert.Equal(t, []string{"hell", "o", " ", "worl", "d"}, side(d, DiffOnlyB))
	assert.Equal(t, 1, d.Shared)
}

func TestDiff_UnknownModel(t *testing.T) {
	f := newFixture(t, nil, 0)

	_, err := f.service.Diff(context.Background(), "x", "gpt-4o", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrModelNotFound)
}
