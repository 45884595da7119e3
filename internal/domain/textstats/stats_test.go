package textstats

import (
	"math"
	"testing"
)

func TestCompute_Counts(t *testing.T) {
	text := "Hello world. How are you?\nFine!\n\n\nNew paragraph here"

	s := Compute(text, 0)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"total characters", s.TotalCharacters, len([]rune(text))},
		{"bytes", s.Bytes, len(text)},
		{"words", s.Words, 9},
		{"lines", s.Lines, 5},
		{"sentences", s.Sentences, 4},
		{"paragraphs", s.Paragraphs, 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	if len(s.TopCharacters) > DefaultTopN {
		t.Errorf("expected at most %d top characters, got %d", DefaultTopN, len(s.TopCharacters))
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute("", 5)

	if s.TotalCharacters != 0 || s.UniqueCharacters != 0 || s.Bytes != 0 {
		t.Errorf("expected zero character counts, got %+v", s)
	}
	if s.Words != 0 || s.Sentences != 0 || s.Paragraphs != 0 {
		t.Errorf("expected zero word, sentence and paragraph counts, got %+v", s)
	}
	// An empty text is still one (empty) line.
	if s.Lines != 1 {
		t.Errorf("expected 1 line, got %d", s.Lines)
	}
	if s.Entropy != 0 || math.IsNaN(s.Entropy) {
		t.Errorf("expected zero entropy, got %v", s.Entropy)
	}
	if len(s.TopCharacters) != 0 {
		t.Errorf("expected no top characters, got %v", s.TopCharacters)
	}
}

func TestCompute_Lines(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"no separator", 1},
		{"trailing\n", 2},
		{"\n", 2},
		{"a\nb\nc", 3},
	}

	for _, tt := range tests {
		if got := Compute(tt.text, 0).Lines; got != tt.want {
			t.Errorf("Compute(%q).Lines = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestCompute_TopCharacters(t *testing.T) {
	s := Compute("abracadabra", 3)

	if len(s.TopCharacters) != 3 {
		t.Fatalf("expected 3 top characters, got %d", len(s.TopCharacters))
	}
	top := s.TopCharacters[0]
	if top.Char != "a" || top.CodePoint != 'a' || top.Count != 5 {
		t.Errorf("expected a x5, got %+v", top)
	}
	if math.Abs(top.Percentage-5.0/11*100) > 1e-9 {
		t.Errorf("expected percentage %v, got %v", 5.0/11*100, top.Percentage)
	}
	// b and r both appear twice; b appears first.
	if s.TopCharacters[1].Char != "b" || s.TopCharacters[2].Char != "r" {
		t.Errorf("expected b then r, got %q then %q", s.TopCharacters[1].Char, s.TopCharacters[2].Char)
	}
	if s.UniqueCharacters != 5 {
		t.Errorf("expected 5 unique characters, got %d", s.UniqueCharacters)
	}
	if s.CharacterFrequency["a"] != 5 {
		t.Errorf("expected frequency 5 for a, got %d", s.CharacterFrequency["a"])
	}
}

func TestCompute_TopCharactersCodePoint(t *testing.T) {
	// NUL renders as the control picture U+2400, so only the code point
	// tells the two rows apart.
	s := Compute("\x00\x00␀", 0)

	if len(s.TopCharacters) != 2 {
		t.Fatalf("expected 2 top characters, got %d", len(s.TopCharacters))
	}
	first, second := s.TopCharacters[0], s.TopCharacters[1]
	if first.Char != second.Char {
		t.Errorf("expected identical glyphs, got %q and %q", first.Char, second.Char)
	}
	if first.CodePoint != 0 || first.Count != 2 {
		t.Errorf("expected U+0000 x2 first, got U+%04X x%d", first.CodePoint, first.Count)
	}
	if second.CodePoint != 0x2400 || second.Count != 1 {
		t.Errorf("expected U+2400 x1 second, got U+%04X x%d", second.CodePoint, second.Count)
	}
}

func TestCompute_PercentagesCoverAllCharacters(t *testing.T) {
	s := Compute("aab c", 100)

	sum := 0.0
	for _, c := range s.TopCharacters {
		sum += c.Percentage
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("expected percentages to sum to 100, got %v", sum)
	}
	if got := s.TopCharacters[2]; got.Char != "␣" || got.CodePoint != ' ' {
		t.Errorf("expected space as third row, got %+v", got)
	}
}

func TestEntropy(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "", 0},
		{"single repeated", "aaaa", 0},
		{"two equal", "abab", 1},
		{"four equal", "abcd", 2},
		{"multibyte", "日本日本", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Entropy(tt.text); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Entropy(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestEntropy_Bounds(t *testing.T) {
	for _, text := range []string{"hello world", "The quick brown fox", "ééé a"} {
		s := Compute(text, 0)
		upper := math.Log2(float64(s.UniqueCharacters)) + 1e-9
		if s.Entropy < 0 || s.Entropy > upper {
			t.Errorf("%q: entropy %v outside [0, %v]", text, s.Entropy, upper)
		}
	}
}
