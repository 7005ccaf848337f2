package ngram

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func scenarioModel(t *testing.T) *Model {
	t.Helper()
	w := scenario.writer()
	w.SetTotalTokens(10000)
	return openModel(t, buildModel(t, w))
}

func TestCompare(t *testing.T) {
	m := scenarioModel(t)
	unigramRatio := func(c1, c2 float64) float64 {
		return ((c1 + 0.5) / 10000) / ((c2 + 0.5) / 10000)
	}
	for _, tt := range []struct {
		name          string
		w1, w2        string
		left, right   string
		want          Comparison
		wantDirection int // sign of log(Ratio)
	}{
		{
			name: "left context only",
			w1:   "their", w2: "there", left: "to",
			want:          Comparison{Ratio: 50.5 / 5.5, Arity: Trigram, Count1: 50, Count2: 5},
			wantDirection: 1,
		},
		{
			name: "right context only",
			w1:   "their", w2: "there", right: "house",
			want:          Comparison{Ratio: 100.5 / 10.5, Arity: Bigram, Count1: 100, Count2: 10},
			wantDirection: 1,
		},
		{
			name: "both sides",
			w1:   "their", w2: "there", left: "to", right: "house",
			want:          Comparison{Ratio: 50.5 / 5.5, Arity: Trigram, Count1: 50, Count2: 5},
			wantDirection: 1,
		},
		{
			name: "reversed",
			w1:   "there", w2: "their", left: "to", right: "house",
			want:          Comparison{Ratio: 5.5 / 50.5, Arity: Trigram, Count1: 5, Count2: 50},
			wantDirection: -1,
		},
		{
			name: "long context",
			w1:   "their", w2: "there", left: "I want to go to", right: "house now please",
			want:          Comparison{Ratio: 50.5 / 5.5, Arity: Trigram, Count1: 50, Count2: 5},
			wantDirection: 1,
		},
		{
			name: "no context",
			w1:   "their", w2: "there",
			want:          Comparison{Ratio: unigramRatio(200, 300), Arity: Unigram, Count1: 200, Count2: 300},
			wantDirection: -1,
		},
		{
			name: "unknown context",
			w1:   "their", w2: "there", left: "under", right: "bridge",
			want:          Comparison{Ratio: unigramRatio(200, 300), Arity: Unigram, Count1: 200, Count2: 300},
			wantDirection: -1,
		},
		{
			name: "both unknown",
			w1:   "thier", w2: "ther", left: "to", right: "house",
			want: Comparison{Ratio: 1},
		},
		{
			name: "second unknown",
			w1:   "their", w2: "thier",
			want:          Comparison{Ratio: unigramRatio(200, 0), Arity: Unigram, Count1: 200},
			wantDirection: 1,
		},
		{
			name: "same word",
			w1:   "their", w2: "their", left: "to", right: "house",
			want: Comparison{Ratio: 1},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Compare(tt.w1, tt.w2, tt.left, tt.right)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Compare(%q, %q, %q, %q): unexpected diff (-want +got):\n%s",
					tt.w1, tt.w2, tt.left, tt.right, diff)
			}
			var direction int
			switch {
			case got.Ratio > 1:
				direction = 1
			case got.Ratio < 1:
				direction = -1
			}
			if direction != tt.wantDirection {
				t.Errorf("Compare(%q, %q, %q, %q).Ratio = %v, wrong direction", tt.w1, tt.w2, tt.left, tt.right, got.Ratio)
			}
			if ratio := m.CompareWords(tt.w1, tt.w2, tt.left, tt.right); ratio != got.Ratio {
				t.Errorf("CompareWords() = %v, Compare().Ratio = %v", ratio, got.Ratio)
			}
		})
	}
}

func TestCompareThresholds(t *testing.T) {
	m := scenarioModel(t)

	m.Backoff.MinTrigramCount = 10
	got := m.Compare("their", "there", "to", "house")
	if got.Arity != Bigram {
		t.Errorf("MinTrigramCount=10: decided by %v, want %v", got.Arity, Bigram)
	}

	// With only left context there is no bigram evidence ("to their" was
	// never observed), so unigram frequencies decide against "their":
	got = m.Compare("their", "there", "to", "")
	if got.Arity != Unigram || got.Ratio >= 1 {
		t.Errorf("MinTrigramCount=10: got %+v, want a unigram decision < 1", got)
	}

	m.Backoff.MinBigramCount = 50
	got = m.Compare("their", "there", "to", "house")
	if got.Arity != Unigram {
		t.Errorf("MinBigramCount=50: decided by %v, want %v", got.Arity, Unigram)
	}

	// Thresholds below 1 behave like 1: missing evidence never decides.
	m.Backoff = Backoff{Smoothing: 0.5}
	got = m.Compare("their", "there", "", "house")
	if got.Arity != Bigram {
		t.Errorf("zero thresholds: decided by %v, want %v", got.Arity, Bigram)
	}
}

func TestCompareUnsmoothed(t *testing.T) {
	m := scenarioModel(t)
	m.Backoff.Smoothing = 0
	if got := m.CompareWords("their", "thier", "", ""); !math.IsInf(got, 1) {
		t.Errorf("CompareWords(their, thier) = %v, want +Inf", got)
	}
	if got := m.CompareWords("thier", "their", "", ""); got != 0 {
		t.Errorf("CompareWords(thier, their) = %v, want 0", got)
	}
	if got, want := m.CompareWords("their", "there", "to", "house"), 10.0; got != want {
		t.Errorf("CompareWords(their, there, to, house) = %v, want %v", got, want)
	}
}

func TestCompareWithoutTotal(t *testing.T) {
	// Without SetTotalTokens, total_tokens is the unigram sum.
	m := openModel(t, buildModel(t, scenario.writer()))
	if got, want := m.TotalTokens(), uint64(2000); got != want {
		t.Fatalf("TotalTokens() = %d, want %d", got, want)
	}
	if got := m.CompareWords("house", "the", "", ""); got >= 1 {
		t.Errorf("CompareWords(house, the) = %v, want < 1", got)
	}

	// A model with bigrams but no unigrams has no normalization denominator.
	w := NewWriter(testOptions())
	w.AddBigram("their", "house", 100)
	w.AddBigram("there", "house", 10)
	path := filepath.Join(t.TempDir(), "bigrams.ngram")
	if _, err := w.Flush(path); err != nil {
		t.Fatal(err)
	}
	m = openModel(t, path)
	if got := m.CompareWords("their", "there", "", "house"); got <= 1 {
		t.Errorf("CompareWords(their, there, -, house) = %v, want > 1", got)
	}
	if got := m.CompareWords("their", "there", "", ""); got != 1 {
		t.Errorf("CompareWords(their, there) without tokens = %v, want 1", got)
	}
}
