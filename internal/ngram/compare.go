package ngram

import (
	"math"
	"strings"
)

// Backoff tunes how CompareWords blends evidence of different arities.
type Backoff struct {
	// MinTrigramCount is the minimum trigram evidence both candidates need
	// for trigrams to decide. Values below 1 are treated as 1.
	MinTrigramCount uint64 `toml:"min_trigram_count"`

	// MinBigramCount is the bigram equivalent of MinTrigramCount.
	MinBigramCount uint64 `toml:"min_bigram_count"`

	// Smoothing is added to both counts before dividing (add-k smoothing).
	Smoothing float64 `toml:"smoothing"`
}

var DefaultBackoff = Backoff{
	MinTrigramCount: 1,
	MinBigramCount:  1,
	Smoothing:       0.5,
}

func minCount(n uint64) uint64 {
	if n < 1 {
		return 1
	}
	return n
}

// A Comparison is the result of comparing two candidate words.
type Comparison struct {
	// Ratio is > 1 if the first candidate is more likely, < 1 if the second
	// one is and exactly 1 if no discriminating evidence was found.
	Ratio float64

	// Arity is the level of evidence that decided, or 0 if there was none.
	Arity Arity

	// Count1 and Count2 are the evidence counts of the candidates at Arity.
	Count1, Count2 uint64
}

func (b *Backoff) ratio(c1, c2 uint64) float64 {
	num := float64(c1) + b.Smoothing
	den := float64(c2) + b.Smoothing
	if den == 0 {
		return math.Inf(1)
	}
	return num / den
}

// neighbors holds the (at most two) words on either side of a candidate.
type neighbors struct {
	left  []string // left[len(left)-1] is adjacent to the candidate
	right []string // right[0] is adjacent to the candidate
}

func splitContext(left, right string) neighbors {
	var c neighbors
	c.left = strings.Fields(left)
	if n := len(c.left); n > 2 {
		c.left = c.left[n-2:]
	}
	c.right = strings.Fields(right)
	if len(c.right) > 2 {
		c.right = c.right[:2]
	}
	return c
}

func (c neighbors) empty() bool { return len(c.left) == 0 && len(c.right) == 0 }

// trigramEvidence sums the counts of all trigrams placing w into its
// context. If the context is too short to form a trigram, the counts of all
// trigrams starting with the adjacent context word and w are summed instead.
func (m *Model) trigramEvidence(w string, c neighbors) uint64 {
	var (
		sum     uint64
		windows int
	)
	add := func(w1, w2, w3 string) {
		count, _ := m.GetTrigram(w1, w2, w3)
		sum = saturatingAdd(sum, count)
		windows++
	}
	l, r := c.left, c.right
	if len(l) >= 2 {
		add(l[len(l)-2], l[len(l)-1], w)
	}
	if len(l) >= 1 && len(r) >= 1 {
		add(l[len(l)-1], w, r[0])
	}
	if len(r) >= 2 {
		add(w, r[0], r[1])
	}
	if windows > 0 {
		return sum
	}

	var prefix string
	switch {
	case len(l) >= 1:
		prefix = l[len(l)-1] + " " + w + " "
	case len(r) >= 1:
		prefix = w + " " + r[0] + " "
	default:
		return 0
	}
	sum, _, err := m.PrefixCount(Trigram, prefix)
	if err != nil {
		return 0
	}
	return sum
}

func (m *Model) bigramEvidence(w string, c neighbors) uint64 {
	var sum uint64
	if n := len(c.left); n >= 1 {
		count, _ := m.GetBigram(c.left[n-1], w)
		sum = saturatingAdd(sum, count)
	}
	if len(c.right) >= 1 {
		count, _ := m.GetBigram(w, c.right[0])
		sum = saturatingAdd(sum, count)
	}
	return sum
}

// Compare compares the likelihood of w1 and w2 appearing between the left
// and right context (either of which may be empty). Trigram evidence is
// preferred; if either candidate has too little of it, bigram evidence is
// used, and lacking that, relative unigram frequencies.
func (m *Model) Compare(w1, w2, left, right string) Comparison {
	if w1 == w2 {
		return Comparison{Ratio: 1}
	}
	b := &m.Backoff
	c := splitContext(left, right)
	if !c.empty() {
		c1, c2 := m.trigramEvidence(w1, c), m.trigramEvidence(w2, c)
		if threshold := minCount(b.MinTrigramCount); c1 >= threshold && c2 >= threshold {
			return Comparison{Ratio: b.ratio(c1, c2), Arity: Trigram, Count1: c1, Count2: c2}
		}
		c1, c2 = m.bigramEvidence(w1, c), m.bigramEvidence(w2, c)
		if threshold := minCount(b.MinBigramCount); c1 >= threshold && c2 >= threshold {
			return Comparison{Ratio: b.ratio(c1, c2), Arity: Bigram, Count1: c1, Count2: c2}
		}
	}

	c1, _ := m.GetUnigram(w1)
	c2, _ := m.GetUnigram(w2)
	total := m.header.TotalTokens
	if total == 0 || (c1 == 0 && c2 == 0) {
		return Comparison{Ratio: 1}
	}
	p1 := (float64(c1) + b.Smoothing) / float64(total)
	p2 := (float64(c2) + b.Smoothing) / float64(total)
	ratio := math.Inf(1)
	if p2 > 0 {
		ratio = p1 / p2
	}
	return Comparison{Ratio: ratio, Arity: Unigram, Count1: c1, Count2: c2}
}

// CompareWords returns the likelihood ratio of w1 versus w2 in context. See
// Compare.
func (m *Model) CompareWords(w1, w2, left, right string) float64 {
	return m.Compare(w1, w2, left, right).Ratio
}
