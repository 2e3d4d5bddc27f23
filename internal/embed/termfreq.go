package embed

import (
	"context"
	"sort"
	"strings"
)

// TermFrequencyEmbedder is the local fallback vectorizer. It is fit
// independently per collection: the vocabulary (and therefore the vector
// basis and dimensionality) is local to the collection it was fit on.
// Vectors from different collections are NOT comparable. This is a hard
// constraint of the fallback path.
type TermFrequencyEmbedder struct {
	maxFeatures int
	vocabulary  map[string]int // term -> dimension
	dims        int
}

var (
	_ Embedder = (*TermFrequencyEmbedder)(nil)
	_ Fitter   = (*TermFrequencyEmbedder)(nil)
)

// NewTermFrequencyEmbedder creates an unfit vectorizer. Fit must run
// before Embed; embedding with an empty vocabulary yields zero vectors of
// width zero.
func NewTermFrequencyEmbedder(maxFeatures int) *TermFrequencyEmbedder {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &TermFrequencyEmbedder{
		maxFeatures: maxFeatures,
		vocabulary:  make(map[string]int),
	}
}

// Fit selects the vocabulary: the maxFeatures terms with the highest
// document frequency across texts, ties broken lexicographically so the
// basis is deterministic.
func (e *TermFrequencyEmbedder) Fit(texts []string) {
	docFreq := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]bool)
		for _, term := range tokenize(text) {
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if docFreq[terms[i]] != docFreq[terms[j]] {
			return docFreq[terms[i]] > docFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > e.maxFeatures {
		terms = terms[:e.maxFeatures]
	}

	e.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		e.vocabulary[term] = i
	}
	e.dims = len(terms)
}

// Embed produces the unit-normalized term-frequency vector for text.
func (e *TermFrequencyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dims)
	for _, term := range tokenize(text) {
		if dim, ok := e.vocabulary[term]; ok {
			vector[dim]++
		}
	}
	return Normalize(vector), nil
}

// EmbedBatch embeds each text independently.
func (e *TermFrequencyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimensions returns the fitted vocabulary size.
func (e *TermFrequencyEmbedder) Dimensions() int { return e.dims }

// ModelName identifies the fallback backend.
func (e *TermFrequencyEmbedder) ModelName() string { return "termfreq" }

// Available always reports true: the fallback has no external dependency.
func (e *TermFrequencyEmbedder) Available(context.Context) bool { return true }

// Close is a no-op.
func (e *TermFrequencyEmbedder) Close() error { return nil }

// tokenize lowercases and splits on non-alphanumeric boundaries, dropping
// tokens of length <= 2 to match the lexical index filter.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 2 {
			tokens = append(tokens, current.String())
		}
		current.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
