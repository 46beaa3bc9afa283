package memory

import (
	"context"
	"math"
)

// Embedder converts text to a fixed-dimension vector for similarity
// search. Implementations call an external service; absence or failure of
// an Embedder must never fail a retrieval, the Retriever falls back to
// keyword-overlap similarity instead.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity computes cosine similarity between two vectors,
// returning 0 for mismatched or empty inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// KeywordSimilarity scores two texts by the overlap coefficient of their
// extracted keyword sets: |A∩B| / min(|A|,|B|). Identical texts score 1.0,
// as does a query whose keywords all appear in the document. Returns 0
// when either side yields no keywords.
func KeywordSimilarity(query, document string) float64 {
	return keywordOverlap(ExtractKeywords(query), ExtractKeywords(document))
}

func keywordOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	shared := 0
	for _, w := range b {
		if set[w] {
			shared++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(shared) / float64(smaller)
}
