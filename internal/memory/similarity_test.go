package memory

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	if got := CosineSimilarity(a, a); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("identical vectors = %f, want 1.0", got)
	}
	if got := CosineSimilarity(a, b); got != 0 {
		t.Fatalf("orthogonal vectors = %f, want 0", got)
	}
	if got := CosineSimilarity(a, []float32{1, 0}); got != 0 {
		t.Fatalf("mismatched dimensions = %f, want 0", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Fatalf("empty vectors = %f, want 0", got)
	}
}

func TestKeywordSimilarityIdenticalText(t *testing.T) {
	text := "bandits ambushed the caravan outside Luoyang"
	if got := KeywordSimilarity(text, text); got != 1.0 {
		t.Fatalf("identical texts = %f, want 1.0", got)
	}
}

func TestKeywordSimilarityDisjointText(t *testing.T) {
	if got := KeywordSimilarity("bandits ambushed caravan", "peach blossoms drifting gently"); got != 0 {
		t.Fatalf("disjoint texts = %f, want 0", got)
	}
}

func TestKeywordSimilaritySubsetQuery(t *testing.T) {
	document := "bandits ambushed the caravan outside Luoyang during the storm"
	query := "bandits caravan"
	if got := KeywordSimilarity(query, document); got != 1.0 {
		t.Fatalf("subset query = %f, want 1.0", got)
	}
}

func TestKeywordSimilarityEmptyInput(t *testing.T) {
	if got := KeywordSimilarity("", "bandits caravan"); got != 0 {
		t.Fatalf("empty query = %f, want 0", got)
	}
}
