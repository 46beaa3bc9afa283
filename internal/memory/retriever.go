package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

const (
	defaultLimit               = 5
	defaultSimilarityThreshold = 0.7
	maxContextEvents           = 3
)

// Retriever ranks a character's stored events against a query and returns
// the top matches. Similarity comes from the embedding backend when one is
// configured and reachable, otherwise from keyword overlap; decay
// modulates the ranking but never overrides the similarity threshold.
type Retriever struct {
	store    EventStore
	embedder Embedder
	nowFunc  func() time.Time
}

// NewRetriever creates a Retriever. A nil embedder is allowed and selects
// the keyword-overlap similarity path.
func NewRetriever(store EventStore, embedder Embedder) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
		nowFunc:  time.Now,
	}
}

type scoredEvent struct {
	event      *types.MemoryEvent
	similarity float64
	rank       float64
}

// Retrieve runs the full pipeline: structural pre-filter, similarity
// scoring, threshold cut, decay-weighted ranking, top-K selection, and
// usage bookkeeping. An empty history yields an empty context, never an
// error.
func (r *Retriever) Retrieve(ctx context.Context, query types.MemoryQuery) (*types.MemoryContext, error) {
	if query.CharacterID == "" {
		return nil, types.NewError(types.KindValidation, "character id is required")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	threshold := query.SimilarityThreshold
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}

	filter := filterFromQuery(query)
	candidates, err := r.store.Query(ctx, query.CharacterID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query event store: %w", err)
	}
	if len(candidates) == 0 {
		return &types.MemoryContext{
			Results:   nil,
			Searched:  0,
			QueryText: query.QueryText,
			Summary:   r.emptySummary(ctx, query.CharacterID, filter),
		}, nil
	}

	now := r.nowFunc()
	queryVec := r.embedQuery(ctx, query.QueryText)

	var scored []scoredEvent
	for _, event := range candidates {
		similarity := r.similarity(queryVec, query.QueryText, event)
		if similarity < threshold {
			continue
		}
		scored = append(scored, scoredEvent{
			event:      event,
			similarity: similarity,
			rank:       similarity * Decay(event, now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].rank != scored[j].rank {
			return scored[i].rank > scored[j].rank
		}
		if scored[i].event.ImportanceScore != scored[j].event.ImportanceScore {
			return scored[i].event.ImportanceScore > scored[j].event.ImportanceScore
		}
		return scored[i].event.Chapter > scored[j].event.Chapter
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]types.MemoryResult, 0, len(scored))
	for _, s := range scored {
		if err := r.store.RecordRetrieval(ctx, query.CharacterID, s.event.ID, now); err != nil {
			slog.Warn("failed to record retrieval", "event_id", s.event.ID, "error", err.Error())
		}
		result := types.MemoryResult{
			Event:      s.event,
			Similarity: s.similarity,
			Relevance:  fmt.Sprintf("similarity %.2f, decay-weighted rank %.2f", s.similarity, s.rank),
		}
		if query.IncludeContext {
			result.Context = r.contextEvents(ctx, query.CharacterID, s.event)
		}
		results = append(results, result)
	}

	return &types.MemoryContext{
		Results:   results,
		Searched:  len(candidates),
		QueryText: query.QueryText,
		Summary:   summarizeResults(results),
	}, nil
}

// emptySummary distinguishes an empty history from filters that excluded
// every event, so the prompt never claims a storied character has no past.
func (r *Retriever) emptySummary(ctx context.Context, characterID string, f Filter) string {
	if !f.empty() {
		all, err := r.store.Query(ctx, characterID, Filter{})
		if err == nil && len(all) > 0 {
			return "No memories matched the filters."
		}
	}
	return "No memories exist for this character yet."
}

// embedQuery returns the query embedding, or nil when no embedder is
// configured or the backend is unreachable. A nil vector switches the
// whole retrieval to keyword-overlap similarity.
func (r *Retriever) embedQuery(ctx context.Context, queryText string) []float32 {
	if r.embedder == nil || queryText == "" {
		return nil
	}
	vec, err := r.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		slog.Warn("embedding backend unavailable, falling back to keyword similarity", "error", err.Error())
		return nil
	}
	return vec
}

func (r *Retriever) similarity(queryVec []float32, queryText string, event *types.MemoryEvent) float64 {
	if len(queryVec) > 0 && len(event.Embedding) > 0 {
		return CosineSimilarity(queryVec, event.Embedding)
	}
	return KeywordSimilarity(queryText, event.Summary+" "+event.Narrative)
}

func (r *Retriever) contextEvents(ctx context.Context, characterID string, event *types.MemoryEvent) []*types.MemoryEvent {
	neighbors, err := r.store.Query(ctx, characterID, Filter{})
	if err != nil {
		slog.Warn("failed to load context events", "event_id", event.ID, "error", err.Error())
		return nil
	}
	var out []*types.MemoryEvent
	for _, n := range neighbors {
		if n.ID == event.ID || n.Chapter != event.Chapter {
			continue
		}
		out = append(out, n)
		if len(out) == maxContextEvents {
			break
		}
	}
	return out
}

func filterFromQuery(query types.MemoryQuery) Filter {
	f := Filter{
		Types:        query.EventTypes,
		InvolvedNPCs: query.InvolvedNPCs,
		Location:     query.Location,
		ChapterFrom:  query.ChapterFrom,
		ChapterTo:    query.ChapterTo,
		TimeFrom:     query.TimeFrom,
		TimeTo:       query.TimeTo,
	}
	if query.MinImportance != "" {
		f.MinScore = ScoreForLevel(query.MinImportance)
	}
	return f
}

func summarizeResults(results []types.MemoryResult) string {
	if len(results) == 0 {
		return "No relevant memories found."
	}
	lo, hi := results[0].Event.Chapter, results[0].Event.Chapter
	for _, r := range results[1:] {
		if r.Event.Chapter < lo {
			lo = r.Event.Chapter
		}
		if r.Event.Chapter > hi {
			hi = r.Event.Chapter
		}
	}
	if lo == hi {
		return fmt.Sprintf("%d relevant memories found in chapter %d.", len(results), lo)
	}
	return fmt.Sprintf("%d relevant memories found spanning chapters %d-%d.", len(results), lo, hi)
}
