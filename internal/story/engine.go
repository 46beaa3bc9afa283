// Package story runs the turn loop: retrieve memories, assemble the
// prompt, call the narrative generator, and write the turn's event back
// to the store.
package story

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/memory"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/narrative"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/prompt"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/relationship"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

const recentActionLimit = 10

// Protagonist is the minimal character sheet the engine needs; the full
// game-state store lives with the host application.
type Protagonist struct {
	ID      string
	Name    string
	Persona string
	Realm   string
}

// Engine drives one character's story session.
type Engine struct {
	store               memory.EventStore
	retriever           *memory.Retriever
	embedder            memory.Embedder
	generator           narrative.Generator
	builder             *prompt.Builder
	ledger              *relationship.Ledger
	hero                Protagonist
	chapter             int
	location            string
	recent              []string
	minChapterGap       int
	topK                int
	similarityThreshold float64
	historyLimit        int
	nowFunc             func() time.Time
}

// Config wires an Engine. Embedder may be nil; retrieval then runs on
// keyword similarity alone.
type Config struct {
	Store         memory.EventStore
	Embedder      memory.Embedder
	Generator     narrative.Generator
	Hero          Protagonist
	StartChapter  int
	MinChapterGap int
	// TopK and SimilarityThreshold tune per-turn retrieval. Zero keeps the
	// retrieval defaults (5 results, 0.7 threshold).
	TopK                int
	SimilarityThreshold float64
	// HistoryLimit caps the recent-action window in prompts. Zero keeps the
	// default of 10.
	HistoryLimit int
}

// TurnResult is everything one turn produced.
type TurnResult struct {
	Narrative string
	Memories  *types.MemoryContext
	// Callback is the overdue event surfaced this turn, if any.
	Callback *types.MemoryEvent
	// Recorded is the event written back to the store for this turn.
	Recorded *types.MemoryEvent
}

// NewEngine creates an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("narrative generator is required")
	}
	if cfg.Hero.ID == "" || cfg.Hero.Name == "" {
		return nil, fmt.Errorf("protagonist id and name are required")
	}

	chapter := cfg.StartChapter
	if chapter <= 0 {
		chapter = 1
	}
	gap := cfg.MinChapterGap
	if gap <= 0 {
		gap = memory.DefaultMinChapterGap
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = recentActionLimit
	}

	return &Engine{
		store:               cfg.Store,
		retriever:           memory.NewRetriever(cfg.Store, cfg.Embedder),
		embedder:            cfg.Embedder,
		generator:           cfg.Generator,
		builder:             prompt.NewBuilder(historyLimit),
		ledger:              relationship.NewLedger(),
		hero:                cfg.Hero,
		chapter:             chapter,
		minChapterGap:       gap,
		topK:                cfg.TopK,
		similarityThreshold: cfg.SimilarityThreshold,
		historyLimit:        historyLimit,
		nowFunc:             time.Now,
	}, nil
}

// PlayTurn advances the story by one player action. Retrieval happens
// before generation; a generation failure surfaces typed and leaves the
// store untouched.
func (e *Engine) PlayTurn(ctx context.Context, action string) (*TurnResult, error) {
	if action == "" {
		return nil, types.NewError(types.KindValidation, "player action is required")
	}

	memories, err := e.retriever.Retrieve(ctx, types.MemoryQuery{
		CharacterID:         e.hero.ID,
		QueryText:           action,
		Limit:               e.topK,
		SimilarityThreshold: e.similarityThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve memories: %w", err)
	}

	callback := e.dueCallback(ctx)

	system, user, err := e.builder.Build(prompt.BuildContext{
		CharacterName: e.hero.Name,
		Persona:       e.hero.Persona,
		Realm:         e.hero.Realm,
		Location:      e.location,
		Chapter:       e.chapter,
		Karma:         e.ledger.Karma(),
		MemoryBlock:   memory.FormatContext(memories),
		CallbackHint:  callbackHint(callback),
		RecentActions: e.recent,
		PlayerAction:  action,
	})
	if err != nil {
		return nil, err
	}

	text, err := e.generator.Generate(ctx, system, user)
	if err != nil {
		return nil, err
	}

	narration, turnEvent, err := ParseTurnEvent(text)
	if err != nil {
		slog.Warn("discarding malformed turn event block", "error", err.Error())
		narration, turnEvent = text, nil
	}

	recorded := e.eventForTurn(action, narration, turnEvent)
	if err := e.RecordEvent(ctx, recorded); err != nil {
		return nil, fmt.Errorf("failed to record turn event: %w", err)
	}

	e.recent = append(e.recent, action)
	if len(e.recent) > e.historyLimit {
		e.recent = e.recent[len(e.recent)-e.historyLimit:]
	}

	return &TurnResult{
		Narrative: narration,
		Memories:  memories,
		Callback:  callback,
		Recorded:  recorded,
	}, nil
}

// RecordEvent validates, embeds, and appends a gameplay event, then folds
// its consequences into the relationship ledger. Embedding failures
// degrade to a keyword-only event.
func (e *Engine) RecordEvent(ctx context.Context, event *types.MemoryEvent) error {
	if e.embedder != nil && len(event.Embedding) == 0 {
		vec, err := e.embedder.EmbedDocument(ctx, event.Summary+" "+event.Narrative)
		if err != nil {
			slog.Warn("embedding unavailable, storing keyword-only event", "event_id", event.ID, "error", err.Error())
		} else {
			event.Embedding = vec
		}
	}
	if err := e.store.Add(ctx, event); err != nil {
		return err
	}
	e.ledger.Apply(event)
	return nil
}

// AdvanceChapter moves the story to the next chapter and returns it.
func (e *Engine) AdvanceChapter() int {
	e.chapter++
	return e.chapter
}

// Chapter returns the current chapter.
func (e *Engine) Chapter() int { return e.chapter }

// SetLocation updates the scene location used in prompts.
func (e *Engine) SetLocation(location string) { e.location = location }

// Ledger exposes the derived NPC standings and karma.
func (e *Engine) Ledger() *relationship.Ledger { return e.ledger }

// dueCallback picks the single most pressing overdue event: highest
// importance first, oldest chapter as the tie-break.
func (e *Engine) dueCallback(ctx context.Context) *types.MemoryEvent {
	events, err := e.store.Query(ctx, e.hero.ID, memory.Filter{})
	if err != nil {
		slog.Warn("failed to scan events for callbacks", "error", err.Error())
		return nil
	}

	var best *types.MemoryEvent
	for _, event := range events {
		if !memory.IsDue(event, e.chapter, e.minChapterGap) {
			continue
		}
		if best == nil ||
			event.ImportanceScore > best.ImportanceScore ||
			(event.ImportanceScore == best.ImportanceScore && event.Chapter < best.Chapter) {
			best = event
		}
	}
	return best
}

func (e *Engine) eventForTurn(action, narration string, turnEvent *TurnEvent) *types.MemoryEvent {
	now := e.nowFunc()
	if turnEvent == nil {
		event := memory.NewEvent(e.hero.ID, e.chapter, types.EventOther, action, narration, types.ImportanceTrivial, now)
		event.Location = e.location
		return event
	}

	event := memory.NewEvent(
		e.hero.ID, e.chapter,
		types.EventType(turnEvent.EventType),
		turnEvent.Summary, narration,
		types.ImportanceLevel(turnEvent.Importance),
		now,
	)
	event.Emotion = types.EmotionTag(turnEvent.Emotion)
	event.Location = turnEvent.Location
	if event.Location == "" {
		event.Location = e.location
	}
	event.InvolvedNPCs = turnEvent.NPCs
	event.KarmaChange = turnEvent.Karma
	return event
}

func callbackHint(event *types.MemoryEvent) string {
	if event == nil {
		return ""
	}
	return fmt.Sprintf("An unresolved thread from chapter %d: %s", event.Chapter, event.Summary)
}
