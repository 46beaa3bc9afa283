package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

// Filter is the structural pre-filter applied before relevance ranking.
// Zero values disable each constraint; chapter and time bounds are
// inclusive.
type Filter struct {
	Types        []types.EventType
	MinScore     int
	InvolvedNPCs []string
	Location     string
	ChapterFrom  int
	ChapterTo    int
	TimeFrom     *time.Time
	TimeTo       *time.Time
}

// empty reports whether no constraint is set.
func (f Filter) empty() bool {
	return len(f.Types) == 0 && f.MinScore == 0 && len(f.InvolvedNPCs) == 0 &&
		f.Location == "" && f.ChapterFrom == 0 && f.ChapterTo == 0 &&
		f.TimeFrom == nil && f.TimeTo == nil
}

// Matches reports whether the event passes every set constraint.
func (f Filter) Matches(event *types.MemoryEvent) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if event.EventType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinScore > 0 && event.ImportanceScore < f.MinScore {
		return false
	}
	if len(f.InvolvedNPCs) > 0 && !intersects(f.InvolvedNPCs, event.InvolvedNPCs) {
		return false
	}
	if f.Location != "" && event.Location != f.Location {
		return false
	}
	if f.ChapterFrom > 0 && event.Chapter < f.ChapterFrom {
		return false
	}
	if f.ChapterTo > 0 && event.Chapter > f.ChapterTo {
		return false
	}
	if f.TimeFrom != nil && event.Timestamp.Before(*f.TimeFrom) {
		return false
	}
	if f.TimeTo != nil && event.Timestamp.After(*f.TimeTo) {
		return false
	}
	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// EventStore holds memory events keyed by character. Implementations back
// it with PostgreSQL, SQLite, or process memory; the Retriever does not
// care which.
type EventStore interface {
	// Add validates and appends an event. Missing id, character id, or
	// event type, an unknown event type, a negative chapter, or a
	// duplicate id all fail with a validation error.
	Add(ctx context.Context, event *types.MemoryEvent) error
	// Query returns the character's events passing the structural filter,
	// in creation order, with current usage metadata folded in.
	Query(ctx context.Context, characterID string, f Filter) ([]*types.MemoryEvent, error)
	// RecordRetrieval advances the event's usage metadata. Unknown ids are
	// a silent no-op: the read path must never fail on usage bookkeeping.
	RecordRetrieval(ctx context.Context, characterID, eventID string, at time.Time) error
}

// NewEvent builds a MemoryEvent with a minted ULID, the given creation
// time, the derived importance score, and keywords extracted from the
// summary and narrative text.
func NewEvent(characterID string, chapter int, eventType types.EventType, summary, narrative string, importance types.ImportanceLevel, at time.Time) *types.MemoryEvent {
	return &types.MemoryEvent{
		ID:              ulid.Make().String(),
		CharacterID:     characterID,
		Timestamp:       at,
		Chapter:         chapter,
		EventType:       eventType,
		Summary:         summary,
		Narrative:       narrative,
		Importance:      importance,
		ImportanceScore: ScoreForLevel(importance),
		Keywords:        ExtractKeywords(summary + " " + narrative),
	}
}

// ValidateEvent checks the write-path invariants shared by all stores.
func ValidateEvent(event *types.MemoryEvent) error {
	if event == nil {
		return types.NewError(types.KindValidation, "event is nil")
	}
	if event.ID == "" {
		return types.NewError(types.KindValidation, "event id is required")
	}
	if event.CharacterID == "" {
		return types.NewError(types.KindValidation, "character id is required")
	}
	if !types.ValidEventTypes[event.EventType] {
		return types.NewError(types.KindValidation, "unknown event type %q", event.EventType)
	}
	if event.Chapter < 0 {
		return types.NewError(types.KindValidation, "chapter must not be negative, got %d", event.Chapter)
	}
	return nil
}

// usage is the per-event mutable tail of an otherwise immutable record.
type usage struct {
	count int
	last  time.Time
}

// MemStore is the in-process EventStore. Event records are kept immutable;
// usage metadata lives in a separate table guarded by the store lock, so
// concurrent retrievals never race on event content.
type MemStore struct {
	mu     sync.RWMutex
	events map[string][]*types.MemoryEvent
	usage  map[string]*usage
}

// NewMemStore returns an empty in-process store.
func NewMemStore() *MemStore {
	return &MemStore{
		events: make(map[string][]*types.MemoryEvent),
		usage:  make(map[string]*usage),
	}
}

func (s *MemStore) Add(ctx context.Context, event *types.MemoryEvent) error {
	if err := ValidateEvent(event); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events[event.CharacterID] {
		if existing.ID == event.ID {
			return types.NewError(types.KindValidation, "duplicate event id %q", event.ID)
		}
	}

	stored := *event
	if stored.ImportanceScore == 0 {
		stored.ImportanceScore = ScoreForLevel(stored.Importance)
	}
	stored.RetrievalCount = 0
	stored.LastRetrieved = nil
	s.events[event.CharacterID] = append(s.events[event.CharacterID], &stored)
	return nil
}

func (s *MemStore) Query(ctx context.Context, characterID string, f Filter) ([]*types.MemoryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.MemoryEvent
	for _, event := range s.events[characterID] {
		if !f.Matches(event) {
			continue
		}
		copied := *event
		if u, ok := s.usage[event.ID]; ok {
			copied.RetrievalCount = u.count
			last := u.last
			copied.LastRetrieved = &last
		}
		out = append(out, &copied)
	}
	return out, nil
}

func (s *MemStore) RecordRetrieval(ctx context.Context, characterID, eventID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, event := range s.events[characterID] {
		if event.ID == eventID {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	u, ok := s.usage[eventID]
	if !ok {
		u = &usage{}
		s.usage[eventID] = u
	}
	u.count++
	if at.After(u.last) {
		u.last = at
	}
	return nil
}
