// Package repository provides durable EventStore backends: PostgreSQL
// with pgvector for hosted saves, SQLite for local save files.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/memory"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

// eventModel maps to the memory_events table.
type eventModel struct {
	ID          string `gorm:"primaryKey"`
	CharacterID string `gorm:"index"`
	Timestamp   time.Time
	Chapter     int
	EventType   string
	Summary     string
	Narrative   string
	Importance  string
	// ImportanceScore is derived from Importance at write time and kept for
	// SQL-side threshold filters.
	ImportanceScore int
	Emotion         string
	Location        string
	// List and map fields are stored as JSONB for retrieval filters.
	InvolvedNPCs       json.RawMessage `gorm:"type:jsonb"`
	Items              json.RawMessage `gorm:"type:jsonb"`
	Techniques         json.RawMessage `gorm:"type:jsonb"`
	Tags               json.RawMessage `gorm:"type:jsonb"`
	Keywords           json.RawMessage `gorm:"type:jsonb"`
	StatChanges        json.RawMessage `gorm:"type:jsonb"`
	RelationshipDeltas json.RawMessage `gorm:"type:jsonb"`
	KarmaChange        int
	// Embedding stores the vector representation for similarity search.
	Embedding      *pgvector.Vector `gorm:"type:vector"`
	RetrievalCount int
	LastRetrieved  *time.Time
}

func (eventModel) TableName() string {
	return "memory_events"
}

// EventRepo is the PostgreSQL-backed EventStore.
type EventRepo struct {
	db *gorm.DB
}

// NewEventRepo returns an EventRepo.
func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Add(ctx context.Context, event *types.MemoryEvent) error {
	if err := memory.ValidateEvent(event); err != nil {
		return err
	}

	record, err := modelFromEvent(event)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return classifyInsertError(err, event.ID)
	}
	return nil
}

// classifyInsertError maps a unique-key violation to the same validation
// error the other EventStore backends return for a duplicate id.
func classifyInsertError(err error, eventID string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "SQLSTATE 23505") {
		return types.NewError(types.KindValidation, "duplicate event id %q", eventID)
	}
	return fmt.Errorf("failed to insert memory event: %w", err)
}

func (r *EventRepo) Query(ctx context.Context, characterID string, f memory.Filter) ([]*types.MemoryEvent, error) {
	query := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("timestamp ASC, id ASC")

	if len(f.Types) > 0 {
		query = query.Where("event_type IN ?", eventTypeStrings(f.Types))
	}
	if f.MinScore > 0 {
		query = query.Where("importance_score >= ?", f.MinScore)
	}
	if f.Location != "" {
		query = query.Where("location = ?", f.Location)
	}
	if f.ChapterFrom > 0 {
		query = query.Where("chapter >= ?", f.ChapterFrom)
	}
	if f.ChapterTo > 0 {
		query = query.Where("chapter <= ?", f.ChapterTo)
	}
	if f.TimeFrom != nil {
		query = query.Where("timestamp >= ?", *f.TimeFrom)
	}
	if f.TimeTo != nil {
		query = query.Where("timestamp <= ?", *f.TimeTo)
	}
	if len(f.InvolvedNPCs) > 0 {
		// JSONB array overlap: any of the requested NPCs appears.
		npcs, err := json.Marshal(f.InvolvedNPCs)
		if err != nil {
			return nil, fmt.Errorf("failed to encode npc filter: %w", err)
		}
		query = query.Where("jsonb_exists_any(involved_npcs, ARRAY(SELECT jsonb_array_elements_text(?::jsonb)))", string(npcs))
	}

	var records []eventModel
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query memory events: %w", err)
	}

	results := make([]*types.MemoryEvent, 0, len(records))
	for _, record := range records {
		event, err := eventFromModel(record)
		if err != nil {
			return nil, err
		}
		results = append(results, event)
	}
	return results, nil
}

// RecordRetrieval bumps usage metadata with a single atomic UPDATE, so
// concurrent retrievals never lose increments. Unknown ids are a no-op.
func (r *EventRepo) RecordRetrieval(ctx context.Context, characterID, eventID string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&eventModel{}).
		Where("character_id = ? AND id = ?", characterID, eventID).
		Updates(map[string]any{
			"retrieval_count": gorm.Expr("retrieval_count + 1"),
			"last_retrieved":  at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record retrieval: %w", err)
	}
	return nil
}

func modelFromEvent(event *types.MemoryEvent) (*eventModel, error) {
	score := event.ImportanceScore
	if score == 0 {
		score = memory.ScoreForLevel(event.Importance)
	}

	var vector *pgvector.Vector
	if len(event.Embedding) > 0 {
		v := pgvector.NewVector(event.Embedding)
		vector = &v
	}

	record := &eventModel{
		ID:              event.ID,
		CharacterID:     event.CharacterID,
		Timestamp:       event.Timestamp,
		Chapter:         event.Chapter,
		EventType:       string(event.EventType),
		Summary:         event.Summary,
		Narrative:       event.Narrative,
		Importance:      string(event.Importance),
		ImportanceScore: score,
		Emotion:         string(event.Emotion),
		Location:        event.Location,
		KarmaChange:     event.KarmaChange,
		Embedding:       vector,
	}

	for _, field := range []struct {
		name   string
		value  any
		target *json.RawMessage
	}{
		{"involved npcs", event.InvolvedNPCs, &record.InvolvedNPCs},
		{"items", event.Items, &record.Items},
		{"techniques", event.Techniques, &record.Techniques},
		{"tags", event.Tags, &record.Tags},
		{"keywords", event.Keywords, &record.Keywords},
		{"stat changes", event.StatChanges, &record.StatChanges},
		{"relationship deltas", event.RelationshipDeltas, &record.RelationshipDeltas},
	} {
		raw, err := marshalJSON(field.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode event %s: %w", field.name, err)
		}
		*field.target = raw
	}

	return record, nil
}

func eventFromModel(record eventModel) (*types.MemoryEvent, error) {
	event := &types.MemoryEvent{
		ID:              record.ID,
		CharacterID:     record.CharacterID,
		Timestamp:       record.Timestamp,
		Chapter:         record.Chapter,
		EventType:       types.EventType(record.EventType),
		Summary:         record.Summary,
		Narrative:       record.Narrative,
		Importance:      types.ImportanceLevel(record.Importance),
		ImportanceScore: record.ImportanceScore,
		Emotion:         types.EmotionTag(record.Emotion),
		Location:        record.Location,
		KarmaChange:     record.KarmaChange,
		RetrievalCount:  record.RetrievalCount,
		LastRetrieved:   record.LastRetrieved,
	}
	if record.Embedding != nil {
		event.Embedding = record.Embedding.Slice()
	}

	_ = unmarshalJSON(record.InvolvedNPCs, &event.InvolvedNPCs)
	_ = unmarshalJSON(record.Items, &event.Items)
	_ = unmarshalJSON(record.Techniques, &event.Techniques)
	_ = unmarshalJSON(record.Tags, &event.Tags)
	_ = unmarshalJSON(record.Keywords, &event.Keywords)
	_ = unmarshalJSON(record.StatChanges, &event.StatChanges)
	_ = unmarshalJSON(record.RelationshipDeltas, &event.RelationshipDeltas)
	return event, nil
}

func eventTypeStrings(eventTypes []types.EventType) []string {
	out := make([]string, len(eventTypes))
	for i, t := range eventTypes {
		out[i] = string(t)
	}
	return out
}

// marshalJSON encodes a value into JSONB, returning nil for empty values.
func marshalJSON(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// unmarshalJSON decodes JSONB into the provided target.
func unmarshalJSON(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
