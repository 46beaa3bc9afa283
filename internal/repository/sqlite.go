package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/memory"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

// SQLiteStore is the local save-file EventStore. Embeddings are kept as
// JSON arrays; similarity ranking stays in Go since SQLite has no vector
// type.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a save file at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memory_events (
		id                  TEXT PRIMARY KEY,
		character_id        TEXT NOT NULL,
		timestamp           TEXT NOT NULL,
		chapter             INTEGER NOT NULL DEFAULT 0,
		event_type          TEXT NOT NULL,
		summary             TEXT NOT NULL,
		narrative           TEXT,
		importance          TEXT NOT NULL DEFAULT 'trivial',
		importance_score    INTEGER NOT NULL DEFAULT 1,
		emotion             TEXT,
		location            TEXT,
		involved_npcs       TEXT,
		items               TEXT,
		techniques          TEXT,
		tags                TEXT,
		keywords            TEXT,
		stat_changes        TEXT,
		relationship_deltas TEXT,
		karma_change        INTEGER NOT NULL DEFAULT 0,
		embedding           TEXT,
		retrieval_count     INTEGER NOT NULL DEFAULT 0,
		last_retrieved      TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_character ON memory_events(character_id);
	CREATE INDEX IF NOT EXISTS idx_events_character_chapter ON memory_events(character_id, chapter);
	CREATE INDEX IF NOT EXISTS idx_events_character_type ON memory_events(character_id, event_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Add(ctx context.Context, event *types.MemoryEvent) error {
	if err := memory.ValidateEvent(event); err != nil {
		return err
	}

	score := event.ImportanceScore
	if score == 0 {
		score = memory.ScoreForLevel(event.Importance)
	}

	cols := map[string]any{
		"involved_npcs":       event.InvolvedNPCs,
		"items":               event.Items,
		"techniques":          event.Techniques,
		"tags":                event.Tags,
		"keywords":            event.Keywords,
		"stat_changes":        event.StatChanges,
		"relationship_deltas": event.RelationshipDeltas,
		"embedding":           event.Embedding,
	}
	encoded := make(map[string]sql.NullString, len(cols))
	for name, value := range cols {
		raw, err := marshalJSON(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if raw != nil {
			encoded[name] = sql.NullString{String: string(raw), Valid: true}
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory_events (
			id, character_id, timestamp, chapter, event_type, summary, narrative,
			importance, importance_score, emotion, location,
			involved_npcs, items, techniques, tags, keywords,
			stat_changes, relationship_deltas, karma_change, embedding,
			retrieval_count, last_retrieved
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL)`,
		event.ID, event.CharacterID, event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.Chapter, string(event.EventType), event.Summary, event.Narrative,
		string(event.Importance), score, string(event.Emotion), event.Location,
		encoded["involved_npcs"], encoded["items"], encoded["techniques"],
		encoded["tags"], encoded["keywords"], encoded["stat_changes"],
		encoded["relationship_deltas"], event.KarmaChange, encoded["embedding"],
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return types.NewError(types.KindValidation, "duplicate event id %q", event.ID)
		}
		return fmt.Errorf("insert memory event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, characterID string, f memory.Filter) ([]*types.MemoryEvent, error) {
	where := []string{"character_id = ?"}
	args := []any{characterID}

	if len(f.Types) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Types)), ",")
		where = append(where, fmt.Sprintf("event_type IN (%s)", placeholders))
		for _, t := range f.Types {
			args = append(args, string(t))
		}
	}
	if f.MinScore > 0 {
		where = append(where, "importance_score >= ?")
		args = append(args, f.MinScore)
	}
	if f.Location != "" {
		where = append(where, "location = ?")
		args = append(args, f.Location)
	}
	if f.ChapterFrom > 0 {
		where = append(where, "chapter >= ?")
		args = append(args, f.ChapterFrom)
	}
	if f.ChapterTo > 0 {
		where = append(where, "chapter <= ?")
		args = append(args, f.ChapterTo)
	}
	if f.TimeFrom != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, f.TimeFrom.UTC().Format(time.RFC3339Nano))
	}
	if f.TimeTo != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, f.TimeTo.UTC().Format(time.RFC3339Nano))
	}

	query := fmt.Sprintf(`
		SELECT id, character_id, timestamp, chapter, event_type, summary, narrative,
		       importance, importance_score, emotion, location,
		       involved_npcs, items, techniques, tags, keywords,
		       stat_changes, relationship_deltas, karma_change, embedding,
		       retrieval_count, last_retrieved
		FROM memory_events
		WHERE %s
		ORDER BY timestamp ASC, id ASC`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memory events: %w", err)
	}
	defer rows.Close()

	var results []*types.MemoryEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		// NPC membership lives in a JSON column; filter after scan.
		if len(f.InvolvedNPCs) > 0 && !hasAnyNPC(event, f.InvolvedNPCs) {
			continue
		}
		results = append(results, event)
	}
	return results, rows.Err()
}

// RecordRetrieval bumps usage counters in a single UPDATE. Unknown ids
// are a no-op.
func (s *SQLiteStore) RecordRetrieval(ctx context.Context, characterID, eventID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE memory_events
		SET retrieval_count = retrieval_count + 1, last_retrieved = ?
		WHERE character_id = ? AND id = ?`,
		at.UTC().Format(time.RFC3339Nano), characterID, eventID)
	if err != nil {
		return fmt.Errorf("record retrieval: %w", err)
	}
	return nil
}

func scanEvent(rows *sql.Rows) (*types.MemoryEvent, error) {
	var (
		event         types.MemoryEvent
		timestamp     string
		eventType     string
		importance    string
		emotion       sql.NullString
		narrative     sql.NullString
		location      sql.NullString
		npcs          sql.NullString
		items         sql.NullString
		techniques    sql.NullString
		tags          sql.NullString
		keywords      sql.NullString
		statChanges   sql.NullString
		relDeltas     sql.NullString
		embedding     sql.NullString
		lastRetrieved sql.NullString
	)

	err := rows.Scan(
		&event.ID, &event.CharacterID, &timestamp, &event.Chapter, &eventType,
		&event.Summary, &narrative, &importance, &event.ImportanceScore,
		&emotion, &location, &npcs, &items, &techniques, &tags, &keywords,
		&statChanges, &relDeltas, &event.KarmaChange, &embedding,
		&event.RetrievalCount, &lastRetrieved,
	)
	if err != nil {
		return nil, fmt.Errorf("scan memory event: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse event timestamp: %w", err)
	}
	event.Timestamp = ts
	event.EventType = types.EventType(eventType)
	event.Importance = types.ImportanceLevel(importance)
	event.Emotion = types.EmotionTag(emotion.String)
	event.Narrative = narrative.String
	event.Location = location.String

	if lastRetrieved.Valid {
		last, err := time.Parse(time.RFC3339Nano, lastRetrieved.String)
		if err == nil {
			event.LastRetrieved = &last
		}
	}

	for _, field := range []struct {
		raw    sql.NullString
		target any
	}{
		{npcs, &event.InvolvedNPCs},
		{items, &event.Items},
		{techniques, &event.Techniques},
		{tags, &event.Tags},
		{keywords, &event.Keywords},
		{statChanges, &event.StatChanges},
		{relDeltas, &event.RelationshipDeltas},
		{embedding, &event.Embedding},
	} {
		if field.raw.Valid {
			if err := json.Unmarshal([]byte(field.raw.String), field.target); err != nil {
				return nil, fmt.Errorf("decode event field: %w", err)
			}
		}
	}

	return &event, nil
}

func hasAnyNPC(event *types.MemoryEvent, wanted []string) bool {
	for _, w := range wanted {
		for _, npc := range event.InvolvedNPCs {
			if npc == w {
				return true
			}
		}
	}
	return false
}
