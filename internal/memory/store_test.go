package memory

import (
	"context"
	"testing"
	"time"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

func testEvent(id, characterID string, chapter int) *types.MemoryEvent {
	return &types.MemoryEvent{
		ID:              id,
		CharacterID:     characterID,
		Timestamp:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Chapter:         chapter,
		EventType:       types.EventCombat,
		Summary:         "duel at the waterfall",
		Importance:      types.ImportanceModerate,
		ImportanceScore: 5,
	}
}

func TestMemStoreAddValidation(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	cases := []struct {
		name  string
		event *types.MemoryEvent
	}{
		{"missing id", &types.MemoryEvent{CharacterID: "c1", EventType: types.EventCombat}},
		{"missing character", &types.MemoryEvent{ID: "e1", EventType: types.EventCombat}},
		{"unknown type", &types.MemoryEvent{ID: "e1", CharacterID: "c1", EventType: "banquet"}},
		{"negative chapter", &types.MemoryEvent{ID: "e1", CharacterID: "c1", EventType: types.EventCombat, Chapter: -1}},
	}
	for _, tc := range cases {
		err := store.Add(ctx, tc.event)
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !types.IsKind(err, types.KindValidation) {
			t.Fatalf("%s: got kind %q, want validation", tc.name, types.KindOf(err))
		}
	}
}

func TestMemStoreRejectsDuplicateID(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if err := store.Add(ctx, testEvent("e1", "c1", 1)); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	err := store.Add(ctx, testEvent("e1", "c1", 2))
	if !types.IsKind(err, types.KindValidation) {
		t.Fatalf("duplicate add: got %v, want validation error", err)
	}
}

func TestMemStoreDerivesScoreWhenUnset(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	event := testEvent("e1", "c1", 1)
	event.Importance = types.ImportanceCritical
	event.ImportanceScore = 0
	if err := store.Add(ctx, event); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	got, err := store.Query(ctx, "c1", Filter{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 1 || got[0].ImportanceScore != 10 {
		t.Fatalf("expected derived score 10, got %+v", got)
	}
}

func TestMemStoreQueryFilters(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	first := testEvent("e1", "c1", 2)
	first.Location = "Misty Peak"
	first.InvolvedNPCs = []string{"elder-feng"}

	second := testEvent("e2", "c1", 7)
	second.EventType = types.EventBetrayal
	second.Importance = types.ImportanceCritical
	second.ImportanceScore = 10
	second.InvolvedNPCs = []string{"li-wei"}

	for _, event := range []*types.MemoryEvent{first, second} {
		if err := store.Add(ctx, event); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"e1", "e2"}},
		{"by type", Filter{Types: []types.EventType{types.EventBetrayal}}, []string{"e2"}},
		{"importance floor", Filter{MinScore: 7}, []string{"e2"}},
		{"by npc", Filter{InvolvedNPCs: []string{"elder-feng"}}, []string{"e1"}},
		{"by location", Filter{Location: "Misty Peak"}, []string{"e1"}},
		{"chapter range", Filter{ChapterFrom: 1, ChapterTo: 3}, []string{"e1"}},
		{"no match", Filter{Location: "Luoyang"}, nil},
	}
	for _, tc := range cases {
		got, err := store.Query(ctx, "c1", tc.filter)
		if err != nil {
			t.Fatalf("%s: query failed: %v", tc.name, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %d events, want %d", tc.name, len(got), len(tc.want))
		}
		for i, id := range tc.want {
			if got[i].ID != id {
				t.Fatalf("%s: event %d is %s, want %s", tc.name, i, got[i].ID, id)
			}
		}
	}
}

func TestMemStoreQueryScopedToCharacter(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if err := store.Add(ctx, testEvent("e1", "c1", 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(ctx, testEvent("e2", "c2", 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	got, err := store.Query(ctx, "c1", Filter{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("expected only c1's events, got %+v", got)
	}
}

func TestMemStoreRecordRetrieval(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if err := store.Add(ctx, testEvent("e1", "c1", 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	first := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	if err := store.RecordRetrieval(ctx, "c1", "e1", first); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := store.RecordRetrieval(ctx, "c1", "e1", second); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	got, err := store.Query(ctx, "c1", Filter{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if got[0].RetrievalCount != 2 {
		t.Fatalf("retrieval count = %d, want 2", got[0].RetrievalCount)
	}
	if got[0].LastRetrieved == nil || !got[0].LastRetrieved.Equal(second) {
		t.Fatalf("last retrieved = %v, want %v", got[0].LastRetrieved, second)
	}
}

func TestMemStoreRecordRetrievalUnknownIDIsNoOp(t *testing.T) {
	store := NewMemStore()
	if err := store.RecordRetrieval(context.Background(), "c1", "ghost", time.Now()); err != nil {
		t.Fatalf("unknown id should be a silent no-op, got %v", err)
	}
}
