package story

import (
	"strings"
	"testing"
)

func TestParseTurnEventExtractsBlock(t *testing.T) {
	raw := `The blade sings as you turn to face Elder Feng.

{"event_type": "betrayal", "summary": "Elder Feng revealed as the traitor", "importance": "critical", "npcs": ["elder-feng"], "karma": -10}`

	narration, event, err := ParseTurnEvent(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if event == nil {
		t.Fatalf("expected an event block")
	}
	if event.EventType != "betrayal" || event.Importance != "critical" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Karma != -10 || len(event.NPCs) != 1 {
		t.Fatalf("unexpected consequences: %+v", event)
	}
	if strings.Contains(narration, "{") {
		t.Fatalf("block not stripped from narration: %q", narration)
	}
}

func TestParseTurnEventNoBlock(t *testing.T) {
	narration, event, err := ParseTurnEvent("You rest by the river. Nothing stirs.")
	if err != nil || event != nil {
		t.Fatalf("plain prose should parse clean, got event=%v err=%v", event, err)
	}
	if narration != "You rest by the river. Nothing stirs." {
		t.Fatalf("narration altered: %q", narration)
	}
}

func TestParseTurnEventEmptyBracesAreProse(t *testing.T) {
	raw := "The scroll ends with an empty seal mark: {}"
	narration, event, err := ParseTurnEvent(raw)
	if err != nil || event != nil {
		t.Fatalf("empty braces should read as prose, got event=%v err=%v", event, err)
	}
	if narration != raw {
		t.Fatalf("narration altered: %q", narration)
	}
}

func TestParseTurnEventDefaultsTypeAndImportance(t *testing.T) {
	_, event, err := ParseTurnEvent(`Something happens. {"summary": "a small kindness"}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if event.EventType != "other" || event.Importance != "minor" {
		t.Fatalf("defaults not applied: %+v", event)
	}
}

func TestParseTurnEventRejectsInvalidEnums(t *testing.T) {
	if _, _, err := ParseTurnEvent(`{"summary": "x", "event_type": "banquet"}`); err == nil {
		t.Fatalf("invalid event type accepted")
	}
	if _, _, err := ParseTurnEvent(`{"summary": "x", "importance": "legendary"}`); err == nil {
		t.Fatalf("invalid importance accepted")
	}
	if _, _, err := ParseTurnEvent(`{"event_type": "combat"}`); err == nil {
		t.Fatalf("missing summary accepted")
	}
}
