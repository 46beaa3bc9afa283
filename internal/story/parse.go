package story

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

// TurnEvent is the structured block the generator may append to its
// narration when the host asks for one. All fields except summary are
// optional.
type TurnEvent struct {
	EventType  string   `json:"event_type"`
	Summary    string   `json:"summary"`
	Importance string   `json:"importance"`
	Emotion    string   `json:"emotion,omitempty"`
	Location   string   `json:"location,omitempty"`
	NPCs       []string `json:"npcs,omitempty"`
	Karma      int      `json:"karma,omitempty"`
}

// isEmpty reports whether no field was populated, which means the brace
// pair was prose rather than an event block.
func (e TurnEvent) isEmpty() bool {
	return e.Summary == "" && e.EventType == "" && e.Importance == "" &&
		e.Emotion == "" && e.Location == "" && len(e.NPCs) == 0 && e.Karma == 0
}

var validImportance = map[string]bool{
	string(types.ImportanceTrivial):   true,
	string(types.ImportanceMinor):     true,
	string(types.ImportanceModerate):  true,
	string(types.ImportanceImportant): true,
	string(types.ImportanceCritical):  true,
}

// ParseTurnEvent extracts and validates the structured event block from
// raw model output. Returns the narration with the block stripped. A
// missing block is not an error; a malformed one is.
func ParseTurnEvent(raw string) (narration string, event *TurnEvent, err error) {
	clean := strings.TrimSpace(raw)
	start := strings.LastIndex(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return clean, nil, nil
	}

	var parsed TurnEvent
	if err := json.Unmarshal([]byte(clean[start:end+1]), &parsed); err != nil {
		// A brace pair inside prose is not a block.
		return clean, nil, nil
	}
	if parsed.isEmpty() {
		return clean, nil, nil
	}
	if parsed.Summary == "" {
		return clean, nil, fmt.Errorf("turn event block missing summary")
	}

	parsed.EventType = strings.ToLower(strings.TrimSpace(parsed.EventType))
	if parsed.EventType == "" {
		parsed.EventType = string(types.EventOther)
	}
	if !types.ValidEventTypes[types.EventType(parsed.EventType)] {
		return clean, nil, fmt.Errorf("invalid event type: %s", parsed.EventType)
	}

	parsed.Importance = strings.ToLower(strings.TrimSpace(parsed.Importance))
	if parsed.Importance == "" {
		parsed.Importance = string(types.ImportanceMinor)
	}
	if !validImportance[parsed.Importance] {
		return clean, nil, fmt.Errorf("invalid importance level: %s", parsed.Importance)
	}

	return strings.TrimSpace(clean[:start]), &parsed, nil
}
