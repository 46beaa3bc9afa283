package types

import "time"

// EventType classifies a memory event. The set is closed; stores reject
// unknown values on write.
type EventType string

const (
	EventCombat             EventType = "combat"
	EventSocial             EventType = "social"
	EventCultivation        EventType = "cultivation"
	EventBetrayal           EventType = "betrayal"
	EventAlliance           EventType = "alliance"
	EventMurder             EventType = "murder"
	EventRescue             EventType = "rescue"
	EventTheft              EventType = "theft"
	EventDiscovery          EventType = "discovery"
	EventBreakthrough       EventType = "breakthrough"
	EventDeath              EventType = "death"
	EventRomance            EventType = "romance"
	EventGrudge             EventType = "grudge"
	EventFavor              EventType = "favor"
	EventSectEvent          EventType = "sect_event"
	EventTreasure           EventType = "treasure"
	EventTechniqueLearned   EventType = "technique_learned"
	EventItemObtained       EventType = "item_obtained"
	EventLocationDiscovered EventType = "location_discovered"
	EventNPCMet             EventType = "npc_met"
	EventQuestCompleted     EventType = "quest_completed"
	EventOther              EventType = "other"
)

// ValidEventTypes is the closed set of accepted event types.
var ValidEventTypes = map[EventType]bool{
	EventCombat:             true,
	EventSocial:             true,
	EventCultivation:        true,
	EventBetrayal:           true,
	EventAlliance:           true,
	EventMurder:             true,
	EventRescue:             true,
	EventTheft:              true,
	EventDiscovery:          true,
	EventBreakthrough:       true,
	EventDeath:              true,
	EventRomance:            true,
	EventGrudge:             true,
	EventFavor:              true,
	EventSectEvent:          true,
	EventTreasure:           true,
	EventTechniqueLearned:   true,
	EventItemObtained:       true,
	EventLocationDiscovered: true,
	EventNPCMet:             true,
	EventQuestCompleted:     true,
	EventOther:              true,
}

// ImportanceLevel is the ordinal salience of an event.
type ImportanceLevel string

const (
	ImportanceTrivial   ImportanceLevel = "trivial"
	ImportanceMinor     ImportanceLevel = "minor"
	ImportanceModerate  ImportanceLevel = "moderate"
	ImportanceImportant ImportanceLevel = "important"
	ImportanceCritical  ImportanceLevel = "critical"
)

// EmotionTag labels the affect state attached to an event.
type EmotionTag string

const (
	EmotionJoy       EmotionTag = "joy"
	EmotionSorrow    EmotionTag = "sorrow"
	EmotionAnger     EmotionTag = "anger"
	EmotionFear      EmotionTag = "fear"
	EmotionHatred    EmotionTag = "hatred"
	EmotionLove      EmotionTag = "love"
	EmotionSurprise  EmotionTag = "surprise"
	EmotionShame     EmotionTag = "shame"
	EmotionPride     EmotionTag = "pride"
	EmotionRegret    EmotionTag = "regret"
	EmotionGratitude EmotionTag = "gratitude"
	EmotionJealousy  EmotionTag = "jealousy"
	EmotionResolve   EmotionTag = "resolve"
)

// RelationshipDelta records a favor or grudge shift toward one NPC.
type RelationshipDelta struct {
	NPCID  string `json:"npc_id"`
	Change int    `json:"change"`
}

// MemoryEvent is one remembered occurrence in a character's story.
// Events are immutable once stored except for RetrievalCount and
// LastRetrieved, which only advance.
type MemoryEvent struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"character_id"`
	Timestamp   time.Time `json:"timestamp"`
	// Chapter is the narrative chapter the event happened in; non-decreasing
	// across a character's history in creation order.
	Chapter   int       `json:"chapter"`
	EventType EventType `json:"event_type"`
	Summary   string    `json:"summary"`
	Narrative string    `json:"narrative"`
	// Importance is authoritative; ImportanceScore is derived from it at
	// creation time and cached.
	Importance      ImportanceLevel `json:"importance"`
	ImportanceScore int             `json:"importance_score"`
	Emotion         EmotionTag      `json:"emotion,omitempty"`
	Location        string          `json:"location,omitempty"`
	InvolvedNPCs    []string        `json:"involved_npcs,omitempty"`
	Items           []string        `json:"items,omitempty"`
	Techniques      []string        `json:"techniques,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	// Keywords are extracted from the summary and narrative, never authored.
	Keywords  []string  `json:"keywords,omitempty"`
	Embedding []float32 `json:"-"`
	// Consequences.
	KarmaChange        int                 `json:"karma_change,omitempty"`
	StatChanges        map[string]int      `json:"stat_changes,omitempty"`
	RelationshipDeltas []RelationshipDelta `json:"relationship_deltas,omitempty"`
	// Usage metadata, maintained by the store.
	RetrievalCount int        `json:"retrieval_count"`
	LastRetrieved  *time.Time `json:"last_retrieved,omitempty"`
}

// MemoryQuery is a retrieval request against one character's history.
// Zero-valued filters are ignored.
type MemoryQuery struct {
	CharacterID   string          `json:"character_id"`
	QueryText     string          `json:"query_text"`
	EventTypes    []EventType     `json:"event_types,omitempty"`
	MinImportance ImportanceLevel `json:"min_importance,omitempty"`
	InvolvedNPCs  []string        `json:"involved_npcs,omitempty"`
	Location      string          `json:"location,omitempty"`
	// Chapter and time bounds are inclusive; zero values disable them.
	ChapterFrom int        `json:"chapter_from,omitempty"`
	ChapterTo   int        `json:"chapter_to,omitempty"`
	TimeFrom    *time.Time `json:"time_from,omitempty"`
	TimeTo      *time.Time `json:"time_to,omitempty"`
	// Limit defaults to 5, SimilarityThreshold to 0.7 when unset.
	Limit               int     `json:"limit,omitempty"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
	IncludeContext      bool    `json:"include_context,omitempty"`
}

// MemoryResult pairs a retrieved event with its similarity score.
type MemoryResult struct {
	Event      *MemoryEvent `json:"event"`
	Similarity float64      `json:"similarity"`
	Relevance  string       `json:"relevance,omitempty"`
	// Context holds same-chapter neighbor events when the query asked for
	// surrounding context. Their usage metadata is not touched.
	Context []*MemoryEvent `json:"context,omitempty"`
}

// MemoryContext is the payload handed to the prompt formatter.
type MemoryContext struct {
	Results   []MemoryResult `json:"results"`
	Searched  int            `json:"searched"`
	QueryText string         `json:"query_text"`
	Summary   string         `json:"summary"`
}
