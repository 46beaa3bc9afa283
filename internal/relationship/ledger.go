// Package relationship derives NPC standings and the karma total from the
// deltas recorded on memory events. It is a read-only fold: events are
// never mutated.
package relationship

import (
	"sort"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

// Attitude labels how an NPC currently regards the protagonist.
type Attitude string

const (
	AttitudeHostile Attitude = "Hostile"
	AttitudeWary    Attitude = "Wary"
	AttitudeNeutral Attitude = "Neutral"
	AttitudeWarm    Attitude = "Warm"
	AttitudeDevoted Attitude = "Devoted"
)

// Standing is one NPC's accumulated favor.
type Standing struct {
	NPCID    string
	Favor    int
	Attitude Attitude
}

// ClampFavor bounds favor to -100..100.
func ClampFavor(favor int) int {
	switch {
	case favor < -100:
		return -100
	case favor > 100:
		return 100
	default:
		return favor
	}
}

// AttitudeFor maps a favor value to its label.
func AttitudeFor(favor int) Attitude {
	switch {
	case favor <= -60:
		return AttitudeHostile
	case favor <= -20:
		return AttitudeWary
	case favor < 20:
		return AttitudeNeutral
	case favor < 60:
		return AttitudeWarm
	default:
		return AttitudeDevoted
	}
}

// Ledger folds event deltas into per-NPC standings and a karma total.
type Ledger struct {
	favor map[string]int
	karma int
}

// NewLedger returns an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{favor: make(map[string]int)}
}

// Apply folds one event's consequences into the ledger.
func (l *Ledger) Apply(event *types.MemoryEvent) {
	l.karma += event.KarmaChange
	for _, delta := range event.RelationshipDeltas {
		if delta.NPCID == "" {
			continue
		}
		l.favor[delta.NPCID] = ClampFavor(l.favor[delta.NPCID] + delta.Change)
	}
}

// Karma returns the accumulated karma total.
func (l *Ledger) Karma() int { return l.karma }

// Standing returns one NPC's current standing.
func (l *Ledger) Standing(npcID string) Standing {
	favor := l.favor[npcID]
	return Standing{NPCID: npcID, Favor: favor, Attitude: AttitudeFor(favor)}
}

// Standings lists every known NPC sorted by id for stable output.
func (l *Ledger) Standings() []Standing {
	ids := make([]string, 0, len(l.favor))
	for id := range l.favor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Standing, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.Standing(id))
	}
	return out
}
