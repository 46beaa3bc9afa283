package memory

import (
	"math"
	"testing"
	"time"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

func eventAged(days float64, retrievals int) *types.MemoryEvent {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &types.MemoryEvent{
		Timestamp:      now.Add(-time.Duration(days * 24 * float64(time.Hour))),
		RetrievalCount: retrievals,
	}
}

func TestDecayFreshEventIsOne(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &types.MemoryEvent{Timestamp: now}
	if got := Decay(event, now); got != 1.0 {
		t.Fatalf("decay at age 0 = %f, want 1.0", got)
	}
}

func TestDecayNonIncreasingInAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := math.Inf(1)
	for _, days := range []float64{0, 1, 7, 30, 60, 90, 365} {
		got := Decay(eventAged(days, 0), now)
		if got <= 0 || got > 1.0 {
			t.Fatalf("decay at %v days = %f, want in (0, 1]", days, got)
		}
		if got > prev {
			t.Fatalf("decay increased with age: %f at %v days", got, days)
		}
		prev = got
	}
}

func TestDecayNonDecreasingInRetrievals(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := 0.0
	for _, retrievals := range []int{0, 1, 3, 5, 10, 100} {
		got := Decay(eventAged(45, retrievals), now)
		if got < prev {
			t.Fatalf("decay decreased with retrievals: %f at %d", got, retrievals)
		}
		prev = got
	}
}

func TestDecayRetrievalBonusCapped(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	five := Decay(eventAged(45, 5), now)
	hundred := Decay(eventAged(45, 100), now)
	if five != hundred {
		t.Fatalf("bonus not capped: 5 retrievals = %f, 100 retrievals = %f", five, hundred)
	}
}

func TestDecayOldUnretrievedStillPositive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got := Decay(eventAged(90, 0), now)
	if got <= 0 {
		t.Fatalf("90-day decay = %f, want > 0", got)
	}
	if math.Abs(got-math.Exp(-3)) > 1e-9 {
		t.Fatalf("90-day decay = %f, want exp(-3)", got)
	}
}

func TestDecayCappedAtOne(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := Decay(eventAged(0, 10), now); got != 1.0 {
		t.Fatalf("fresh heavily-retrieved decay = %f, want capped at 1.0", got)
	}
}
