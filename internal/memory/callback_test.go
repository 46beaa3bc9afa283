package memory

import (
	"testing"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

func callbackEvent(importance types.ImportanceLevel, chapter int) *types.MemoryEvent {
	return &types.MemoryEvent{Importance: importance, Chapter: chapter}
}

func TestIsDueCritical(t *testing.T) {
	event := callbackEvent(types.ImportanceCritical, 10)
	if !IsDue(event, 13, 5) {
		t.Fatalf("critical event should be due at gap 3")
	}
	if IsDue(event, 12, 5) {
		t.Fatalf("critical event should not be due at gap 2")
	}
}

func TestIsDueImportant(t *testing.T) {
	event := callbackEvent(types.ImportanceImportant, 10)
	if !IsDue(event, 15, 5) {
		t.Fatalf("important event should be due exactly at gap 5")
	}
	if IsDue(event, 14, 5) {
		t.Fatalf("important event should not be due at gap 4")
	}
}

func TestIsDueModerateNeedsDoubleGap(t *testing.T) {
	event := callbackEvent(types.ImportanceModerate, 10)
	if IsDue(event, 19, 5) {
		t.Fatalf("moderate event should not be due at gap 9")
	}
	if !IsDue(event, 20, 5) {
		t.Fatalf("moderate event should be due at gap 10")
	}
}

func TestIsDueTrivialAndMinorNever(t *testing.T) {
	for _, level := range []types.ImportanceLevel{types.ImportanceTrivial, types.ImportanceMinor} {
		if IsDue(callbackEvent(level, 1), 1000, 5) {
			t.Fatalf("%s event should never be due", level)
		}
	}
}

func TestIsDueDefaultsGap(t *testing.T) {
	event := callbackEvent(types.ImportanceImportant, 10)
	if !IsDue(event, 15, 0) {
		t.Fatalf("zero gap should fall back to the default of %d", DefaultMinChapterGap)
	}
	if IsDue(event, 14, 0) {
		t.Fatalf("default gap should not fire at 4")
	}
}
