package memory

import "github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"

// DefaultMinChapterGap is the chapter distance an important event must age
// before it becomes eligible to resurface.
const DefaultMinChapterGap = 5

// IsDue reports whether a past event is eligible to resurface as a
// narrative callback at the current chapter. Critical events come back
// after 3 chapters, important ones after minChapterGap, moderate ones
// after twice that; trivial and minor events never do. Picking one due
// event and weaving it into the prompt is the caller's job.
func IsDue(event *types.MemoryEvent, currentChapter, minChapterGap int) bool {
	if minChapterGap <= 0 {
		minChapterGap = DefaultMinChapterGap
	}
	gap := currentChapter - event.Chapter
	switch event.Importance {
	case types.ImportanceCritical:
		return gap >= 3
	case types.ImportanceImportant:
		return gap >= minChapterGap
	case types.ImportanceModerate:
		return gap >= 2*minChapterGap
	default:
		return false
	}
}
