// Package memory implements the long-term narrative memory subsystem:
// importance scoring, decay weighting, keyword and similarity based
// retrieval, callback scheduling, and prompt formatting.
package memory

import "github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"

// ScoreForLevel maps an importance level to its numeric score. Other
// components threshold on these exact breakpoints.
func ScoreForLevel(level types.ImportanceLevel) int {
	switch level {
	case types.ImportanceCritical:
		return 10
	case types.ImportanceImportant:
		return 7
	case types.ImportanceModerate:
		return 5
	case types.ImportanceMinor:
		return 3
	default:
		return 1
	}
}

// LevelForScore is the inverse mapping. The boundaries are asymmetric on
// purpose: critical writes as 10 but reads back from 9, so a score nudged
// down one notch still reads as critical.
func LevelForScore(score int) types.ImportanceLevel {
	switch {
	case score >= 9:
		return types.ImportanceCritical
	case score >= 7:
		return types.ImportanceImportant
	case score >= 5:
		return types.ImportanceModerate
	case score >= 3:
		return types.ImportanceMinor
	default:
		return types.ImportanceTrivial
	}
}
