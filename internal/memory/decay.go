package memory

import (
	"math"
	"time"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

const (
	// decayTimeConstantDays controls the exponential falloff of unretrieved
	// memories. A 30-day-old memory sits near 0.37, a 90-day-old near 0.05.
	decayTimeConstantDays = 30.0

	// retrievalBonusStep is added per past retrieval, capped at
	// retrievalBonusCap. Frequently recalled memories resist decay.
	retrievalBonusStep = 0.1
	retrievalBonusCap  = 0.5
)

// Decay returns the time- and usage-adjusted relevance weight of an event
// at the given instant, in (0, 1.0]. The value modulates ranking; it is
// never a hard cutoff, so an old unretrieved event can still surface when
// nothing fresher matches.
func Decay(event *types.MemoryEvent, now time.Time) float64 {
	ageDays := now.Sub(event.Timestamp).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}
	base := math.Exp(-ageDays / decayTimeConstantDays)
	bonus := math.Min(float64(event.RetrievalCount)*retrievalBonusStep, retrievalBonusCap)
	return math.Min(base+bonus, 1.0)
}
