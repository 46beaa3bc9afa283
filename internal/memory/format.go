package memory

import (
	"fmt"
	"math"
	"strings"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

// NoMemoriesSentinel is emitted when there is nothing to inject. The
// narrative generator keys off this exact string, so it must never vary.
const NoMemoriesSentinel = "No relevant memories surfaced for this scene."

const memoriesInstruction = "These memories belong to the protagonist's past. Let them echo in the narration where they naturally resonate."

// FormatResult renders one retrieved memory as a prompt block. The layout
// is part of the prompt contract with the narrative generator and must be
// byte-stable for identical input.
func FormatResult(result types.MemoryResult) string {
	event := result.Event
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Chapter %d] (%d%% match)\n", event.Chapter, int(math.Round(result.Similarity*100)))
	if event.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", event.Location)
	}
	sb.WriteString(event.Summary)
	if len(event.InvolvedNPCs) > 0 {
		fmt.Fprintf(&sb, "\nNPCs: %s", strings.Join(event.InvolvedNPCs, ", "))
	}
	if event.KarmaChange != 0 {
		fmt.Fprintf(&sb, "\nKarma Impact: %+d", event.KarmaChange)
	}
	return sb.String()
}

// FormatContext renders the full memory block for prompt injection: a
// count header, one block per result separated by blank lines, and a
// closing instruction for the generator. Zero results yield the fixed
// sentinel string.
func FormatContext(mc *types.MemoryContext) string {
	if mc == nil || len(mc.Results) == 0 {
		return NoMemoriesSentinel
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Relevant Memories (%d) ===\n\n", len(mc.Results))
	for i, result := range mc.Results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(FormatResult(result))
	}
	sb.WriteString("\n\n")
	sb.WriteString(memoriesInstruction)
	return sb.String()
}
