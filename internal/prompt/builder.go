// Package prompt assembles the per-turn narrative prompt from the
// character sheet, the retrieved memory block, and recent actions.
package prompt

import (
	"bytes"
	"fmt"
	"time"
)

// BuildContext contains all inputs for one turn's prompt assembly.
type BuildContext struct {
	CharacterName string
	Persona       string
	Realm         string
	Location      string
	Chapter       int
	Karma         int
	// MemoryBlock is the pre-formatted output of the memory formatter; it
	// is injected verbatim.
	MemoryBlock string
	// CallbackHint nudges the generator to resurface one overdue event.
	CallbackHint  string
	RecentActions []string
	PlayerAction  string
}

// Builder assembles layered prompts for the narrative generator.
type Builder struct {
	historyLimit int
	nowFunc      func() time.Time
}

// NewBuilder creates a prompt Builder.
func NewBuilder(historyLimit int) *Builder {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Builder{
		historyLimit: historyLimit,
		nowFunc:      time.Now,
	}
}

// Build renders the system and user prompt pair for one turn.
func (b *Builder) Build(ctx BuildContext) (system, user string, err error) {
	if ctx.CharacterName == "" {
		return "", "", fmt.Errorf("character name is required")
	}

	history := ctx.RecentActions
	if len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}

	data := struct {
		BuildContext
		History []string
		Now     string
	}{
		BuildContext: ctx,
		History:      history,
		Now:          b.nowFunc().UTC().Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return buf.String(), ctx.PlayerAction, nil
}
