package tutor

import (
	"context"

	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
)

// LoadContent reads the concept list from path, falling back to
// DefaultConcepts when the file is missing or malformed.
func LoadContent(ctx context.Context, path string) []Concept {
	store, err := statex.NewFileStore[Concept](path)
	if err != nil {
		return DefaultConcepts()
	}
	return statex.LoadOrDefault[Concept](ctx, store, DefaultConcepts)
}
