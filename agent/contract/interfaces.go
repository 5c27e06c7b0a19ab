package contract

import (
	"context"
	"time"
)

// SpeechOutput is the voice-selection side channel of the external TTS.
type SpeechOutput interface {
	UpdateVoice(ctx context.Context, voice string) error
}

// OutcomePublisher receives case dispositions once they are persisted.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, outcome Outcome) error
}

type Outcome struct {
	CaseID    string    `json:"case_id"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoopSpeechOutput struct{}

func (NoopSpeechOutput) UpdateVoice(context.Context, string) error { return nil }

type NoopOutcomePublisher struct{}

func (NoopOutcomePublisher) PublishOutcome(context.Context, Outcome) error { return nil }
