package worker

import (
	"context"

	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	qstashx "github.com/tanpawarit/voice-agent-demos/pkg/qstash"
)

type qstashPublisher struct {
	client *qstashx.Client
}

// NewQStashPublisher forwards case outcomes to QStash. Repeated outcomes for
// the same case and status are deduplicated upstream.
func NewQStashPublisher(client *qstashx.Client) contractx.OutcomePublisher {
	return &qstashPublisher{client: client}
}

func (p *qstashPublisher) PublishOutcome(ctx context.Context, outcome contractx.Outcome) error {
	_, err := p.client.Publish(ctx, outcome, outcome.CaseID+"-"+outcome.Status)
	return err
}
