package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanpawarit/voice-agent-demos/agent/agents/conversation"
	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
)

// Call is one connected conversation.
type Call struct {
	svc    *conversation.Service
	logger zerolog.Logger
	greet  bool
	now    func() time.Time
}

func (c *Call) SessionID() string {
	return c.svc.Session().SessionID
}

func (c *Call) Logger() zerolog.Logger {
	return c.logger
}

// ShouldGreet reports whether the agent speaks first.
func (c *Call) ShouldGreet() bool {
	return c.greet
}

func (c *Call) Greet(ctx context.Context) (string, error) {
	return c.svc.Greet(ctx)
}

func (c *Call) HandleUtterance(ctx context.Context, text string) (string, error) {
	return c.svc.HandleUtterance(ctx, text)
}

// Shutdown logs the usage summary of the call and returns it.
func (c *Call) Shutdown() statex.Usage {
	session := c.svc.Session()
	u := session.Usage
	c.logger.Info().
		Int("turns", u.Turns).
		Int("model_calls", u.ModelCalls).
		Int("tool_calls", u.ToolCalls).
		Int("prompt_tokens", u.PromptTokens).
		Int("completion_tokens", u.CompletionTokens).
		Int("total_tokens", u.TotalTokens).
		Dur("duration", session.Duration(c.now())).
		Msg("call usage")
	return u
}
