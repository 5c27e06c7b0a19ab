package state

import (
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// SessionState is the per-call conversation envelope. It is created when a
// call connects and dropped when it ends; nothing in it outlives the call.
type SessionState struct {
	SessionID string
	AgentKind string
	StartedAt time.Time
	UpdatedAt time.Time

	// History holds the user, assistant and tool messages of the call, in
	// order. The system prompt is not part of it.
	History []*schema.Message

	Usage Usage
}

type Usage struct {
	Turns            int `json:"turns"`
	ModelCalls       int `json:"model_calls"`
	ToolCalls        int `json:"tool_calls"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func NewSessionState(agentKind string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: uuid.NewString(),
		AgentKind: agentKind,
		StartedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		History:   make([]*schema.Message, 0, 16),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *SessionState) Append(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m != nil {
			s.History = append(s.History, m)
		}
	}
}

// CollectUsage folds the token usage reported on a model response into the
// running totals. Responses without usage only count as a call.
func (s *SessionState) CollectUsage(msg *schema.Message) {
	s.Usage.ModelCalls++
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return
	}
	u := msg.ResponseMeta.Usage
	s.Usage.PromptTokens += u.PromptTokens
	s.Usage.CompletionTokens += u.CompletionTokens
	s.Usage.TotalTokens += u.TotalTokens
}

func (s *SessionState) Duration(now time.Time) time.Duration {
	return now.UTC().Sub(s.StartedAt)
}
