package nodes

import (
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session is missing")
)

type GraphInput struct {
	Text string
}

type GraphOutput struct {
	Reply     string
	ToolCalls int
}

// GraphState flows through every node of one turn.
type GraphState struct {
	Text    string
	Now     time.Time
	Session *statex.SessionState

	// Responses are the assistant messages produced during this turn, in
	// the order the model returned them.
	Responses []*schema.Message
	ToolCalls int
	Reply     string
}

func ValidateRequest(in GraphInput, session *statex.SessionState, nowFn func() time.Time) (*GraphState, error) {
	if session == nil {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		Text:    text,
		Now:     nowFn().UTC(),
		Session: session,
	}, nil
}
