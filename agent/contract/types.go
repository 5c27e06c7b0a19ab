package contract

import "strings"

type AgentKind string

const (
	AgentKindFraud AgentKind = "fraud"
	AgentKindTutor AgentKind = "tutor"
)

func ParseAgentKind(raw string) (AgentKind, bool) {
	switch AgentKind(strings.ToLower(strings.TrimSpace(raw))) {
	case AgentKindFraud:
		return AgentKindFraud, true
	case AgentKindTutor:
		return AgentKindTutor, true
	default:
		return "", false
	}
}

type ToolRequest struct {
	ID   string         `json:"id,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries the spoken text of a tool call. Error is set instead of
// Result when the call could not be dispatched at all.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Content is what gets fed back to the model for this result.
func (r ToolResult) Content() string {
	if r.Error != "" {
		return "error: " + r.Error
	}
	return r.Result
}
