package nodes

import (
	"fmt"

	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
)

func RecordUsage(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	for _, msg := range in.Responses {
		in.Session.CollectUsage(msg)
	}
	in.Session.Usage.ToolCalls += in.ToolCalls
	in.Session.Usage.Turns++
	return in, nil
}
