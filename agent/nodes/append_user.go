package nodes

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
)

func AppendUser(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Session.Append(schema.UserMessage(in.Text))
	in.Session.Touch(in.Now)
	return in, nil
}
