package nodes

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
)

// ToolExecutor runs one tool request and never fails; problems come back in
// the result.
type ToolExecutor interface {
	Execute(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult
}

type RunModelConfig struct {
	SystemPrompt  string
	MaxToolRounds int
	Logger        zerolog.Logger
}

// RunModel calls the model until it answers without requesting tools. Every
// requested tool is executed in order and its result appended to the history
// before the next call. More than MaxToolRounds tool rounds is an error.
// Usage of the calls that did return is recorded on the error paths too, since
// the graph stops before the record step.
func RunModel(
	ctx context.Context,
	in *GraphState,
	chatModel einomodel.ToolCallingChatModel,
	tools ToolExecutor,
	cfg RunModelConfig,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	for round := 0; ; round++ {
		input := make([]*schema.Message, 0, len(in.Session.History)+1)
		input = append(input, schema.SystemMessage(cfg.SystemPrompt))
		input = append(input, in.Session.History...)

		msg, err := chatModel.Generate(ctx, input)
		if err != nil {
			_, _ = RecordUsage(in)
			return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		if msg == nil {
			_, _ = RecordUsage(in)
			return nil, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
		}

		in.Responses = append(in.Responses, msg)

		if len(msg.ToolCalls) == 0 {
			in.Session.Append(msg)
			in.Reply = msg.Content
			return in, nil
		}
		// Unanswered tool calls must never reach the history.
		if round >= cfg.MaxToolRounds {
			_, _ = RecordUsage(in)
			return nil, fmt.Errorf("%w: limit=%d", contractx.ErrToolLoop, cfg.MaxToolRounds)
		}
		in.Session.Append(msg)

		for _, call := range msg.ToolCalls {
			result := executeCall(ctx, call, tools)
			in.ToolCalls++
			cfg.Logger.Debug().
				Str("tool", result.Tool).
				Bool("failed", result.Error != "").
				Msg("tool executed")
			in.Session.Append(schema.ToolMessage(result.Content(), call.ID))
		}
	}
}

func executeCall(ctx context.Context, call schema.ToolCall, tools ToolExecutor) contractx.ToolResult {
	req, err := toToolRequest(call)
	if err != nil {
		return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
	}
	return tools.Execute(ctx, req)
}
