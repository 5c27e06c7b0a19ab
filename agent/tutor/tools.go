package tutor

import (
	"context"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	toolx "github.com/tanpawarit/voice-agent-demos/agent/tool"
)

const (
	ToolSetLearningMode    = "set_learning_mode"
	ToolGetConceptSummary  = "get_concept_summary"
	ToolGetConceptQuestion = "get_concept_question"
	ToolListConcepts       = "list_concepts"
)

const conceptIDDesc = "Concept id such as \"loops\". Leave empty for the current concept."

func Tools(s *Session) *toolx.Catalog {
	return toolx.MustNewCatalog(contractx.AgentKindTutor,
		toolx.Define(ToolSetLearningMode,
			"Switch the tutoring mode and the concept being studied.",
			map[string]*schema.ParameterInfo{
				"mode":       toolx.RequiredString(`One of "learn", "quiz" or "teach_back"`),
				"concept_id": toolx.OptionalString("Concept id to study. Defaults to the first concept."),
			},
			func(ctx context.Context, args toolx.Args) (string, error) {
				mode, err := args.Required("mode")
				if err != nil {
					return "", err
				}
				return s.SetMode(ctx, mode, args.Optional("concept_id")), nil
			},
		),
		toolx.Define(ToolGetConceptSummary,
			"Return the summary text of a concept, to explain in learn mode.",
			map[string]*schema.ParameterInfo{
				"concept_id": toolx.OptionalString(conceptIDDesc),
			},
			func(ctx context.Context, args toolx.Args) (string, error) {
				return s.Summary(args.Optional("concept_id")), nil
			},
		),
		toolx.Define(ToolGetConceptQuestion,
			"Return the sample question of a concept, to ask in quiz or teach_back mode.",
			map[string]*schema.ParameterInfo{
				"concept_id": toolx.OptionalString(conceptIDDesc),
			},
			func(ctx context.Context, args toolx.Args) (string, error) {
				return s.Question(args.Optional("concept_id")), nil
			},
		),
		toolx.Define(ToolListConcepts,
			"List the concepts available to study.",
			nil,
			func(ctx context.Context, _ toolx.Args) (string, error) {
				return s.ListConcepts(), nil
			},
		),
	)
}
