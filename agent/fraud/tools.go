package fraud

import (
	"context"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	toolx "github.com/tanpawarit/voice-agent-demos/agent/tool"
)

const (
	ToolLoadCaseForUser        = "load_case_for_user"
	ToolGetSecurityQuestion    = "get_security_question"
	ToolVerifySecurityAnswer   = "verify_security_answer"
	ToolDescribeTransaction    = "describe_current_transaction"
	ToolMarkTransactionStatus  = "mark_transaction_status"
	ToolMarkVerificationFailed = "mark_verification_failed"
)

// Tools binds the fraud tools to one call session.
func Tools(s *Session) *toolx.Catalog {
	return toolx.MustNewCatalog(contractx.AgentKindFraud,
		toolx.Define(ToolLoadCaseForUser,
			"Load the fraud case for the given customer name and make it the active case for this call.",
			map[string]*schema.ParameterInfo{
				"user_name": toolx.RequiredString("Customer name as spoken by the caller"),
			},
			func(ctx context.Context, args toolx.Args) (string, error) {
				name, err := args.Required("user_name")
				if err != nil {
					return "", err
				}
				return s.LoadCaseForUser(name), nil
			},
		),
		toolx.Define(ToolGetSecurityQuestion,
			"Return the security question for the active case.",
			nil,
			func(ctx context.Context, _ toolx.Args) (string, error) {
				return s.SecurityQuestion(), nil
			},
		),
		toolx.Define(ToolVerifySecurityAnswer,
			"Verify the caller's answer to the security question.",
			map[string]*schema.ParameterInfo{
				"answer": toolx.RequiredString("The caller's answer"),
			},
			func(ctx context.Context, args toolx.Args) (string, error) {
				answer, err := args.Required("answer")
				if err != nil {
					return "", err
				}
				return s.VerifySecurityAnswer(answer), nil
			},
		),
		toolx.Define(ToolDescribeTransaction,
			"Describe the suspicious transaction of the active case in natural language.",
			nil,
			func(ctx context.Context, _ toolx.Args) (string, error) {
				return s.DescribeCurrentTransaction(), nil
			},
		),
		toolx.Define(ToolMarkTransactionStatus,
			"Mark the active transaction as safe or fraudulent and save the case.",
			map[string]*schema.ParameterInfo{
				"status": toolx.RequiredString(`One of "safe" or "fraudulent"`),
			},
			func(ctx context.Context, args toolx.Args) (string, error) {
				status, err := args.Required("status")
				if err != nil {
					return "", err
				}
				return s.MarkTransactionStatus(ctx, status), nil
			},
		),
		toolx.Define(ToolMarkVerificationFailed,
			"Record that identity verification failed for the active case and save it.",
			nil,
			func(ctx context.Context, _ toolx.Args) (string, error) {
				return s.MarkVerificationFailed(ctx), nil
			},
		),
	)
}
