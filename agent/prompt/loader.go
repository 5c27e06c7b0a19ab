package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
)

const bankNamePlaceholder = "{bank_name}"

var (
	//go:embed template/fraud.txt
	fraudRaw string

	//go:embed template/tutor.txt
	tutorRaw string
)

// PromptSet holds the system prompts of every agent kind.
type PromptSet struct {
	Fraud string
	Tutor string
}

// LoadPromptSet returns the embedded prompts with bankName substituted into
// the fraud prompt.
func LoadPromptSet(bankName string) PromptSet {
	return PromptSet{
		Fraud: strings.TrimSpace(strings.ReplaceAll(fraudRaw, bankNamePlaceholder, strings.TrimSpace(bankName))),
		Tutor: strings.TrimSpace(tutorRaw),
	}
}

func (p PromptSet) For(kind contractx.AgentKind) (string, error) {
	var out string
	switch kind {
	case contractx.AgentKindFraud:
		out = p.Fraud
	case contractx.AgentKindTutor:
		out = p.Tutor
	default:
		return "", fmt.Errorf("%w: %s", contractx.ErrUnknownAgent, kind)
	}
	if out == "" {
		return "", fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, kind)
	}
	return out, nil
}
