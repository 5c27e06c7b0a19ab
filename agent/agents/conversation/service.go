package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	nodex "github.com/tanpawarit/voice-agent-demos/agent/nodes"
	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
	toolx "github.com/tanpawarit/voice-agent-demos/agent/tool"
)

const DefaultMaxToolRounds = 4

// greetingCue opens the call on the model's side before the caller has said
// anything.
const greetingCue = "(The call has just connected. Greet the caller and start the conversation.)"

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Config struct {
	SystemPrompt  string
	MaxToolRounds int
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service runs the turns of one call. It is not safe for concurrent use; the
// transport feeds it one utterance at a time.
type Service struct {
	model   einomodel.ToolCallingChatModel
	catalog *toolx.Catalog
	session *statex.SessionState

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	systemPrompt  string
	maxToolRounds int

	logger zerolog.Logger
	now    func() time.Time
}

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	catalog *toolx.Catalog,
	session *statex.SessionState,
	cfg Config,
	opts ...Option,
) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}
	if session == nil {
		return nil, errors.New("session state is required")
	}
	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, catalog.AgentKind())
	}

	toolModel, err := chatModel.WithTools(catalog.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, catalog.AgentKind(), err)
	}

	maxToolRounds := cfg.MaxToolRounds
	if maxToolRounds <= 0 {
		maxToolRounds = DefaultMaxToolRounds
	}

	s := &Service{
		model:         toolModel,
		catalog:       catalog,
		session:       session,
		systemPrompt:  systemPrompt,
		maxToolRounds: maxToolRounds,
		logger:        log.Logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	graphRunner, err := s.compileTurnGraph(ctx)
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

func (s *Service) Session() *statex.SessionState {
	return s.session
}

func (s *Service) HandleUtterance(ctx context.Context, text string) (string, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{Text: text})
	if err != nil {
		return "", err
	}
	s.logger.Debug().Int("tool_calls", out.ToolCalls).Msg("turn completed")
	return out.Reply, nil
}

// Greet produces the agent's opening line.
func (s *Service) Greet(ctx context.Context) (string, error) {
	return s.HandleUtterance(ctx, greetingCue)
}
