package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/voice-agent-demos/agent/agents/conversation"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	"github.com/tanpawarit/voice-agent-demos/agent/fraud"
	"github.com/tanpawarit/voice-agent-demos/agent/llm"
	"github.com/tanpawarit/voice-agent-demos/agent/prompt"
	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
	toolx "github.com/tanpawarit/voice-agent-demos/agent/tool"
	"github.com/tanpawarit/voice-agent-demos/agent/tutor"
	logx "github.com/tanpawarit/voice-agent-demos/pkg/logger"
	openrouterx "github.com/tanpawarit/voice-agent-demos/pkg/openrouter"
)

var (
	ErrNotPrewarmed = errors.New("worker is not prewarmed")
	ErrMissingStore = errors.New("fraud case store is required")
)

type Config struct {
	Kind           string `split_words:"true" default:"fraud"`
	BankName       string `split_words:"true" default:"Falcon Bank"`
	MaxToolRounds  int    `split_words:"true" default:"4"`
	GreetOnConnect bool   `split_words:"true" default:"true"`
}

type Option func(*Worker)

func WithFraudStore(store statex.Store[fraud.Case]) Option {
	return func(w *Worker) {
		w.fraudStore = store
	}
}

func WithTutorConfig(cfg tutor.Config) Option {
	return func(w *Worker) {
		w.tutorCfg = cfg
	}
}

func WithPublisher(p contractx.OutcomePublisher) Option {
	return func(w *Worker) {
		if p != nil {
			w.publisher = p
		}
	}
}

// WithChatModel skips building the OpenRouter model at prewarm.
func WithChatModel(m einomodel.ToolCallingChatModel) Option {
	return func(w *Worker) {
		w.model = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// Worker holds what every call of one agent kind shares: prompts, the chat
// model and the record store.
type Worker struct {
	kind   contractx.AgentKind
	cfg    Config
	llmCfg llm.Config

	fraudStore statex.Store[fraud.Case]
	tutorCfg   tutor.Config
	publisher  contractx.OutcomePublisher

	prompts prompt.PromptSet
	model   einomodel.ToolCallingChatModel
	ready   bool

	now func() time.Time
}

func New(cfg Config, llmCfg llm.Config, opts ...Option) (*Worker, error) {
	kind, ok := contractx.ParseAgentKind(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", contractx.ErrUnknownAgent, cfg.Kind)
	}

	w := &Worker{
		kind:      kind,
		cfg:       cfg,
		llmCfg:    llmCfg,
		tutorCfg:  tutor.Config{Voice: tutor.DefaultVoices()},
		publisher: contractx.NoopOutcomePublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	if kind == contractx.AgentKindFraud && w.fraudStore == nil {
		return nil, ErrMissingStore
	}
	return w, nil
}

func (w *Worker) Kind() contractx.AgentKind {
	return w.kind
}

// Prewarm prepares process-wide resources once before any call is accepted.
func (w *Worker) Prewarm(ctx context.Context) error {
	w.prompts = prompt.LoadPromptSet(w.cfg.BankName)
	if _, err := w.prompts.For(w.kind); err != nil {
		return err
	}

	if w.model == nil {
		if err := w.llmCfg.Validate(); err != nil {
			return err
		}
		orCfg := w.llmCfg.OpenRouterFor(w.kind)

		if w.llmCfg.VerifyModel {
			if err := openrouterx.VerifyModel(ctx, openrouterx.NewClient(orCfg), orCfg.Model); err != nil {
				return err
			}
		}

		m, err := orCfg.New(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		w.model = m
		log.Info().Str("agent", string(w.kind)).Str("model", orCfg.Model).Msg("chat model ready")
	}

	w.ready = true
	return nil
}

// Entrypoint builds the per-call session. Record loading never fails the call;
// missing or broken data falls back to an empty or default collection.
func (w *Worker) Entrypoint(ctx context.Context, speech contractx.SpeechOutput) (*Call, error) {
	if !w.ready {
		return nil, ErrNotPrewarmed
	}
	if speech == nil {
		speech = contractx.NoopSpeechOutput{}
	}

	session := statex.NewSessionState(string(w.kind), w.now())
	logger := logx.ForSession(session.SessionID, string(w.kind))

	var catalog *toolx.Catalog
	switch w.kind {
	case contractx.AgentKindFraud:
		cases := statex.LoadOrDefault[fraud.Case](ctx, w.fraudStore, nil)
		logger.Info().Int("cases", len(cases)).Str("store", w.fraudStore.Name()).Msg("loaded fraud cases")
		fs := fraud.NewSession(cases, w.fraudStore,
			fraud.WithPublisher(w.publisher),
			fraud.WithLogger(logger),
			fraud.WithClock(w.now),
		)
		catalog = fraud.Tools(fs)
	case contractx.AgentKindTutor:
		concepts := tutor.LoadContent(ctx, w.tutorCfg.ContentPath)
		logger.Info().Int("concepts", len(concepts)).Msg("loaded tutor content")
		ts := tutor.NewSession(concepts,
			tutor.WithSpeechOutput(speech),
			tutor.WithVoices(w.tutorCfg.Voice),
			tutor.WithLogger(logger),
		)
		catalog = tutor.Tools(ts)
	default:
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownAgent, w.kind)
	}

	systemPrompt, err := w.prompts.For(w.kind)
	if err != nil {
		return nil, err
	}

	svc, err := conversation.New(ctx, w.model, catalog, session,
		conversation.Config{SystemPrompt: systemPrompt, MaxToolRounds: w.cfg.MaxToolRounds},
		conversation.WithLogger(logger),
		conversation.WithClock(w.now),
	)
	if err != nil {
		return nil, err
	}

	logger.Info().Msg("call started")
	return &Call{
		svc:    svc,
		logger: logger,
		greet:  w.cfg.GreetOnConnect,
		now:    w.now,
	}, nil
}
