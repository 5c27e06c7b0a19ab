package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	"github.com/tanpawarit/voice-agent-demos/agent/fraud"
	"github.com/tanpawarit/voice-agent-demos/agent/llm"
	"github.com/tanpawarit/voice-agent-demos/agent/transport/ws"
	"github.com/tanpawarit/voice-agent-demos/agent/tutor"
	"github.com/tanpawarit/voice-agent-demos/agent/worker"
	configx "github.com/tanpawarit/voice-agent-demos/pkg/config"
	logx "github.com/tanpawarit/voice-agent-demos/pkg/logger"
	_ "github.com/tanpawarit/voice-agent-demos/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/voice-agent-demos/pkg/qstash"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// autoload ran before the env file was exported; LOG_* set only there
	// take effect here, and a malformed value is fatal.
	logx.Init(*configx.MustNew[logx.Config]("LOG"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agentCfg := configx.MustNew[worker.Config]("AGENT")
	llmCfg := configx.MustNew[llm.Config]("OPENROUTER")
	httpCfg := configx.MustNew[ws.Config]("HTTP")

	kind, ok := contractx.ParseAgentKind(agentCfg.Kind)
	if !ok {
		log.Fatal().Str("kind", agentCfg.Kind).Msg("unknown agent kind")
	}

	var opts []worker.Option
	switch kind {
	case contractx.AgentKindFraud:
		storeCfg := configx.MustNew[fraud.StoreConfig]("FRAUD")
		store, closeStore, err := fraud.NewStore(ctx, *storeCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open fraud case store")
		}
		defer func() {
			if err := closeStore(); err != nil {
				log.Warn().Err(err).Msg("failed to close fraud case store")
			}
		}()
		opts = append(opts, worker.WithFraudStore(store))

		qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
		if qstashCfg.Enabled() {
			opts = append(opts, worker.WithPublisher(worker.NewQStashPublisher(qstashx.MustNew(*qstashCfg))))
			log.Info().Msg("case outcomes will be published to qstash")
		}
	case contractx.AgentKindTutor:
		tutorCfg := configx.MustNew[tutor.Config]("TUTOR")
		opts = append(opts, worker.WithTutorConfig(*tutorCfg))
	}

	w, err := worker.New(*agentCfg, *llmCfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create worker")
	}
	if err := w.Prewarm(ctx); err != nil {
		log.Fatal().Err(err).Msg("prewarm failed")
	}

	handler := ws.NewHandler(func(ctx context.Context, speech contractx.SpeechOutput) (ws.Call, error) {
		call, err := w.Entrypoint(ctx, speech)
		if err != nil {
			return nil, err
		}
		return call, nil
	}, *httpCfg)

	srv := &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           ws.NewMux(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpCfg.Addr).Str("agent", string(kind)).Msg("voice agent listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("voice agent stopped")
}
