package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
)

const replyTurnFailed = "I'm sorry, I had trouble with that. Could you say it again?"

type Config struct {
	Addr            string        `split_words:"true" default:":8080"`
	IdleTimeout     time.Duration `split_words:"true" default:"5m"`
	WriteTimeout    time.Duration `split_words:"true" default:"10s"`
	MaxMessageBytes int64         `split_words:"true" default:"65536"`
}

// Call is the per-connection conversation driven by the handler.
type Call interface {
	ShouldGreet() bool
	Greet(ctx context.Context) (string, error)
	HandleUtterance(ctx context.Context, text string) (string, error)
	Shutdown() statex.Usage
	Logger() zerolog.Logger
}

// StartFunc opens a call. speech is the connection's voice side channel.
type StartFunc func(ctx context.Context, speech contractx.SpeechOutput) (Call, error)

type Handler struct {
	start    StartFunc
	cfg      Config
	upgrader websocket.Upgrader
}

func NewHandler(start StartFunc, cfg Config) *Handler {
	return &Handler{
		start: start,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	if h.cfg.MaxMessageBytes > 0 {
		wsConn.SetReadLimit(h.cfg.MaxMessageBytes)
	}
	c := newConn(wsConn, h.cfg.WriteTimeout)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	call, err := h.start(ctx, c)
	if err != nil {
		log.Error().Err(err).Msg("failed to start call")
		_ = c.writeFrame(outboundFrame{Type: FrameError, Message: "call could not be started"})
		c.close(websocket.CloseInternalServerErr, "start failed")
		return
	}
	defer call.Shutdown()

	logger := call.Logger()
	h.serve(ctx, c, wsConn, call, logger)
}

func (h *Handler) serve(ctx context.Context, c *conn, wsConn *websocket.Conn, call Call, logger zerolog.Logger) {
	if call.ShouldGreet() {
		h.respond(c, logger, func() (string, error) { return call.Greet(ctx) })
	}

	for {
		if h.cfg.IdleTimeout > 0 {
			_ = wsConn.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
		}
		msgType, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("call connection dropped")
			}
			_ = wsConn.Close()
			return
		}
		if msgType != websocket.TextMessage {
			_ = c.writeFrame(outboundFrame{Type: FrameError, Message: "frames must be JSON text"})
			continue
		}

		var in inboundFrame
		if err := json.Unmarshal(data, &in); err != nil {
			_ = c.writeFrame(outboundFrame{Type: FrameError, Message: "invalid frame"})
			continue
		}

		switch in.Type {
		case FrameUserTranscript:
			if strings.TrimSpace(in.Text) == "" {
				continue
			}
			h.respond(c, logger, func() (string, error) { return call.HandleUtterance(ctx, in.Text) })
		case FrameEnd:
			logger.Info().Msg("call ended by gateway")
			c.close(websocket.CloseNormalClosure, "")
			return
		default:
			_ = c.writeFrame(outboundFrame{Type: FrameError, Message: "unknown frame type " + in.Type})
		}
	}
}

// respond runs one turn. A failed turn is reported to the gateway and the call
// continues.
func (h *Handler) respond(c *conn, logger zerolog.Logger, turn func() (string, error)) {
	reply, err := turn()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error().Err(err).Msg("turn failed")
		if werr := c.writeFrame(outboundFrame{Type: FrameError, Message: replyTurnFailed}); werr != nil {
			logger.Warn().Err(werr).Msg("failed to write error frame")
		}
		return
	}
	if err := c.writeFrame(outboundFrame{Type: FrameAgentReply, Text: reply}); err != nil {
		logger.Warn().Err(err).Msg("failed to write reply")
	}
}

// NewMux routes the call endpoint and the health check.
func NewMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/v1/session", h)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
