// Package autoload configures the global logger from LOG_* variables on import.
package autoload

import (
	"github.com/rs/zerolog/log"
	logx "github.com/tanpawarit/voice-agent-demos/pkg/logger"
)

func init() {
	conf, err := logx.FromEnv("LOG")
	logx.Init(conf)
	if err != nil {
		log.Warn().Err(err).Msg("invalid LOG_* settings, using defaults")
	}
}
