package logx

import (
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// FromEnv reads <prefix>_DEBUG and <prefix>_PRETTY_FORMAT. On a malformed
// value it returns the defaults together with the error.
func FromEnv(prefix string) (Config, error) {
	conf := *DefaultConfig
	if err := envconfig.Process(prefix, &conf); err != nil {
		return *DefaultConfig, fmt.Errorf("logger config: %w", err)
	}
	return conf, nil
}

// Init replaces the global logger. Output is JSON on stdout unless
// PrettyFormat is set.
func Init(opts ...Config) {
	log.Logger = New(os.Stdout, opts...)
}

func New(w io.Writer, opts ...Config) zerolog.Logger {
	conf := safe(opts...)

	var logger zerolog.Logger
	if conf.PrettyFormat {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}

	if conf.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	return logger.With().Caller().Stack().Logger()
}

// ForSession derives the logger used for the lifetime of one call.
func ForSession(sessionID, agent string) zerolog.Logger {
	return log.Logger.With().Str("session_id", sessionID).Str("agent", agent).Logger()
}
