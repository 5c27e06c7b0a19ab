package fraud

import (
	"context"
	"fmt"
	"strings"

	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
)

const (
	BackendFile     = "file"
	BackendUpstash  = "upstash"
	BackendPostgres = "postgres"
)

type StoreConfig struct {
	StoreBackend string                    `split_words:"true" default:"file"`
	CasesPath    string                    `split_words:"true" default:"shared-data/day6_fraud_cases.json"`
	PostgresDSN  string                    `envconfig:"POSTGRES_DSN"`
	Upstash      statex.UpstashRedisConfig `envconfig:"UPSTASH"`
}

// NewStore opens the case store selected by cfg.StoreBackend. The returned
// close function releases backend resources and is never nil.
func NewStore(ctx context.Context, cfg StoreConfig) (statex.Store[Case], func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.StoreBackend)) {
	case "", BackendFile:
		store, err := statex.NewFileStore[Case](cfg.CasesPath)
		if err != nil {
			return nil, noop, fmt.Errorf("open fraud case file: %w", err)
		}
		return store, noop, nil
	case BackendUpstash:
		store, err := statex.NewUpstashRedisStore[Case](cfg.Upstash)
		if err != nil {
			return nil, noop, fmt.Errorf("open fraud case upstash store: %w", err)
		}
		return store, noop, nil
	case BackendPostgres:
		store, err := OpenPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown fraud store backend %q", cfg.StoreBackend)
	}
}
