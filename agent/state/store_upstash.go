package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrCollectionNotFound = errors.New("collection not found")

const (
	defaultCollectionKeyPrefix = "voice-agents:collection:"
	maxResponseSizeBytes       = 2 << 20
)

// UpstashOption customizes UpstashRedisStore.
type UpstashOption func(*upstashSettings)

type upstashSettings struct {
	keyPrefix  string
	httpClient *http.Client
}

func WithKeyPrefix(prefix string) UpstashOption {
	return func(s *upstashSettings) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(s *upstashSettings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Key     string        `envconfig:"KEY" split_words:"true" default:"fraud_cases"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// UpstashRedisStore keeps the whole collection as one JSON string under a
// single key of an Upstash Redis database, using the REST API.
type UpstashRedisStore[T any] struct {
	baseURL    string
	token      string
	key        string
	httpClient *http.Client
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashRedisStore[T any](cfg UpstashRedisConfig, opts ...UpstashOption) (*UpstashRedisStore[T], error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, errors.New("upstash collection key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := upstashSettings{
		keyPrefix:  defaultCollectionKeyPrefix,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	return &UpstashRedisStore[T]{
		baseURL:    baseURL,
		token:      token,
		key:        settings.keyPrefix + key,
		httpClient: settings.httpClient,
	}, nil
}

func (s *UpstashRedisStore[T]) Name() string {
	return "upstash:" + s.key
}

func (s *UpstashRedisStore[T]) Load(ctx context.Context) ([]T, error) {
	resp, err := s.exec(ctx, []any{"GET", s.key})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, fmt.Errorf("%w: key=%s", ErrCollectionNotFound, s.key)
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode collection payload: %w", err)
	}

	var records []T
	if err := json.Unmarshal([]byte(encoded), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCollection, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (s *UpstashRedisStore[T]) Save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	if _, err := s.exec(ctx, []any{"SET", s.key, string(payload)}); err != nil {
		return err
	}
	return nil
}

func (s *UpstashRedisStore[T]) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
