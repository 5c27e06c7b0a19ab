package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	openrouterx "github.com/tanpawarit/voice-agent-demos/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	// VerifyModel checks the model id against the models endpoint at prewarm.
	VerifyModel bool `envconfig:"VERIFY_MODEL" split_words:"true" default:"false"`

	FraudModel       string  `envconfig:"FRAUD_MODEL" split_words:"true"`
	TutorModel       string  `envconfig:"TUTOR_MODEL" split_words:"true"`
	FraudTemperature float32 `envconfig:"FRAUD_TEMPERATURE" split_words:"true" default:"-1"`
	TutorTemperature float32 `envconfig:"TUTOR_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor applies the per-agent overrides. A negative temperature
// override means unset.
func (c Config) OpenRouterFor(kind contractx.AgentKind) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch kind {
	case contractx.AgentKindFraud:
		if v := strings.TrimSpace(c.FraudModel); v != "" {
			modelName = v
		}
		if c.FraudTemperature >= 0 {
			temp = c.FraudTemperature
		}
	case contractx.AgentKindTutor:
		if v := strings.TrimSpace(c.TutorModel); v != "" {
			modelName = v
		}
		if c.TutorTemperature >= 0 {
			temp = c.TutorTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
