package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
)

const (
	replyInvalidMode = "I can only switch between learn, quiz, and teach_back modes. Which one would you like?"
	replyNoConcepts  = "I don't have any concepts to teach right now."
)

type Config struct {
	ContentPath string `split_words:"true" default:"shared-data/day4_tutor_content.json"`
	Voice       Voices `envconfig:"VOICE"`
}

// Session tracks the mode and concept of one tutoring call. The concept list
// is read-only.
type Session struct {
	concepts  []Concept
	mode      Mode
	conceptID string

	speech contractx.SpeechOutput
	voices Voices
	logger zerolog.Logger
}

type SessionOption func(*Session)

func WithSpeechOutput(speech contractx.SpeechOutput) SessionOption {
	return func(s *Session) {
		if speech != nil {
			s.speech = speech
		}
	}
}

func WithVoices(v Voices) SessionOption {
	return func(s *Session) {
		s.voices = v
	}
}

func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

func NewSession(concepts []Concept, opts ...SessionOption) *Session {
	s := &Session{
		concepts: concepts,
		speech:   contractx.NoopSpeechOutput{},
		voices:   DefaultVoices(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Session) Mode() Mode {
	return s.mode
}

func (s *Session) ConceptID() string {
	return s.conceptID
}

// resolve finds the concept for an explicit id, falling back to the first
// concept when the id is unknown or empty.
func (s *Session) resolve(id string) (Concept, bool) {
	if c, ok := findConcept(s.concepts, id); ok {
		return c, true
	}
	if len(s.concepts) == 0 {
		return Concept{}, false
	}
	return s.concepts[0], true
}

// resolveForRead prefers an explicit id, then the session's current concept.
func (s *Session) resolveForRead(id string) (Concept, bool) {
	if strings.TrimSpace(id) == "" {
		id = s.conceptID
	}
	return s.resolve(id)
}

// SetMode switches mode and concept together. An unknown mode changes
// nothing. The voice switch is best effort.
func (s *Session) SetMode(ctx context.Context, rawMode, conceptID string) string {
	mode, ok := ParseMode(rawMode)
	if !ok {
		s.logger.Info().Str("mode", rawMode).Msg("rejected tutor mode")
		return replyInvalidMode
	}

	concept, ok := s.resolve(conceptID)
	if !ok {
		return replyNoConcepts
	}

	s.mode = mode
	s.conceptID = concept.ID
	s.logger.Info().Str("mode", string(mode)).Str("concept_id", concept.ID).Msg("tutor mode set")

	voice := s.voices.For(mode)
	if err := s.speech.UpdateVoice(ctx, voice); err != nil {
		s.logger.Warn().Err(err).Str("voice", voice).Msg("failed to switch tts voice")
	}

	return fmt.Sprintf("Great, we're now in %s mode for %s. %s", mode.Spoken(), concept.DisplayTitle(), modeHint(mode))
}

func modeHint(m Mode) string {
	switch m {
	case ModeQuiz:
		return "I'll ask you a question and you can answer in your own words."
	case ModeTeachBack:
		return "This time you explain the concept to me, and I'll give you feedback."
	default:
		return "I'll walk you through the idea step by step."
	}
}

func (s *Session) Summary(conceptID string) string {
	c, ok := s.resolveForRead(conceptID)
	if !ok {
		return replyNoConcepts
	}
	return c.SummaryText()
}

func (s *Session) Question(conceptID string) string {
	c, ok := s.resolveForRead(conceptID)
	if !ok {
		return replyNoConcepts
	}
	return c.QuestionText()
}

func (s *Session) ListConcepts() string {
	if len(s.concepts) == 0 {
		return replyNoConcepts
	}
	titles := make([]string, 0, len(s.concepts))
	for _, c := range s.concepts {
		titles = append(titles, c.DisplayTitle())
	}
	if len(titles) == 1 {
		return "Today I can help you with " + titles[0] + "."
	}
	return "Today I can help you with " + strings.Join(titles[:len(titles)-1], ", ") + " and " + titles[len(titles)-1] + "."
}
