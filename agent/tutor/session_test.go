package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeSpeech struct {
	err    error
	voices []string
}

func (f *fakeSpeech) UpdateVoice(_ context.Context, voice string) error {
	f.voices = append(f.voices, voice)
	return f.err
}

func newTestSession(speech *fakeSpeech) *Session {
	return NewSession(DefaultConcepts(), WithSpeechOutput(speech), WithLogger(zerolog.Nop()))
}

func TestSetModeSwitchesConceptAndVoice(t *testing.T) {
	t.Parallel()

	speech := &fakeSpeech{}
	s := newTestSession(speech)

	reply := s.SetMode(context.Background(), "quiz", "loops")
	if !strings.Contains(reply, "quiz mode") || !strings.Contains(reply, "Loops") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if s.Mode() != ModeQuiz || s.ConceptID() != "loops" {
		t.Fatalf("unexpected state mode=%s concept=%s", s.Mode(), s.ConceptID())
	}
	if len(speech.voices) != 1 || speech.voices[0] != "en-US-alicia" {
		t.Fatalf("expected quiz voice, got %v", speech.voices)
	}

	if got := s.Question(""); got != "What is the difference between a for loop and a while loop?" {
		t.Fatalf("expected loops question, got %q", got)
	}
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	speech := &fakeSpeech{}
	s := newTestSession(speech)
	s.SetMode(context.Background(), "learn", "variables")

	reply := s.SetMode(context.Background(), "bogus", "loops")
	if reply != replyInvalidMode {
		t.Fatalf("unexpected reply %q", reply)
	}
	if s.Mode() != ModeLearn || s.ConceptID() != "variables" {
		t.Fatalf("state changed: mode=%s concept=%s", s.Mode(), s.ConceptID())
	}
	if len(speech.voices) != 1 {
		t.Fatalf("voice must not switch on rejection, got %v", speech.voices)
	}
}

func TestSetModeFallsBackToFirstConcept(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeSpeech{})

	for _, id := range []string{"", "recursion"} {
		s.SetMode(context.Background(), "teach_back", id)
		if s.ConceptID() != "variables" {
			t.Fatalf("id %q: expected first concept, got %s", id, s.ConceptID())
		}
	}
}

func TestSetModeIgnoresVoiceFailure(t *testing.T) {
	t.Parallel()

	speech := &fakeSpeech{err: errors.New("socket closed")}
	s := newTestSession(speech)

	reply := s.SetMode(context.Background(), "teach_back", "loops")
	if !strings.Contains(reply, "teach back mode") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if s.Mode() != ModeTeachBack {
		t.Fatalf("mode not applied, got %s", s.Mode())
	}
	if len(speech.voices) != 1 || speech.voices[0] != "en-US-ken" {
		t.Fatalf("expected teach back voice attempt, got %v", speech.voices)
	}
}

func TestAccessorsResolveConcept(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeSpeech{})
	concepts := DefaultConcepts()

	if got := s.Summary(""); got != concepts[0].Summary {
		t.Fatalf("fresh session should use the first concept, got %q", got)
	}
	if got := s.Summary("loops"); got != concepts[1].Summary {
		t.Fatalf("explicit id ignored, got %q", got)
	}
	if got := s.Question("unknown"); got != concepts[0].SampleQuestion {
		t.Fatalf("unknown id should fall back to first concept, got %q", got)
	}
}

func TestEmptyConceptList(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, WithLogger(zerolog.Nop()))
	if got := s.SetMode(context.Background(), "learn", ""); got != replyNoConcepts {
		t.Fatalf("unexpected reply %q", got)
	}
	if s.Mode() != "" {
		t.Fatalf("mode must stay unset, got %s", s.Mode())
	}
	if got := s.ListConcepts(); got != replyNoConcepts {
		t.Fatalf("unexpected list %q", got)
	}
}

func TestListConcepts(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeSpeech{})
	if got := s.ListConcepts(); got != "Today I can help you with Variables and Loops." {
		t.Fatalf("unexpected list %q", got)
	}
}
