package tutor

import "strings"

type Mode string

const (
	ModeLearn     Mode = "learn"
	ModeQuiz      Mode = "quiz"
	ModeTeachBack Mode = "teach_back"
)

func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLearn:
		return ModeLearn, true
	case ModeQuiz:
		return ModeQuiz, true
	case ModeTeachBack:
		return ModeTeachBack, true
	default:
		return "", false
	}
}

func (m Mode) Spoken() string {
	if m == ModeTeachBack {
		return "teach back"
	}
	return string(m)
}

// Voices maps each mode to a TTS voice name.
type Voices struct {
	Learn     string `split_words:"true" default:"en-US-matthew"`
	Quiz      string `split_words:"true" default:"en-US-alicia"`
	TeachBack string `split_words:"true" default:"en-US-ken"`
}

func DefaultVoices() Voices {
	return Voices{
		Learn:     "en-US-matthew",
		Quiz:      "en-US-alicia",
		TeachBack: "en-US-ken",
	}
}

func (v Voices) For(m Mode) string {
	switch m {
	case ModeQuiz:
		return v.Quiz
	case ModeTeachBack:
		return v.TeachBack
	default:
		return v.Learn
	}
}
