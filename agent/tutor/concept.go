package tutor

import "strings"

const (
	placeholderSummary  = "I don't have a summary for that concept yet."
	placeholderQuestion = "I don't have a practice question for that concept yet."
)

// Concept is one teachable unit. Summary and SampleQuestion are optional.
type Concept struct {
	ID             string `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	Summary        string `json:"summary" yaml:"summary"`
	SampleQuestion string `json:"sample_question" yaml:"sample_question"`
}

func (c Concept) DisplayTitle() string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	return c.ID
}

func (c Concept) SummaryText() string {
	if strings.TrimSpace(c.Summary) == "" {
		return placeholderSummary
	}
	return c.Summary
}

func (c Concept) QuestionText() string {
	if strings.TrimSpace(c.SampleQuestion) == "" {
		return placeholderQuestion
	}
	return c.SampleQuestion
}

// DefaultConcepts is served when the content file is missing or unreadable.
func DefaultConcepts() []Concept {
	return []Concept{
		{
			ID:    "variables",
			Title: "Variables",
			Summary: "Variables are named containers for values. You assign a value to a name, " +
				"and later you can read it or replace it with a new value.",
			SampleQuestion: "What is a variable, and why would you use one instead of repeating a value?",
		},
		{
			ID:    "loops",
			Title: "Loops",
			Summary: "Loops repeat a block of code. A for loop runs a fixed number of times or over a collection, " +
				"while a while loop keeps going as long as a condition stays true.",
			SampleQuestion: "What is the difference between a for loop and a while loop?",
		},
	}
}

// findConcept matches an id case-insensitively after trimming.
func findConcept(concepts []Concept, id string) (Concept, bool) {
	want := strings.ToLower(strings.TrimSpace(id))
	if want == "" {
		return Concept{}, false
	}
	for _, c := range concepts {
		if strings.ToLower(strings.TrimSpace(c.ID)) == want {
			return c, true
		}
	}
	return Concept{}, false
}
