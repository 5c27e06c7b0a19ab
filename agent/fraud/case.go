package fraud

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusPending            Status = "pending"
	StatusVerificationFailed Status = "verification_failed"
	StatusConfirmedSafe      Status = "confirmed_safe"
	StatusConfirmedFraud     Status = "confirmed_fraud"
)

// IsTerminal reports whether the case has a recorded final outcome.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusVerificationFailed, StatusConfirmedSafe, StatusConfirmedFraud:
		return true
	default:
		return false
	}
}

var (
	ErrTerminalStatus     = errors.New("case already has a final outcome")
	ErrInvalidDisposition = errors.New("disposition must be safe or fraudulent")
)

const (
	noteConfirmedSafe      = "Customer confirmed the transaction as legitimate."
	noteConfirmedFraud     = "Customer denied the transaction. Card should be blocked and dispute initiated (mock)."
	noteVerificationFailed = "Verification failed. Could not confirm identity."
)

// Spoken placeholders for missing case fields.
const (
	placeholderMerchant         = "a merchant"
	placeholderAmount           = "an amount"
	placeholderMaskedCard       = "your card ending in XXXX"
	placeholderTime             = "recently"
	placeholderLocation         = "your region"
	placeholderCategory         = "a purchase"
	placeholderSecurityQuestion = "I don't have a security question on file."
)

// Case is one fraud alert. String fields are optional; empty means missing.
// Keys the agent does not know about are kept in Extra and written back on save.
type Case struct {
	CaseID              string `json:"caseId" yaml:"caseId"`
	UserName            string `json:"userName" yaml:"userName"`
	SecurityQuestion    string `json:"securityQuestion" yaml:"securityQuestion"`
	SecurityAnswer      string `json:"securityAnswer" yaml:"securityAnswer"`
	MerchantName        string `json:"merchantName" yaml:"merchantName"`
	TransactionAmount   Amount `json:"transactionAmount" yaml:"transactionAmount"`
	TransactionCurrency string `json:"transactionCurrency" yaml:"transactionCurrency"`
	MaskedCard          string `json:"maskedCard" yaml:"maskedCard"`
	TransactionTime     string `json:"transactionTime" yaml:"transactionTime"`
	TransactionLocation string `json:"transactionLocation" yaml:"transactionLocation"`
	TransactionCategory string `json:"transactionCategory" yaml:"transactionCategory"`
	Status              Status `json:"status" yaml:"status"`
	OutcomeNote         string `json:"outcomeNote" yaml:"outcomeNote"`
	LastUpdated         string `json:"lastUpdated" yaml:"lastUpdated"`

	Extra map[string]any `json:"-" yaml:",inline"`
}

// Amount is a transaction amount stored either as a JSON number or a string.
// Numeric text is written back as a number.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*a = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("transactionAmount: %w", err)
		}
		*a = Amount(n.String())
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	s := string(a)
	if s == "" {
		return []byte(`""`), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (c *Case) question() string {
	return withPlaceholder(c.SecurityQuestion, placeholderSecurityQuestion)
}

// CheckAnswer compares a supplied security answer with the stored one after
// trimming and case-folding. An empty stored answer never matches.
func CheckAnswer(stored, supplied string) bool {
	expected := strings.ToLower(strings.TrimSpace(stored))
	if expected == "" {
		return false
	}
	return expected == strings.ToLower(strings.TrimSpace(supplied))
}

// ParseDisposition maps the spoken token to a final status.
func ParseDisposition(token string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "safe":
		return StatusConfirmedSafe, true
	case "fraudulent":
		return StatusConfirmedFraud, true
	default:
		return "", false
	}
}

// Resolve moves the case into a final status with its outcome note and stamps
// the time. A case that already has a final status is left unchanged.
func (c *Case) Resolve(status Status, now time.Time) error {
	if c.Status.IsTerminal() {
		return fmt.Errorf("%w: case=%s status=%s", ErrTerminalStatus, c.CaseID, c.Status)
	}

	var note string
	switch status {
	case StatusConfirmedSafe:
		note = noteConfirmedSafe
	case StatusConfirmedFraud:
		note = noteConfirmedFraud
	case StatusVerificationFailed:
		note = noteVerificationFailed
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidDisposition, status)
	}

	c.Status = status
	c.OutcomeNote = note
	c.LastUpdated = now.UTC().Format(time.RFC3339)
	return nil
}

// Describe renders the suspicious transaction for speech, substituting
// placeholders for missing fields.
func (c *Case) Describe() string {
	amount := strings.TrimSpace(withPlaceholder(string(c.TransactionAmount), placeholderAmount) + " " + c.TransactionCurrency)
	return fmt.Sprintf(
		"We detected a %s transaction at %s for %s on your card %s, around %s, in %s. Did you make this transaction?",
		withPlaceholder(c.TransactionCategory, placeholderCategory),
		withPlaceholder(c.MerchantName, placeholderMerchant),
		amount,
		withPlaceholder(c.MaskedCard, placeholderMaskedCard),
		withPlaceholder(c.TransactionTime, placeholderTime),
		withPlaceholder(c.TransactionLocation, placeholderLocation),
	)
}

func withPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}
