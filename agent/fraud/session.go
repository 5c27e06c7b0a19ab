package fraud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
)

type Verification int

const (
	Unverified Verification = iota
	Verified
	VerificationFailed
)

func (v Verification) String() string {
	switch v {
	case Verified:
		return "verified"
	case VerificationFailed:
		return "failed"
	default:
		return "unverified"
	}
}

const (
	replyNoActiveCase = "I don't have an active fraud case loaded yet."
	replyCaseNotFound = "I couldn't find an active fraud alert under that name. " +
		"It's possible there is no suspicious activity on this account."
	replyVerified = "Thank you, your identity is verified. " +
		"I will now read out the suspicious transaction details."
	replyVerifyFailed = "I'm sorry, but the answer doesn't match our records. " +
		"For your security, I won't be able to discuss this transaction further."
	replyInvalidDisposition = "I can only mark a transaction as safe or fraudulent."
	replyMarkedFailed       = "I have recorded that we could not complete verification on this call."
	replyMarkedSafe         = "Thank you for confirming. I have marked this transaction as legitimate, " +
		"and no further action is needed on your card."
	replyMarkedFraud = "Understood. I have marked this transaction as fraudulent. " +
		"We will block this card for your safety and raise a dispute for this charge in our system. " +
		"Our team may contact you with next steps."
	replySaveFailed = "I'm having trouble updating our records right now, so nothing has been changed yet. " +
		"Please give me your answer again in a moment."
)

// Session is the call-scoped owner of the case collection. It holds the
// selected case and the verification state; tools act on it one at a time.
type Session struct {
	cases        []Case
	current      int
	verification Verification

	store     statex.Store[Case]
	publisher contractx.OutcomePublisher
	logger    zerolog.Logger
	now       func() time.Time
}

type SessionOption func(*Session)

func WithPublisher(p contractx.OutcomePublisher) SessionOption {
	return func(s *Session) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSession(cases []Case, store statex.Store[Case], opts ...SessionOption) *Session {
	if cases == nil {
		cases = []Case{}
	}
	s := &Session{
		cases:     cases,
		current:   -1,
		store:     store,
		publisher: contractx.NoopOutcomePublisher{},
		logger:    log.Logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Current returns a copy of the selected case.
func (s *Session) Current() (Case, bool) {
	c := s.currentCase()
	if c == nil {
		return Case{}, false
	}
	return *c, true
}

func (s *Session) Verification() Verification {
	return s.verification
}

func (s *Session) Verified() bool {
	return s.verification == Verified
}

// Cases returns a copy of the in-memory collection.
func (s *Session) Cases() []Case {
	out := make([]Case, len(s.cases))
	copy(out, s.cases)
	return out
}

func (s *Session) currentCase() *Case {
	if s.current < 0 || s.current >= len(s.cases) {
		return nil
	}
	return &s.cases[s.current]
}

// LoadCaseForUser selects the case for userName and resets verification.
func (s *Session) LoadCaseForUser(userName string) string {
	idx, ok := FindByName(s.cases, userName)
	if !ok {
		s.logger.Info().Str("user_name", userName).Msg("no fraud case for user")
		return replyCaseNotFound
	}

	s.current = idx
	s.verification = Unverified
	c := &s.cases[idx]
	s.logger.Info().Str("case_id", c.CaseID).Str("user_name", c.UserName).Msg("loaded fraud case")
	return fmt.Sprintf(
		"Thank you. I have located your account, %s. "+
			"Before we proceed, I need to verify your identity with a simple security question.",
		c.UserName,
	)
}

func (s *Session) SecurityQuestion() string {
	c := s.currentCase()
	if c == nil {
		return replyNoActiveCase
	}
	return "For security, please answer this question: " + c.question()
}

// VerifySecurityAnswer moves the session to verified or failed. Failure is not
// recorded on the case; the caller may try again.
func (s *Session) VerifySecurityAnswer(answer string) string {
	c := s.currentCase()
	if c == nil {
		return replyNoActiveCase
	}

	if CheckAnswer(c.SecurityAnswer, answer) {
		s.verification = Verified
		s.logger.Info().Str("case_id", c.CaseID).Msg("verification passed")
		return replyVerified
	}

	s.verification = VerificationFailed
	s.logger.Info().Str("case_id", c.CaseID).Msg("verification failed")
	return replyVerifyFailed
}

func (s *Session) DescribeCurrentTransaction() string {
	c := s.currentCase()
	if c == nil {
		return replyNoActiveCase
	}
	return c.Describe()
}

// MarkTransactionStatus records the customer's disposition. It relies on the
// conversation having verified the customer first.
func (s *Session) MarkTransactionStatus(ctx context.Context, token string) string {
	c := s.currentCase()
	if c == nil {
		return replyNoActiveCase
	}

	status, ok := ParseDisposition(token)
	if !ok {
		return replyInvalidDisposition
	}

	reply := replyMarkedSafe
	if status == StatusConfirmedFraud {
		reply = replyMarkedFraud
	}
	return s.resolve(ctx, c, status, reply)
}

func (s *Session) MarkVerificationFailed(ctx context.Context) string {
	c := s.currentCase()
	if c == nil {
		return replyNoActiveCase
	}
	return s.resolve(ctx, c, StatusVerificationFailed, replyMarkedFailed)
}

func (s *Session) resolve(ctx context.Context, c *Case, status Status, reply string) string {
	now := s.now()
	before := *c
	if err := c.Resolve(status, now); err != nil {
		if errors.Is(err, ErrTerminalStatus) {
			s.logger.Info().Str("case_id", c.CaseID).Str("status", string(c.Status)).Msg("case already resolved")
			return closedCaseReply(c.Status)
		}
		s.logger.Error().Err(err).Str("case_id", c.CaseID).Msg("resolve case")
		return replyInvalidDisposition
	}

	if err := s.store.Save(ctx, s.cases); err != nil {
		s.logger.Error().Err(err).Str("case_id", c.CaseID).Str("store", s.store.Name()).Msg("failed to persist fraud cases")
		// Unsaved outcomes are rolled back so the caller can retry.
		*c = before
		return replySaveFailed
	}
	s.logger.Info().Str("case_id", c.CaseID).Str("status", string(c.Status)).Msg("fraud case updated")

	outcome := contractx.Outcome{
		CaseID:    c.CaseID,
		Status:    string(c.Status),
		Note:      c.OutcomeNote,
		UpdatedAt: now.UTC(),
	}
	if err := s.publisher.PublishOutcome(ctx, outcome); err != nil {
		s.logger.Warn().Err(err).Str("case_id", c.CaseID).Msg("failed to publish case outcome")
	}
	return reply
}

func closedCaseReply(status Status) string {
	switch status {
	case StatusConfirmedSafe:
		return "This case is already closed. The transaction was confirmed as legitimate, so no further changes are needed."
	case StatusConfirmedFraud:
		return "This case is already closed. The transaction was confirmed as fraudulent and the card block is in progress."
	default:
		return "This case is already closed because we could not complete verification earlier."
	}
}
