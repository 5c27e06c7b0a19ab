package fraud

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
	statex "github.com/tanpawarit/voice-agent-demos/agent/state"
)

type fakeStore struct {
	saveErr error
	saved   [][]Case
}

func (f *fakeStore) Load(context.Context) ([]Case, error) {
	return nil, errors.New("not used")
}

func (f *fakeStore) Save(_ context.Context, cases []Case) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, append([]Case(nil), cases...))
	return nil
}

func (f *fakeStore) Name() string { return "fake" }

type fakePublisher struct {
	err      error
	outcomes []contractx.Outcome
}

func (f *fakePublisher) PublishOutcome(_ context.Context, o contractx.Outcome) error {
	f.outcomes = append(f.outcomes, o)
	return f.err
}

var fixedNow = time.Date(2025, 11, 26, 12, 0, 0, 0, time.UTC)

func sampleCases() []Case {
	return []Case{
		{
			CaseID:              "FC-1001",
			UserName:            "Rahul Sharma",
			SecurityQuestion:    "What is your favourite colour?",
			SecurityAnswer:      "blue",
			MerchantName:        "ABC Industry",
			TransactionAmount:   "4999",
			TransactionCurrency: "INR",
			MaskedCard:          "**** 4242",
			TransactionTime:     "2025-11-25 14:10",
			TransactionLocation: "Mumbai",
			TransactionCategory: "e-commerce",
			Status:              StatusPending,
		},
		{
			CaseID:         "FC-1002",
			UserName:       "Priya",
			SecurityAnswer: "Delhi",
			Status:         StatusPending,
		},
	}
}

func newTestSession(store statex.Store[Case], pub contractx.OutcomePublisher) *Session {
	return NewSession(sampleCases(), store,
		WithPublisher(pub),
		WithLogger(zerolog.Nop()),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestSessionRequiresActiveCase(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := newTestSession(store, nil)

	replies := []string{
		s.SecurityQuestion(),
		s.VerifySecurityAnswer("blue"),
		s.DescribeCurrentTransaction(),
		s.MarkTransactionStatus(context.Background(), "safe"),
		s.MarkVerificationFailed(context.Background()),
	}
	for _, r := range replies {
		if r != replyNoActiveCase {
			t.Fatalf("reply = %q, want %q", r, replyNoActiveCase)
		}
	}
	if len(store.saved) != 0 {
		t.Fatalf("expected no saves, got %d", len(store.saved))
	}
}

func TestSessionLoadCaseForUser(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeStore{}, nil)

	reply := s.LoadCaseForUser("nobody")
	if reply != replyCaseNotFound {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if _, ok := s.Current(); ok {
		t.Fatal("no case should be active")
	}

	reply = s.LoadCaseForUser("  rahul SHARMA ")
	if !strings.Contains(reply, "Rahul Sharma") {
		t.Fatalf("reply should name the customer: %q", reply)
	}
	c, ok := s.Current()
	if !ok || c.CaseID != "FC-1001" {
		t.Fatalf("Current() = %+v,%v", c, ok)
	}
	if s.Verification() != Unverified {
		t.Fatalf("Verification() = %s", s.Verification())
	}

	q := s.SecurityQuestion()
	if q != "For security, please answer this question: What is your favourite colour?" {
		t.Fatalf("SecurityQuestion() = %q", q)
	}
}

func TestSessionSecurityQuestionPlaceholder(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeStore{}, nil)
	s.LoadCaseForUser("Priya")
	if got := s.SecurityQuestion(); !strings.HasSuffix(got, placeholderSecurityQuestion) {
		t.Fatalf("SecurityQuestion() = %q", got)
	}
}

func TestSessionVerifySecurityAnswer(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := newTestSession(store, nil)
	s.LoadCaseForUser("Rahul Sharma")

	if reply := s.VerifySecurityAnswer("red"); reply != replyVerifyFailed {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if s.Verified() || s.Verification() != VerificationFailed {
		t.Fatalf("expected failed verification, got %s", s.Verification())
	}
	if c, _ := s.Current(); c.Status != StatusPending {
		t.Fatalf("failed answer must not touch the case, status=%s", c.Status)
	}

	if reply := s.VerifySecurityAnswer("  Blue "); reply != replyVerified {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if !s.Verified() {
		t.Fatal("expected verified after retry")
	}
	if len(store.saved) != 0 {
		t.Fatalf("verification must not persist, got %d saves", len(store.saved))
	}
}

func TestSessionLoadResetsVerification(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeStore{}, nil)
	s.LoadCaseForUser("Rahul Sharma")
	s.VerifySecurityAnswer("blue")
	s.LoadCaseForUser("Priya")
	if s.Verification() != Unverified {
		t.Fatalf("Verification() = %s, want unverified", s.Verification())
	}
}

func TestSessionMarkTransactionStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		token  string
		status Status
		reply  string
	}{
		{"Safe", StatusConfirmedSafe, replyMarkedSafe},
		{"FRAUDULENT", StatusConfirmedFraud, replyMarkedFraud},
	}

	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()

			store := &fakeStore{}
			pub := &fakePublisher{}
			s := newTestSession(store, pub)
			s.LoadCaseForUser("Rahul Sharma")
			s.VerifySecurityAnswer("blue")

			if reply := s.MarkTransactionStatus(context.Background(), tc.token); reply != tc.reply {
				t.Fatalf("unexpected reply: %q", reply)
			}
			c, _ := s.Current()
			if c.Status != tc.status {
				t.Fatalf("Status = %s, want %s", c.Status, tc.status)
			}
			if c.LastUpdated != "2025-11-26T12:00:00Z" {
				t.Fatalf("LastUpdated = %q", c.LastUpdated)
			}
			if len(store.saved) != 1 {
				t.Fatalf("expected 1 save, got %d", len(store.saved))
			}
			if len(store.saved[0]) != 2 || store.saved[0][0].Status != tc.status {
				t.Fatalf("whole collection must be saved with the update: %+v", store.saved[0])
			}
			if len(pub.outcomes) != 1 || pub.outcomes[0].CaseID != "FC-1001" || pub.outcomes[0].Status != string(tc.status) {
				t.Fatalf("unexpected outcomes: %+v", pub.outcomes)
			}
		})
	}
}

func TestSessionMarkTransactionStatusRejectsUnknownToken(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := newTestSession(store, nil)
	s.LoadCaseForUser("Rahul Sharma")

	if reply := s.MarkTransactionStatus(context.Background(), "maybe"); reply != replyInvalidDisposition {
		t.Fatalf("unexpected reply: %q", reply)
	}
	c, _ := s.Current()
	if c.Status != StatusPending || c.LastUpdated != "" {
		t.Fatalf("case must be unchanged: %+v", c)
	}
	if len(store.saved) != 0 {
		t.Fatalf("expected no saves, got %d", len(store.saved))
	}
}

func TestSessionMarkVerificationFailed(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := newTestSession(store, nil)
	s.LoadCaseForUser("Rahul Sharma")
	s.VerifySecurityAnswer("green")

	if reply := s.MarkVerificationFailed(context.Background()); reply != replyMarkedFailed {
		t.Fatalf("unexpected reply: %q", reply)
	}
	c, _ := s.Current()
	if c.Status != StatusVerificationFailed || c.OutcomeNote != noteVerificationFailed {
		t.Fatalf("unexpected case: %+v", c)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 save, got %d", len(store.saved))
	}
}

func TestSessionTerminalStatusIsSticky(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := newTestSession(store, nil)
	s.LoadCaseForUser("Rahul Sharma")
	s.MarkTransactionStatus(context.Background(), "safe")

	reply := s.MarkTransactionStatus(context.Background(), "fraudulent")
	if !strings.Contains(reply, "already closed") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	reply = s.MarkVerificationFailed(context.Background())
	if !strings.Contains(reply, "already closed") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	c, _ := s.Current()
	if c.Status != StatusConfirmedSafe {
		t.Fatalf("Status = %s, want confirmed_safe", c.Status)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected only the first save, got %d", len(store.saved))
	}
}

func TestSessionSaveFailureStillReplies(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	store := &fakeStore{saveErr: errors.New("disk full")}
	s := newTestSession(store, pub)
	s.LoadCaseForUser("Rahul Sharma")

	if reply := s.MarkTransactionStatus(context.Background(), "safe"); reply != replySaveFailed {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(pub.outcomes) != 0 {
		t.Fatal("unsaved outcome must not be published")
	}
	c, _ := s.Current()
	if c.Status != StatusPending || c.OutcomeNote != "" || c.LastUpdated != "" {
		t.Fatalf("unsaved update must be rolled back: %+v", c)
	}

	store.saveErr = nil
	if reply := s.MarkTransactionStatus(context.Background(), "safe"); reply != replyMarkedSafe {
		t.Fatalf("retry reply: %q", reply)
	}
	if len(store.saved) != 1 || store.saved[0][0].Status != StatusConfirmedSafe {
		t.Fatalf("retry should persist the outcome: %+v", store.saved)
	}
	if len(pub.outcomes) != 1 || pub.outcomes[0].Status != string(StatusConfirmedSafe) {
		t.Fatalf("retry should publish the outcome: %+v", pub.outcomes)
	}
}

func TestSessionVerificationFailedSaveFailureRollsBack(t *testing.T) {
	t.Parallel()

	store := &fakeStore{saveErr: errors.New("disk full")}
	s := newTestSession(store, nil)
	s.LoadCaseForUser("Priya")

	if reply := s.MarkVerificationFailed(context.Background()); reply != replySaveFailed {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if got := s.Cases()[1].Status; got != StatusPending {
		t.Fatalf("Status = %s, want pending", got)
	}
}

func TestSessionKeepsUnknownFieldsThroughFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cases.json")
	seed := `[
  {"caseId": 1001, "userName": "Rahul Sharma", "securityAnswer": "blue", "status": 5},
  {"caseId": "FC-1002", "userName": "Priya", "status": "pending", "riskScore": 0.93, "channel": "app"}
]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed error = %v", err)
	}
	store, err := statex.NewFileStore[Case](path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	loaded := statex.LoadOrDefault[Case](context.Background(), store, nil)
	if len(loaded) != 2 {
		t.Fatalf("one mistyped record must not empty the collection, got %d", len(loaded))
	}
	if loaded[0].CaseID != "1001" || loaded[0].Status != "5" {
		t.Fatalf("unexpected first record: %+v", loaded[0])
	}

	s := NewSession(loaded, store, WithLogger(zerolog.Nop()), WithClock(func() time.Time { return fixedNow }))
	s.LoadCaseForUser("Priya")
	if reply := s.MarkTransactionStatus(context.Background(), "safe"); reply != replyMarkedSafe {
		t.Fatalf("unexpected reply: %q", reply)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, want := range []string{`"riskScore": 0.93`, `"channel": "app"`, `"status": "confirmed_safe"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("saved file missing %s:\n%s", want, raw)
		}
	}

	reloaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded[1].Extra["channel"] != "app" {
		t.Fatalf("Extra = %v", reloaded[1].Extra)
	}
}

func TestSessionPublisherFailureIsIgnored(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := newTestSession(store, &fakePublisher{err: errors.New("qstash down")})
	s.LoadCaseForUser("Rahul Sharma")

	if reply := s.MarkTransactionStatus(context.Background(), "fraudulent"); reply != replyMarkedFraud {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 save, got %d", len(store.saved))
	}
}

func TestSessionPersistsThroughFileStore(t *testing.T) {
	t.Parallel()

	store, err := statex.NewFileStore[Case](filepath.Join(t.TempDir(), "day6_fraud_cases.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.Save(context.Background(), sampleCases()); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	loaded := statex.LoadOrDefault[Case](context.Background(), store, nil)
	if !reflect.DeepEqual(loaded, sampleCases()) {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}

	s := NewSession(loaded, store, WithLogger(zerolog.Nop()), WithClock(func() time.Time { return fixedNow }))
	s.LoadCaseForUser("priya")
	s.VerifySecurityAnswer("delhi")
	s.MarkTransactionStatus(context.Background(), "safe")

	reloaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded[1].Status != StatusConfirmedSafe || reloaded[0].Status != StatusPending {
		t.Fatalf("unexpected persisted statuses: %s, %s", reloaded[0].Status, reloaded[1].Status)
	}
}

func TestSessionStaleSnapshotsLastWriterWins(t *testing.T) {
	t.Parallel()

	store, err := statex.NewFileStore[Case](filepath.Join(t.TempDir(), "cases.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.Save(context.Background(), sampleCases()); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	first := NewSession(statex.LoadOrDefault[Case](context.Background(), store, nil), store, WithLogger(zerolog.Nop()))
	second := NewSession(statex.LoadOrDefault[Case](context.Background(), store, nil), store, WithLogger(zerolog.Nop()))

	first.LoadCaseForUser("Rahul Sharma")
	first.MarkTransactionStatus(context.Background(), "fraudulent")
	second.LoadCaseForUser("Priya")
	second.MarkTransactionStatus(context.Background(), "safe")

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, second.Cases()) {
		t.Fatalf("file should hold the later snapshot in full: %+v", got)
	}
	if got[0].Status != StatusPending {
		t.Fatalf("earlier update should be lost, got %s", got[0].Status)
	}
}

func TestNewSessionWithMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store, err := statex.NewFileStore[Case](filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	cases := statex.LoadOrDefault[Case](context.Background(), store, nil)
	if len(cases) != 0 {
		t.Fatalf("expected empty collection, got %d", len(cases))
	}

	s := NewSession(cases, store, WithLogger(zerolog.Nop()))
	if reply := s.LoadCaseForUser("Rahul Sharma"); reply != replyCaseNotFound {
		t.Fatalf("unexpected reply: %q", reply)
	}
}
