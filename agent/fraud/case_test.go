package fraud

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCheckAnswer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		stored   string
		supplied string
		want     bool
	}{
		{"blue", "  Blue ", true},
		{"blue", "BLUE", true},
		{" Blue\n", "blue", true},
		{"blue", "red", false},
		{"blue", "blu", false},
		{"blue", "light blue", false},
		{"", "", false},
		{"  ", "anything", false},
	}
	for _, tc := range cases {
		if got := CheckAnswer(tc.stored, tc.supplied); got != tc.want {
			t.Fatalf("CheckAnswer(%q, %q) = %v, want %v", tc.stored, tc.supplied, got, tc.want)
		}
	}
}

func TestParseDisposition(t *testing.T) {
	t.Parallel()

	cases := map[string]Status{
		"Safe":         StatusConfirmedSafe,
		"safe":         StatusConfirmedSafe,
		" FRAUDULENT ": StatusConfirmedFraud,
	}
	for token, want := range cases {
		got, ok := ParseDisposition(token)
		if !ok || got != want {
			t.Fatalf("ParseDisposition(%q) = %q,%v want %q", token, got, ok, want)
		}
	}

	for _, token := range []string{"maybe", "", "fraud", "confirmed_safe"} {
		if _, ok := ParseDisposition(token); ok {
			t.Fatalf("ParseDisposition(%q) should be rejected", token)
		}
	}
}

func TestCaseResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 11, 26, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	c := Case{CaseID: "FC-1", Status: StatusPending}

	if err := c.Resolve(StatusConfirmedFraud, now); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if c.Status != StatusConfirmedFraud {
		t.Fatalf("Status = %q", c.Status)
	}
	if c.OutcomeNote != noteConfirmedFraud {
		t.Fatalf("OutcomeNote = %q", c.OutcomeNote)
	}
	if c.LastUpdated != "2025-11-26T04:00:00Z" {
		t.Fatalf("LastUpdated = %q", c.LastUpdated)
	}
}

func TestCaseResolveTerminalIsSticky(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusConfirmedSafe, StatusConfirmedFraud, StatusVerificationFailed} {
		c := Case{CaseID: "FC-1", Status: status, OutcomeNote: "kept"}
		err := c.Resolve(StatusConfirmedSafe, time.Now())
		if !errors.Is(err, ErrTerminalStatus) {
			t.Fatalf("Resolve() from %s error = %v, want ErrTerminalStatus", status, err)
		}
		if c.Status != status || c.OutcomeNote != "kept" {
			t.Fatalf("case changed: %+v", c)
		}
	}
}

func TestCaseResolveRejectsNonFinalStatus(t *testing.T) {
	t.Parallel()

	c := Case{Status: StatusPending}
	if err := c.Resolve(StatusPending, time.Now()); !errors.Is(err, ErrInvalidDisposition) {
		t.Fatalf("Resolve(pending) error = %v, want ErrInvalidDisposition", err)
	}
	if c.LastUpdated != "" {
		t.Fatalf("LastUpdated should be untouched, got %q", c.LastUpdated)
	}
}

func TestAmountJSON(t *testing.T) {
	t.Parallel()

	var c Case
	if err := json.Unmarshal([]byte(`{"transactionAmount": 4999.5}`), &c); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if c.TransactionAmount != "4999.5" {
		t.Fatalf("TransactionAmount = %q", c.TransactionAmount)
	}
	out, err := json.Marshal(c.TransactionAmount)
	if err != nil || string(out) != "4999.5" {
		t.Fatalf("marshal number = %s, %v", out, err)
	}

	if err := json.Unmarshal([]byte(`{"transactionAmount": "4,999"}`), &c); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	out, err = json.Marshal(c.TransactionAmount)
	if err != nil || string(out) != `"4,999"` {
		t.Fatalf("marshal string = %s, %v", out, err)
	}

	var empty Case
	if err := json.Unmarshal([]byte(`{"transactionAmount": null}`), &empty); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if empty.TransactionAmount != "" {
		t.Fatalf("TransactionAmount = %q, want empty", empty.TransactionAmount)
	}

	var amount Amount
	if err := json.Unmarshal([]byte(`true`), &amount); err == nil {
		t.Fatal("expected error for boolean amount")
	}
	if err := json.Unmarshal([]byte(`{"transactionAmount": true, "merchantName": "Amazon"}`), &c); err != nil {
		t.Fatalf("unmarshal case with boolean amount: %v", err)
	}
	if c.TransactionAmount != "" || c.MerchantName != "Amazon" {
		t.Fatalf("case = %+v, want missing amount and merchant kept", c)
	}
}

func TestCaseJSONToleratesMistypedFields(t *testing.T) {
	t.Parallel()

	var c Case
	raw := `{"caseId": 1002, "userName": "Priya Nair", "status": 5, "securityAnswer": null, "maskedCard": ["x"]}`
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.CaseID != "1002" || c.UserName != "Priya Nair" || c.Status != "5" {
		t.Fatalf("case = %+v", c)
	}
	if c.SecurityAnswer != "" || c.MaskedCard != `["x"]` {
		t.Fatalf("SecurityAnswer = %q MaskedCard = %q", c.SecurityAnswer, c.MaskedCard)
	}
}

func TestCaseJSONKeepsUnknownKeys(t *testing.T) {
	t.Parallel()

	var c Case
	raw := `{"caseId": "FC-9", "riskScore": 0.93, "tags": ["vip"], "note": "manual review"}`
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(c.Extra) != 3 {
		t.Fatalf("Extra = %v", c.Extra)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(out)
	for _, want := range []string{`"riskScore":0.93`, `"tags":["vip"]`, `"note":"manual review"`, `"caseId":"FC-9"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("marshal output %s missing %s", text, want)
		}
	}
	if strings.Index(text, `"lastUpdated"`) > strings.Index(text, `"note"`) {
		t.Fatalf("extra keys should follow known fields: %s", text)
	}
}

func TestCaseDescribe(t *testing.T) {
	t.Parallel()

	c := Case{
		MerchantName:        "ABC Industry",
		TransactionAmount:   "4999",
		TransactionCurrency: "INR",
		MaskedCard:          "**** 4242",
		TransactionTime:     "2 PM today",
		TransactionLocation: "Mumbai",
		TransactionCategory: "e-commerce",
	}
	want := "We detected a e-commerce transaction at ABC Industry for 4999 INR on your card **** 4242, " +
		"around 2 PM today, in Mumbai. Did you make this transaction?"
	if got := c.Describe(); got != want {
		t.Fatalf("Describe() = %q\nwant %q", got, want)
	}
}

func TestCaseDescribePlaceholders(t *testing.T) {
	t.Parallel()

	got := (&Case{}).Describe()
	for _, part := range []string{
		placeholderCategory,
		placeholderMerchant,
		"for " + placeholderAmount + " on",
		placeholderMaskedCard,
		placeholderTime,
		placeholderLocation,
	} {
		if !strings.Contains(got, part) {
			t.Fatalf("Describe() = %q, missing %q", got, part)
		}
	}
}
