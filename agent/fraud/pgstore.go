package fraud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// caseRow is the fraud_cases table. Position keeps storage order so lookups
// by name still resolve duplicates to the first stored case.
type caseRow struct {
	bun.BaseModel `bun:"table:fraud_cases,alias:fc"`

	Position            int    `bun:"position,pk"`
	CaseID              string `bun:"case_id,notnull"`
	UserName            string `bun:"user_name,notnull"`
	SecurityQuestion    string `bun:"security_question,notnull"`
	SecurityAnswer      string `bun:"security_answer,notnull"`
	MerchantName        string `bun:"merchant_name,notnull"`
	TransactionAmount   string `bun:"transaction_amount,notnull"`
	TransactionCurrency string `bun:"transaction_currency,notnull"`
	MaskedCard          string `bun:"masked_card,notnull"`
	TransactionTime     string `bun:"transaction_time,notnull"`
	TransactionLocation string `bun:"transaction_location,notnull"`
	TransactionCategory string `bun:"transaction_category,notnull"`
	Status              string `bun:"status,notnull"`
	OutcomeNote         string `bun:"outcome_note,notnull"`
	LastUpdated         string `bun:"last_updated,notnull"`

	Extra map[string]any `bun:"extra,type:jsonb"`
}

func toRows(cases []Case) []caseRow {
	rows := make([]caseRow, 0, len(cases))
	for i, c := range cases {
		rows = append(rows, caseRow{
			Position:            i,
			CaseID:              c.CaseID,
			UserName:            c.UserName,
			SecurityQuestion:    c.SecurityQuestion,
			SecurityAnswer:      c.SecurityAnswer,
			MerchantName:        c.MerchantName,
			TransactionAmount:   string(c.TransactionAmount),
			TransactionCurrency: c.TransactionCurrency,
			MaskedCard:          c.MaskedCard,
			TransactionTime:     c.TransactionTime,
			TransactionLocation: c.TransactionLocation,
			TransactionCategory: c.TransactionCategory,
			Status:              string(c.Status),
			OutcomeNote:         c.OutcomeNote,
			LastUpdated:         c.LastUpdated,
			Extra:               c.Extra,
		})
	}
	return rows
}

func fromRows(rows []caseRow) []Case {
	cases := make([]Case, 0, len(rows))
	for _, r := range rows {
		cases = append(cases, Case{
			CaseID:              r.CaseID,
			UserName:            r.UserName,
			SecurityQuestion:    r.SecurityQuestion,
			SecurityAnswer:      r.SecurityAnswer,
			MerchantName:        r.MerchantName,
			TransactionAmount:   Amount(r.TransactionAmount),
			TransactionCurrency: r.TransactionCurrency,
			MaskedCard:          r.MaskedCard,
			TransactionTime:     r.TransactionTime,
			TransactionLocation: r.TransactionLocation,
			TransactionCategory: r.TransactionCategory,
			Status:              Status(r.Status),
			OutcomeNote:         r.OutcomeNote,
			LastUpdated:         r.LastUpdated,
			Extra:               r.Extra,
		})
	}
	return cases
}

// PostgresStore keeps the cases in one table and rewrites it in full on every
// save, inside a single transaction. Concurrent saves are serialized by a
// table lock, so the last committed snapshot wins.
type PostgresStore struct {
	db *bun.DB
}

func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	store := NewPostgresStore(bun.NewDB(sqldb, pgdialect.New()))
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Name() string {
	return "postgres:fraud_cases"
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*caseRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create fraud_cases table: %w", err)
	}
	// Tables created before extra fields were kept lack the column.
	if _, err := s.db.ExecContext(ctx, "ALTER TABLE fraud_cases ADD COLUMN IF NOT EXISTS extra jsonb"); err != nil {
		return fmt.Errorf("add fraud_cases.extra column: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]Case, error) {
	var rows []caseRow
	if err := s.db.NewSelect().Model(&rows).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select fraud cases: %w", err)
	}
	return fromRows(rows), nil
}

func (s *PostgresStore) Save(ctx context.Context, cases []Case) error {
	rows := toRows(cases)
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// EXCLUSIVE still admits readers but queues other writers until commit.
		if _, err := tx.ExecContext(ctx, "LOCK TABLE fraud_cases IN EXCLUSIVE MODE"); err != nil {
			return fmt.Errorf("lock fraud cases: %w", err)
		}
		if _, err := tx.NewDelete().Model((*caseRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("clear fraud cases: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert fraud cases: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
