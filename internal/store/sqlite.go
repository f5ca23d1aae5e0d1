package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finpersona/backend/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	// Limit open connections to 1 for SQLite to avoid locking issues
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration instance creation failed: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toUnix(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromUnix(n int64) time.Time {
	return time.UnixMicro(n).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteStore) CreateTransactions(ctx context.Context, txs []*domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(id, user_id, amount, category, description, occurred_at, kind, anomaly_checked, processed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		var processed sql.NullInt64
		if t.ProcessedAt != nil {
			processed = sql.NullInt64{Int64: toUnix(*t.ProcessedAt), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.UserID, t.Amount, t.Category, t.Description, toUnix(t.OccurredAt),
			string(t.Kind), boolInt(t.AnomalyChecked), processed, toUnix(t.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) FindTransactions(ctx context.Context, userID string, since time.Time, kind domain.TransactionKind) ([]*domain.Transaction, error) {
	query := `SELECT id, user_id, amount, category, description, occurred_at, kind, anomaly_checked, processed_at, created_at
		FROM transactions WHERE user_id = ? AND occurred_at >= ?`
	args := []any{userID, toUnix(since)}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY occurred_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		var (
			t                 domain.Transaction
			kindStr           string
			occurred, created int64
			checked           int
			processed         sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.Description,
			&occurred, &kindStr, &checked, &processed, &created); err != nil {
			return nil, err
		}
		t.Kind = domain.TransactionKind(kindStr)
		t.OccurredAt = fromUnix(occurred)
		t.CreatedAt = fromUnix(created)
		t.AnomalyChecked = checked != 0
		if processed.Valid {
			p := fromUnix(processed.Int64)
			t.ProcessedAt = &p
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) MarkProcessed(ctx context.Context, ids []string, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET anomaly_checked = 1, processed_at = ? WHERE id = ?`, toUnix(at), id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) InsertAlerts(ctx context.Context, alerts []*domain.Alert) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO alerts
			(id, user_id, type, kind, category, amount, normal_range, severity, message,
			 multiplier, transaction_description, created_at, seq, read, dismissed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.UserID, a.Type, string(a.Kind), a.Category, a.Amount, a.NormalRange,
			string(a.Severity), a.Message, a.Multiplier, a.Transaction, toUnix(a.CreatedAt),
			a.Seq, boolInt(a.Read), boolInt(a.Dismissed),
		); err != nil {
			return fmt.Errorf("insert alert %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListAlerts(ctx context.Context, userID string, since time.Time) ([]*domain.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, type, kind, category, amount, normal_range,
		severity, message, multiplier, transaction_description, created_at, seq, read, dismissed
		FROM alerts WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC, seq ASC`, userID, toUnix(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Alert
	for rows.Next() {
		var (
			a               domain.Alert
			kind, severity  string
			created         int64
			read, dismissed int
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &kind, &a.Category, &a.Amount, &a.NormalRange,
			&severity, &a.Message, &a.Multiplier, &a.Transaction, &created, &a.Seq, &read, &dismissed); err != nil {
			return nil, err
		}
		a.Kind = domain.AnomalyKind(kind)
		a.Severity = domain.Severity(severity)
		a.CreatedAt = fromUnix(created)
		a.Read = read != 0
		a.Dismissed = dismissed != 0
		result = append(result, &a)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) UpdateAlertStatus(ctx context.Context, userID, alertID string, action domain.AlertAction) error {
	var column string
	switch action {
	case domain.AlertActionRead:
		column = "read"
	case domain.AlertActionDismiss:
		column = "dismissed"
	default:
		return fmt.Errorf("unknown alert action %q", action)
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE alerts SET %s = 1 WHERE id = ? AND user_id = ?`, column), alertID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) InsertScenarioRecord(ctx context.Context, record *domain.ScenarioRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	analysis, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	simulation, err := json.Marshal(record.Simulation)
	if err != nil {
		return fmt.Errorf("encode simulation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO scenario_records
		(id, user_id, scenario, timeframe, analysis, simulation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.Scenario, record.Timeframe, string(analysis), string(simulation),
		toUnix(record.CreatedAt))
	return err
}

func (s *SQLiteStore) ListScenarioRecords(ctx context.Context, userID string, limit int) ([]*domain.ScenarioRecord, error) {
	query := `SELECT id, user_id, scenario, timeframe, analysis, simulation, created_at
		FROM scenario_records WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.ScenarioRecord
	for rows.Next() {
		var (
			r                    domain.ScenarioRecord
			analysis, simulation string
			created              int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Scenario, &r.Timeframe, &analysis, &simulation, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(analysis), &r.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis for %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(simulation), &r.Simulation); err != nil {
			return nil, fmt.Errorf("decode simulation for %s: %w", r.ID, err)
		}
		r.CreatedAt = fromUnix(created)
		result = append(result, &r)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) InsertConversation(ctx context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO conversations
		(id, user_id, message, response, is_scenario, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.UserID, conv.Message, conv.Response, boolInt(conv.IsScenario), string(conv.Source),
		toUnix(conv.CreatedAt))
	return err
}

func (s *SQLiteStore) ListConversations(ctx context.Context, userID string, limit int) ([]*domain.Conversation, error) {
	query := `SELECT id, user_id, message, response, is_scenario, source, created_at
		FROM conversations WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Conversation
	for rows.Next() {
		var (
			c        domain.Conversation
			scenario int
			source   string
			created  int64
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Message, &c.Response, &scenario, &source, &created); err != nil {
			return nil, err
		}
		c.IsScenario = scenario != 0
		c.Source = domain.AnalysisSource(source)
		c.CreatedAt = fromUnix(created)
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*domain.FinancialProfile, error) {
	var (
		p       domain.FinancialProfile
		updated int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT user_id, monthly_income, monthly_expenses, current_savings, updated_at
		FROM financial_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.MonthlyIncome, &p.MonthlyExpenses, &p.CurrentSavings, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = fromUnix(updated)
	return &p, nil
}

func (s *SQLiteStore) UpsertProfile(ctx context.Context, profile *domain.FinancialProfile) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO financial_profiles
		(user_id, monthly_income, monthly_expenses, current_savings, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			monthly_income = excluded.monthly_income,
			monthly_expenses = excluded.monthly_expenses,
			current_savings = excluded.current_savings,
			updated_at = excluded.updated_at`,
		profile.UserID, profile.MonthlyIncome, profile.MonthlyExpenses, profile.CurrentSavings,
		toUnix(profile.UpdatedAt))
	return err
}
