package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/subtrack/internal/model"
)

// TokenRepository stores each token's subscription list in SQLite.
type TokenRepository struct {
	db      *sql.DB
	version uint
}

// OpenTokenRepository migrates and opens the token database at dbPath.
func OpenTokenRepository(dbPath string) (*TokenRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}
	version, err := migrateTokenDB(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening token db: %w", err)
	}
	return &TokenRepository{db: db, version: version}, nil
}

// SchemaVersion is the migration version the database was brought to.
func (r *TokenRepository) SchemaVersion() uint {
	return r.version
}

// Close closes the database.
func (r *TokenRepository) Close() error {
	return r.db.Close()
}

// Get returns the list stored under token, or model.ErrTokenNotFound.
func (r *TokenRepository) Get(ctx context.Context, token string) ([]model.Subscription, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM tokens WHERE token = ?", token).Scan(&exists)
	if errNoRows(err) {
		return nil, model.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up token: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, price, currency, period, first_bill_date, icon
		FROM subscriptions WHERE token = ? ORDER BY id`, token)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subs := []model.Subscription{}
	for rows.Next() {
		var (
			s     model.Subscription
			price string
			date  string
		)
		if err := rows.Scan(&s.ID, &s.Name, &price, &s.Currency, &s.Period, &date, &s.Icon); err != nil {
			return nil, err
		}
		if err := decodeFields(&s.Record, price, date); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Create registers an empty token. Creating an existing token is a no-op.
func (r *TokenRepository) Create(ctx context.Context, token string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tokens (token, created_at, updated_at) VALUES (?, ?, ?) ON CONFLICT(token) DO NOTHING",
		token, now, now)
	if err != nil {
		return fmt.Errorf("creating token: %w", err)
	}
	return nil
}

// Replace stores records under token with ids 1..n, creating the token if
// needed, and returns the stored list.
func (r *TokenRepository) Replace(ctx context.Context, token string, records []model.Record) ([]model.Subscription, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `INSERT INTO tokens (token, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET updated_at = excluded.updated_at`, token, now, now)
	if err != nil {
		return nil, fmt.Errorf("upserting token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM subscriptions WHERE token = ?", token); err != nil {
		return nil, fmt.Errorf("clearing subscriptions: %w", err)
	}

	subs := make([]model.Subscription, len(records))
	for i, rec := range records {
		subs[i] = model.Subscription{ID: i + 1, Record: rec}
		_, err := tx.ExecContext(ctx, `INSERT INTO subscriptions
			(token, id, name, price, currency, period, first_bill_date, icon)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			token, i+1, rec.Name, rec.Price.String(), string(rec.Currency), string(rec.Period),
			rec.FirstBillDate.Format(model.DateLayout), rec.Icon,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting subscription %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return subs, nil
}

// Count returns the number of stored tokens.
func (r *TokenRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tokens").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tokens: %w", err)
	}
	return n, nil
}
