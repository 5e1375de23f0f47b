// Package store provides SQLite persistence: the local workspace that carries
// subscriptions and sync state between CLI runs, and the token repository
// behind the server.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

const (
	keyToken       = "token"
	keyNextID      = "next_id"
	keyHasSnapshot = "has_snapshot"
	keySyncedAt    = "synced_at"
)

// Workspace is the local state restored at the start of each CLI run.
type Workspace struct {
	Token         string
	Subscriptions []model.Subscription
	// Snapshot is nil when the workspace has never been synced.
	Snapshot []model.Record
	NextID   int
	SyncedAt time.Time
}

// Cache provides SQLite-backed workspace persistence.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the workspace database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating workspace dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening workspace db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the workspace database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Load reads the saved workspace. An empty database yields a zero
// workspace with NextID 1.
func (c *Cache) Load() (Workspace, error) {
	ws := Workspace{NextID: 1}

	kv, err := c.values()
	if err != nil {
		return ws, err
	}
	ws.Token = kv[keyToken]
	if v, ok := kv[keyNextID]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			ws.NextID = n
		}
	}
	if v, ok := kv[keySyncedAt]; ok {
		ws.SyncedAt, _ = time.Parse(time.RFC3339, v)
	}

	rows, err := c.db.Query(`SELECT id, name, price, currency, period, first_bill_date, icon
		FROM local_subscriptions ORDER BY position`)
	if err != nil {
		return ws, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			s     model.Subscription
			price string
			date  string
		)
		if err := rows.Scan(&s.ID, &s.Name, &price, &s.Currency, &s.Period, &date, &s.Icon); err != nil {
			return ws, err
		}
		if err := decodeFields(&s.Record, price, date); err != nil {
			return ws, err
		}
		ws.Subscriptions = append(ws.Subscriptions, s)
	}
	if err := rows.Err(); err != nil {
		return ws, err
	}

	if kv[keyHasSnapshot] == "1" {
		snap, err := c.loadSnapshot()
		if err != nil {
			return ws, err
		}
		ws.Snapshot = snap
	}
	return ws, nil
}

func (c *Cache) loadSnapshot() ([]model.Record, error) {
	rows, err := c.db.Query(`SELECT name, price, currency, period, first_bill_date, icon
		FROM snapshot ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := []model.Record{}
	for rows.Next() {
		var (
			r     model.Record
			price string
			date  string
		)
		if err := rows.Scan(&r.Name, &price, &r.Currency, &r.Period, &date, &r.Icon); err != nil {
			return nil, err
		}
		if err := decodeFields(&r, price, date); err != nil {
			return nil, err
		}
		snap = append(snap, r)
	}
	return snap, rows.Err()
}

// Save replaces the stored workspace with ws in one transaction.
func (c *Cache) Save(ws Workspace) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM workspace",
		"DELETE FROM local_subscriptions",
		"DELETE FROM snapshot",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing workspace: %w", err)
		}
	}

	hasSnapshot := "0"
	if ws.Snapshot != nil {
		hasSnapshot = "1"
	}
	kv := map[string]string{
		keyToken:       ws.Token,
		keyNextID:      strconv.Itoa(ws.NextID),
		keyHasSnapshot: hasSnapshot,
	}
	if !ws.SyncedAt.IsZero() {
		kv[keySyncedAt] = ws.SyncedAt.UTC().Format(time.RFC3339)
	}
	for k, v := range kv {
		if _, err := tx.Exec("INSERT INTO workspace (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("saving %s: %w", k, err)
		}
	}

	for i, s := range ws.Subscriptions {
		_, err := tx.Exec(`INSERT INTO local_subscriptions
			(position, id, name, price, currency, period, first_bill_date, icon)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, s.ID, s.Name, s.Price.String(), string(s.Currency), string(s.Period),
			s.FirstBillDate.Format(model.DateLayout), s.Icon,
		)
		if err != nil {
			return fmt.Errorf("saving subscription %d: %w", s.ID, err)
		}
	}

	for i, r := range ws.Snapshot {
		_, err := tx.Exec(`INSERT INTO snapshot
			(position, name, price, currency, period, first_bill_date, icon)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, r.Name, r.Price.String(), string(r.Currency), string(r.Period),
			r.FirstBillDate.Format(model.DateLayout), r.Icon,
		)
		if err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
	}

	return tx.Commit()
}

func (c *Cache) values() (map[string]string, error) {
	rows, err := c.db.Query("SELECT key, value FROM workspace")
	if err != nil {
		return nil, fmt.Errorf("querying workspace: %w", err)
	}
	defer func() { _ = rows.Close() }()

	kv := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		kv[k] = v
	}
	return kv, rows.Err()
}

func decodeFields(r *model.Record, price, date string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("decoding price %q: %w", price, err)
	}
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return fmt.Errorf("decoding date %q: %w", date, err)
	}
	r.Price = p
	r.FirstBillDate = d
	return nil
}

// errNoRows reports whether err is sql.ErrNoRows.
func errNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
