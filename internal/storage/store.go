// Package storage keeps snapshots of the normalized catalog in Postgres
// or SQLite so that successive runs can be diffed.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Record is one stored excursion. Payload holds the full excursion as
// JSON; the other columns are copies used for querying and diffing.
type Record struct {
	ID        string
	Title     string
	Category  string
	Price     string
	Duration  string
	URL       string
	Image     string
	Payload   string
	UpdatedAt time.Time
}

type Store struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// Open connects to the database and creates the schema if needed.
// For SQLite, dsn is a file path whose directory is created.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver = strings.ToLower(strings.TrimSpace(driver))

	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("storage: create directory: %w", err)
			}
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)"
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}

	s := &Store{db: db, driver: driver, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("storage ready", zap.String("driver", driver))
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS excursions (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		category   TEXT NOT NULL,
		price      TEXT NOT NULL DEFAULT '',
		duration   TEXT NOT NULL DEFAULT '',
		url        TEXT NOT NULL DEFAULT '',
		image      TEXT NOT NULL DEFAULT '',
		payload    TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("storage: create table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_excursions_category ON excursions (category)`); err != nil {
		return fmt.Errorf("storage: create index: %w", err)
	}
	return nil
}

// rebind turns ? placeholders into $N for Postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Upsert inserts or replaces records in one transaction.
func (s *Store) Upsert(ctx context.Context, records []Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO excursions (id, title, category, price, duration, url, image, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			price = excluded.price,
			duration = excluded.duration,
			url = excluded.url,
			image = excluded.image,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`))
	if err != nil {
		return fmt.Errorf("storage: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err = stmt.ExecContext(ctx,
			r.ID, r.Title, r.Category, r.Price, r.Duration, r.URL, r.Image, r.Payload, r.UpdatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("storage: upsert %s: %w", r.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	s.logger.Info("stored excursions", zap.Int("count", len(records)))
	return nil
}

// List returns every stored record ordered by id.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, price, duration, url, image, payload, updated_at
		FROM excursions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var updated int64
		if err := rows.Scan(&r.ID, &r.Title, &r.Category, &r.Price, &r.Duration, &r.URL, &r.Image, &r.Payload, &updated); err != nil {
			return nil, fmt.Errorf("storage: scan: %w", err)
		}
		r.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Delete removes the records with the given ids and reports how many
// were removed.
func (s *Store) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM excursions WHERE id IN (`+placeholders+`)`), args...)
	if err != nil {
		return 0, fmt.Errorf("storage: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: delete: %w", err)
	}
	s.logger.Info("deleted excursions", zap.Int64("count", n))
	return n, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
