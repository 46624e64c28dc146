package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS strawberry_users (
    user_id TEXT PRIMARY KEY,
    strawberries BIGINT NOT NULL DEFAULT 0 CHECK (strawberries >= 0),
    last_daily BIGINT NOT NULL DEFAULT 0,
    streak INTEGER NOT NULL DEFAULT 0,
    games_played INTEGER NOT NULL DEFAULT 0,
    games_won INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS strawberry_users_balance_idx ON strawberry_users (strawberries DESC, user_id)`,
}

const selectColumns = `user_id, strawberries, last_daily, streak, games_played, games_won`

// SQLStore stores balances in PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQL opens a database from a URL. postgres:// and postgresql:// use
// lib/pq; sqlite://, file: and bare *.db paths use modernc.org/sqlite.
func OpenSQL(ctx context.Context, url string) (*SQLStore, error) {
	driver, dsn, d, err := parseDatabaseURL(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if d == dialectSQLite {
		// One writer at a time; transactions queue on the pool instead of failing with SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func parseDatabaseURL(url string) (driver, dsn string, d dialect, err error) {
	url = strings.TrimSpace(url)
	lower := strings.ToLower(url)
	switch {
	case url == "":
		return "", "", 0, fmt.Errorf("database url is required")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres", url, dialectPostgres, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return "sqlite", sqliteDSN(url[len("sqlite://"):]), dialectSQLite, nil
	case strings.HasPrefix(lower, "sqlite:"):
		return "sqlite", sqliteDSN(url[len("sqlite:"):]), dialectSQLite, nil
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return "sqlite", sqliteDSN(url), dialectSQLite, nil
	}
	return "", "", 0, fmt.Errorf("unsupported database url %q", url)
}

func sqliteDSN(path string) string {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		path = filepath.Clean(path)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var last int64
	if err := row.Scan(&rec.UserID, &rec.Strawberries, &last, &rec.Streak, &rec.GamesPlayed, &rec.GamesWon); err != nil {
		return Record{}, err
	}
	rec.LastDaily = timeOrZero(last)
	return rec, nil
}

func (s *SQLStore) Get(ctx context.Context, userID string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM strawberry_users WHERE user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", userID, err)
	}
	return rec, nil
}

func (s *SQLStore) Update(ctx context.Context, userID string, fn UpdateFunc) (Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO strawberry_users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return Record{}, fmt.Errorf("ensure %s: %w", userID, err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return Record{}, fmt.Errorf("ensure %s: %w", userID, err)
	}

	query := `SELECT ` + selectColumns + ` FROM strawberry_users WHERE user_id = $1`
	if s.dialect == dialectPostgres {
		query += ` FOR UPDATE`
	}
	rec, err := scanRecord(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		return Record{}, fmt.Errorf("lock %s: %w", userID, err)
	}

	if err := fn(&rec, created == 0); err != nil {
		return Record{}, err
	}
	rec.UserID = userID

	_, err = tx.ExecContext(ctx,
		`UPDATE strawberry_users
		 SET strawberries = $2, last_daily = $3, streak = $4, games_played = $5, games_won = $6
		 WHERE user_id = $1`,
		userID, rec.Strawberries, unixOrZero(rec.LastDaily), rec.Streak, rec.GamesPlayed, rec.GamesWon)
	if err != nil {
		return Record{}, fmt.Errorf("update %s: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit %s: %w", userID, err)
	}
	return rec, nil
}

func (s *SQLStore) Top(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM strawberry_users ORDER BY strawberries DESC, user_id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return s.queryRecords(ctx, query, args...)
}

func (s *SQLStore) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}

func (s *SQLStore) Rank(ctx context.Context, userID string) (int, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `SELECT strawberries FROM strawberry_users WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rank %s: %w", userID, err)
	}
	var above int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM strawberry_users WHERE strawberries > $1`, balance).Scan(&above); err != nil {
		return 0, fmt.Errorf("rank %s: %w", userID, err)
	}
	return above + 1, nil
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM strawberry_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *SQLStore) Prune(ctx context.Context, cutoff time.Time, maxBalance int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`DELETE FROM strawberry_users
		 WHERE last_daily > 0 AND last_daily < $1 AND strawberries <= $2
		 RETURNING user_id`,
		cutoff.Unix(), maxBalance)
	if err != nil {
		return nil, fmt.Errorf("prune users: %w", err)
	}
	defer rows.Close()

	var removed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return removed, fmt.Errorf("scan pruned id: %w", err)
		}
		removed = append(removed, id)
	}
	return removed, rows.Err()
}

func (s *SQLStore) All(ctx context.Context) ([]Record, error) {
	return s.queryRecords(ctx, `SELECT `+selectColumns+` FROM strawberry_users ORDER BY user_id`)
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
