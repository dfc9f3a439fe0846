package ledger

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// NewPostID generates a new ULID-based post identifier.
func NewPostID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

const migrationSQL = `
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    bot TEXT NOT NULL,
    slot TEXT NOT NULL,
    status TEXT NOT NULL,
    message TEXT,
    symbols INTEGER,
    error_msg TEXT,
    quarter TEXT,
    symbol TEXT,
    posted_at TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_posts_bot ON posts(bot);
CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts(posted_at);
CREATE INDEX IF NOT EXISTS idx_posts_symbol_quarter ON posts(symbol, quarter);
`

// SQLiteStore implements PostStore backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and applies the
// schema migration.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode keeps reads cheap while the bot is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(migrationSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// RecordPost inserts or updates a post record.
func (s *SQLiteStore) RecordPost(ctx context.Context, post *Post) error {
	if post.ID == "" {
		post.ID = NewPostID()
	}
	if post.PostedAt.IsZero() {
		post.PostedAt = time.Now().UTC()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (
			id, bot, slot, status, message, symbols, error_msg,
			quarter, symbol, posted_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			message = excluded.message,
			symbols = excluded.symbols,
			error_msg = excluded.error_msg`,
		post.ID,
		post.Bot,
		post.Slot,
		post.Status,
		nullString(post.Message),
		post.Symbols,
		nullString(post.ErrorMsg),
		nullString(post.Quarter),
		nullString(post.Symbol),
		formatTime(post.PostedAt),
		formatTime(post.CreatedAt),
	)
	return err
}

const selectPostCols = `id, bot, slot, status, message, symbols, error_msg,
	quarter, symbol, posted_at, created_at`

func (s *SQLiteStore) scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	var postedAt, createdAt string
	var message, errorMsg, quarter, symbol sql.NullString
	var symbols sql.NullInt64

	err := row.Scan(
		&p.ID,
		&p.Bot,
		&p.Slot,
		&p.Status,
		&message,
		&symbols,
		&errorMsg,
		&quarter,
		&symbol,
		&postedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.PostedAt, err = parseTime(postedAt)
	if err != nil {
		return nil, fmt.Errorf("parse posted_at: %w", err)
	}
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	if message.Valid {
		p.Message = message.String
	}
	if symbols.Valid {
		p.Symbols = int(symbols.Int64)
	}
	if errorMsg.Valid {
		p.ErrorMsg = errorMsg.String
	}
	if quarter.Valid {
		p.Quarter = quarter.String
	}
	if symbol.Valid {
		p.Symbol = symbol.String
	}
	return &p, nil
}

// GetPost retrieves a single post by ID. A missing id yields (nil, nil).
func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*Post, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectPostCols+" FROM posts WHERE id = ?", id)
	post, err := s.scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

// ListPosts returns posts matching the given options, newest first.
func (s *SQLiteStore) ListPosts(ctx context.Context, opts ListOpts) ([]*Post, error) {
	query := "SELECT " + selectPostCols + " FROM posts"
	var conds []string
	var args []any

	if opts.Bot != "" {
		conds = append(conds, "bot = ?")
		args = append(args, opts.Bot)
	}
	if opts.Slot != "" {
		conds = append(conds, "slot = ?")
		args = append(args, opts.Slot)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY posted_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := s.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetBotStats returns aggregate posting statistics for one bot.
func (s *SQLiteStore) GetBotStats(ctx context.Context, bot string) (*BotStats, error) {
	var stats BotStats
	var lastPost sql.NullString
	var successes, failures sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS total_posts,
			SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END) AS successes,
			SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END) AS failures,
			MAX(posted_at) AS last_post
		FROM posts
		WHERE bot = ?`, bot).Scan(
		&stats.TotalPosts,
		&successes,
		&failures,
		&lastPost,
	)
	if err != nil {
		return nil, err
	}

	if successes.Valid {
		stats.Successes = int(successes.Int64)
	}
	if failures.Valid {
		stats.Failures = int(failures.Int64)
	}
	if lastPost.Valid {
		t, err := parseTime(lastPost.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_post: %w", err)
		}
		stats.LastPost = &t
	}
	return &stats, nil
}

// HasRevenuePost reports whether a successful revenue post already
// exists for the symbol and fiscal quarter, so reruns do not repeat a
// report.
func (s *SQLiteStore) HasRevenuePost(ctx context.Context, symbol, quarter string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM posts
		WHERE symbol = ? AND quarter = ? AND status = 'success'`,
		symbol, quarter).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
