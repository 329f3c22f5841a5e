package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means driver default
}

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open initializes the sqlite-backed store, creating the schema if needed.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())); err != nil {
			log.Warn("busy_timeout pragma failed", logx.Err(err))
		}
	}
	// WAL is what lets the web and bot processes share one database file.
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		log.Warn("journal_mode pragma failed", logx.Err(err))
	} else if !strings.EqualFold(mode, "wal") {
		log.Warn("journal_mode not wal; concurrent access degraded", logx.String("mode", mode))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Warn("synchronous pragma failed", logx.Err(err))
	}

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const accountCols = `id, username, password_hash, preferences, telegram_chat_id, created_at`

func (s *sqliteStore) CreateUser(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users(username, password_hash) VALUES(?,?)`,
		username, HashPassword(password),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrDuplicateUsername
	}
	return res.LastInsertId()
}

func (s *sqliteStore) Authenticate(ctx context.Context, username, password string) (Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM users WHERE username = ? AND password_hash = ?`,
		strings.TrimSpace(username), HashPassword(password),
	)
	return scanAccount(row)
}

func (s *sqliteStore) GetUser(ctx context.Context, id int64) (Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM users WHERE id = ?`, id)
	return scanAccount(row)
}

func (s *sqliteStore) GetByChatID(ctx context.Context, chatID string) (Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM users WHERE telegram_chat_id = ?`,
		strings.TrimSpace(chatID))
	return scanAccount(row)
}

func (s *sqliteStore) UpdatePreferences(ctx context.Context, id int64, categories []string, chatID string) error {
	prefs := normalizePreferences(categories)
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET preferences = ?, telegram_chat_id = ? WHERE id = ?`,
		prefs, strings.TrimSpace(chatID), id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) ListLinked(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountCols+` FROM users WHERE telegram_chat_id != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func normalizePreferences(categories []string) string {
	clean := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		return DefaultCategory
	}
	return strings.Join(clean, ",")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (Account, error) {
	var (
		a       Account
		created string
	)
	err := r.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Preferences, &a.TelegramChatID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	a.CreatedAt = parseSQLiteTime(created)
	return a, nil
}

// parseSQLiteTime handles both CURRENT_TIMESTAMP ("2006-01-02 15:04:05")
// and RFC3339 values. A zero time is returned for anything else; the
// creation timestamp is informational only.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
