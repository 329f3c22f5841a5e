package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

var (
	// ErrDuplicateUsername is the recoverable, user-visible signup conflict.
	ErrDuplicateUsername = errors.New("username already taken")
	ErrNotFound          = errors.New("account not found")
)

// DefaultCategory is what empty or blank preferences collapse to.
const DefaultCategory = "general"

// Account is the typed record handed out at the read boundary.
// No caller ever sees raw rows.
type Account struct {
	ID             int64
	Username       string
	PasswordHash   string
	Preferences    string // comma-separated category labels
	TelegramChatID string // empty means "not linked"
	CreatedAt      time.Time
}

// Categories parses the stored preferences. It always yields at least one
// category: blank input collapses to DefaultCategory.
func (a Account) Categories() []string { return ParseCategories(a.Preferences) }

// Linked reports whether the account can receive push digests.
func (a Account) Linked() bool { return strings.TrimSpace(a.TelegramChatID) != "" }

// ParseCategories splits a comma-separated preference string, trimming each
// label and dropping empties. Blank input yields [DefaultCategory].
func ParseCategories(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{DefaultCategory}
	}
	return out
}

// HashPassword is a single standard digest (sha256 hex). Key stretching is
// out of scope for this application.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Store is the account persistence API shared by the web tier and the bot.
type Store interface {
	// CreateUser inserts a new account with hashed credential and default
	// preferences. A taken username returns ErrDuplicateUsername with no
	// side effects.
	CreateUser(ctx context.Context, username, password string) (int64, error)

	// Authenticate returns the account only when the password digest matches.
	// A miss (unknown user or wrong password) is ErrNotFound.
	Authenticate(ctx context.Context, username, password string) (Account, error)

	GetUser(ctx context.Context, id int64) (Account, error)
	GetByChatID(ctx context.Context, chatID string) (Account, error)

	// UpdatePreferences overwrites categories and the messaging link together
	// as a single row update. An empty category set collapses to
	// DefaultCategory before the write.
	UpdatePreferences(ctx context.Context, id int64, categories []string, chatID string) error

	// ListLinked returns every account with a non-empty messaging link,
	// in no defined order. Used only by the broadcaster.
	ListLinked(ctx context.Context) ([]Account, error)

	Close() error
}
