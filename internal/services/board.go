// Package services implements the celebration board's operations. Every
// operation takes its acting user explicitly, consults the Policy, and runs
// multi-row writes inside one transaction.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/anonto42/celebration-board/internal/repositories"
	"github.com/anonto42/celebration-board/internal/validators"
	"github.com/anonto42/celebration-board/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

// Settings are the operational knobs of a Board.
type Settings struct {
	SuperAdminEmail  string
	AdminPassword    string // used once, to seed the super-admin
	CommentMaxLength int
	SessionSecret    []byte
	SessionTTL       time.Duration
	BcryptCost       int
}

func (s Settings) withDefaults() Settings {
	if s.CommentMaxLength <= 0 {
		s.CommentMaxLength = 500
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = 24 * time.Hour
	}
	if s.BcryptCost == 0 {
		s.BcryptCost = bcrypt.DefaultCost
	}
	return s
}

// Board is the application context shared by all handlers.
type Board struct {
	repos    *repositories.Repositories
	store    storage.Store
	policy   *Policy
	validate *validators.CustomValidator
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewBoard wires a Board. A nil logger falls back to slog.Default().
func NewBoard(repos *repositories.Repositories, store storage.Store, settings Settings, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	settings = settings.withDefaults()
	return &Board{
		repos:    repos,
		store:    store,
		policy:   NewPolicy(settings.SuperAdminEmail),
		validate: validators.NewValidator(),
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Policy returns the authorization policy the board enforces.
func (b *Board) Policy() *Policy {
	return b.policy
}

// Logger returns the board's structured logger.
func (b *Board) Logger() *slog.Logger {
	return b.logger
}

// CommentMaxLength is the longest accepted comment, in characters.
func (b *Board) CommentMaxLength() int {
	return b.settings.CommentMaxLength
}

// discardAttachment removes a stored file that no row references. Failures are
// logged only; the database is already consistent.
func (b *Board) discardAttachment(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := b.store.Remove(context.WithoutCancel(ctx), path); err != nil {
		b.logger.Warn("failed to remove attachment", "path", path, "error", err)
	}
}
