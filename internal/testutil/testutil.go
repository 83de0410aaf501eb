// Package testutil builds throwaway SQLite-backed boards for tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/repositories"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/pkg/config"
	"github.com/anonto42/celebration-board/pkg/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SuperAdminEmail is the super-admin address every test board is configured with.
const SuperAdminEmail = "root@board.test"

// Password satisfies the password policy for any fixture username.
const Password = "Celebrate#2024"

// Env is a migrated database with a board on top of it.
type Env struct {
	DB        *gorm.DB
	Repos     *repositories.Repositories
	Store     *storage.LocalStore
	Board     *services.Board
	SuperUser *models.User
	Logs      *bytes.Buffer // everything the board logged
}

var seq atomic.Int64

// SetupTestDB opens a fresh SQLite database file under t.TempDir and migrates it.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenSQL(config.DriverSQLite, filepath.Join(t.TempDir(), "board.db"), slog.LevelError)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, config.Migrate(db))
	return db
}

// NewEnv returns a board over a fresh database with the super-admin seeded.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	db := SetupTestDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), storage.DefaultPolicy())
	require.NoError(t, err)

	logs := new(bytes.Buffer)
	repos := repositories.New(db)
	board := services.NewBoard(repos, store, services.Settings{
		SuperAdminEmail: SuperAdminEmail,
		AdminPassword:   Password,
		SessionSecret:   []byte("test-session-secret"),
		BcryptCost:      bcrypt.MinCost,
	}, slog.New(slog.NewTextHandler(logs, nil)))

	super, err := board.EnsureSuperAdmin(context.Background())
	require.NoError(t, err)

	return &Env{DB: db, Repos: repos, Store: store, Board: board, SuperUser: super, Logs: logs}
}

// CreateUser registers a user with a unique name derived from prefix.
func (e *Env) CreateUser(t *testing.T, prefix string) *models.User {
	t.Helper()

	name := fmt.Sprintf("%s%d", prefix, seq.Add(1))
	user, err := e.Board.CreateUser(context.Background(), services.RegisterInput{
		Username:   name,
		Email:      name + "@board.test",
		Department: "engineering",
		JobTitle:   "Engineer",
		Password:   Password,
		Confirm:    Password,
	})
	require.NoError(t, err)
	return user
}

// CreateAdmin registers a user and has the super-admin promote them.
func (e *Env) CreateAdmin(t *testing.T, prefix string) *models.User {
	t.Helper()

	user := e.CreateUser(t, prefix)
	admin, err := e.Board.ToggleAdminStatus(context.Background(), e.SuperUser, user.ID)
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)
	return admin
}

// CreatePost publishes a post by author without an attachment.
func (e *Env) CreatePost(t *testing.T, author *models.User, title string) *models.Post {
	t.Helper()

	post, err := e.Board.CreatePost(context.Background(), author, services.PostInput{
		Title:   title,
		Content: "Celebrating " + title + " with the whole team",
	}, nil)
	require.NoError(t, err)
	return post
}

// Count returns the number of rows of model matching the optional condition.
func (e *Env) Count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	q := e.DB.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
