package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository over one gorm handle so a service can
// run several of them inside a single transaction.
type Repositories struct {
	db *gorm.DB

	Users         UserRepository
	Posts         PostRepository
	Comments      CommentRepository
	Likes         LikeRepository
	Notifications NotificationRepository
	AdminLogs     AdminLogRepository
	Sessions      SessionRepository
}

// New builds the repository bundle for db (a plain handle or an open transaction).
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewGormUserRepository(db),
		Posts:         NewGormPostRepository(db),
		Comments:      NewGormCommentRepository(db),
		Likes:         NewGormLikeRepository(db),
		Notifications: NewGormNotificationRepository(db),
		AdminLogs:     NewGormAdminLogRepository(db),
		Sessions:      NewGormSessionRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database transaction.
// Any error returned by fn rolls back every write made through tx.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
