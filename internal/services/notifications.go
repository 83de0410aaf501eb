package services

import (
	"context"
	"fmt"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/repositories"
)

// ListNotifications returns the user's notifications, newest first, as they were
// before this call, and marks the unread ones read in the same transaction.
func (b *Board) ListNotifications(ctx context.Context, user *models.User) ([]models.Notification, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	var notifications []models.Notification
	err := b.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		rows, err := tx.Notifications.LockByRecipientID(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("load notifications: %w", err)
		}
		var unread []uint
		for _, n := range rows {
			if !n.IsRead {
				unread = append(unread, n.ID)
			}
		}
		if len(unread) > 0 {
			if err := tx.Notifications.MarkAsRead(ctx, user.ID, unread); err != nil {
				return fmt.Errorf("mark notifications read: %w", err)
			}
		}
		notifications = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount is the number of notifications the user has not seen yet.
func (b *Board) UnreadCount(ctx context.Context, user *models.User) (int64, error) {
	if user == nil {
		return 0, nil
	}
	var count int64
	err := retryRead(ctx, func() (err error) {
		count, err = b.repos.Notifications.GetUnreadCount(ctx, user.ID)
		return err
	})
	return count, err
}
