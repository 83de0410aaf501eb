package services

import (
	"context"
	"fmt"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/repositories"
)

// ToggleAdminStatus promotes or demotes targetID. Only the super-admin may do
// this and the super-admin account itself never changes. The flag, the log
// entry and the target's notification are written together or not at all.
func (b *Board) ToggleAdminStatus(ctx context.Context, actor *models.User, targetID uint) (*models.User, error) {
	if err := b.policy.Authorize(actor, ActionToggleAdmin, nil); err != nil {
		return nil, err
	}

	var target *models.User
	err := b.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		user, err := tx.Users.LockUser(ctx, targetID)
		if err != nil {
			return notFound(err, "user")
		}
		if err := b.policy.Authorize(actor, ActionToggleAdmin, user); err != nil {
			return err
		}

		promote := !user.IsAdmin
		var promotedBy *uint
		action, message := models.AdminActionRemoved, "Your admin privileges have been removed."
		if promote {
			promotedBy = &actor.ID
			action, message = models.AdminActionPromoted, "You have been promoted to admin."
		}
		if err := tx.Users.SetAdmin(ctx, user.ID, promote, promotedBy); err != nil {
			return fmt.Errorf("set admin flag: %w", err)
		}
		if err := tx.AdminLogs.CreateLog(ctx, &models.AdminActionLog{
			AdminID:      actor.ID,
			TargetUserID: user.ID,
			Action:       action,
			Details:      fmt.Sprintf("%s %s user %s", actor.Username, action, user.Username),
		}); err != nil {
			return fmt.Errorf("write admin log: %w", err)
		}
		if err := tx.Notifications.CreateNotification(ctx, &models.Notification{
			UserID:  user.ID,
			Type:    models.NotificationAdminStatus,
			Content: message,
		}); err != nil {
			return fmt.Errorf("notify target: %w", err)
		}

		user.IsAdmin = promote
		user.PromotedByID = promotedBy
		target = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info("admin status changed", "actor_id", actor.ID, "target_id", target.ID, "is_admin", target.IsAdmin)
	return target, nil
}

// RecentAdminLogs is the latest admin audit trail; admins only.
func (b *Board) RecentAdminLogs(ctx context.Context, actor *models.User, limit int) ([]models.AdminActionLog, error) {
	if err := b.policy.Authorize(actor, ActionListUsers, nil); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	var logs []models.AdminActionLog
	err := retryRead(ctx, func() (err error) {
		logs, err = b.repos.AdminLogs.Recent(ctx, limit)
		return err
	})
	return logs, err
}
