package services

import (
	"context"
	"fmt"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/repositories"
)

// LikeResult is the state of a post's likes after a toggle.
type LikeResult struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// ToggleLike likes the post, or unlikes it when user already likes it.
// Each like by someone other than the author notifies the author; unlikes never do.
func (b *Board) ToggleLike(ctx context.Context, postID uint, user *models.User) (*LikeResult, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	var result LikeResult
	err := b.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		post, err := tx.Posts.LockPost(ctx, postID)
		if err != nil {
			return notFound(err, "post")
		}

		removed, err := tx.Likes.DeleteLike(ctx, postID, user.ID)
		if err != nil {
			return fmt.Errorf("unlike: %w", err)
		}
		if !removed {
			created, err := tx.Likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: user.ID})
			if err != nil {
				return fmt.Errorf("like: %w", err)
			}
			if created {
				result.Liked = true
			} else if _, err := tx.Likes.DeleteLike(ctx, postID, user.ID); err != nil {
				// a concurrent like won the unique index; this toggle undoes it
				return fmt.Errorf("unlike: %w", err)
			}
		}

		if result.Liked && post.UserID != user.ID {
			if err := tx.Notifications.CreateNotification(ctx, &models.Notification{
				UserID:  post.UserID,
				Type:    models.NotificationLike,
				Content: fmt.Sprintf("%s liked your post %q", user.Username, post.Title),
			}); err != nil {
				return fmt.Errorf("notify author: %w", err)
			}
		}

		result.Count, err = tx.Likes.GetLikesCountByPostID(ctx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
