package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/repositories"
)

// AddComment attaches a comment to a post and tells the post's author about it
// when somebody else wrote it.
func (b *Board) AddComment(ctx context.Context, postID uint, author *models.User, content string) (*models.Comment, error) {
	if author == nil {
		return nil, ErrForbidden
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fieldError("content", "Comment cannot be empty.")
	}
	if limit := b.settings.CommentMaxLength; utf8.RuneCountInString(content) > limit {
		return nil, fieldError("content", fmt.Sprintf("Comment cannot be longer than %d characters.", limit))
	}

	comment := &models.Comment{Content: content, PostID: postID, UserID: author.ID}
	err := b.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		post, err := tx.Posts.GetPostByID(ctx, postID)
		if err != nil {
			return notFound(err, "post")
		}
		if err := tx.Comments.CreateComment(ctx, comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		if post.UserID == author.ID {
			return nil
		}
		return tx.Notifications.CreateNotification(ctx, &models.Notification{
			UserID:  post.UserID,
			Type:    models.NotificationComment,
			Content: fmt.Sprintf("%s commented on your post %q", author.Username, post.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	comment.User = author
	return comment, nil
}
