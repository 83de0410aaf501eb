package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/repositories"
	"github.com/anonto42/celebration-board/internal/validators"
	"github.com/anonto42/celebration-board/pkg/storage"
)

// NoReasonGiven replaces an empty moderation reason.
const NoReasonGiven = "No reason given"

// PostInput is the editable part of a post.
type PostInput struct {
	Title   string `form:"title" validate:"required,min=4,max=100"`
	Content string `form:"content" validate:"required,min=10,max=1000"`
}

// Upload is an attachment as received from the client.
type Upload struct {
	Filename string
	Body     io.Reader
}

func (u *Upload) present() bool {
	return u != nil && u.Body != nil && strings.TrimSpace(u.Filename) != ""
}

// PostQuery selects posts for the listing page.
type PostQuery struct {
	Department string
	Search     string
	Sort       string
	Limit      int
}

// PostDetail is a post as shown to one viewer.
type PostDetail struct {
	Post  *models.Post
	Liked bool
}

func (b *Board) validatePost(in *PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if fields := validators.FieldErrors(b.validate.Validate(in)); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// commitAttachment stores an upload ahead of the database write. The policy
// check happens here, so a refused file never reaches the database.
func (b *Board) commitAttachment(ctx context.Context, up *Upload) (storage.Stored, error) {
	if !up.present() {
		return storage.Stored{}, nil
	}
	stored, err := b.store.Save(ctx, up.Body, up.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidAttachment) {
			return storage.Stored{}, err
		}
		return storage.Stored{}, fmt.Errorf("store attachment: %w", err)
	}
	return stored, nil
}

// CreatePost publishes a post by author, optionally with an attachment.
func (b *Board) CreatePost(ctx context.Context, author *models.User, in PostInput, up *Upload) (*models.Post, error) {
	if author == nil {
		return nil, ErrForbidden
	}
	if err := b.validatePost(&in); err != nil {
		return nil, err
	}
	stored, err := b.commitAttachment(ctx, up)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:        in.Title,
		Content:      in.Content,
		UserID:       author.ID,
		FileFilename: stored.Filename,
		FilePath:     stored.Path,
	}
	if err := b.repos.Posts.CreatePost(ctx, post); err != nil {
		b.discardAttachment(ctx, stored.Path)
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.User = author
	b.logger.Info("post created", "post_id", post.ID, "user_id", author.ID, "attachment", stored.Path != "")
	return post, nil
}

// UpdatePost rewrites title and content, and the attachment when one is supplied.
// Only the author may edit.
func (b *Board) UpdatePost(ctx context.Context, postID uint, editor *models.User, in PostInput, up *Upload) (*models.Post, error) {
	post, err := b.repos.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post")
	}
	if err := b.policy.Authorize(editor, ActionEditPost, post); err != nil {
		return nil, err
	}
	if err := b.validatePost(&in); err != nil {
		return nil, err
	}
	stored, err := b.commitAttachment(ctx, up)
	if err != nil {
		return nil, err
	}

	var replaced string
	err = b.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		current, err := tx.Posts.LockPost(ctx, postID)
		if err != nil {
			return notFound(err, "post")
		}
		if err := b.policy.Authorize(editor, ActionEditPost, current); err != nil {
			return err
		}
		current.Title = in.Title
		current.Content = in.Content
		if stored.Path != "" {
			replaced = current.FilePath
			current.FileFilename = stored.Filename
			current.FilePath = stored.Path
		}
		if err := tx.Posts.UpdatePost(ctx, current); err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		post.Title, post.Content = current.Title, current.Content
		post.FileFilename, post.FilePath = current.FileFilename, current.FilePath
		return nil
	})
	if err != nil {
		b.discardAttachment(ctx, stored.Path)
		return nil, err
	}
	b.discardAttachment(ctx, replaced)
	b.logger.Info("post updated", "post_id", post.ID, "user_id", editor.ID)
	return post, nil
}

// DeletePost removes a post with its comments and likes. An admin removing
// somebody else's post leaves the author a notification carrying the reason.
func (b *Board) DeletePost(ctx context.Context, postID uint, requester *models.User, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = NoReasonGiven
	}

	var attachment string
	err := b.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		post, err := tx.Posts.LockPost(ctx, postID)
		if err != nil {
			return notFound(err, "post")
		}
		if err := b.policy.Authorize(requester, ActionDeletePost, post); err != nil {
			return err
		}
		if err := tx.Comments.DeleteByPostID(ctx, post.ID); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Likes.DeleteByPostID(ctx, post.ID); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := tx.Posts.DeletePost(ctx, post.ID); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		attachment = post.FilePath

		if post.UserID == requester.ID {
			return nil
		}
		if err := tx.Posts.CreateDeletionRecord(ctx, &models.PostDeletion{
			PostTitle: post.Title,
			Reason:    reason,
			AdminID:   requester.ID,
			UserID:    post.UserID,
		}); err != nil {
			return fmt.Errorf("record deletion: %w", err)
		}
		return tx.Notifications.CreateNotification(ctx, &models.Notification{
			UserID:  post.UserID,
			Type:    models.NotificationPostDeletion,
			Content: fmt.Sprintf("Your post %q was deleted by an administrator. Reason: %s", post.Title, reason),
		})
	})
	if err != nil {
		return err
	}
	b.discardAttachment(ctx, attachment)
	b.logger.Info("post deleted", "post_id", postID, "user_id", requester.ID)
	return nil
}

// GetPost loads a post with author, comments and like count, and whether viewer liked it.
func (b *Board) GetPost(ctx context.Context, id uint, viewer *models.User) (*PostDetail, error) {
	var detail PostDetail
	err := retryRead(ctx, func() error {
		post, err := b.repos.Posts.GetPostWithComments(ctx, id)
		if err != nil {
			return err
		}
		detail.Post = post
		if viewer != nil {
			detail.Liked, err = b.repos.Likes.HasUserLikedPost(ctx, id, viewer.ID)
		}
		return err
	})
	if err != nil {
		return nil, notFound(err, "post")
	}
	return &detail, nil
}

// ListPosts returns posts with author and counts, filtered and ordered by q.
func (b *Board) ListPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	filter := repositories.PostFilter{
		Department: strings.TrimSpace(q.Department),
		Search:     q.Search,
		Sort:       NormalizeSort(q.Sort),
		Limit:      q.Limit,
	}
	var posts []models.Post
	err := retryRead(ctx, func() (err error) {
		posts, err = b.repos.Posts.ListPosts(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// NormalizeSort maps unknown sort modes to newest first.
func NormalizeSort(sort string) string {
	switch sort {
	case repositories.SortOldest, repositories.SortMostLiked:
		return sort
	default:
		return repositories.SortNewest
	}
}

// OpenAttachment streams the attachment stored at path.
func (b *Board) OpenAttachment(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := b.store.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: %w", path, ErrNotFound)
	}
	return rc, nil
}
