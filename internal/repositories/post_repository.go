package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/celebration-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Post list orderings
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortMostLiked = "most_liked"
)

const (
	likeCountColumn    = "(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count"
	commentCountColumn = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"
)

// PostFilter narrows and orders a post listing.
type PostFilter struct {
	Department string // exact match on the author's department
	Search     string // case-insensitive substring of title or content
	Sort       string
	Limit      int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostWithComments(ctx context.Context, id uint) (*models.Post, error)
	LockPost(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	CreateDeletionRecord(ctx context.Context, record *models.PostDeletion) error
}

// GormPostRepository implements PostRepository with gorm
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// GetPostByID retrieves a post with its author
func (r *GormPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostWithComments retrieves a post with author, comments (oldest first) and counts
func (r *GormPostRepository) GetPostWithComments(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Select("posts.*, "+likeCountColumn+", "+commentCountColumn).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// LockPost reads a post and holds a row lock until the surrounding transaction ends.
// SQLite has no row locks; there the transaction itself serializes writers.
func (r *GormPostRepository) LockPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormPostRepository) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("posts.*, " + likeCountColumn + ", " + commentCountColumn).
		Preload("User")

	if filter.Department != "" {
		authors := r.db.Model(&models.User{}).Select("id").Where("department = ?", filter.Department)
		q = q.Where("posts.user_id IN (?)", authors)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	switch filter.Sort {
	case SortOldest:
		q = q.Order("posts.created_at ASC").Order("posts.id ASC")
	case SortMostLiked:
		q = q.Order("like_count DESC").Order("posts.created_at DESC").Order("posts.id DESC")
	default:
		q = q.Order("posts.created_at DESC").Order("posts.id DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost writes the mutable columns only; the owner is never rewritten.
func (r *GormPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Select("title", "content", "file_filename", "file_path", "updated_at").
		Updates(map[string]any{
			"title":         post.Title,
			"content":       post.Content,
			"file_filename": post.FileFilename,
			"file_path":     post.FilePath,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePost deletes a post by ID
func (r *GormPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormPostRepository) CreateDeletionRecord(ctx context.Context, record *models.PostDeletion) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
