package models

import "time"

// Post is a celebration message. UserID is fixed at creation.
type Post struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"size:100;not null"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	User         *User     `json:"author,omitempty" gorm:"foreignKey:UserID"`
	FileFilename string    `json:"file_filename,omitempty" gorm:"size:255"`
	FilePath     string    `json:"file_path,omitempty" gorm:"size:255"`
	Comments     []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Likes        []Like    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Computed by listing queries, never persisted.
	LikeCount    int64 `json:"like_count" gorm:"->;-:migration"`
	CommentCount int64 `json:"comment_count" gorm:"->;-:migration"`
}

// HasAttachment reports whether a file is attached to the post.
func (p *Post) HasAttachment() bool {
	return p.FilePath != ""
}

// DeletePostRequest carries the moderation reason when an admin removes a post.
type DeletePostRequest struct {
	Reason string `form:"reason" validate:"max=1000"`
}

// PostDeletion records an admin removing somebody else's post.
type PostDeletion struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostTitle string    `json:"post_title" gorm:"size:100"`
	Reason    string    `json:"reason" gorm:"type:text;not null"`
	AdminID   uint      `json:"admin_id" gorm:"not null;index"`
	Admin     *User     `json:"-" gorm:"foreignKey:AdminID"`
	UserID    uint      `json:"user_id" gorm:"not null;index"` // original author
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	DeletedAt time.Time `json:"deleted_at" gorm:"autoCreateTime"`
}
