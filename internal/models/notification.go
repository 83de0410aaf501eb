package models

import "time"

// Notification types
const (
	NotificationGeneric      = "generic"
	NotificationPostDeletion = "post_deletion"
	NotificationComment      = "comment"
	NotificationLike         = "like"
	NotificationAdminStatus  = "admin_status"
)

// Notification is a message the system leaves for a user.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"` // recipient
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Type      string    `json:"type" gorm:"size:50;not null;default:'generic'"`
	IsRead    bool      `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
