package models

import "time"

// Admin log actions
const (
	AdminActionPromoted = "promoted to admin"
	AdminActionRemoved  = "removed admin"
)

// AdminActionLog is an append-only record of admin privilege changes.
type AdminActionLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AdminID      uint      `json:"admin_id" gorm:"not null;index"`
	Admin        *User     `json:"-" gorm:"foreignKey:AdminID"`
	TargetUserID uint      `json:"target_user_id" gorm:"not null;index"`
	TargetUser   *User     `json:"-" gorm:"foreignKey:TargetUserID"`
	Action       string    `json:"action" gorm:"size:100;not null"`
	Details      string    `json:"details" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
