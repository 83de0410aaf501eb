package models

import "time"

// Departments a user can register under.
var Departments = []string{"engineering", "sales", "marketing", "hr", "finance"}

// SuperAdminDepartment is the department assigned to the seeded super-admin account.
const SuperAdminDepartment = "management"

// User is a registered board member.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:80;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	Department   string    `json:"department" gorm:"size:50;not null;index"`
	JobTitle     string    `json:"job_title" gorm:"size:100;not null"`
	PasswordHash string    `json:"-" gorm:"size:256;not null"` // bcrypt digest, never the plaintext
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	PromotedByID *uint     `json:"promoted_by_id,omitempty" gorm:"index"`
	PromotedBy   *User     `json:"-" gorm:"foreignKey:PromotedByID;constraint:OnDelete:SET NULL"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}
