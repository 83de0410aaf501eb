package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Session is a server-side login. Deleting the row logs the browser out.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"not null;index"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// SessionClaims is the signed cookie payload. The JWT ID carries the session id.
type SessionClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}
