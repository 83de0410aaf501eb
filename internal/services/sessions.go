package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// StartSession opens a server-side session for user and returns the signed
// cookie value and its expiry.
func (b *Board) StartSession(ctx context.Context, user *models.User) (string, time.Time, error) {
	if len(b.settings.SessionSecret) == 0 {
		return "", time.Time{}, errors.New("session secret is not configured")
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generate session id: %w", err)
	}
	now := b.now()
	session := &models.Session{
		ID:        hex.EncodeToString(raw),
		UserID:    user.ID,
		ExpiresAt: now.Add(b.settings.SessionTTL),
	}
	if err := b.repos.Sessions.CreateSession(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}

	claims := models.SessionClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.settings.SessionSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, session.ExpiresAt, nil
}

func (b *Board) parseSession(cookie string, opts ...jwt.ParserOption) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parser := jwt.NewParser(opts...)
	token, err := parser.ParseWithClaims(cookie, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return b.settings.SessionSecret, nil
	})
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

// ResolveSession returns the user behind a session cookie, or ErrNoSession when
// the cookie is forged, expired, logged out, or its user no longer exists.
func (b *Board) ResolveSession(ctx context.Context, cookie string) (*models.User, error) {
	if cookie == "" || len(b.settings.SessionSecret) == 0 {
		return nil, ErrNoSession
	}
	claims, err := b.parseSession(cookie)
	if err != nil {
		return nil, err
	}
	session, err := b.repos.Sessions.GetSession(ctx, claims.ID)
	if err != nil || session.UserID != claims.UserID || session.Expired(b.now()) {
		return nil, ErrNoSession
	}
	user, err := b.repos.Users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, ErrNoSession
	}
	return user, nil
}

// EndSession deletes the session behind cookie. Expired cookies are accepted so
// that logging out always clears the row.
func (b *Board) EndSession(ctx context.Context, cookie string) error {
	if cookie == "" {
		return nil
	}
	claims, err := b.parseSession(cookie, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := b.repos.Sessions.DeleteSession(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes every session past its expiry.
func (b *Board) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := b.repos.Sessions.DeleteExpired(ctx, b.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		b.logger.Debug("expired sessions purged", "count", n)
	}
	return n, nil
}
