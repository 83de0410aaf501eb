package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/anonto42/celebration-board/pkg/storage"
	"gorm.io/gorm"
)

var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrAuthentication    = errors.New("invalid username or password")
	ErrForbidden         = errors.New("access denied")
	ErrImmutable         = errors.New("the super admin account cannot be changed")
	ErrNotFound          = errors.New("not found")
	ErrNoSession         = errors.New("no valid session")

	// ErrInvalidAttachment is reported for attachments refused by the file store.
	ErrInvalidAttachment = storage.ErrInvalidAttachment
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// retryRead runs a read-only query, retrying once on a transient store error.
// Writes never go through here: their notification side effects make them unsafe to repeat.
func retryRead(ctx context.Context, read func() error) error {
	err := read()
	if err == nil || !isTransient(err) {
		return err
	}
	select {
	case <-ctx.Done():
		return err
	case <-time.After(50 * time.Millisecond):
	}
	return read()
}
