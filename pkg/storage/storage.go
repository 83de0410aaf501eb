// Package storage keeps post attachments outside the database. A Store
// validates the declared file name and size, stores the bytes under a
// collision-free name and returns that name as the stored path.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidAttachment is returned for disallowed extensions and oversized files.
var ErrInvalidAttachment = errors.New("invalid attachment")

// DefaultAllowedExtensions lists the attachment types accepted on posts.
var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg", "gif", "pdf", "doc", "docx"}

// DefaultMaxSize is the largest accepted attachment, 10 MB.
const DefaultMaxSize int64 = 10 << 20

// Policy is the type and size policy applied before anything is stored.
type Policy struct {
	AllowedExtensions []string
	MaxSize           int64
}

// DefaultPolicy returns the board's attachment policy.
func DefaultPolicy() Policy {
	return Policy{AllowedExtensions: DefaultAllowedExtensions, MaxSize: DefaultMaxSize}
}

// CheckName rejects declared names whose extension is not allowed.
func (p Policy) CheckName(declaredName string) error {
	ext := Extension(declaredName)
	if ext == "" {
		return fmt.Errorf("%w: file has no extension", ErrInvalidAttachment)
	}
	if !slices.Contains(p.AllowedExtensions, ext) {
		return fmt.Errorf("%w: .%s files are not allowed (allowed: %s)", ErrInvalidAttachment, ext, strings.Join(p.AllowedExtensions, ", "))
	}
	return nil
}

func (p Policy) tooLarge() error {
	return fmt.Errorf("%w: file size must be at most %d MB", ErrInvalidAttachment, p.MaxSize>>20)
}

// Stored describes a committed attachment.
type Stored struct {
	Filename string // sanitized declared name, for display
	Path     string // stored name, relative to the store
	Size     int64
}

// Store persists attachment bytes.
type Store interface {
	Save(ctx context.Context, r io.Reader, declaredName string) (Stored, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// SanitizeFilename strips directories and replaces anything outside
// [a-zA-Z0-9._-] with underscores.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		return "file"
	}
	return name
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(SanitizeFilename(name)), "."))
}

// GenerateUniqueFilename prefixes the sanitized name with the date and a random UUID.
func GenerateUniqueFilename(declaredName string) string {
	return fmt.Sprintf("%s-%s-%s", time.Now().Format("20060102"), uuid.NewString(), SanitizeFilename(declaredName))
}

// validStoredPath guards Open and Remove against names that escape the store.
func validStoredPath(path string) error {
	if path == "" || path != filepath.Base(path) || strings.HasPrefix(path, ".") {
		return fmt.Errorf("invalid stored path %q", path)
	}
	return nil
}
