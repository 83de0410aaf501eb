package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps attachments in a directory on disk.
type LocalStore struct {
	dir    string
	policy Policy
}

// NewLocalStore creates dir if needed and returns a store rooted there.
func NewLocalStore(dir string, policy Policy) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, policy: policy}, nil
}

// Dir returns the directory attachments are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, declaredName string) (Stored, error) {
	if err := s.policy.CheckName(declaredName); err != nil {
		return Stored{}, err
	}
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}

	name := GenerateUniqueFilename(declaredName)
	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Stored{}, fmt.Errorf("create attachment: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.policy.MaxSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.policy.MaxSize {
		err = s.policy.tooLarge()
	}
	if err != nil {
		_ = os.Remove(full)
		return Stored{}, err
	}

	return Stored{Filename: SanitizeFilename(declaredName), Path: name, Size: n}, nil
}

func (s *LocalStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if err := validStoredPath(path); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.dir, path))
}

func (s *LocalStore) Remove(_ context.Context, path string) error {
	if err := validStoredPath(path); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
