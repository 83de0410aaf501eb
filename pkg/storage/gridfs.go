package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSBucketName is the GridFS bucket attachments are written to.
const GridFSBucketName = "attachments"

// GridFSStore keeps attachments in MongoDB GridFS.
type GridFSStore struct {
	bucket *gridfs.Bucket
	policy Policy
}

// NewGridFSStore opens the attachments bucket of db.
func NewGridFSStore(db *mongo.Database, policy Policy) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(GridFSBucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, policy: policy}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (s *GridFSStore) Save(ctx context.Context, r io.Reader, declaredName string) (Stored, error) {
	if err := s.policy.CheckName(declaredName); err != nil {
		return Stored{}, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(deadline); err != nil {
			return Stored{}, err
		}
	}

	name := GenerateUniqueFilename(declaredName)
	src := &countingReader{r: io.LimitReader(r, s.policy.MaxSize+1)}
	id, err := s.bucket.UploadFromStream(name, src)
	if err != nil {
		return Stored{}, fmt.Errorf("upload attachment: %w", err)
	}
	if src.n > s.policy.MaxSize {
		_ = s.bucket.Delete(id)
		return Stored{}, s.policy.tooLarge()
	}

	return Stored{Filename: SanitizeFilename(declaredName), Path: name, Size: src.n}, nil
}

func (s *GridFSStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if err := validStoredPath(path); err != nil {
		return nil, err
	}
	stream, err := s.bucket.OpenDownloadStreamByName(path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return stream, nil
}

func (s *GridFSStore) Remove(ctx context.Context, path string) error {
	if err := validStoredPath(path); err != nil {
		return err
	}
	cursor, err := s.bucket.Find(bson.M{"filename": path})
	if err != nil {
		return fmt.Errorf("find attachment: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var file struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return err
		}
		if err := s.bucket.Delete(file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete attachment: %w", err)
		}
	}
	return cursor.Err()
}
