package objectstore

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage keeps uploaded book files. Paths are "{user_id}/{file_name}".
type Storage interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	// SignedURL returns a link which allows downloading the object without
	// further authentication until ttl has passed.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}
