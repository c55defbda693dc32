package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

type GcsStorage struct {
	client *storage.Client
	bucket *storage.BucketHandle
	logger *logrus.Entry
}

func NewGcsStorage(ctx context.Context, cnf config.GcsStorage, logger *logrus.Logger) (*GcsStorage, error) {
	var opts []option.ClientOption
	if cnf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cnf.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	s := &GcsStorage{
		client: client,
		bucket: client.Bucket(cnf.Bucket),
		logger: logger.WithFields(logrus.Fields{
			"service": "gcs",
			"bucket":  cnf.Bucket,
		}),
	}

	if cnf.PatchCors {
		if err = s.PatchCors(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return s, nil
}

// PatchCors lets browsers fetch signed links from any origin.
func (s *GcsStorage) PatchCors(ctx context.Context) error {
	_, err := s.bucket.Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{
			{
				Origins:         []string{"*"},
				Methods:         []string{http.MethodGet, http.MethodHead},
				ResponseHeaders: []string{"Content-Type"},
				MaxAge:          time.Hour,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to patch bucket cors: %w", err)
	}
	s.logger.Infoln("bucket cors configuration updated")
	return nil
}

func (s *GcsStorage) Put(ctx context.Context, path string, r io.Reader, contentType string) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

func (s *GcsStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.bucket.Object(path).Attrs(ctx)
	switch {
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *GcsStorage) Delete(ctx context.Context, path string) error {
	err := s.bucket.Object(path).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return err
}

func (s *GcsStorage) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	return s.bucket.SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
}

func (s *GcsStorage) Close() error {
	return s.client.Close()
}
