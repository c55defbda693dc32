package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var ErrInvalidPath = errors.New("invalid object path")

// LocalStorage keeps objects on disk. Download links carry a signed token
// which is checked by VerifyToken before the file is served.
type LocalStorage struct {
	root      string
	publicUrl string
	apiKey    string
	secret    []byte
}

func NewLocalStorage(cnf config.LocalStorage, apiKey, secret string) (*LocalStorage, error) {
	if err := os.MkdirAll(cnf.Path, 0755); err != nil {
		return nil, err
	}
	return &LocalStorage{
		root:      cnf.Path,
		publicUrl: strings.TrimSuffix(cnf.PublicUrl, "/"),
		apiKey:    apiKey,
		secret:    []byte(secret),
	}, nil
}

// FullPath resolves an object path inside the storage root.
func (s *LocalStorage) FullPath(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStorage) Put(_ context.Context, path string, r io.Reader, _ string) error {
	file, err := s.FullPath(path)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}

	tmp := file + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, file)
}

func (s *LocalStorage) Exists(_ context.Context, path string) (bool, error) {
	file, err := s.FullPath(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(file)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *LocalStorage) Delete(_ context.Context, path string) error {
	file, err := s.FullPath(path)
	if err != nil {
		return err
	}
	err = os.Remove(file)
	if os.IsNotExist(err) {
		return ErrObjectNotFound
	}
	return err
}

func (s *LocalStorage) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	token, err := s.generateToken(path, ttl)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/download/book/%s", s.publicUrl, url.PathEscape(token)), nil
}

func (s *LocalStorage) generateToken(path string, ttl time.Duration) (string, error) {
	sig, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: s.secret}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", err
	}

	cl := jwt.Claims{
		Issuer:    s.apiKey,
		NotBefore: jwt.NewNumericDate(time.Now().UTC()),
		Expiry:    jwt.NewNumericDate(time.Now().UTC().Add(ttl)),
		Subject:   path,
	}

	return jwt.Signed(sig).Claims(cl).Serialize()
}

// VerifyToken checks a download token and returns the file it grants access to.
func (s *LocalStorage) VerifyToken(token string) (string, error) {
	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return "", err
	}

	out := jwt.Claims{}
	if err = tok.Claims(s.secret, &out); err != nil {
		return "", err
	}

	if err = out.Validate(jwt.Expected{
		Issuer: s.apiKey,
		Time:   time.Now().UTC(),
	}); err != nil {
		return "", err
	}

	file, err := s.FullPath(out.Subject)
	if err != nil {
		return "", err
	}
	if _, err = os.Lstat(file); err != nil {
		return "", ErrObjectNotFound
	}
	return file, nil
}
