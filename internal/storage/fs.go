package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mind-engage/mathviz/internal/problem"
)

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./exports"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	return &FSStore{base: abs}, nil
}

// Clean canonicalizes key and rejects keys that leave the store.
func Clean(key string) (string, error) {
	slashed := strings.ReplaceAll(key, `\`, "/")
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: key %q escapes the store", problem.ErrValidation, key)
		}
	}
	k := path.Clean("/" + slashed)[1:]
	if k == "" {
		return "", fmt.Errorf("%w: empty key", problem.ErrValidation)
	}
	return k, nil
}

func (s *FSStore) path(key string) (string, string, error) {
	k, err := Clean(key)
	if err != nil {
		return "", "", err
	}
	return k, filepath.Join(s.base, filepath.FromSlash(k)), nil
}

// Put writes r to key atomically, replacing an earlier blob.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	k, dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	f, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	defer os.Remove(f.Name())
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	if err := os.Rename(f.Name(), dst); err != nil {
		return "", fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	return k, nil
}

func (s *FSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: blob %s", problem.ErrNotFound, k)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	return f, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	_, p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	return nil
}

func (s *FSStore) URL(key string) (string, error) {
	_, p, err := s.path(key)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String(), nil
}
