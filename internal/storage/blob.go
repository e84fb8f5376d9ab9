// Package storage keeps uploaded blobs (donation photos, NGO documents) on an afero
// filesystem laid out as <root>/<bucket>/<id>.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrInvalidBucket = errors.New("storage: invalid bucket")
	ErrInvalidID     = errors.New("storage: invalid file id")
	ErrTooLarge      = errors.New("storage: file exceeds size limit")
	ErrNotFound      = errors.New("storage: file not found")
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Config configures a BlobStore.
type Config struct {
	Root          string
	PublicBaseURL string
	MaxUploadSize int64
	Buckets       []string
}

// BlobStore writes and serves blobs.
type BlobStore struct {
	fs      afero.Fs
	root    string
	baseURL string
	maxSize int64
	buckets map[string]struct{}
}

// NewBlobStore returns a store rooted at cfg.Root on fs. Passing a nil fs uses the OS filesystem.
func NewBlobStore(fs afero.Fs, cfg Config) (*BlobStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		root = "data/files"
	}
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}

	store := &BlobStore{
		fs:      fs,
		root:    root,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxSize: cfg.MaxUploadSize,
	}
	if len(cfg.Buckets) > 0 {
		store.buckets = make(map[string]struct{}, len(cfg.Buckets))
		for _, bucket := range cfg.Buckets {
			store.buckets[strings.TrimSpace(bucket)] = struct{}{}
		}
	}
	return store, nil
}

func (s *BlobStore) checkBucket(bucket string) error {
	if !safeName.MatchString(bucket) {
		return ErrInvalidBucket
	}
	if s.buckets != nil {
		if _, ok := s.buckets[bucket]; !ok {
			return ErrInvalidBucket
		}
	}
	return nil
}

func (s *BlobStore) location(bucket, id string) (string, error) {
	if err := s.checkBucket(bucket); err != nil {
		return "", err
	}
	if !safeName.MatchString(id) {
		return "", ErrInvalidID
	}
	return filepath.Join(s.root, bucket, id), nil
}

// Put stores r under bucket/id and returns the number of bytes written. Writes that
// exceed the size limit are removed.
func (s *BlobStore) Put(bucket, id string, r io.Reader) (int64, error) {
	target, err := s.location(bucket, id)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("storage: create bucket: %w", err)
	}

	file, err := s.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("storage: open %s/%s: %w", bucket, id, err)
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	written, copyErr := io.Copy(file, src)
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		_ = s.fs.Remove(target)
		return 0, fmt.Errorf("storage: write %s/%s: %w", bucket, id, copyErr)
	case closeErr != nil:
		_ = s.fs.Remove(target)
		return 0, fmt.Errorf("storage: close %s/%s: %w", bucket, id, closeErr)
	case s.maxSize > 0 && written > s.maxSize:
		_ = s.fs.Remove(target)
		return 0, ErrTooLarge
	}
	return written, nil
}

// Open returns a reader for bucket/id.
func (s *BlobStore) Open(bucket, id string) (afero.File, error) {
	target, err := s.location(bucket, id)
	if err != nil {
		return nil, err
	}
	file, err := s.fs.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: open %s/%s: %w", bucket, id, err)
	}
	return file, nil
}

// Delete removes bucket/id. Missing files are not an error.
func (s *BlobStore) Delete(bucket, id string) error {
	target, err := s.location(bucket, id)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove %s/%s: %w", bucket, id, err)
	}
	return nil
}

// PublicURL returns the URL the file is served from.
func (s *BlobStore) PublicURL(bucket, id string) string {
	rel := path.Join("/files", url.PathEscape(bucket), url.PathEscape(id))
	return s.baseURL + rel
}
