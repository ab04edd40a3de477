// Package storage keeps uploaded patient images on a filesystem and hands out
// the public URLs they are served under.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	ErrImageTooLarge    = errors.New("image exceeds maximum allowed size")
	ErrUnsupportedImage = errors.New("file is not a supported image type")
	ErrEmptyImage       = errors.New("image file is empty")
	ErrForeignImageURL  = errors.New("image url does not belong to this store")
)

// DefaultMaxImageBytes applies when no positive limit is configured (5 MiB).
const DefaultMaxImageBytes = int64(5 << 20)

const (
	defaultImageURLPrefix = "/uploads/"
	sniffLen              = 3072
)

// AllowedImageMIMETypes lists the content types accepted for patient photos.
var AllowedImageMIMETypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageStore persists images and resolves them by URL.
type ImageStore interface {
	Save(ctx context.Context, content io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// FSImageStore writes images into dir on fs. Names are random UUIDs with the
// extension of the detected content type.
type FSImageStore struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
	maxBytes  int64
}

func NewFSImageStore(fs afero.Fs, dir string, maxBytes int64) (*FSImageStore, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &FSImageStore{
		fs:        fs,
		dir:       dir,
		urlPrefix: defaultImageURLPrefix,
		maxBytes:  maxBytes,
	}, nil
}

// NewLocalImageStore stores images on the OS filesystem.
func NewLocalImageStore(dir string, maxBytes int64) (*FSImageStore, error) {
	return NewFSImageStore(afero.NewOsFs(), dir, maxBytes)
}

// URLPrefix is the path the stored files are served under.
func (s *FSImageStore) URLPrefix() string {
	return s.urlPrefix
}

// MaxBytes is the largest accepted image.
func (s *FSImageStore) MaxBytes() int64 {
	return s.maxBytes
}

// Handler serves the stored files under URLPrefix. Directory listings are
// not exposed.
func (s *FSImageStore) Handler() http.Handler {
	files := http.FileServer(afero.NewHttpFs(s.fs).Dir(s.dir))
	return http.StripPrefix(s.urlPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}

// Save validates content as an image and stores it, returning its URL.
func (s *FSImageStore) Save(ctx context.Context, content io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	mtype := mimetype.Detect(head)
	if !mimetype.EqualsAny(mtype.String(), AllowedImageMIMETypes...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + mtype.Extension()
	if err := afero.WriteReader(s.fs, filepath.Join(s.dir, name), bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}

	return s.urlPrefix + name, nil
}

// Remove deletes the file behind url. A file that is already gone is not an
// error.
func (s *FSImageStore) Remove(_ context.Context, url string) error {
	name, err := s.fileName(url)
	if err != nil {
		return err
	}
	err = s.fs.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image %s: %w", name, err)
	}
	return nil
}

func (s *FSImageStore) fileName(url string) (string, error) {
	if !strings.HasPrefix(url, s.urlPrefix) {
		return "", ErrForeignImageURL
	}
	name := path.Base(strings.TrimPrefix(url, s.urlPrefix))
	if name == "." || name == "/" || name == ".." {
		return "", ErrForeignImageURL
	}
	return name, nil
}
