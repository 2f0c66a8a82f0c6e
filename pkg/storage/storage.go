// Package storage keeps uploaded restaurant images.
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
	"slices"
	"strings"

	"restaurant-directory/pkg/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrEmpty           = errors.New("file is empty")
)

// Object describes a stored file.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

type Storage interface {
	// Save sniffs and stores r under prefix and returns its public URL.
	Save(ctx context.Context, prefix string, r io.Reader) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// LocalStorage writes files below a directory served at PublicURL.
type LocalStorage struct {
	dir       string
	publicURL string
	maxBytes  int64
	allowed   []string
	log       *zap.Logger
}

func NewLocalStorage(cfg utils.StorageConfig, log *zap.Logger) (*LocalStorage, error) {
	if cfg.Dir == "" {
		return nil, errors.New("storage dir is not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 5
	}

	return &LocalStorage{
		dir:       cfg.Dir,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		maxBytes:  maxMB << 20,
		allowed:   cfg.AllowedTypes,
		log:       log.With(zap.String("component", "storage")),
	}, nil
}

// MaxBytes is the largest accepted upload.
func (s *LocalStorage) MaxBytes() int64 {
	return s.maxBytes
}

func (s *LocalStorage) Save(ctx context.Context, prefix string, r io.Reader) (*Object, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d MB", ErrTooLarge, s.maxBytes>>20)
	}

	mime := mimetype.Detect(data)
	contentType := mime.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !slices.Contains(s.allowed, contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := path.Join(cleanPrefix(prefix), uuid.NewString()+mime.Extension())
	target := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := writeFile(target, data); err != nil {
		return nil, err
	}

	s.log.Debug("File stored", zap.String("key", key), zap.String("content_type", contentType))

	return &Object{
		Key:         key,
		URL:         s.publicURL + "/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	target := filepath.Join(s.dir, filepath.FromSlash(path.Clean("/"+key)))
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Handler serves stored files. Directory listings are not exposed.
func (s *LocalStorage) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// writeFile writes through a temp file so readers never see partial data.
func writeFile(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("move upload: %w", err)
	}
	return nil
}

func cleanPrefix(prefix string) string {
	p := path.Clean("/" + prefix)
	return strings.TrimPrefix(p, "/")
}
