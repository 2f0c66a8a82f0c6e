package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"restaurant-directory/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Smallest valid PNG: signature plus IHDR.
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

func newTestStorage(t *testing.T, maxMB int64) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(utils.StorageConfig{
		Dir:          t.TempDir(),
		PublicURL:    "/media/",
		MaxUploadMB:  maxMB,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSaveStoresImage(t *testing.T) {
	s := newTestStorage(t, 1)

	obj, err := s.Save(context.Background(), "restaurants/abc", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.Equal(t, "image/png", obj.ContentType)
	assert.True(t, strings.HasPrefix(obj.Key, "restaurants/abc/"))
	assert.True(t, strings.HasSuffix(obj.Key, ".png"))
	assert.Equal(t, "/media/"+obj.Key, obj.URL)
	assert.EqualValues(t, len(pngHeader), obj.Size)

	stored, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(obj.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	s := newTestStorage(t, 1)

	_, err := s.Save(context.Background(), "x", strings.NewReader("just some text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	s := newTestStorage(t, 1)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 1<<20)...)
	_, err := s.Save(context.Background(), "x", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSaveRejectsEmpty(t *testing.T) {
	s := newTestStorage(t, 1)

	_, err := s.Save(context.Background(), "x", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestPrefixCannotEscapeDir(t *testing.T) {
	s := newTestStorage(t, 1)

	obj, err := s.Save(context.Background(), "../../etc", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.Key, "etc/"))
}

func TestDeleteAndServe(t *testing.T) {
	s := newTestStorage(t, 1)

	obj, err := s.Save(context.Background(), "r", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	srv := http.StripPrefix("/media", s.Handler())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+obj.Key, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/r/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, s.Delete(context.Background(), obj.Key))
	require.NoError(t, s.Delete(context.Background(), obj.Key))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+obj.Key, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
