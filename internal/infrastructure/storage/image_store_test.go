package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is the PNG signature plus the start of an IHDR chunk, enough for
// content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newTestStore(t *testing.T, maxBytes int64) (*FSImageStore, afero.Fs) {
	fs := afero.NewMemMapFs()
	store, err := NewFSImageStore(fs, "uploads", maxBytes)
	require.NoError(t, err)
	return store, fs
}

func TestFSImageStore_SaveAndRemove(t *testing.T) {
	store, fs := newTestStore(t, 0)
	ctx := context.Background()

	url, err := store.Save(ctx, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := strings.TrimPrefix(url, "/uploads/")
	exists, err := afero.Exists(fs, filepath.Join("uploads", name))
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Remove(ctx, url))
	exists, err = afero.Exists(fs, filepath.Join("uploads", name))
	require.NoError(t, err)
	assert.False(t, exists)

	// removing twice is fine
	assert.NoError(t, store.Remove(ctx, url))
}

func TestFSImageStore_RejectsNonImage(t *testing.T) {
	store, _ := newTestStore(t, 0)

	_, err := store.Save(context.Background(), strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestFSImageStore_RejectsEmpty(t *testing.T) {
	store, _ := newTestStore(t, 0)

	_, err := store.Save(context.Background(), bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestFSImageStore_RejectsOversized(t *testing.T) {
	store, _ := newTestStore(t, 8)

	_, err := store.Save(context.Background(), bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestFSImageStore_RemoveForeignURL(t *testing.T) {
	store, _ := newTestStore(t, 0)

	assert.ErrorIs(t, store.Remove(context.Background(), "https://example.com/a.png"), ErrForeignImageURL)
	assert.ErrorIs(t, store.Remove(context.Background(), "/uploads/"), ErrForeignImageURL)
}

func TestFSImageStore_RemoveStaysInDir(t *testing.T) {
	store, fs := newTestStore(t, 0)
	require.NoError(t, afero.WriteFile(fs, "secret.txt", []byte("x"), 0o600))

	require.NoError(t, store.Remove(context.Background(), "/uploads/../secret.txt"))

	exists, err := afero.Exists(fs, "secret.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFSImageStore_Handler(t *testing.T) {
	store, _ := newTestStore(t, 0)

	url, err := store.Save(context.Background(), bytes.NewReader(pngHeader))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
