package catalog

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return img
}

func TestIngest_ThumbnailBoundedPreservingAspect(t *testing.T) {
	dir := t.TempDir()
	g := NewIngestor(dir, "/static/images")

	url, err := g.Ingest(7, "image/jpeg", bytes.NewReader(jpegBytes(t, 1000, 500)))
	require.NoError(t, err)
	assert.Equal(t, "/static/images/7.jpg", url)

	img := decodeFile(t, filepath.Join(dir, "7.jpg"))
	b := img.Bounds()
	assert.Equal(t, 200, b.Dx())
	assert.Equal(t, 100, b.Dy())
}

func TestIngest_SquareImage(t *testing.T) {
	dir := t.TempDir()
	g := NewIngestor(dir, "/static/images")

	_, err := g.Ingest(1, "image/jpeg", bytes.NewReader(jpegBytes(t, 1000, 1000)))
	require.NoError(t, err)

	b := decodeFile(t, filepath.Join(dir, "1.jpg")).Bounds()
	assert.LessOrEqual(t, b.Dx(), 200)
	assert.LessOrEqual(t, b.Dy(), 200)
	assert.Equal(t, b.Dx(), b.Dy())
}

func TestIngest_NeverUpscales(t *testing.T) {
	dir := t.TempDir()
	g := NewIngestor(dir, "/static/images")

	_, err := g.Ingest(2, "image/jpeg", bytes.NewReader(jpegBytes(t, 50, 40)))
	require.NoError(t, err)

	b := decodeFile(t, filepath.Join(dir, "2.jpg")).Bounds()
	assert.Equal(t, 50, b.Dx())
	assert.Equal(t, 40, b.Dy())
}

func TestIngest_PNGKeepsExtension(t *testing.T) {
	dir := t.TempDir()
	g := NewIngestor(dir, "/static/images")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 300))))

	url, err := g.Ingest(3, "image/png", &buf)
	require.NoError(t, err)
	assert.Equal(t, "/static/images/3.png", url)

	_, statErr := os.Stat(filepath.Join(dir, "3.png"))
	assert.NoError(t, statErr)
}

func TestIngest_RejectsUnsupportedContentType(t *testing.T) {
	dir := t.TempDir()
	g := NewIngestor(dir, "/static/images")

	for _, ct := range []string{"text/plain", "image/gif", "", "garbage;;"} {
		_, err := g.Ingest(4, ct, bytes.NewReader(jpegBytes(t, 10, 10)))
		assert.ErrorIs(t, err, ErrUnsupportedImageType, "content type %q", ct)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngest_ContentTypeParametersStripped(t *testing.T) {
	dir := t.TempDir()
	g := NewIngestor(dir, "/static/images")

	url, err := g.Ingest(5, "image/jpeg; charset=utf-8", bytes.NewReader(jpegBytes(t, 10, 10)))
	require.NoError(t, err)
	assert.Equal(t, "/static/images/5.jpg", url)
}

func TestIngest_UndecodableBody(t *testing.T) {
	dir := t.TempDir()
	g := NewIngestor(dir, "/static/images")

	_, err := g.Ingest(6, "image/jpeg", bytes.NewReader([]byte("not an image")))
	assert.ErrorIs(t, err, ErrImageProcessing)
}

func TestIngest_OverwritesPreviousImage(t *testing.T) {
	dir := t.TempDir()
	g := NewIngestor(dir, "/static/images")

	_, err := g.Ingest(8, "image/jpeg", bytes.NewReader(jpegBytes(t, 400, 400)))
	require.NoError(t, err)
	_, err = g.Ingest(8, "image/jpeg", bytes.NewReader(jpegBytes(t, 600, 300)))
	require.NoError(t, err)

	b := decodeFile(t, filepath.Join(dir, "8.jpg")).Bounds()
	assert.Equal(t, 200, b.Dx())
	assert.Equal(t, 100, b.Dy())
}
