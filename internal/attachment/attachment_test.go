package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFile struct {
	name     string
	mimeType string
	data     []byte
	err      error
	reads    int
}

func (m *mockFile) Name() string     { return m.name }
func (m *mockFile) MimeType() string { return m.mimeType }

func (m *mockFile) ReadAll(ctx context.Context) ([]byte, error) {
	m.reads++
	return m.data, m.err
}

func TestEncode(t *testing.T) {
	ctx := context.Background()

	t.Run("encodes bytes and keeps declared mime type", func(t *testing.T) {
		f := &mockFile{name: "ref.webp", mimeType: "image/webp", data: []byte{0x00, 0xff, 0x10, 'a'}}

		got, err := Encode(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, "image/webp", got.MimeType)

		decoded, err := base64.StdEncoding.DecodeString(got.Data)
		require.NoError(t, err)
		assert.Equal(t, f.data, decoded)
	})

	t.Run("re-reads the file on every call", func(t *testing.T) {
		f := &mockFile{name: "a.png", mimeType: "image/png", data: []byte("png")}

		_, err := Encode(ctx, f)
		require.NoError(t, err)
		_, err = Encode(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, 2, f.reads)
	})

	t.Run("read failure is an EncodingError", func(t *testing.T) {
		cause := errors.New("file vanished")
		f := &mockFile{name: "gone.png", mimeType: "image/png", err: cause}

		_, err := Encode(ctx, f)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "gone.png", encErr.Name)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("missing local file fails at read time", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "style.png")
		require.NoError(t, os.WriteFile(path, []byte("img"), 0o600))
		f := LocalFile{Path: path, Type: "image/png"}
		require.NoError(t, os.Remove(path))

		_, err := Encode(ctx, f)
		var encErr *EncodingError
		assert.ErrorAs(t, err, &encErr)
	})

	t.Run("nil file", func(t *testing.T) {
		_, err := Encode(ctx, nil)
		var encErr *EncodingError
		assert.ErrorAs(t, err, &encErr)
	})
}

func TestBlob_ReadAllCopies(t *testing.T) {
	b := Blob{FileName: "x.jpg", Type: "image/jpeg", Data: []byte("abc")}

	got, err := b.ReadAll(context.Background())
	require.NoError(t, err)
	got[0] = 'z'
	assert.Equal(t, []byte("abc"), b.Data)
}

func TestReadScript(t *testing.T) {
	ctx := context.Background()

	t.Run("text/plain is accepted", func(t *testing.T) {
		f := &mockFile{name: "story.txt", mimeType: "text/plain; charset=utf-8", data: []byte("Scene 1: rain")}

		got, err := ReadScript(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, "Scene 1: rain", got)
	})

	t.Run("byte order mark is dropped", func(t *testing.T) {
		f := &mockFile{name: "bom.txt", mimeType: "text/plain", data: []byte("\xef\xbb\xbfhello")}

		got, err := ReadScript(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("undeclared type falls back to extension", func(t *testing.T) {
		f := &mockFile{name: "NOTES.TXT", mimeType: "application/octet-stream", data: []byte("x")}

		_, err := ReadScript(ctx, f)
		assert.NoError(t, err)
	})

	t.Run("non-text file is rejected without reading", func(t *testing.T) {
		f := &mockFile{name: "story.pdf", mimeType: "application/pdf", data: []byte("%PDF")}

		_, err := ReadScript(ctx, f)
		var typeErr *UnsupportedFileTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, "application/pdf", typeErr.MimeType)
		assert.Zero(t, f.reads)
	})

	t.Run("declared type wins over extension", func(t *testing.T) {
		f := &mockFile{name: "fake.txt", mimeType: "image/png"}

		_, err := ReadScript(ctx, f)
		var typeErr *UnsupportedFileTypeError
		assert.ErrorAs(t, err, &typeErr)
	})
}
