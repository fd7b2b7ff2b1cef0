package attachment

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Blob is a File already held in memory, e.g. a parsed multipart upload.
type Blob struct {
	FileName string
	Type     string
	Data     []byte
}

func (b Blob) Name() string     { return b.FileName }
func (b Blob) MimeType() string { return b.Type }

func (b Blob) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out, nil
}

// LocalFile is a File backed by a path on disk. The path is only opened
// when ReadAll is called, so a file removed after selection fails then.
type LocalFile struct {
	Path string
	Type string
}

func (f LocalFile) Name() string     { return filepath.Base(f.Path) }
func (f LocalFile) MimeType() string { return f.Type }

func (f LocalFile) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	data, err := io.ReadAll(fh)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return data, nil
}
