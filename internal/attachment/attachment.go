package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// File is a user-selected blob: a picker upload, a dropped file or a chat
// attachment. ReadAll may be called once per generation.
type File interface {
	Name() string
	MimeType() string
	ReadAll(ctx context.Context) ([]byte, error)
}

// EncodedImage is a style image in transport form.
type EncodedImage struct {
	Data     string
	MimeType string
}

// EncodingError reports that an attached file could not be read. It never
// wraps a remote failure.
type EncodingError struct {
	Name string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("read attachment %q: %v", e.Name, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Encode reads f fully and base64-encodes it. The MIME type is copied from
// the file as declared.
func Encode(ctx context.Context, f File) (EncodedImage, error) {
	if f == nil {
		return EncodedImage{}, &EncodingError{Err: errors.New("no file")}
	}

	data, err := f.ReadAll(ctx)
	if err != nil {
		return EncodedImage{}, &EncodingError{Name: f.Name(), Err: err}
	}

	return EncodedImage{
		Data:     base64.StdEncoding.EncodeToString(data),
		MimeType: f.MimeType(),
	}, nil
}
