package attachment

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const scriptMimeType = "text/plain"

// UnsupportedFileTypeNotice is shown when a non-text file is offered as a script.
const UnsupportedFileTypeNotice = "Only .txt files are supported for script upload."

type UnsupportedFileTypeError struct {
	Name     string
	MimeType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported script file %q (%s)", e.Name, e.MimeType)
}

// IsScriptFile reports whether f may be loaded into the script field.
// A declared text/plain type wins; an undeclared type falls back to the
// .txt extension.
func IsScriptFile(f File) bool {
	mimeType := baseMimeType(f.MimeType())
	switch mimeType {
	case scriptMimeType:
		return true
	case "", "application/octet-stream":
		return strings.EqualFold(filepath.Ext(f.Name()), ".txt")
	default:
		return false
	}
}

// ReadScript returns the UTF-8 content of a text file. Invalid sequences
// are replaced rather than rejected.
func ReadScript(ctx context.Context, f File) (string, error) {
	if f == nil {
		return "", &UnsupportedFileTypeError{}
	}
	if !IsScriptFile(f) {
		return "", &UnsupportedFileTypeError{Name: f.Name(), MimeType: f.MimeType()}
	}

	data, err := f.ReadAll(ctx)
	if err != nil {
		return "", &EncodingError{Name: f.Name(), Err: err}
	}

	text := string(data)
	text = strings.TrimPrefix(text, "\uFEFF")
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	return text, nil
}

func baseMimeType(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = value[:i]
	}
	return strings.ToLower(strings.TrimSpace(value))
}
