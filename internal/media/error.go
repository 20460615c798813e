package media

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/apierr"
)

var ErrUploadFailed = errors.New("upload failed")

// FileError is one rejected file.
type FileError struct {
	Filename string
	Reasons  []string
}

// InvalidFilesError lists every file rejected before upload. It unwraps to
// apierr.ErrInvalidInput.
type InvalidFilesError struct {
	Files []FileError
}

func (e *InvalidFilesError) Error() string {
	parts := make([]string, 0, len(e.Files))
	for _, f := range e.Files {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Filename, strings.Join(f.Reasons, ", ")))
	}
	if len(e.Files) == 1 {
		return "invalid file: " + parts[0]
	}
	return "some files are invalid: " + strings.Join(parts, "; ")
}

func (e *InvalidFilesError) Unwrap() error { return apierr.ErrInvalidInput }

// Filenames returns the rejected names in input order.
func (e *InvalidFilesError) Filenames() []string {
	out := make([]string, 0, len(e.Files))
	for _, f := range e.Files {
		out = append(out, f.Filename)
	}
	return out
}

func uploadFailed(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUploadFailed, name, err)
}
