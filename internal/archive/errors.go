package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the Importer
var (
	ErrUpload        = errors.New("archive upload failed")
	ErrDuplicateLink = errors.New("link already exists in this category")
	ErrEmptyURL      = errors.New("url is empty")
	ErrEmptyNote     = errors.New("note is empty")
)

// UploadError is the fatal error of an import whose raw file could not be
// stored. Nothing is written to the record store in that case.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUpload
}
