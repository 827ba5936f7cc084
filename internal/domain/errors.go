package domain

import "errors"

// Sentinel errors shared by stores and the import pipeline.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidScope = errors.New("scope requires a user id and a category id, each a single path segment")
)
