package errors

// Package errors provides sentinel errors for document resolution and enumeration.
// Callers match them with errors.Is; providers wrap them with %w to add context.

import "errors"

var (
	// ErrNotFound indicates a slug has no backing document.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidSlug indicates a slug failed the grammar before any lookup was attempted.
	ErrInvalidSlug = errors.New("invalid document slug")

	// ErrOutsideBase indicates a resolved file path escaped the content base directory.
	ErrOutsideBase = errors.New("resolved path escapes content directory")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the docs directory failed.
	ErrDocsDirWalkFailed = errors.New("documentation directory walk failed")

	// ErrFileReadFailed indicates reading a document file failed.
	ErrFileReadFailed = errors.New("documentation file read failed")

	// ErrFrontmatterInvalid indicates a document's YAML frontmatter could not be parsed.
	ErrFrontmatterInvalid = errors.New("invalid document frontmatter")

	// ErrResolveTimeout indicates a resolution did not finish within its deadline.
	ErrResolveTimeout = errors.New("document resolution timed out")
)
