package adapter

import (
	"context"
	"io"

	"github.com/Ning0612/nasbrowser/internal/core/pathsafe"
	"github.com/Ning0612/nasbrowser/internal/domain"
)

// Store defines the filesystem operations the browser needs.
// Every method takes a slash-separated path relative to the store's root
// and must resolve it through pathsafe before touching the filesystem.
// Errors are domain-level so callers can tell outcomes apart with errors.Is.
type Store interface {
	// Resolve validates a relative path without touching its target.
	// Returns domain.ErrUnsafePath if the path escapes the root
	Resolve(path string) (pathsafe.Path, error)

	// List returns the immediate children of a directory, folders and
	// files separately, each sorted by case-insensitive name.
	// Entries that cannot be read are skipped and reported as warnings;
	// an unreadable directory yields an empty listing with a warning.
	// Returns domain.ErrNotFound if path doesn't exist
	// Returns domain.ErrNotDirectory if path is a file
	List(ctx context.Context, path string) (*domain.Listing, error)

	// Stat returns metadata for a single path
	// Returns domain.ErrNotFound if path doesn't exist
	Stat(ctx context.Context, path string) (domain.DirectoryEntry, error)

	// Open opens a regular file for reading
	// Caller is responsible for closing the content
	// Returns domain.ErrNotFound if file doesn't exist
	// Returns domain.ErrNotFile if path is a directory
	Open(ctx context.Context, path string) (*domain.Download, error)

	// WriteUnique creates a new file named name inside dir, adding a
	// numeric suffix while the name is taken, and returns the final name.
	// name must already be sanitized. Never overwrites.
	// Returns domain.ErrTargetMissing if dir is missing or not a directory
	WriteUnique(ctx context.Context, dir, name string, r io.Reader) (string, error)

	// Mkdir creates exactly one new directory named name inside parent
	// Returns domain.ErrTargetMissing if parent is missing or not a directory
	// Returns domain.ErrAlreadyExists if anything named name exists
	Mkdir(ctx context.Context, parent, name string) error

	// Delete removes a file, or a directory with all its contents
	// Returns domain.ErrNotFound if path doesn't exist
	// Returns domain.ErrUnsafePath for the root itself
	Delete(ctx context.Context, path string) (domain.EntryKind, error)

	// Close releases any resources held by the store
	Close() error
}
