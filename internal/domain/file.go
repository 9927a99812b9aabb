package domain

import (
	"fmt"
	"io"
	"time"
)

// EntryKind tells folders and files apart in a listing
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryFolder
)

// String returns the name used in API responses
func (k EntryKind) String() string {
	switch k {
	case EntryFolder:
		return "folder"
	case EntryFile:
		return "file"
	default:
		return "unknown"
	}
}

// FileCategory is the coarse type of a file, derived from its extension
type FileCategory string

const (
	CategoryImage    FileCategory = "image"
	CategoryVideo    FileCategory = "video"
	CategoryAudio    FileCategory = "audio"
	CategoryDocument FileCategory = "document"
	CategoryArchive  FileCategory = "archive"
	CategoryCode     FileCategory = "code"
	CategoryFile     FileCategory = "file"

	// CategoryFolder marks folders in a listing; it is never assigned by extension
	CategoryFolder FileCategory = "folder"
)

// IsValid checks if the category is a known value
func (c FileCategory) IsValid() bool {
	switch c {
	case CategoryImage, CategoryVideo, CategoryAudio, CategoryDocument,
		CategoryArchive, CategoryCode, CategoryFile:
		return true
	}
	return false
}

// DirectoryEntry represents one child of a listed directory
type DirectoryEntry struct {
	// Name is the entry's base name as stored on disk
	Name string `json:"name"`

	// Path is the slash-separated path from the root
	Path string `json:"path"`

	// Kind indicates if this is a folder or a file
	Kind EntryKind `json:"-"`

	// ModTime is the last modification time
	ModTime time.Time `json:"modified"`

	// Size in bytes (files only)
	Size int64 `json:"size,omitempty"`

	// SizeFormatted is Size in human readable form (files only)
	SizeFormatted string `json:"size_formatted,omitempty"`

	// Category classifies files by extension; folders carry CategoryFolder
	Category FileCategory `json:"type"`
}

// IsDir returns true if this is a folder
func (e DirectoryEntry) IsDir() bool {
	return e.Kind == EntryFolder
}

// Breadcrumb is one step of the navigation trail from the root
type Breadcrumb struct {
	Label string `json:"name"`
	Path  string `json:"path"`
}

// Warning describes something a best-effort listing had to leave out.
// Name is empty when the whole directory could not be read.
type Warning struct {
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// Listing is the result of browsing a directory
type Listing struct {
	Path        string           `json:"path"`
	Folders     []DirectoryEntry `json:"folders"`
	Files       []DirectoryEntry `json:"files"`
	Breadcrumbs []Breadcrumb     `json:"breadcrumbs"`
	Warnings    []Warning        `json:"warnings,omitempty"`
}

// IncomingFile is one file of an upload batch
type IncomingFile struct {
	// Name is the client supplied file name, not yet sanitized
	Name string

	// Content is the file body
	Content io.Reader
}

// UploadResult reports what an upload batch wrote
type UploadResult struct {
	// Names are the final on-disk names, in upload order
	Names []string `json:"files"`

	// Skipped counts files without a name
	Skipped int `json:"skipped"`
}

// Count returns the number of files written
func (r *UploadResult) Count() int {
	return len(r.Names)
}

// Download is an opened regular file ready to be streamed
type Download struct {
	Content io.ReadSeekCloser
	Name    string
	Size    int64
	ModTime time.Time
}

// FormatSize renders a byte count the way the listing shows it
func FormatSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", size, units[unit])
	}
	return fmt.Sprintf("%.2f %s", value, units[unit])
}
