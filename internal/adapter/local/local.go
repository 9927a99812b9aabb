package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/text/cases"

	"github.com/Ning0612/nasbrowser/internal/core/classify"
	"github.com/Ning0612/nasbrowser/internal/core/conflict"
	"github.com/Ning0612/nasbrowser/internal/core/pathsafe"
	"github.com/Ning0612/nasbrowser/internal/domain"
)

// Adapter implements the adapter.Store interface for the local filesystem
type Adapter struct {
	resolver *pathsafe.Resolver
	table    *classify.Table
	renamer  conflict.Renamer
}

// New creates a new local filesystem adapter
// root must be an existing directory; table may be nil for the built-in
// extension table
func New(root string, table *classify.Table) (*Adapter, error) {
	resolver, err := pathsafe.NewResolver(root)
	if err != nil {
		return nil, err
	}

	if table == nil {
		table = classify.Default()
	}

	return &Adapter{
		resolver: resolver,
		table:    table,
		renamer:  conflict.NewSuffixRenamer(),
	}, nil
}

// Resolve validates a relative path against the root
func (a *Adapter) Resolve(path string) (pathsafe.Path, error) {
	return a.resolver.Resolve(path)
}

// List returns the immediate children of a directory
func (a *Adapter) List(ctx context.Context, path string) (*domain.Listing, error) {
	p, err := a.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p.Abs())
	if err != nil {
		return nil, a.mapError(err)
	}
	if !info.IsDir() {
		return nil, domain.ErrNotDirectory
	}

	listing := &domain.Listing{
		Path:    p.Rel(),
		Folders: []domain.DirectoryEntry{},
		Files:   []domain.DirectoryEntry{},
	}

	entries, err := os.ReadDir(p.Abs())
	if err != nil {
		if os.IsPermission(err) {
			// Unreadable directory degrades to an empty listing
			listing.Warnings = append(listing.Warnings, domain.Warning{
				Reason: domain.ErrPermissionDenied.Error(),
			})
			return listing, nil
		}
		return nil, a.mapError(err)
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Stat follows symlinks so links show up as what they point to
		info, err := os.Stat(filepath.Join(p.Abs(), entry.Name()))
		if err != nil {
			listing.Warnings = append(listing.Warnings, domain.Warning{
				Name:   entry.Name(),
				Reason: a.mapError(err).Error(),
			})
			continue
		}

		e := a.entryFromOS(p.Rel(), entry.Name(), info)
		if e.IsDir() {
			listing.Folders = append(listing.Folders, e)
		} else {
			listing.Files = append(listing.Files, e)
		}
	}

	sortByName(listing.Folders)
	sortByName(listing.Files)

	return listing, nil
}

// Stat returns metadata for a single path
func (a *Adapter) Stat(ctx context.Context, path string) (domain.DirectoryEntry, error) {
	p, err := a.resolver.Resolve(path)
	if err != nil {
		return domain.DirectoryEntry{}, err
	}

	info, err := os.Stat(p.Abs())
	if err != nil {
		return domain.DirectoryEntry{}, a.mapError(err)
	}

	entry := a.entryFromOS(p.Parent(), p.Name(), info)
	entry.Path = p.Rel()
	return entry, nil
}

// Open opens a regular file for reading
func (a *Adapter) Open(ctx context.Context, path string) (*domain.Download, error) {
	p, err := a.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p.Abs())
	if err != nil {
		return nil, a.mapError(err)
	}
	if !info.Mode().IsRegular() {
		return nil, domain.ErrNotFile
	}

	file, err := os.Open(p.Abs())
	if err != nil {
		return nil, a.mapError(err)
	}

	return &domain.Download{
		Content: file,
		Name:    p.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// WriteUnique creates a new file inside dir without overwriting anything
func (a *Adapter) WriteUnique(ctx context.Context, dir, name string, r io.Reader) (string, error) {
	p, err := a.resolver.Resolve(dir)
	if err != nil {
		return "", err
	}
	if err := a.requireDir(p); err != nil {
		return "", err
	}
	if err := checkSegment(name); err != nil {
		return "", err
	}

	// Each candidate is created exclusively, so a name taken in the
	// meantime (even by the same batch) moves on to the next suffix
	var file *os.File
	final, err := conflict.Claim(a.renamer, name, func(candidate string) error {
		f, err := os.OpenFile(filepath.Join(p.Abs(), candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return err
		}
		file = f
		return nil
	})
	if err != nil {
		if errors.Is(err, conflict.ErrNoFreeName) {
			return "", err
		}
		return "", a.mapError(err)
	}

	fullPath := filepath.Join(p.Abs(), final)
	_, copyErr := io.Copy(file, &contextReader{ctx: ctx, r: r})
	closeErr := file.Close()

	if copyErr != nil {
		os.Remove(fullPath)
		return "", copyErr
	}
	if closeErr != nil {
		os.Remove(fullPath)
		return "", closeErr
	}

	return final, nil
}

// Mkdir creates exactly one new directory inside parent
func (a *Adapter) Mkdir(ctx context.Context, parent, name string) error {
	p, err := a.resolver.Resolve(parent)
	if err != nil {
		return err
	}
	if err := a.requireDir(p); err != nil {
		return err
	}
	if err := checkSegment(name); err != nil {
		return err
	}

	return a.mapError(os.Mkdir(filepath.Join(p.Abs(), name), 0755))
}

// Delete removes a file, or a directory with all of its contents
func (a *Adapter) Delete(ctx context.Context, path string) (domain.EntryKind, error) {
	p, err := a.resolver.Resolve(path)
	if err != nil {
		return domain.EntryFile, err
	}
	if p.IsRoot() {
		return domain.EntryFile, fmt.Errorf("%w: refusing to delete the root directory", domain.ErrUnsafePath)
	}

	info, err := os.Lstat(p.Abs())
	if err != nil {
		return domain.EntryFile, a.mapError(err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(p.Abs()); err != nil {
			return domain.EntryFolder, a.mapError(err)
		}
		return domain.EntryFolder, nil
	}

	if err := os.Remove(p.Abs()); err != nil {
		return domain.EntryFile, a.mapError(err)
	}
	return domain.EntryFile, nil
}

// Close releases any resources (no-op for local adapter)
func (a *Adapter) Close() error {
	return nil
}

// Root returns the canonical root path of this adapter
func (a *Adapter) Root() string {
	return a.resolver.Root()
}

// requireDir checks that a resolved path is an existing directory
func (a *Adapter) requireDir(p pathsafe.Path) error {
	info, err := os.Stat(p.Abs())
	if err != nil {
		err = a.mapError(err)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTargetMissing
		}
		return err
	}
	if !info.IsDir() {
		return domain.ErrTargetMissing
	}
	return nil
}

// entryFromOS converts os.FileInfo to domain.DirectoryEntry
func (a *Adapter) entryFromOS(dir, name string, info os.FileInfo) domain.DirectoryEntry {
	rel := name
	if dir != "" {
		rel = dir + "/" + name
	}

	if info.IsDir() {
		return domain.DirectoryEntry{
			Name:     name,
			Path:     rel,
			Kind:     domain.EntryFolder,
			ModTime:  info.ModTime(),
			Category: domain.CategoryFolder,
		}
	}

	return domain.DirectoryEntry{
		Name:          name,
		Path:          rel,
		Kind:          domain.EntryFile,
		ModTime:       info.ModTime(),
		Size:          info.Size(),
		SizeFormatted: domain.FormatSize(info.Size()),
		Category:      a.table.Classify(name),
	}
}

// mapError converts OS errors to domain errors
func (a *Adapter) mapError(err error) error {
	if err == nil {
		return nil
	}

	if os.IsNotExist(err) {
		return domain.ErrNotFound
	}
	if os.IsPermission(err) {
		return domain.ErrPermissionDenied
	}
	if os.IsExist(err) {
		return domain.ErrAlreadyExists
	}

	// A file used as a directory component ("a.txt/b") means the path does not exist
	if errors.Is(err, syscall.ENOTDIR) {
		return domain.ErrNotFound
	}

	return err
}

// checkSegment rejects names that are not exactly one path segment
func checkSegment(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidName, name)
	}
	return nil
}

// sortByName orders entries by case-folded name, raw name breaking ties
func sortByName(entries []domain.DirectoryEntry) {
	fold := cases.Fold()
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		keys[e.Name] = fold.String(e.Name)
	}

	sort.Slice(entries, func(i, j int) bool {
		ki, kj := keys[entries[i].Name], keys[entries[j].Name]
		if ki != kj {
			return ki < kj
		}
		return entries[i].Name < entries[j].Name
	})
}

// contextReader stops a copy once the context is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
