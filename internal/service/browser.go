package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Ning0612/nasbrowser/internal/adapter"
	"github.com/Ning0612/nasbrowser/internal/core/naming"
	"github.com/Ning0612/nasbrowser/internal/core/pathsafe"
	"github.com/Ning0612/nasbrowser/internal/domain"
	"github.com/Ning0612/nasbrowser/internal/logger"
)

// Browser is the entry point for every browse, transfer and edit operation.
// It holds no mutable state and is safe for concurrent use.
type Browser struct {
	store     adapter.Store
	rootLabel string
}

// NewBrowser creates a browser over store.
// rootLabel names the first breadcrumb; empty means pathsafe.DefaultRootLabel.
func NewBrowser(store adapter.Store, rootLabel string) (*Browser, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if rootLabel == "" {
		rootLabel = pathsafe.DefaultRootLabel
	}

	return &Browser{
		store:     store,
		rootLabel: rootLabel,
	}, nil
}

// Browse lists the directory at subpath with its breadcrumb trail.
// A file path yields domain.ErrNotDirectory so callers can offer a download instead.
func (b *Browser) Browse(ctx context.Context, subpath string) (*domain.Listing, error) {
	log := logger.FromContext(ctx)

	listing, err := b.store.List(ctx, subpath)
	if err != nil {
		return nil, b.fail(ctx, "browse", subpath, err)
	}

	listing.Breadcrumbs = pathsafe.Breadcrumbs(listing.Path, b.rootLabel)

	for _, w := range listing.Warnings {
		log.Debug("entry skipped in listing", "dir", listing.Path, "name", w.Name, "reason", w.Reason)
	}
	log.Debug("directory listed",
		"path", listing.Path,
		"folders", len(listing.Folders),
		"files", len(listing.Files))

	return listing, nil
}

// Download opens the regular file at subpath. The caller closes the content.
func (b *Browser) Download(ctx context.Context, subpath string) (*domain.Download, error) {
	dl, err := b.store.Open(ctx, subpath)
	if err != nil {
		return nil, b.fail(ctx, "download", subpath, err)
	}

	logger.FromContext(ctx).Info("download started", "path", subpath, "size", dl.Size)
	return dl, nil
}

// Upload stores every named file of the batch in the directory at subpath.
// Names are sanitized and never overwrite existing entries; a taken name
// gets a numeric suffix. Files without a name are skipped.
// A missing or non-directory target yields domain.ErrTargetMissing from the
// store. If a later write fails, the result still lists the files stored
// before it.
func (b *Browser) Upload(ctx context.Context, subpath string, files []domain.IncomingFile) (*domain.UploadResult, error) {
	log := logger.FromContext(ctx)

	dir, err := b.store.Resolve(subpath)
	if err != nil {
		return nil, b.fail(ctx, "upload", subpath, err)
	}

	result := &domain.UploadResult{Names: []string{}}
	for _, f := range files {
		if f.Name == "" {
			result.Skipped++
		}
	}
	if result.Skipped == len(files) {
		return nil, b.fail(ctx, "upload", subpath, domain.ErrNothingSelected)
	}

	for _, f := range files {
		if f.Name == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, b.fail(ctx, "upload", subpath, err)
		}

		name := naming.Sanitize(f.Name)
		final, err := b.store.WriteUnique(ctx, dir.Rel(), name, f.Content)
		if errors.Is(err, domain.ErrTargetMissing) {
			return nil, b.fail(ctx, "upload", subpath, err)
		}
		if err != nil {
			return result, b.fail(ctx, "upload", joinRel(dir.Rel(), name), err)
		}

		if final != f.Name {
			log.Debug("upload renamed", "client_name", f.Name, "stored_as", final)
		}
		result.Names = append(result.Names, final)
	}

	log.Info("upload completed",
		"dir", dir.Rel(),
		"count", result.Count(),
		"skipped", result.Skipped)

	return result, nil
}

// CreateFolder creates one new folder inside the directory at subpath and
// returns its sanitized name.
func (b *Browser) CreateFolder(ctx context.Context, subpath, name string) (string, error) {
	dir, err := b.store.Resolve(subpath)
	if err != nil {
		return "", b.fail(ctx, "create folder", subpath, err)
	}

	if strings.TrimSpace(name) == "" {
		return "", b.fail(ctx, "create folder", subpath, domain.ErrNameEmpty)
	}

	clean, fallback := naming.Clean(name)
	if fallback {
		return "", b.fail(ctx, "create folder", subpath, fmt.Errorf("%w: %q", domain.ErrInvalidName, name))
	}

	if err := b.store.Mkdir(ctx, dir.Rel(), clean); err != nil {
		return "", b.fail(ctx, "create folder", joinRel(dir.Rel(), clean), err)
	}

	logger.FromContext(ctx).Info("folder created", "path", joinRel(dir.Rel(), clean))
	return clean, nil
}

// Delete removes the file or folder at subpath, folders recursively.
// The root itself is never deleted.
func (b *Browser) Delete(ctx context.Context, subpath string) (domain.EntryKind, error) {
	kind, err := b.store.Delete(ctx, subpath)
	if err != nil {
		return kind, b.fail(ctx, "delete", subpath, err)
	}

	logger.FromContext(ctx).Info("entry deleted", "path", subpath, "kind", kind.String())
	return kind, nil
}

// expected errors are outcomes the caller reports to the client as they are
var expected = []error{
	domain.ErrUnsafePath,
	domain.ErrNotFound,
	domain.ErrAlreadyExists,
	domain.ErrNotDirectory,
	domain.ErrNotFile,
	domain.ErrTargetMissing,
	domain.ErrNothingSelected,
	domain.ErrNameEmpty,
	domain.ErrInvalidName,
}

// fail logs err and returns it. Expected outcomes pass through unchanged;
// anything else is wrapped with the operation and path.
func (b *Browser) fail(ctx context.Context, op, path string, err error) error {
	log := logger.FromContext(ctx)

	if errors.Is(err, domain.ErrUnsafePath) {
		log.Warn("rejected unsafe path", "op", op, "path", path, "error", err)
		return err
	}
	for _, e := range expected {
		if errors.Is(err, e) {
			log.Debug("request refused", "op", op, "path", path, "error", err)
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Info("request cancelled", "op", op, "path", path)
		return err
	}

	log.Error("operation failed", "op", op, "path", path, "error", err)
	return fmt.Errorf("%s %q: %w", op, path, err)
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
