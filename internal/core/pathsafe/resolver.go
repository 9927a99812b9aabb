package pathsafe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ning0612/nasbrowser/internal/domain"
)

// Path is a location that has been resolved against the root.
// Only Resolver can produce one, so holding a Path means the
// canonical absolute path lies within the root.
type Path struct {
	abs string
	rel string
}

// Abs returns the canonical absolute filesystem path
func (p Path) Abs() string {
	return p.abs
}

// Rel returns the slash-separated path from the root ("" for the root itself)
func (p Path) Rel() string {
	return p.rel
}

// IsRoot reports whether the path is the root directory
func (p Path) IsRoot() bool {
	return p.rel == ""
}

// Name returns the last element of the path
func (p Path) Name() string {
	return filepath.Base(p.abs)
}

// Parent returns the slash-separated path of the containing directory
func (p Path) Parent() string {
	if p.rel == "" {
		return ""
	}
	i := strings.LastIndex(p.rel, "/")
	if i < 0 {
		return ""
	}
	return p.rel[:i]
}

// Resolver maps untrusted relative paths onto a fixed root directory
type Resolver struct {
	root string // canonical absolute root
}

// NewResolver creates a resolver for root.
// root must be an existing directory; it is canonicalized once here.
func NewResolver(root string) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	info, err := os.Stat(realRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, domain.ErrNotDirectory
	}

	return &Resolver{root: filepath.Clean(realRoot)}, nil
}

// Root returns the canonical root directory
func (r *Resolver) Root() string {
	return r.root
}

// maxLinkHops bounds how many symlinks one resolution may follow.
const maxLinkHops = 40

// Resolve joins relPath onto the root and canonicalizes it.
// Empty and "." components are skipped, ".." steps up from what has been
// resolved so far and symlinks are replaced by their targets. Components
// that do not exist are appended as they are, so a missing path still
// resolves and the caller decides how to report it.
//
// Returns domain.ErrUnsafePath as soon as the walk leaves the root.
func (r *Resolver) Resolve(relPath string) (Path, error) {
	if strings.IndexByte(relPath, 0) >= 0 {
		return Path{}, fmt.Errorf("%w: NUL byte in path", domain.ErrUnsafePath)
	}

	hops := 0
	dest, ok := r.walk(r.root, splitComponents(relPath), &hops, true)
	if !ok {
		return Path{}, fmt.Errorf("%w: %q", domain.ErrUnsafePath, relPath)
	}

	rel, err := filepath.Rel(r.root, dest)
	if err != nil {
		return Path{}, fmt.Errorf("%w: %v", domain.ErrUnsafePath, err)
	}
	if rel == "." {
		rel = ""
	}

	return Path{abs: dest, rel: filepath.ToSlash(rel)}, nil
}

// walk applies names to dest one component at a time. Every component is
// looked up, so a ".." that climbs out of a missing branch lands on a real
// directory and the next symlink is still followed. hops counts the links
// followed across the whole resolution. With guard set the walk stops with
// ok=false the moment dest leaves the root.
func (r *Resolver) walk(dest string, names []string, hops *int, guard bool) (string, bool) {
	for _, name := range names {
		switch name {
		case ".":
			continue
		case "..":
			dest = filepath.Dir(dest)
		default:
			next := filepath.Join(dest, name)
			info, err := os.Lstat(next)
			switch {
			case err != nil:
				// Missing or unreadable; kept as written
				dest = next
			case info.Mode()&os.ModeSymlink == 0:
				dest = next
			default:
				dest = r.followLink(dest, next, hops)
			}
		}

		if guard && !r.contains(dest) {
			return "", false
		}
	}
	return dest, true
}

// followLink replaces the symlink at link (a child of dir) with its
// canonical target. The target is walked component by component, so a
// dangling link whose target passes through other links still ends up
// where the filesystem would take it. Unreadable links and links past
// maxLinkHops stay where they are.
func (r *Resolver) followLink(dir, link string, hops *int) string {
	if *hops >= maxLinkHops {
		return link
	}
	*hops++

	target, err := os.Readlink(link)
	if err != nil {
		return link
	}

	start := dir
	if filepath.IsAbs(target) {
		vol := filepath.VolumeName(target)
		start = vol + string(filepath.Separator)
		target = target[len(vol):]
	}

	dest, _ := r.walk(start, splitComponents(target), hops, false)
	return dest
}

// contains reports whether p is the root or below it.
// The comparison is made on whole path segments, so a sibling such as
// "/mnt/nas-other" is not inside "/mnt/nas".
func (r *Resolver) contains(p string) bool {
	if p == r.root {
		return true
	}
	prefix := r.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

// splitComponents splits a path on '/' and '\\', dropping empty components.
// Treating backslashes as separators catches Windows-style traversal on
// every platform.
func splitComponents(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
}
