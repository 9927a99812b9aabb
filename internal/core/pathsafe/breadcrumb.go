package pathsafe

import (
	"strings"

	"github.com/Ning0612/nasbrowser/internal/domain"
)

// DefaultRootLabel is the first breadcrumb when none is configured
const DefaultRootLabel = "Root"

// Breadcrumbs builds the navigation trail for a relative path.
// The root comes first with an empty path, followed by one crumb per
// non-empty segment carrying the cumulative path up to it.
// It is a pure function of the string; nothing is resolved on disk.
func Breadcrumbs(relPath, rootLabel string) []domain.Breadcrumb {
	if rootLabel == "" {
		rootLabel = DefaultRootLabel
	}

	crumbs := []domain.Breadcrumb{{Label: rootLabel, Path: ""}}

	current := ""
	for _, part := range strings.Split(relPath, "/") {
		if part == "" {
			continue
		}
		if current == "" {
			current = part
		} else {
			current = current + "/" + part
		}
		crumbs = append(crumbs, domain.Breadcrumb{Label: part, Path: current})
	}

	return crumbs
}
