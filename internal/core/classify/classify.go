// Package classify maps file extensions to display categories.
package classify

import (
	"fmt"
	"path"
	"strings"

	"github.com/Ning0612/nasbrowser/internal/domain"
)

// DefaultExtensions is the built-in extension table
var DefaultExtensions = map[domain.FileCategory][]string{
	domain.CategoryImage:    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico"},
	domain.CategoryVideo:    {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v"},
	domain.CategoryAudio:    {".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a"},
	domain.CategoryDocument: {".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".txt", ".md"},
	domain.CategoryArchive:  {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz"},
	domain.CategoryCode:     {".py", ".js", ".java", ".c", ".cpp", ".h", ".html", ".css", ".php", ".go", ".rs"},
}

// Table classifies file names by extension. It is read-only after
// construction and safe for concurrent use.
type Table struct {
	byExt map[string]domain.FileCategory
}

// NewTable builds a table from the defaults with overrides applied on top.
// An override moves an extension to the given category.
func NewTable(overrides map[domain.FileCategory][]string) (*Table, error) {
	t := &Table{byExt: make(map[string]domain.FileCategory)}

	if err := t.add(DefaultExtensions); err != nil {
		return nil, err
	}
	if err := t.add(overrides); err != nil {
		return nil, err
	}

	return t, nil
}

// Default returns the built-in table
func Default() *Table {
	t, err := NewTable(nil)
	if err != nil {
		panic(err) // built-in table is static
	}
	return t
}

func (t *Table) add(exts map[domain.FileCategory][]string) error {
	for category, list := range exts {
		if !category.IsValid() {
			return fmt.Errorf("unknown file category %q", category)
		}
		for _, ext := range list {
			ext = normalizeExt(ext)
			if ext == "" {
				continue
			}
			t.byExt[ext] = category
		}
	}
	return nil
}

// Classify returns the category of a file name
func (t *Table) Classify(name string) domain.FileCategory {
	ext := strings.ToLower(path.Ext(name))
	if category, ok := t.byExt[ext]; ok {
		return category
	}
	return domain.CategoryFile
}

// Extensions returns the number of known extensions
func (t *Table) Extensions() int {
	return len(t.byExt)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
