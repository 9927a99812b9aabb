package conflict

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"unicode/utf8"

	"github.com/Ning0612/nasbrowser/internal/core/naming"
)

// MaxAttempts bounds how many suffixed names are tried for one file
const MaxAttempts = 10000

// ErrNoFreeName is returned when every candidate name is taken
var ErrNoFreeName = errors.New("no free name available")

// Renamer proposes alternative names for a name that is already taken
type Renamer interface {
	// Candidate returns the name to try on the given attempt.
	// Attempt 0 is the name itself.
	Candidate(name string, attempt int) string
}

// SuffixRenamer inserts "_N" between the base name and its extension:
// photo.jpg, photo_1.jpg, photo_2.jpg, ...
type SuffixRenamer struct {
	// MaxBytes caps the candidate length; the base name is shortened to fit
	MaxBytes int
}

// NewSuffixRenamer creates a SuffixRenamer honoring naming.MaxNameBytes
func NewSuffixRenamer() *SuffixRenamer {
	return &SuffixRenamer{MaxBytes: naming.MaxNameBytes}
}

// Candidate implements the Renamer interface
func (r *SuffixRenamer) Candidate(name string, attempt int) string {
	if attempt <= 0 {
		return name
	}

	ext := path.Ext(name)
	base := name[:len(name)-len(ext)]
	suffix := "_" + strconv.Itoa(attempt)

	if r.MaxBytes > 0 {
		if over := len(base) + len(suffix) + len(ext) - r.MaxBytes; over > 0 {
			base = trimRunes(base, len(base)-over)
		}
	}

	return base + suffix + ext
}

// ClaimFunc tries to take a name. It returns an error matching fs.ErrExist
// when the name is in use; any other error aborts the search.
type ClaimFunc func(name string) error

// Claim walks the renamer's candidates until claim succeeds and returns
// the name that was taken. Existence is re-checked by claim for every
// candidate, so names taken earlier in the same batch are skipped.
func Claim(r Renamer, name string, claim ClaimFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		candidate := r.Candidate(name, attempt)

		err := claim(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoFreeName, name)
}

// trimRunes cuts s to at most n bytes on a rune boundary
func trimRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
