package conflict

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestSuffixRenamer_Candidate(t *testing.T) {
	r := NewSuffixRenamer()

	tests := []struct {
		name     string
		attempt  int
		expected string
	}{
		{"a.txt", 0, "a.txt"},
		{"a.txt", 1, "a_1.txt"},
		{"a.txt", 12, "a_12.txt"},
		{"README", 2, "README_2"},
		{"archive.tar.gz", 1, "archive.tar_1.gz"},
		{"照片.jpg", 3, "照片_3.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := r.Candidate(tt.name, tt.attempt); got != tt.expected {
				t.Errorf("Candidate(%q, %d) = %q, want %q", tt.name, tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestSuffixRenamer_RespectsMaxBytes(t *testing.T) {
	r := NewSuffixRenamer()
	name := strings.Repeat("x", 251) + ".txt"

	got := r.Candidate(name, 7)
	if len(got) > r.MaxBytes {
		t.Errorf("candidate length %d exceeds %d", len(got), r.MaxBytes)
	}
	if !strings.HasSuffix(got, "_7.txt") {
		t.Errorf("suffix or extension lost: %q", got[len(got)-8:])
	}

	multi := strings.Repeat("名", 83) + ".md" // 252 bytes
	got = r.Candidate(multi, 10)
	if len(got) > r.MaxBytes || !strings.HasSuffix(got, "_10.md") {
		t.Errorf("unexpected candidate %q (%d bytes)", got, len(got))
	}
}

func TestClaim_SkipsTakenNames(t *testing.T) {
	taken := map[string]bool{"a.txt": true, "a_1.txt": true}

	got, err := Claim(NewSuffixRenamer(), "a.txt", func(name string) error {
		if taken[name] {
			return fs.ErrExist
		}
		taken[name] = true
		return nil
	})
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if got != "a_2.txt" {
		t.Errorf("Claim() = %q, want a_2.txt", got)
	}
}

func TestClaim_AbortsOnOtherErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	calls := 0

	_, err := Claim(NewSuffixRenamer(), "a.txt", func(string) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Claim() error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("claim called %d times, want 1", calls)
	}
}

func TestClaim_GivesUp(t *testing.T) {
	_, err := Claim(NewSuffixRenamer(), "a.txt", func(string) error {
		return fs.ErrExist
	})
	if !errors.Is(err, ErrNoFreeName) {
		t.Errorf("Claim() error = %v, want ErrNoFreeName", err)
	}
}
