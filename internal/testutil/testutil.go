package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// TempDir creates a temporary directory for testing and returns its
// canonical path (symlinks such as macOS /var -> /private/var resolved).
// The directory is removed when the test finishes.
func TempDir(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return dir
}

// CreateTestFile creates a test file with the given content.
// name may contain slashes; parent directories are created.
func CreateTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	return path
}

// CreateTestDir creates a directory (and parents) below dir
func CreateTestDir(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}

	return path
}

// Symlink creates a symbolic link at dir/name pointing to target.
// The test is skipped where the platform refuses to create links.
func Symlink(t *testing.T, target, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.Symlink(target, path); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("symlinks not available: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}

	return path
}

// ReadFile returns the content of dir/name or fails the test
func ReadFile(t *testing.T, dir, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return data
}

// AssertExists fails the test if dir/name does not exist
func AssertExists(t *testing.T, dir, name string) {
	t.Helper()

	if _, err := os.Lstat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
		t.Fatalf("expected %s to exist: %v", name, err)
	}
}

// AssertNotExists fails the test if dir/name exists
func AssertNotExists(t *testing.T, dir, name string) {
	t.Helper()

	if _, err := os.Lstat(filepath.Join(dir, filepath.FromSlash(name))); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, got err=%v", name, err)
	}
}

// SkipIfRoot skips permission tests when running with superuser rights
func SkipIfRoot(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks do not apply")
	}
}

// RandomString generates a random string of the given length
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
