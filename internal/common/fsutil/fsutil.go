package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/games/genshin
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// Promote moves src to dst. When src holds exactly one directory and nothing
// else, that directory is moved instead, so archives with a single top-level
// folder land flat at dst.
func Promote(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	from := src
	if len(entries) == 1 && entries[0].IsDir() {
		from = filepath.Join(src, entries[0].Name())
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	if err := os.Rename(from, dst); err != nil {
		return fmt.Errorf("promote %s: %w", src, err)
	}
	if from != src {
		return os.RemoveAll(src)
	}
	return nil
}
