// Package security confines file access to a configured directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator restricts paths to a root directory
type PathValidator struct {
	root     string
	realRoot string
}

// NewPathValidator creates a validator rooted at dir
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	realRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		realRoot = resolved
	}

	return &PathValidator{root: root, realRoot: realRoot}, nil
}

// Root returns the absolute configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns path into an absolute path inside the root. Relative paths
// are taken relative to the root. Symlinks are followed for the longest
// existing prefix, so paths to files not yet created are accepted as long as
// their parent stays inside.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs := filepath.Clean(path)

	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if !within(abs, v.root, v.realRoot) || !within(resolved, v.root, v.realRoot) {
		return "", fmt.Errorf("path is outside configured directory: %s", path)
	}

	return abs, nil
}

// Contains reports whether path resolves inside the root
func (v *PathValidator) Contains(path string) bool {
	_, err := v.Resolve(path)
	return err == nil
}

// resolveExisting follows symlinks for the deepest existing ancestor of path
// and re-attaches the missing tail.
func resolveExisting(path string) (string, error) {
	var tail []string
	current := path
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			parts := append([]string{resolved}, tail...)
			return filepath.Join(parts...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return path, nil
		}
		tail = append([]string{filepath.Base(current)}, tail...)
		current = parent
	}
}

func within(path string, roots ...string) bool {
	for _, root := range roots {
		if path == root {
			return true
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
