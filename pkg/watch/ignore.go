package watch

import (
	"os"
	"path/filepath"
	"strings"
)

// ignoredDir reports whether a directory name is never watched.
func ignoredDir(name string) bool {
	switch name {
	case "node_modules", ".git", "dist", "build", ".cache", "public":
		return true
	}
	return false
}

// inIgnoredDir reports whether any directory between root and path is ignored.
func inIgnoredDir(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if ignoredDir(part) {
			return true
		}
	}
	return false
}

func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
