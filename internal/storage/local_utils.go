package storage

import (
	"path/filepath"
	"strings"
)

func localStorageFullpath(baseDir string, parts ...string) string {
	return filepath.Join(append([]string{baseDir}, parts...)...)
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
