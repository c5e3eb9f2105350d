package cache

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Signature computes a content hash over all declaration description files
// in a directory tree. The hash is deterministic regardless of file system
// ordering, so it is safe to compare across runs and machines.
func Signature(dir string) (string, error) {
	h := sha256.New()

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}
		if isDescriptionFile(path) {
			relPath, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk directory: %w", err)
	}

	// Sort for determinism
	sort.Strings(files)

	// Hash each file's path and content, null-separated
	for _, relPath := range files {
		fullPath := filepath.Join(dir, relPath)

		h.Write([]byte(filepath.ToSlash(relPath)))
		h.Write([]byte{0})

		content, err := os.ReadFile(fullPath)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", relPath, err)
		}
		content = normalizeLineEndings(content)
		h.Write(content)
		h.Write([]byte{0})
	}

	sum := h.Sum(nil)
	return "h1:" + base64.StdEncoding.EncodeToString(sum), nil
}

func isDescriptionFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// normalizeLineEndings converts all line endings to LF so the signature is
// stable across checkouts with different autocrlf settings.
func normalizeLineEndings(data []byte) []byte {
	result := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\r' {
			if i+1 < len(data) && data[i+1] == '\n' {
				continue
			}
			result = append(result, '\n')
		} else {
			result = append(result, data[i])
		}
	}
	return result
}
