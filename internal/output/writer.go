// Package output maps generated units onto the host file system: one
// Fake<Name>.kt file per declaration, grouped into directories mirroring the
// Kotlin package.
package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"martianoff/fakesmith/fakerr"
	"martianoff/fakesmith/internal/generator"
)

// Writer persists generated units under an output root.
type Writer struct {
	root   string
	logger *log.Logger
}

// NewWriter creates a writer rooted at dir. A nil logger falls back to the
// process default.
func NewWriter(dir string, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	return &Writer{root: dir, logger: logger}
}

// WriteAll writes every unit and returns the written paths in input order.
// Existing files are overwritten; the generated header marks them as
// disposable.
func (w *Writer) WriteAll(units []*generator.GeneratedUnit) ([]string, error) {
	paths := make([]string, 0, len(units))
	for _, u := range units {
		path, err := w.write(u)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *Writer) write(u *generator.GeneratedUnit) (string, error) {
	dir := filepath.Join(w.root, packageDir(u.Package))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fakerr.NewGenerationError(u.QualifiedName, "failed to create output directory "+dir+": "+err.Error())
	}
	path := filepath.Join(dir, u.FileName())
	if err := os.WriteFile(path, []byte(u.Source()), 0644); err != nil {
		return "", fakerr.NewGenerationError(u.QualifiedName, "failed to write "+path+": "+err.Error())
	}
	w.logger.Debug("wrote fake", "declaration", u.QualifiedName, "path", path)
	return path, nil
}

// packageDir converts "com.example.model" to "com/example/model".
func packageDir(pkg string) string {
	if pkg == "" {
		return "."
	}
	return filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/"))
}
