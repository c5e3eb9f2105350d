// Package loader reads YAML declaration-description files and populates the
// metadata store the generator runs over. Descriptions carry Kotlin type
// expressions as plain strings; the loader parses them, resolves
// cross-declaration references, flattens interface inheritance, and
// normalizes parameter default expressions.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"martianoff/fakesmith/fakerr"
	"martianoff/fakesmith/internal/metadata"
)

// document is one description file. Every declaration in the file belongs to
// the file's package.
type document struct {
	Package    string         `yaml:"package" validate:"required"`
	Interfaces []interfaceDoc `yaml:"interfaces" validate:"dive"`
	Classes    []classDoc     `yaml:"classes" validate:"dive"`
	Enums      []enumDoc      `yaml:"enums" validate:"dive"`
}

type typeParamDoc struct {
	Name   string   `yaml:"name" validate:"required"`
	Bounds []string `yaml:"bounds"`
}

type propertyDoc struct {
	Name    string `yaml:"name" validate:"required"`
	Type    string `yaml:"type" validate:"required"`
	Mutable bool   `yaml:"mutable"`
}

type parameterDoc struct {
	Name    string `yaml:"name" validate:"required"`
	Type    string `yaml:"type" validate:"required"`
	Default string `yaml:"default"`
	Vararg  bool   `yaml:"vararg"`
}

type functionDoc struct {
	Name           string         `yaml:"name" validate:"required"`
	TypeParameters []typeParamDoc `yaml:"typeParameters" validate:"dive"`
	Parameters     []parameterDoc `yaml:"parameters" validate:"dive"`
	Returns        string         `yaml:"returns"`
	Suspend        bool           `yaml:"suspend"`
	Inline         bool           `yaml:"inline"`
}

type interfaceDoc struct {
	Name           string         `yaml:"name" validate:"required"`
	TypeParameters []typeParamDoc `yaml:"typeParameters" validate:"dive"`
	Extends        []string       `yaml:"extends"`
	Properties     []propertyDoc  `yaml:"properties" validate:"dive"`
	Functions      []functionDoc  `yaml:"functions" validate:"dive"`
}

type classDoc struct {
	Name               string         `yaml:"name" validate:"required"`
	TypeParameters     []typeParamDoc `yaml:"typeParameters" validate:"dive"`
	AbstractProperties []propertyDoc  `yaml:"abstractProperties" validate:"dive"`
	OpenProperties     []propertyDoc  `yaml:"openProperties" validate:"dive"`
	AbstractFunctions  []functionDoc  `yaml:"abstractFunctions" validate:"dive"`
	OpenFunctions      []functionDoc  `yaml:"openFunctions" validate:"dive"`
}

type enumDoc struct {
	Name    string   `yaml:"name" validate:"required"`
	Entries []string `yaml:"entries"`
}

// Loader parses description files into a store.
type Loader struct {
	logger   *log.Logger
	validate *validator.Validate
}

// New creates a loader. A nil logger falls back to the process default.
func New(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		logger:   logger,
		validate: validator.New(),
	}
}

// LoadDir loads every .yaml/.yml description under dir into store. Files
// are processed in sorted path order so diagnostics are stable. All files
// are parsed before any cross-file resolution runs, so declaration order
// across files does not matter.
func (l *Loader) LoadDir(dir string, store *metadata.Store) error {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan description directory: %w", err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		return fakerr.NewLoadError("no description files found in " + dir)
	}

	// Every file is parsed even after a failure, so one run reports every
	// broken description instead of the first.
	var docs []*parsedDocument
	var errs []error
	for _, path := range files {
		doc, err := l.parseFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	if len(errs) == 1 {
		return errs[0]
	}
	if len(errs) > 1 {
		return &fakerr.MultiError{Errors: errs}
	}
	return l.resolve(docs, store)
}

type parsedDocument struct {
	path string
	doc  document
}

func (l *Loader) parseFile(path string) (*parsedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fakerr.NewLoadErrorInFile(path, "failed to read file: "+err.Error())
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fakerr.NewLoadErrorInFile(path, "invalid YAML: "+err.Error())
	}
	if err := l.validate.Struct(&doc); err != nil {
		return nil, fakerr.NewLoadErrorInFile(path, "invalid description: "+err.Error())
	}
	return &parsedDocument{path: path, doc: doc}, nil
}
