package fakerr

import (
	"fmt"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeLoad       ErrorType = "LoadError"
	TypeGeneration ErrorType = "GenerationError"
)

// FakeError is the interface for all fakesmith-related errors.
type FakeError interface {
	error
	Type() ErrorType
}

// BaseError provides common fields for fakesmith errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// LoadError represents an error while reading or validating a declaration
// description file.
type LoadError struct {
	BaseError
	FilePath string
}

func (e *LoadError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("[%s] %s: %s", e.ErrType, e.FilePath, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// GenerationError represents an error during fake assembly for a declaration.
type GenerationError struct {
	BaseError
	Declaration string
}

func (e *GenerationError) Error() string {
	if e.Declaration != "" {
		return fmt.Sprintf("[%s] %s: %s", e.ErrType, e.Declaration, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// MultiError collects multiple fakesmith errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if fe, ok := m.Errors[0].(FakeError); ok {
			return fe.Type()
		}
	}
	return "MultiError"
}

// NewLoadError creates a new LoadError without file context.
func NewLoadError(msg string) *LoadError {
	return &LoadError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeLoad,
		},
	}
}

// NewLoadErrorInFile creates a LoadError carrying the originating file path.
func NewLoadErrorInFile(filePath, msg string) *LoadError {
	return &LoadError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeLoad,
		},
		FilePath: filePath,
	}
}

// NewGenerationError creates a GenerationError for the named declaration.
func NewGenerationError(declaration, msg string) *GenerationError {
	return &GenerationError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeGeneration,
		},
		Declaration: declaration,
	}
}
