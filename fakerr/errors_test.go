package fakerr_test

import (
	"strings"
	"testing"

	"martianoff/fakesmith/fakerr"

	"github.com/stretchr/testify/assert"
)

func TestLoadError(t *testing.T) {
	err := fakerr.NewLoadError("missing package name")
	assert.Equal(t, fakerr.TypeLoad, err.Type())
	assert.Equal(t, "[LoadError] missing package name", err.Error())
}

func TestLoadErrorInFile(t *testing.T) {
	err := fakerr.NewLoadErrorInFile("repo.yaml", "missing package name")
	assert.Equal(t, fakerr.TypeLoad, err.Type())
	assert.Equal(t, "repo.yaml", err.FilePath)
	assert.Equal(t, "[LoadError] repo.yaml: missing package name", err.Error())
}

func TestGenerationError(t *testing.T) {
	err := fakerr.NewGenerationError("com.example.UserRepository", "duplicate member name")
	assert.Equal(t, fakerr.TypeGeneration, err.Type())
	assert.Equal(t, "com.example.UserRepository", err.Declaration)
	assert.Equal(t, "[GenerationError] com.example.UserRepository: duplicate member name", err.Error())
}

func TestGenerationErrorNoDeclaration(t *testing.T) {
	err := &fakerr.GenerationError{
		BaseError: fakerr.BaseError{Msg: "boom", ErrType: fakerr.TypeGeneration},
	}
	assert.Equal(t, "[GenerationError] boom", err.Error())
}

func TestMultiError(t *testing.T) {
	e1 := fakerr.NewLoadErrorInFile("a.yaml", "error 1")
	e2 := fakerr.NewLoadErrorInFile("b.yaml", "error 2")
	multi := &fakerr.MultiError{Errors: []error{e1, e2}}

	assert.Equal(t, fakerr.TypeLoad, multi.Type())
	errMsg := multi.Error()
	assert.Contains(t, errMsg, "2 error(s) occurred:")
	assert.Contains(t, errMsg, "- [LoadError] a.yaml: error 1")
	assert.Contains(t, errMsg, "- [LoadError] b.yaml: error 2")
}

func TestMultiErrorMixed(t *testing.T) {
	e1 := fakerr.NewGenerationError("X", "generation error")
	e2 := fakerr.NewLoadError("load error")
	multi := &fakerr.MultiError{Errors: []error{e1, e2}}

	assert.Equal(t, fakerr.TypeGeneration, multi.Type())
}

func TestMultiErrorEmpty(t *testing.T) {
	multi := &fakerr.MultiError{Errors: []error{}}
	assert.Equal(t, fakerr.ErrorType("MultiError"), multi.Type())
	assert.True(t, strings.HasPrefix(multi.Error(), "0 error(s) occurred:"))
}
