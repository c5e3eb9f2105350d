package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSignatureDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.yaml"), "package: com.example\n")
	writeFile(t, filepath.Join(dir, "nested", "orders.yml"), "package: com.example.orders\n")

	first, err := Signature(dir)
	require.NoError(t, err)
	second, err := Signature(dir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "h1:")
}

func TestSignatureChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.yaml"), "package: com.example\n")
	before, err := Signature(dir)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "users.yaml"), "package: com.example.v2\n")
	after, err := Signature(dir)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestSignatureIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.yaml"), "package: com.example\n")
	before, err := Signature(dir)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "notes.txt"), "scratch\n")
	writeFile(t, filepath.Join(dir, ".hidden", "wip.yaml"), "package: wip\n")
	after, err := Signature(dir)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestSignatureNormalizesLineEndings(t *testing.T) {
	dirLF := t.TempDir()
	dirCRLF := t.TempDir()
	writeFile(t, filepath.Join(dirLF, "users.yaml"), "package: com.example\nname: x\n")
	writeFile(t, filepath.Join(dirCRLF, "users.yaml"), "package: com.example\r\nname: x\r\n")

	lf, err := Signature(dirLF)
	require.NoError(t, err)
	crlf, err := Signature(dirCRLF)
	require.NoError(t, err)

	assert.Equal(t, lf, crlf)
}
