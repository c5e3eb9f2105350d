package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/fakesmith/fakerr"
	"martianoff/fakesmith/internal/metadata"
)

func writeDescription(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadDirPopulatesStore(t *testing.T) {
	dir := t.TempDir()
	writeDescription(t, dir, "repository.yaml", `
package: com.example
interfaces:
  - name: UserRepository
    functions:
      - name: findById
        suspend: true
        parameters:
          - name: id
            type: Long
          - name: timeoutMillis
            type: Long
            default: "30000"
        returns: "User?"
      - name: clear
classes:
  - name: BaseWorker
    abstractFunctions:
      - name: run
        returns: Unit
    openFunctions:
      - name: shutdown
        returns: Boolean
enums:
  - name: Status
    entries: [ACTIVE, INACTIVE]
`)
	writeDescription(t, dir, "model.yaml", `
package: com.example.model
classes:
  - name: User
    openFunctions:
      - name: displayName
        returns: String
`)

	store := metadata.NewStore()
	require.NoError(t, New(nil).LoadDir(dir, store))

	iface, ok := store.Interface("com.example.UserRepository")
	require.True(t, ok)
	require.Len(t, iface.Functions, 2)

	findByID := iface.Functions[0]
	assert.True(t, findByID.Suspend)
	require.Len(t, findByID.Parameters, 2)
	assert.Equal(t, "Long", findByID.Parameters[0].Type.String())
	assert.True(t, findByID.Parameters[1].HasDefault)
	assert.Equal(t, "30000L", findByID.Parameters[1].DefaultText)

	// The unqualified User reference resolves to the declaring package.
	ret, isNullable := findByID.ReturnType.(metadata.NullableType)
	require.True(t, isNullable)
	named, isNamed := ret.Inner.(metadata.NamedType)
	require.True(t, isNamed)
	assert.Equal(t, "com.example.model", named.Package)
	assert.False(t, named.Unresolved)

	// Omitted return type defaults to Unit.
	assert.Equal(t, "Unit", iface.Functions[1].ReturnType.String())

	class, ok := store.Class("com.example.BaseWorker")
	require.True(t, ok)
	assert.Len(t, class.AbstractFunctions, 1)
	assert.Len(t, class.OpenFunctions, 1)

	enum, ok := store.Enum("com.example.Status")
	require.True(t, ok)
	assert.Equal(t, []string{"ACTIVE", "INACTIVE"}, enum.Entries)
}

func TestLoadDirMarksUnknownReferencesUnresolved(t *testing.T) {
	dir := t.TempDir()
	writeDescription(t, dir, "service.yaml", `
package: com.example
interfaces:
  - name: AuditService
    functions:
      - name: record
        parameters:
          - name: event
            type: ExternalEvent
`)

	store := metadata.NewStore()
	require.NoError(t, New(nil).LoadDir(dir, store))

	iface, ok := store.Interface("com.example.AuditService")
	require.True(t, ok)
	named, isNamed := iface.Functions[0].Parameters[0].Type.(metadata.NamedType)
	require.True(t, isNamed)
	assert.True(t, named.Unresolved)
	assert.Equal(t, "ExternalEvent", named.Name)
}

func TestLoadDirResolvesTransitiveInheritance(t *testing.T) {
	dir := t.TempDir()
	writeDescription(t, dir, "hierarchy.yaml", `
package: com.example
interfaces:
  - name: Identified
    functions:
      - name: id
        returns: Long
  - name: Auditable
    extends: [Identified]
    functions:
      - name: auditLog
        returns: String
  - name: Entity
    extends: [Auditable]
    functions:
      - name: save
`)

	store := metadata.NewStore()
	require.NoError(t, New(nil).LoadDir(dir, store))

	entity, ok := store.Interface("com.example.Entity")
	require.True(t, ok)
	names := make([]string, 0, len(entity.InheritedFunctions))
	for _, fn := range entity.InheritedFunctions {
		names = append(names, fn.Name)
	}
	assert.ElementsMatch(t, []string{"auditLog", "id"}, names)
}

func TestLoadDirDiamondInheritanceCollectsOnce(t *testing.T) {
	dir := t.TempDir()
	writeDescription(t, dir, "diamond.yaml", `
package: com.example
interfaces:
  - name: Root
    functions:
      - name: ping
  - name: Left
    extends: [Root]
  - name: Right
    extends: [Root]
  - name: Bottom
    extends: [Left, Right]
`)

	store := metadata.NewStore()
	require.NoError(t, New(nil).LoadDir(dir, store))

	bottom, ok := store.Interface("com.example.Bottom")
	require.True(t, ok)
	require.Len(t, bottom.InheritedFunctions, 1)
	assert.Equal(t, "ping", bottom.InheritedFunctions[0].Name)
}

func TestLoadDirSubstitutesGenericSupertypeArguments(t *testing.T) {
	dir := t.TempDir()
	writeDescription(t, dir, "box.yaml", `
package: com.example
interfaces:
  - name: Box
    typeParameters:
      - name: T
    functions:
      - name: get
        returns: T
      - name: put
        parameters:
          - name: value
            type: T
      - name: map
        typeParameters:
          - name: R
        parameters:
          - name: transform
            type: "(T) -> R"
        returns: R
  - name: StringBox
    extends: ["Box<String>"]
`)

	store := metadata.NewStore()
	require.NoError(t, New(nil).LoadDir(dir, store))

	box, ok := store.Interface("com.example.StringBox")
	require.True(t, ok)
	require.Len(t, box.InheritedFunctions, 3)

	get := box.InheritedFunctions[0]
	assert.Equal(t, "get", get.Name)
	assert.Equal(t, "String", get.ReturnType.String())

	put := box.InheritedFunctions[1]
	assert.Equal(t, "String", put.Parameters[0].Type.String())

	// The inherited method's own type parameter is shadowed, not replaced.
	mapped := box.InheritedFunctions[2]
	assert.Equal(t, "(String) -> R", mapped.Parameters[0].Type.String())
	assert.Equal(t, metadata.ParamType{Name: "R"}, mapped.ReturnType)

	// No unbound parent parameter survives into the child's member set.
	for _, fn := range box.InheritedFunctions {
		for _, p := range fn.Parameters {
			assert.False(t, metadata.ContainsParam(p.Type, map[string]bool{"T": true}), fn.Name)
		}
		assert.False(t, metadata.ContainsParam(fn.ReturnType, map[string]bool{"T": true}), fn.Name)
	}
}

func TestLoadDirSubstitutesThroughInheritanceChain(t *testing.T) {
	dir := t.TempDir()
	writeDescription(t, dir, "chain.yaml", `
package: com.example
interfaces:
  - name: Box
    typeParameters:
      - name: T
    functions:
      - name: get
        returns: T
  - name: ListBox
    typeParameters:
      - name: E
    extends: ["Box<List<E>>"]
  - name: StringListBox
    extends: ["ListBox<String>"]
`)

	store := metadata.NewStore()
	require.NoError(t, New(nil).LoadDir(dir, store))

	listBox, ok := store.Interface("com.example.ListBox")
	require.True(t, ok)
	require.Len(t, listBox.InheritedFunctions, 1)
	assert.Equal(t, "List<E>", listBox.InheritedFunctions[0].ReturnType.String())

	stringListBox, ok := store.Interface("com.example.StringListBox")
	require.True(t, ok)
	require.Len(t, stringListBox.InheritedFunctions, 1)
	assert.Equal(t, "List<String>", stringListBox.InheritedFunctions[0].ReturnType.String())
}

func TestLoadDirOwnMemberShadowsInherited(t *testing.T) {
	dir := t.TempDir()
	writeDescription(t, dir, "shadow.yaml", `
package: com.example
interfaces:
  - name: Base
    functions:
      - name: close
        returns: Boolean
  - name: Resource
    extends: [Base]
    functions:
      - name: close
`)

	store := metadata.NewStore()
	require.NoError(t, New(nil).LoadDir(dir, store))

	resource, ok := store.Interface("com.example.Resource")
	require.True(t, ok)
	assert.Empty(t, resource.InheritedFunctions)
	require.Len(t, resource.Functions, 1)
	assert.Equal(t, "Unit", resource.Functions[0].ReturnType.String())
}

func TestLoadDirErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "invalid yaml",
			content: "package: [broken",
		},
		{
			name: "missing declaration name",
			content: `
package: com.example
interfaces:
  - functions:
      - name: ping
`,
		},
		{
			name: "malformed type expression",
			content: `
package: com.example
interfaces:
  - name: Broken
    functions:
      - name: ping
        returns: "suspend Int"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeDescription(t, dir, "bad.yaml", tt.content)

			err := New(nil).LoadDir(dir, metadata.NewStore())
			require.Error(t, err)
			var loadErr *fakerr.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Contains(t, loadErr.FilePath, "bad.yaml")
		})
	}
}

func TestLoadDirReportsEveryBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeDescription(t, dir, "first.yaml", "package: [broken")
	writeDescription(t, dir, "second.yaml", `
package: com.example
interfaces:
  - functions:
      - name: ping
`)

	err := New(nil).LoadDir(dir, metadata.NewStore())
	require.Error(t, err)
	var multi *fakerr.MultiError
	require.ErrorAs(t, err, &multi)
	require.Len(t, multi.Errors, 2)
	assert.Contains(t, multi.Errors[0].Error(), "first.yaml")
	assert.Contains(t, multi.Errors[1].Error(), "second.yaml")
}

func TestLoadDirEmptyDirectoryFails(t *testing.T) {
	err := New(nil).LoadDir(t.TempDir(), metadata.NewStore())
	require.Error(t, err)
}
