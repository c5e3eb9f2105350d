package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/fakesmith/internal/metadata"
)

func parseT(t *testing.T, expr string, scope metadata.Scope) metadata.Type {
	t.Helper()
	typ, err := metadata.ParseType(expr, scope)
	require.NoError(t, err)
	return typ
}

func TestAssembleInterfaceFindById(t *testing.T) {
	store := metadata.NewStore()
	iface := &metadata.Interface{
		QualifiedName: "com.example.repo.UserRepository",
		Name:          "UserRepository",
		Package:       "com.example.repo",
		Functions: []metadata.Function{{
			Name: "findById",
			Parameters: []metadata.Parameter{{
				Name: "id",
				Type: metadata.BasicType{Name: "String"},
			}},
			ReturnType: metadata.Nullable(metadata.NamedType{Package: "com.example.model", Name: "User"}),
		}},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	assert.Equal(t, "FakeUserRepository.kt", unit.FileName())
	assert.Equal(t, []string{
		"com.example.model.User",
		"java.util.concurrent.atomic.AtomicInteger",
	}, unit.Imports)

	// The nullable return type defaults to the null literal.
	assert.Contains(t, unit.Implementation, "private var findByIdBehavior: (String) -> User? = { _ -> null }")
	assert.Contains(t, unit.Implementation, "val findByIdCallCount = AtomicInteger(0)")
	assert.Contains(t, unit.Implementation, "override fun findById(id: String): User? {")
	assert.Contains(t, unit.Implementation, "findByIdCallCount.incrementAndGet()")
	assert.Contains(t, unit.Implementation, "return findByIdBehavior(id)")
	assert.NotContains(t, unit.Implementation, "@Suppress")

	assert.Contains(t, unit.Config, "class FakeUserRepositoryConfig internal constructor(private val fake: FakeUserRepository)")
	assert.Contains(t, unit.Config, "fun findById(behavior: (String) -> User?) = fake.onFindById(behavior)")

	assert.Contains(t, unit.Factory, "fun fakeUserRepository(configure: FakeUserRepositoryConfig.() -> Unit = {}): FakeUserRepository {")
	assert.Contains(t, unit.Factory, "val fake = FakeUserRepository()")

	source := unit.Source()
	assert.True(t, strings.HasPrefix(source, "// Code generated by fakesmith. DO NOT EDIT.\n"))
	assert.Contains(t, source, "package com.example.repo\n")
	assert.Contains(t, source, "import com.example.model.User\n")
}

func TestAssembleClassLevelGeneric(t *testing.T) {
	store := metadata.NewStore()
	scope := metadata.Scope{"T": true}
	iface := &metadata.Interface{
		QualifiedName:  "com.example.Store",
		Name:           "Store",
		Package:        "com.example",
		TypeParameters: []metadata.TypeParameter{{Name: "T"}},
		Functions: []metadata.Function{{
			Name: "save",
			Parameters: []metadata.Parameter{{
				Name: "item",
				Type: parseT(t, "T", scope),
			}},
			ReturnType: parseT(t, "T", scope),
		}},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	// The implementation class itself is generic; the slot preserves T.
	assert.Contains(t, unit.Implementation, "class FakeStore<T> : Store<T> {")
	assert.Contains(t, unit.Implementation, "private var saveBehavior: (T) -> T = { _ -> error(\"No default value for type T. Configure this member explicitly.\") }")
	assert.Contains(t, unit.Implementation, "override fun save(item: T): T {")
	assert.Contains(t, unit.Implementation, "return saveBehavior(item)")
	assert.NotContains(t, unit.Implementation, "@Suppress")

	assert.Contains(t, unit.Config, "class FakeStoreConfig<T> internal constructor(private val fake: FakeStore<T>)")
	assert.Contains(t, unit.Factory, "fun <T> fakeStore(configure: FakeStoreConfig<T>.() -> Unit = {}): FakeStore<T> {")
	assert.Contains(t, unit.Factory, "val fake = FakeStore<T>()")
}

func TestAssembleMixedGenericsErasesMethodParameters(t *testing.T) {
	store := metadata.NewStore()
	scope := metadata.Scope{"T": true, "R": true}
	iface := &metadata.Interface{
		QualifiedName:  "com.example.Container",
		Name:           "Container",
		Package:        "com.example",
		TypeParameters: []metadata.TypeParameter{{Name: "T"}},
		Functions: []metadata.Function{{
			Name:           "map",
			TypeParameters: []metadata.TypeParameter{{Name: "R"}},
			Parameters: []metadata.Parameter{{
				Name: "transform",
				Type: parseT(t, "(T) -> R", scope),
			}},
			ReturnType: parseT(t, "List<R>", scope),
		}},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	// R is erased in the slot, T stays preserved at the class signature.
	assert.Contains(t, unit.Implementation, "@Suppress(\"UNCHECKED_CAST\")")
	assert.Contains(t, unit.Implementation, "class FakeContainer<T> : Container<T> {")
	assert.Contains(t, unit.Implementation, "private var mapBehavior: ((T) -> Any?) -> List<Any?> = { _ -> emptyList<Any?>() }")
	assert.Contains(t, unit.Implementation, "override fun <R> map(transform: (T) -> R): List<R> {")
	assert.Contains(t, unit.Implementation, "return mapBehavior(transform as (T) -> Any?) as List<R>")
}

func TestAssembleMethodGenericWithBound(t *testing.T) {
	store := metadata.NewStore()
	scope := metadata.Scope{"N": true}
	iface := &metadata.Interface{
		QualifiedName: "com.example.Sums",
		Name:          "Sums",
		Package:       "com.example",
		Functions: []metadata.Function{{
			Name: "total",
			TypeParameters: []metadata.TypeParameter{{
				Name:   "N",
				Bounds: []metadata.Type{metadata.NamedType{Name: "Number"}},
			}},
			Parameters: []metadata.Parameter{{
				Name: "values",
				Type: parseT(t, "List<N>", scope),
			}},
			ReturnType: parseT(t, "N", scope),
		}},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	// N erases to its sole bound inside the slot.
	assert.Contains(t, unit.Implementation, "private var totalBehavior: (List<Number>) -> Number")
	assert.Contains(t, unit.Implementation, "override fun <N : Number> total(values: List<N>): N {")
	assert.Contains(t, unit.Implementation, "return totalBehavior(values as List<Number>) as N")
}

func TestAssembleVararg(t *testing.T) {
	store := metadata.NewStore()
	iface := &metadata.Interface{
		QualifiedName: "com.example.Logger",
		Name:          "Logger",
		Package:       "com.example",
		Functions: []metadata.Function{{
			Name: "log",
			Parameters: []metadata.Parameter{{
				Name:   "messages",
				Type:   metadata.BasicType{Name: "String"},
				Vararg: true,
			}},
			ReturnType: metadata.BasicType{Name: "Unit"},
		}},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	// The slot receives the vararg as its array aggregate.
	assert.Contains(t, unit.Implementation, "private var logBehavior: (Array<out String>) -> Unit")
	assert.Contains(t, unit.Implementation, "override fun log(vararg messages: String) {")
	assert.Contains(t, unit.Implementation, "logBehavior(messages)")
	assert.NotContains(t, unit.Implementation, "return logBehavior")
}

func TestAssembleSuspendFunction(t *testing.T) {
	store := metadata.NewStore()
	iface := &metadata.Interface{
		QualifiedName: "com.example.Fetcher",
		Name:          "Fetcher",
		Package:       "com.example",
		Functions: []metadata.Function{{
			Name:       "fetch",
			Suspend:    true,
			Parameters: []metadata.Parameter{{Name: "id", Type: metadata.BasicType{Name: "Long"}}},
			ReturnType: metadata.Nullable(metadata.NamedType{Package: "com.example.model", Name: "Doc"}),
		}},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	assert.Contains(t, unit.Implementation, "private var fetchBehavior: suspend (Long) -> Doc? = { _ -> null }")
	assert.Contains(t, unit.Implementation, "override suspend fun fetch(id: Long): Doc? {")
}

func TestAssembleProperties(t *testing.T) {
	store := metadata.NewStore()
	iface := &metadata.Interface{
		QualifiedName: "com.example.Session",
		Name:          "Session",
		Package:       "com.example",
		Properties: []metadata.Property{
			{Name: "token", Type: metadata.BasicType{Name: "String"}},
			{Name: "retries", Type: metadata.BasicType{Name: "Int"}, Mutable: true},
		},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	assert.Contains(t, unit.Implementation, `private var tokenBehavior: () -> String = { "" }`)
	assert.Contains(t, unit.Implementation, "val tokenGetCallCount = AtomicInteger(0)")
	assert.Contains(t, unit.Implementation, "override val token: String")
	assert.Contains(t, unit.Implementation, "return tokenBehavior()")

	assert.Contains(t, unit.Implementation, "private var retriesSetBehavior: (Int) -> Unit = { _ -> Unit }")
	assert.Contains(t, unit.Implementation, "override var retries: Int")
	assert.Contains(t, unit.Implementation, "set(value) {")
	assert.Contains(t, unit.Implementation, "retriesSetCallCount.incrementAndGet()")
	assert.Contains(t, unit.Implementation, "retriesSetBehavior(value)")

	assert.Contains(t, unit.Config, "fun token(behavior: () -> String) = fake.onToken(behavior)")
	assert.Contains(t, unit.Config, "fun retriesSet(behavior: (Int) -> Unit) = fake.onRetriesSet(behavior)")
}

func TestAssembleClassAbstractAndOpenMembers(t *testing.T) {
	store := metadata.NewStore()
	cls := &metadata.Class{
		QualifiedName: "com.example.BaseService",
		Name:          "BaseService",
		Package:       "com.example",
		AbstractFunctions: []metadata.Function{{
			Name:       "handle",
			Parameters: []metadata.Parameter{{Name: "event", Type: metadata.BasicType{Name: "String"}}},
			ReturnType: metadata.BasicType{Name: "Boolean"},
		}},
		OpenFunctions: []metadata.Function{{
			Name:       "greet",
			Parameters: []metadata.Parameter{{Name: "name", Type: metadata.BasicType{Name: "String"}}},
			ReturnType: metadata.BasicType{Name: "String"},
		}},
	}

	unit := NewAssembler(store).AssembleClass(cls)

	// The superclass is extended with a constructor call.
	assert.Contains(t, unit.Implementation, "class FakeBaseService : BaseService() {")

	// Abstract members fail loudly until configured.
	assert.Contains(t, unit.Implementation, `private var handleBehavior: (String) -> Boolean = { _ -> error("Abstract member handle is not configured on FakeBaseService. Configure it before use.") }`)

	// Open members delegate to the superclass until configured.
	assert.Contains(t, unit.Implementation, "private var greetBehavior: ((String) -> String)? = null")
	assert.Contains(t, unit.Implementation, "val behavior = greetBehavior")
	assert.Contains(t, unit.Implementation, "return if (behavior != null) behavior(name) else super.greet(name)")
}

func TestAssembleClassOpenProperty(t *testing.T) {
	store := metadata.NewStore()
	cls := &metadata.Class{
		QualifiedName: "com.example.Widget",
		Name:          "Widget",
		Package:       "com.example",
		OpenProperties: []metadata.Property{{
			Name:    "label",
			Type:    metadata.BasicType{Name: "String"},
			Mutable: true,
		}},
	}

	unit := NewAssembler(store).AssembleClass(cls)

	assert.Contains(t, unit.Implementation, "private var labelBehavior: (() -> String)? = null")
	assert.Contains(t, unit.Implementation, "return if (behavior != null) behavior() else super.label")
	assert.Contains(t, unit.Implementation, "if (behavior != null) behavior(value) else super.label = value")
}

func TestAssembleOpenVarargSpreadsOnSuperCall(t *testing.T) {
	store := metadata.NewStore()
	cls := &metadata.Class{
		QualifiedName: "com.example.Sink",
		Name:          "Sink",
		Package:       "com.example",
		OpenFunctions: []metadata.Function{{
			Name: "emit",
			Parameters: []metadata.Parameter{{
				Name:   "values",
				Type:   metadata.BasicType{Name: "Int"},
				Vararg: true,
			}},
			ReturnType: metadata.BasicType{Name: "Unit"},
		}},
	}

	unit := NewAssembler(store).AssembleClass(cls)

	assert.Contains(t, unit.Implementation, "else super.emit(*values)")
}

func TestAssembleMultipleBoundsUseWhereClause(t *testing.T) {
	store := metadata.NewStore()
	iface := &metadata.Interface{
		QualifiedName: "com.example.Ordered",
		Name:          "Ordered",
		Package:       "com.example",
		TypeParameters: []metadata.TypeParameter{{
			Name: "T",
			Bounds: []metadata.Type{
				metadata.NamedType{Name: "Comparable"},
				metadata.NamedType{Name: "Cloneable"},
			},
		}},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	assert.Contains(t, unit.Implementation, "class FakeOrdered<T> : Ordered<T> where T : Comparable, T : Cloneable {")
	assert.Contains(t, unit.Factory, "where T : Comparable, T : Cloneable {")
}

func TestAssembleStateFlowPropertyAddsImport(t *testing.T) {
	store := metadata.NewStore()
	iface := &metadata.Interface{
		QualifiedName: "com.example.Ticker",
		Name:          "Ticker",
		Package:       "com.example",
		Properties: []metadata.Property{{
			Name: "count",
			Type: metadata.GenericType{
				Package: "kotlinx.coroutines.flow",
				Name:    "StateFlow",
				Args:    []metadata.Type{metadata.BasicType{Name: "Int"}},
			},
		}},
	}

	unit := NewAssembler(store).AssembleInterface(iface)

	assert.Contains(t, unit.Implementation, "{ MutableStateFlow(0) }")
	assert.Contains(t, unit.Imports, "kotlinx.coroutines.flow.MutableStateFlow")
	assert.Contains(t, unit.Imports, "kotlinx.coroutines.flow.StateFlow")
}
