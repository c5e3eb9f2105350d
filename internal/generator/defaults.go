package generator

import (
	"strings"

	"martianoff/fakesmith/internal/metadata"
)

// primitiveDefaults maps each Kotlin primitive to its zero-ish literal.
var primitiveDefaults = map[string]string{
	"Int":     "0",
	"Long":    "0L",
	"Short":   "0",
	"Byte":    "0",
	"Float":   "0.0f",
	"Double":  "0.0",
	"Boolean": "false",
	"Char":    "' '",
	"String":  `""`,
	"Unit":    "Unit",
}

// collectionDefaults maps well-known collection shapes to their empty
// constructor. The rendered element types are appended explicitly so the
// expression stands alone in any inference context.
var collectionDefaults = map[string]string{
	"List":        "emptyList",
	"MutableList": "mutableListOf",
	"ArrayList":   "arrayListOf",
	"Set":         "emptySet",
	"MutableSet":  "mutableSetOf",
	"HashSet":     "hashSetOf",
	"Map":         "emptyMap",
	"MutableMap":  "mutableMapOf",
	"HashMap":     "hashMapOf",
	"Sequence":    "emptySequence",
	"Collection":  "emptyList",
	"Iterable":    "emptyList",
	"Array":       "emptyArray",
}

// defaultStrategy is one entry of the resolver's ordered chain.
type defaultStrategy struct {
	name     string
	supports func(t metadata.Type) bool
	valueFor func(t metadata.Type) string
}

// DefaultResolver synthesizes a safe Kotlin default expression for a type.
// Strategies are tried in declaration order; the first match wins, and an
// explicit fallback guarantees the resolver is total: when nothing applies
// it emits an expression that fails descriptively at the generated code's
// use site, never at generation time.
type DefaultResolver struct {
	store        *metadata.Store
	renderer     *Renderer
	ownerPackage string
	mode         RenderMode
	strategies   []defaultStrategy
	extraImports map[string]bool
}

// NewDefaultResolver builds a resolver for one member. The renderer
// supplies type text for messages and explicit type arguments; mode must
// match the mode the member's behavior slot was rendered in, so synthesized
// expressions type-check against the slot.
func NewDefaultResolver(store *metadata.Store, renderer *Renderer, ownerPackage string, mode RenderMode) *DefaultResolver {
	r := &DefaultResolver{
		store:        store,
		renderer:     renderer,
		ownerPackage: ownerPackage,
		mode:         mode,
		extraImports: make(map[string]bool),
	}
	r.strategies = []defaultStrategy{
		{name: "nullable", supports: r.isNullable, valueFor: r.nullLiteral},
		{name: "type-parameter", supports: r.isTypeParam, valueFor: r.typeParamValue},
		{name: "primitive", supports: r.isPrimitive, valueFor: r.primitiveValue},
		{name: "wrapper", supports: r.isWrapper, valueFor: r.wrapperValue},
		{name: "collection", supports: r.isCollection, valueFor: r.collectionValue},
		{name: "enum", supports: r.isEnum, valueFor: r.enumValue},
		{name: "function", supports: r.isFunction, valueFor: r.functionValue},
	}
	return r
}

// Resolve returns a default expression for t. Never fails: unresolvable
// shapes get a use-site failure expression.
func (r *DefaultResolver) Resolve(t metadata.Type) string {
	if t == nil {
		return "Unit"
	}
	for _, s := range r.strategies {
		if s.supports(t) {
			return s.valueFor(t)
		}
	}
	return r.fallback(t)
}

// StrategyNames returns the chain's priority order.
func (r *DefaultResolver) StrategyNames() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.name
	}
	return names
}

// ExtraImports lists imports required by emitted default expressions, such
// as the coroutines flow constructor.
func (r *DefaultResolver) ExtraImports() []string {
	out := make([]string, 0, len(r.extraImports))
	for imp := range r.extraImports {
		out = append(out, imp)
	}
	return out
}

// Nullable dominates every other strategy: any nullable shape defaults to
// the null literal regardless of its inner type.
func (r *DefaultResolver) isNullable(t metadata.Type) bool { return t.IsNullable() }

func (r *DefaultResolver) nullLiteral(metadata.Type) string { return "null" }

// A type-parameter reference defaults through its erasure: the sole bound
// when one exists, otherwise Any? and therefore null.
func (r *DefaultResolver) isTypeParam(t metadata.Type) bool {
	_, ok := t.(metadata.ParamType)
	return ok
}

func (r *DefaultResolver) typeParamValue(t metadata.Type) string {
	p := t.(metadata.ParamType)
	if r.mode != Erase || !r.renderer.erasable[p.Name] {
		// A preserved parameter has no synthesizable value of its own type.
		return r.fallback(t)
	}
	if bound := r.renderer.bounds[p.Name]; bound != nil {
		return r.Resolve(bound)
	}
	return "null"
}

func (r *DefaultResolver) isPrimitive(t metadata.Type) bool {
	b, ok := t.(metadata.BasicType)
	if !ok {
		return false
	}
	_, known := primitiveDefaults[b.Name]
	return known
}

func (r *DefaultResolver) primitiveValue(t metadata.Type) string {
	return primitiveDefaults[t.(metadata.BasicType).Name]
}

// Well-known parametrized wrappers resolve their argument(s) recursively
// and wrap minimally.
func (r *DefaultResolver) isWrapper(t metadata.Type) bool {
	g, ok := t.(metadata.GenericType)
	if !ok {
		return false
	}
	switch g.Name {
	case "StateFlow", "MutableStateFlow", "Result":
		return len(g.Args) == 1
	case "Pair":
		return len(g.Args) == 2
	case "Triple":
		return len(g.Args) == 3
	}
	return false
}

func (r *DefaultResolver) wrapperValue(t metadata.Type) string {
	g := t.(metadata.GenericType)
	switch g.Name {
	case "StateFlow", "MutableStateFlow":
		r.extraImports["kotlinx.coroutines.flow.MutableStateFlow"] = true
		return "MutableStateFlow(" + r.Resolve(g.Args[0]) + ")"
	case "Result":
		return "Result.success(" + r.Resolve(g.Args[0]) + ")"
	case "Pair":
		return "Pair(" + r.Resolve(g.Args[0]) + ", " + r.Resolve(g.Args[1]) + ")"
	case "Triple":
		return "Triple(" + r.Resolve(g.Args[0]) + ", " + r.Resolve(g.Args[1]) + ", " + r.Resolve(g.Args[2]) + ")"
	}
	return r.fallback(t)
}

func (r *DefaultResolver) isCollection(t metadata.Type) bool {
	g, ok := t.(metadata.GenericType)
	if !ok {
		return false
	}
	_, known := collectionDefaults[g.Name]
	return known
}

func (r *DefaultResolver) collectionValue(t metadata.Type) string {
	g := t.(metadata.GenericType)
	ctor := collectionDefaults[g.Name]
	args := make([]string, len(g.Args))
	for i, a := range g.Args {
		args[i] = r.renderer.Render(a, r.mode)
	}
	return ctor + "<" + strings.Join(args, ", ") + ">()"
}

func (r *DefaultResolver) isEnum(t metadata.Type) bool {
	n, ok := t.(metadata.NamedType)
	if !ok {
		return false
	}
	pkg := n.Package
	if pkg == "" {
		pkg = r.ownerPackage
	}
	_, found := r.store.EnumByName(n.Name, pkg)
	return found
}

func (r *DefaultResolver) enumValue(t metadata.Type) string {
	n := t.(metadata.NamedType)
	pkg := n.Package
	if pkg == "" {
		pkg = r.ownerPackage
	}
	e, _ := r.store.EnumByName(n.Name, pkg)
	if len(e.Entries) == 0 {
		return `error("Enum ` + e.Name + ` has no entries to default to. Configure this member explicitly.")`
	}
	return e.Name + "." + e.Entries[0]
}

// A function type defaults to a closure returning the return type's
// default, ignoring all parameters.
func (r *DefaultResolver) isFunction(t metadata.Type) bool {
	_, ok := t.(metadata.FuncType)
	return ok
}

func (r *DefaultResolver) functionValue(t metadata.Type) string {
	f := t.(metadata.FuncType)
	body := r.Resolve(f.Return)
	if len(f.Params) == 0 {
		return "{ " + body + " }"
	}
	blanks := make([]string, len(f.Params))
	for i := range blanks {
		blanks[i] = "_"
	}
	return "{ " + strings.Join(blanks, ", ") + " -> " + body + " }"
}

func (r *DefaultResolver) fallback(t metadata.Type) string {
	return `error("No default value for type ` + r.renderer.Render(t, r.mode) + `. Configure this member explicitly.")`
}
