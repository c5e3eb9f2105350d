package generator

import (
	"strings"

	"martianoff/fakesmith/internal/metadata"
)

// RenderMode selects how type-parameter references are rendered.
type RenderMode int

const (
	// Preserve keeps type-parameter references as written.
	Preserve RenderMode = iota
	// Erase replaces erasable type-parameter references with their sole
	// declared bound, or Any? when unbounded or multiply bounded.
	Erase
)

// wellKnownContainers are parametrized types whose erased form keeps a
// concrete argument, because default-value synthesis needs an argument type
// to key on. Everything else erases to a star projection.
var wellKnownContainers = map[string]bool{
	"List":        true,
	"MutableList": true,
	"ArrayList":   true,
	"Set":         true,
	"MutableSet":  true,
	"HashSet":     true,
	"Map":         true,
	"MutableMap":  true,
	"HashMap":     true,
	"Sequence":    true,
	"Collection":  true,
	"Iterable":    true,
	"Array":       true,
}

// Renderer converts a structured type to Kotlin source text. It is total:
// every type renders in every mode, with unresolvable references falling
// back to their last-known simple name.
type Renderer struct {
	bounds   map[string]metadata.Type // sole bound per in-scope parameter, nil entry when not erasable to one
	erasable map[string]bool          // parameter names Erase mode may rewrite
}

// NewRenderer builds a renderer for a member's type-parameter scope.
// Parameters listed in erasable are the ones Erase mode rewrites; the rest
// render by name in both modes.
func NewRenderer(scope []metadata.TypeParameter, erasable []metadata.TypeParameter) *Renderer {
	r := &Renderer{
		bounds:   make(map[string]metadata.Type),
		erasable: make(map[string]bool),
	}
	for _, tp := range scope {
		r.bounds[tp.Name] = tp.SoleBound()
	}
	for _, tp := range erasable {
		r.bounds[tp.Name] = tp.SoleBound()
		r.erasable[tp.Name] = true
	}
	return r
}

// Render produces Kotlin source text for t in the given mode.
func (r *Renderer) Render(t metadata.Type, mode RenderMode) string {
	if t == nil {
		return "Unit"
	}
	if mode == Erase && !metadata.ContainsParam(t, r.erasable) {
		// Nothing to rewrite anywhere inside; preserved text is exact.
		mode = Preserve
	}

	switch v := t.(type) {
	case metadata.BasicType:
		return v.Name

	case metadata.NullableType:
		inner := r.Render(v.Inner, mode)
		if _, ok := v.Inner.(metadata.FuncType); ok {
			// A bare suffix would attach nullability to the return type.
			return "(" + inner + ")?"
		}
		if strings.HasSuffix(inner, "?") {
			// Erasure may already have produced a nullable form.
			return inner
		}
		return inner + "?"

	case metadata.ParamType:
		if mode == Erase && r.erasable[v.Name] {
			if bound := r.bounds[v.Name]; bound != nil {
				// A self-referential bound like T : Comparable<T> must not
				// recurse forever; inside its own bound the parameter
				// erases to Any?.
				r.bounds[v.Name] = nil
				out := r.Render(bound, mode)
				r.bounds[v.Name] = bound
				return out
			}
			return "Any?"
		}
		return v.Name

	case metadata.FuncType:
		var sb strings.Builder
		if v.Suspend {
			sb.WriteString("suspend ")
		}
		sb.WriteByte('(')
		for i, p := range v.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.Render(p, mode))
		}
		sb.WriteString(") -> ")
		sb.WriteString(r.Render(v.Return, mode))
		return sb.String()

	case metadata.GenericType:
		var sb strings.Builder
		sb.WriteString(v.Name)
		sb.WriteByte('<')
		star := mode == Erase && !wellKnownContainers[v.Name]
		for i, a := range v.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			if star {
				sb.WriteByte('*')
			} else {
				sb.WriteString(r.Render(a, mode))
			}
		}
		sb.WriteByte('>')
		return sb.String()

	case metadata.NamedType:
		return v.Name
	}
	return t.String()
}
