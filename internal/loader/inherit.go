package loader

import (
	"strings"

	"martianoff/fakesmith/internal/metadata"
)

// flattener resolves transitive interface inheritance: every interface ends
// up with the full member set it obligates an implementor to, split into own
// and inherited members. Supertype type arguments are substituted into the
// inherited members, so "StringBox : Box<String>" inherits "get(): String",
// not "get(): T". Members are deduplicated by name with the first occurrence
// winning; own members shadow inherited ones, and earlier supertypes shadow
// later ones.
type flattener struct {
	loader  *Loader
	store   *metadata.Store
	idx     nameIndex
	extends map[string][]superRef
	done    map[string]bool
	active  map[string]bool
}

// superRef is one declared supertype: the qualified interface name plus the
// type arguments applied at the extension site, parsed in the extending
// interface's type-parameter scope.
type superRef struct {
	qualified string
	args      []metadata.Type
}

func newFlattener(l *Loader, store *metadata.Store, idx nameIndex) *flattener {
	return &flattener{
		loader:  l,
		store:   store,
		idx:     idx,
		extends: make(map[string][]superRef),
		done:    make(map[string]bool),
		active:  make(map[string]bool),
	}
}

// add registers an interface's declared supertypes for a later flatten pass.
// Supertype references may be simple or qualified and may carry type
// arguments referencing the extending interface's own type parameters.
func (f *flattener) add(iface *metadata.Interface, extends []string) {
	scope := metadata.NewScope(iface.TypeParameters)
	var refs []superRef
	for _, text := range extends {
		parsed, err := metadata.ParseType(text, scope)
		if err != nil {
			f.loader.logger.Warn("unparsable supertype reference skipped",
				"declaration", iface.QualifiedName, "supertype", text, "error", err)
			continue
		}
		ref := superRef{}
		switch v := parsed.(type) {
		case metadata.GenericType:
			for i, a := range v.Args {
				v.Args[i] = resolveType(a, f.idx, iface.Package)
			}
			ref.qualified = qualifySuper(v.Package, v.Name, iface.Package, f.idx)
			ref.args = v.Args
		case metadata.NamedType:
			ref.qualified = qualifySuper(v.Package, v.Name, iface.Package, f.idx)
		case metadata.BasicType:
			ref.qualified = qualifySuper("", v.Name, iface.Package, f.idx)
		default:
			f.loader.logger.Warn("unsupported supertype reference skipped",
				"declaration", iface.QualifiedName, "supertype", text)
			continue
		}
		refs = append(refs, ref)
	}
	f.extends[iface.QualifiedName] = refs
}

func qualifySuper(pkg, name, ownerPackage string, idx nameIndex) string {
	if pkg != "" {
		return pkg + "." + name
	}
	if p, ok := idx.qualify(name, ownerPackage); ok {
		return p + "." + name
	}
	return name
}

// flattenAll processes every registered interface.
func (f *flattener) flattenAll() {
	for qn := range f.extends {
		f.flatten(qn)
	}
}

// flatten fills in the inherited member lists of one interface, flattening
// its supertypes first. The active set breaks inheritance cycles; a member
// reachable through several paths, as in a diamond, is collected once.
func (f *flattener) flatten(qn string) {
	if f.done[qn] || f.active[qn] {
		if f.active[qn] {
			f.loader.logger.Warn("inheritance cycle detected", "declaration", qn)
		}
		return
	}
	iface, ok := f.store.Interface(qn)
	if !ok {
		return
	}
	f.active[qn] = true
	defer delete(f.active, qn)

	seenProps := make(map[string]metadata.Property)
	seenFns := make(map[string]metadata.Function)
	for _, p := range iface.Properties {
		seenProps[p.Name] = p
	}
	for _, fn := range iface.Functions {
		seenFns[fn.Name] = fn
	}

	for _, ref := range f.extends[qn] {
		parent, ok := f.store.Interface(ref.qualified)
		if !ok {
			f.loader.logger.Warn("unknown supertype skipped",
				"declaration", qn, "supertype", ref.qualified)
			continue
		}
		f.flatten(ref.qualified)
		subst := f.substitution(qn, parent, ref.args)

		for _, p := range parent.AllProperties() {
			p = substituteProperty(p, subst)
			if prev, dup := seenProps[p.Name]; dup {
				if propertySignature(prev) != propertySignature(p) {
					f.loader.logger.Warn("dropping inherited property with conflicting signature",
						"declaration", qn, "member", p.Name,
						"kept", propertySignature(prev), "dropped", propertySignature(p))
				}
				continue
			}
			seenProps[p.Name] = p
			iface.InheritedProperties = append(iface.InheritedProperties, p)
		}
		for _, fn := range parent.AllFunctions() {
			fn = substituteFunction(fn, subst)
			if prev, dup := seenFns[fn.Name]; dup {
				if functionSignature(prev) != functionSignature(fn) {
					f.loader.logger.Warn("dropping inherited function with conflicting signature",
						"declaration", qn, "member", fn.Name,
						"kept", functionSignature(prev), "dropped", functionSignature(fn))
				}
				continue
			}
			seenFns[fn.Name] = fn
			iface.InheritedFunctions = append(iface.InheritedFunctions, fn)
		}
	}
	f.done[qn] = true
}

// substitution maps a parent's type parameters to the arguments the child
// applied at the extension site. Arity mismatches substitute the shared
// prefix and warn; a bare reference to a generic supertype warns, since the
// inherited members would keep an unbound parameter.
func (f *flattener) substitution(qn string, parent *metadata.Interface, args []metadata.Type) map[string]metadata.Type {
	if len(parent.TypeParameters) == 0 {
		return nil
	}
	if len(args) == 0 {
		f.loader.logger.Warn("generic supertype extended without type arguments",
			"declaration", qn, "supertype", parent.QualifiedName)
		return nil
	}
	if len(args) != len(parent.TypeParameters) {
		f.loader.logger.Warn("supertype type argument count mismatch",
			"declaration", qn, "supertype", parent.QualifiedName,
			"want", len(parent.TypeParameters), "got", len(args))
	}
	subst := make(map[string]metadata.Type, len(args))
	for i, tp := range parent.TypeParameters {
		if i < len(args) {
			subst[tp.Name] = args[i]
		}
	}
	return subst
}

// substituteType replaces type-parameter references per subst, recursing
// through the composite variants.
func substituteType(t metadata.Type, subst map[string]metadata.Type) metadata.Type {
	if len(subst) == 0 {
		return t
	}
	switch v := t.(type) {
	case metadata.ParamType:
		if repl, ok := subst[v.Name]; ok {
			return repl
		}
		return v
	case metadata.NullableType:
		return metadata.Nullable(substituteType(v.Inner, subst))
	case metadata.FuncType:
		params := make([]metadata.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = substituteType(p, subst)
		}
		return metadata.FuncType{Params: params, Return: substituteType(v.Return, subst), Suspend: v.Suspend}
	case metadata.GenericType:
		args := make([]metadata.Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = substituteType(a, subst)
		}
		v.Args = args
		return v
	default:
		return t
	}
}

func substituteProperty(p metadata.Property, subst map[string]metadata.Type) metadata.Property {
	p.Type = substituteType(p.Type, subst)
	return p
}

// substituteFunction rewrites a function's types. The function's own type
// parameters shadow same-named parent parameters and stay intact.
func substituteFunction(fn metadata.Function, subst map[string]metadata.Type) metadata.Function {
	if len(subst) == 0 {
		return fn
	}
	if fn.HasTypeParameters() {
		reduced := make(map[string]metadata.Type, len(subst))
		for name, t := range subst {
			reduced[name] = t
		}
		for _, tp := range fn.TypeParameters {
			delete(reduced, tp.Name)
		}
		subst = reduced

		tps := make([]metadata.TypeParameter, len(fn.TypeParameters))
		for i, tp := range fn.TypeParameters {
			bounds := make([]metadata.Type, len(tp.Bounds))
			for j, b := range tp.Bounds {
				bounds[j] = substituteType(b, subst)
			}
			tps[i] = metadata.TypeParameter{Name: tp.Name, Bounds: bounds}
		}
		fn.TypeParameters = tps
	}
	params := make([]metadata.Parameter, len(fn.Parameters))
	for i, p := range fn.Parameters {
		p.Type = substituteType(p.Type, subst)
		params[i] = p
	}
	fn.Parameters = params
	fn.ReturnType = substituteType(fn.ReturnType, subst)
	return fn
}

func propertySignature(p metadata.Property) string {
	kind := "val"
	if p.Mutable {
		kind = "var"
	}
	return kind + " " + p.Name + ": " + p.Type.String()
}

func functionSignature(fn metadata.Function) string {
	var sb strings.Builder
	if fn.Suspend {
		sb.WriteString("suspend ")
	}
	sb.WriteString("fun ")
	sb.WriteString(fn.Name)
	sb.WriteString("(")
	for i, p := range fn.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Vararg {
			sb.WriteString("vararg ")
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteString("): ")
	sb.WriteString(fn.ReturnType.String())
	return sb.String()
}
