package loader

import (
	"strings"

	"martianoff/fakesmith/fakerr"
	"martianoff/fakesmith/internal/metadata"
)

// resolve turns parsed documents into store entries: parse type text,
// normalize defaults, qualify unqualified references against the loaded
// declaration set, then flatten interface inheritance.
func (l *Loader) resolve(docs []*parsedDocument, store *metadata.Store) error {
	idx := buildNameIndex(docs)

	type pendingInterface struct {
		iface   *metadata.Interface
		extends []string
	}
	var pending []pendingInterface

	for _, pd := range docs {
		pkg := pd.doc.Package
		for _, doc := range pd.doc.Interfaces {
			iface, err := l.convertInterface(pd.path, pkg, doc, idx)
			if err != nil {
				return err
			}
			store.PutInterface(iface)
			pending = append(pending, pendingInterface{iface: iface, extends: doc.Extends})
		}
		for _, doc := range pd.doc.Classes {
			cls, err := l.convertClass(pd.path, pkg, doc, idx)
			if err != nil {
				return err
			}
			store.PutClass(cls)
		}
		for _, doc := range pd.doc.Enums {
			store.PutEnum(&metadata.Enum{
				QualifiedName: pkg + "." + doc.Name,
				Name:          doc.Name,
				Package:       pkg,
				Entries:       doc.Entries,
			})
		}
	}

	// Inheritance runs after every declaration is registered so parents can
	// live in any file.
	flat := newFlattener(l, store, idx)
	for _, p := range pending {
		flat.add(p.iface, p.extends)
	}
	flat.flattenAll()
	return nil
}

// nameIndex maps a simple declaration name to the packages declaring it.
type nameIndex map[string][]string

func buildNameIndex(docs []*parsedDocument) nameIndex {
	idx := make(nameIndex)
	add := func(name, pkg string) {
		for _, existing := range idx[name] {
			if existing == pkg {
				return
			}
		}
		idx[name] = append(idx[name], pkg)
	}
	for _, pd := range docs {
		pkg := pd.doc.Package
		for _, i := range pd.doc.Interfaces {
			add(i.Name, pkg)
		}
		for _, c := range pd.doc.Classes {
			add(c.Name, pkg)
		}
		for _, e := range pd.doc.Enums {
			add(e.Name, pkg)
		}
	}
	return idx
}

// qualify resolves a simple name to a package: the owner package wins, then
// a unique match anywhere. Ambiguous or unknown names report no package.
func (idx nameIndex) qualify(name, ownerPackage string) (string, bool) {
	pkgs := idx[name]
	for _, p := range pkgs {
		if p == ownerPackage {
			return p, true
		}
	}
	if len(pkgs) == 1 {
		return pkgs[0], true
	}
	return "", false
}

// resolveType rewrites unqualified named references with the declaring
// package. References the loaded set does not know keep their simple name
// and are marked unresolved, which excludes them from imports.
func resolveType(t metadata.Type, idx nameIndex, ownerPackage string) metadata.Type {
	switch v := t.(type) {
	case metadata.NamedType:
		if v.Package == "" {
			if pkg, ok := idx.qualify(v.Name, ownerPackage); ok {
				v.Package = pkg
			} else {
				v.Unresolved = true
			}
		}
		return v
	case metadata.GenericType:
		for i, a := range v.Args {
			v.Args[i] = resolveType(a, idx, ownerPackage)
		}
		if v.Package == "" && !wellKnownGenericName(v.Name) {
			if pkg, ok := idx.qualify(v.Name, ownerPackage); ok {
				v.Package = pkg
			} else {
				v.Unresolved = true
			}
		}
		return v
	case metadata.NullableType:
		v.Inner = resolveType(v.Inner, idx, ownerPackage)
		return v
	case metadata.FuncType:
		for i, p := range v.Params {
			v.Params[i] = resolveType(p, idx, ownerPackage)
		}
		v.Return = resolveType(v.Return, idx, ownerPackage)
		return v
	default:
		return t
	}
}

// wellKnownGenericName covers containers and wrappers from the Kotlin
// default imports; they need neither qualification nor an import line.
func wellKnownGenericName(name string) bool {
	switch name {
	case "List", "MutableList", "ArrayList", "Set", "MutableSet", "HashSet",
		"Map", "MutableMap", "HashMap", "Sequence", "Collection", "Iterable",
		"Array", "Result", "Pair", "Triple", "Lazy":
		return true
	}
	return false
}

func (l *Loader) convertInterface(path, pkg string, doc interfaceDoc, idx nameIndex) (*metadata.Interface, error) {
	tps, scope, err := l.convertTypeParams(path, pkg, doc.TypeParameters, nil, idx)
	if err != nil {
		return nil, err
	}
	props, err := l.convertProperties(path, pkg, doc.Properties, scope, idx)
	if err != nil {
		return nil, err
	}
	fns, err := l.convertFunctions(path, pkg, doc.Functions, scope, idx)
	if err != nil {
		return nil, err
	}
	return &metadata.Interface{
		QualifiedName:  pkg + "." + doc.Name,
		Name:           doc.Name,
		Package:        pkg,
		TypeParameters: tps,
		Properties:     props,
		Functions:      fns,
		Source:         path,
	}, nil
}

func (l *Loader) convertClass(path, pkg string, doc classDoc, idx nameIndex) (*metadata.Class, error) {
	tps, scope, err := l.convertTypeParams(path, pkg, doc.TypeParameters, nil, idx)
	if err != nil {
		return nil, err
	}
	abstractProps, err := l.convertProperties(path, pkg, doc.AbstractProperties, scope, idx)
	if err != nil {
		return nil, err
	}
	openProps, err := l.convertProperties(path, pkg, doc.OpenProperties, scope, idx)
	if err != nil {
		return nil, err
	}
	abstractFns, err := l.convertFunctions(path, pkg, doc.AbstractFunctions, scope, idx)
	if err != nil {
		return nil, err
	}
	openFns, err := l.convertFunctions(path, pkg, doc.OpenFunctions, scope, idx)
	if err != nil {
		return nil, err
	}
	return &metadata.Class{
		QualifiedName:      pkg + "." + doc.Name,
		Name:               doc.Name,
		Package:            pkg,
		TypeParameters:     tps,
		AbstractProperties: abstractProps,
		OpenProperties:     openProps,
		AbstractFunctions:  abstractFns,
		OpenFunctions:      openFns,
		Source:             path,
	}, nil
}

// convertTypeParams parses a type-parameter list. The resulting scope
// includes the outer scope plus the new names; bounds may reference any
// name in that combined scope.
func (l *Loader) convertTypeParams(path, pkg string, docs []typeParamDoc, outer metadata.Scope, idx nameIndex) ([]metadata.TypeParameter, metadata.Scope, error) {
	scope := make(metadata.Scope, len(outer)+len(docs))
	for name := range outer {
		scope[name] = true
	}
	for _, d := range docs {
		scope[d.Name] = true
	}
	out := make([]metadata.TypeParameter, 0, len(docs))
	for _, d := range docs {
		p := metadata.TypeParameter{Name: d.Name}
		for _, text := range d.Bounds {
			b, err := metadata.ParseType(text, scope)
			if err != nil {
				return nil, nil, fakerr.NewLoadErrorInFile(path, "bound of "+d.Name+": "+err.Error())
			}
			p.Bounds = append(p.Bounds, resolveType(b, idx, pkg))
		}
		out = append(out, p)
	}
	return out, scope, nil
}

func (l *Loader) convertProperties(path, pkg string, docs []propertyDoc, scope metadata.Scope, idx nameIndex) ([]metadata.Property, error) {
	out := make([]metadata.Property, 0, len(docs))
	for _, d := range docs {
		typ, err := metadata.ParseType(d.Type, scope)
		if err != nil {
			return nil, fakerr.NewLoadErrorInFile(path, "property "+d.Name+": "+err.Error())
		}
		out = append(out, metadata.Property{
			Name:    d.Name,
			Type:    resolveType(typ, idx, pkg),
			Mutable: d.Mutable,
		})
	}
	return out, nil
}

func (l *Loader) convertFunctions(path, pkg string, docs []functionDoc, scope metadata.Scope, idx nameIndex) ([]metadata.Function, error) {
	out := make([]metadata.Function, 0, len(docs))
	for _, d := range docs {
		tps, fnScope, err := l.convertTypeParams(path, pkg, d.TypeParameters, scope, idx)
		if err != nil {
			return nil, err
		}
		fn := metadata.Function{
			Name:           d.Name,
			TypeParameters: tps,
			Suspend:        d.Suspend,
			Inline:         d.Inline,
		}
		for _, p := range d.Parameters {
			typ, err := metadata.ParseType(p.Type, fnScope)
			if err != nil {
				return nil, fakerr.NewLoadErrorInFile(path, "parameter "+p.Name+" of "+d.Name+": "+err.Error())
			}
			typ = resolveType(typ, idx, pkg)
			param := metadata.Parameter{
				Name:   p.Name,
				Type:   typ,
				Vararg: p.Vararg,
			}
			if p.Default != "" {
				param.HasDefault = true
				param.DefaultText = normalizeDefault(p.Default, typ)
			}
			fn.Parameters = append(fn.Parameters, param)
		}
		returns := strings.TrimSpace(d.Returns)
		if returns == "" {
			returns = "Unit"
		}
		ret, err := metadata.ParseType(returns, fnScope)
		if err != nil {
			return nil, fakerr.NewLoadErrorInFile(path, "return type of "+d.Name+": "+err.Error())
		}
		fn.ReturnType = resolveType(ret, idx, pkg)
		out = append(out, fn)
	}
	return out, nil
}
