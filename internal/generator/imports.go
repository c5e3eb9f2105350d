package generator

import (
	"sort"
	"strings"

	"martianoff/fakesmith/internal/metadata"
)

// aliasNormalization rewrites platform-specific standard-library names to
// their portable Kotlin equivalents. Some targets silently resolve these
// types to JVM variants, which breaks builds sharing one generated file
// across multiplatform targets.
var aliasNormalization = map[string]string{
	"java.lang.String":     "kotlin.String",
	"java.lang.Integer":    "kotlin.Int",
	"java.lang.Long":       "kotlin.Long",
	"java.lang.Short":      "kotlin.Short",
	"java.lang.Byte":       "kotlin.Byte",
	"java.lang.Float":      "kotlin.Float",
	"java.lang.Double":     "kotlin.Double",
	"java.lang.Boolean":    "kotlin.Boolean",
	"java.lang.Character":  "kotlin.Char",
	"java.lang.Exception":  "kotlin.Exception",
	"java.util.List":       "kotlin.collections.List",
	"java.util.Set":        "kotlin.collections.Set",
	"java.util.Map":        "kotlin.collections.Map",
	"java.util.Collection": "kotlin.collections.Collection",
	"java.util.ArrayList":  "kotlin.collections.ArrayList",
	"java.util.HashMap":    "kotlin.collections.HashMap",
	"java.util.HashSet":    "kotlin.collections.HashSet",
}

// defaultImportPackages are auto-imported by every Kotlin file; references
// living there never need an import line.
var defaultImportPackages = map[string]bool{
	"kotlin":             true,
	"kotlin.annotation":  true,
	"kotlin.collections": true,
	"kotlin.comparisons": true,
	"kotlin.io":          true,
	"kotlin.ranges":      true,
	"kotlin.sequences":   true,
	"kotlin.text":        true,
}

// ImportCollector gathers the external type references of one declaration.
// Output is a deduplicated set; references flagged unresolved are skipped
// silently, as are primitives, same-package types, and default imports.
type ImportCollector struct {
	ownerPackage string
	refs         map[string]bool
}

// NewImportCollector creates a collector for a declaration in ownerPackage.
func NewImportCollector(ownerPackage string) *ImportCollector {
	return &ImportCollector{
		ownerPackage: ownerPackage,
		refs:         make(map[string]bool),
	}
}

// Walk records every external reference in t, recursing through nullable
// wrappers, function types, and nested generic arguments.
func (c *ImportCollector) Walk(t metadata.Type) {
	switch v := t.(type) {
	case metadata.NullableType:
		c.Walk(v.Inner)
	case metadata.FuncType:
		for _, p := range v.Params {
			c.Walk(p)
		}
		c.Walk(v.Return)
	case metadata.GenericType:
		if !v.Unresolved {
			c.add(v.Package, v.Name)
		}
		for _, a := range v.Args {
			c.Walk(a)
		}
	case metadata.NamedType:
		if !v.Unresolved {
			c.add(v.Package, v.Name)
		}
	}
}

// WalkFunction records the references of a function's full signature.
func (c *ImportCollector) WalkFunction(fn metadata.Function) {
	for _, tp := range fn.TypeParameters {
		for _, b := range tp.Bounds {
			c.Walk(b)
		}
	}
	for _, p := range fn.Parameters {
		c.Walk(p.Type)
	}
	c.Walk(fn.ReturnType)
}

// Add records a fully qualified name directly, normalizing it first. Used
// for imports required by generated scaffolding rather than member types.
func (c *ImportCollector) Add(qualifiedName string) {
	pkg, name := splitLastDot(qualifiedName)
	c.add(pkg, name)
}

func (c *ImportCollector) add(pkg, name string) {
	if pkg == "" || pkg == c.ownerPackage {
		return
	}
	qualified := pkg + "." + name
	if portable, ok := aliasNormalization[qualified]; ok {
		qualified = portable
		pkg, _ = splitLastDot(portable)
	}
	if defaultImportPackages[pkg] {
		return
	}
	c.refs[qualified] = true
}

// Result returns the collected set sorted for stable output.
func (c *ImportCollector) Result() []string {
	out := make([]string, 0, len(c.refs))
	for ref := range c.refs {
		out = append(out, ref)
	}
	sort.Strings(out)
	return out
}

func splitLastDot(s string) (string, string) {
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return "", s
}
