package metadata

import (
	"strings"
)

// Type represents a structured Kotlin type shape.
type Type interface {
	String() string
	IsNullable() bool
	BaseName() string
	GetPackage() string // Returns the package qualifier of the type, or "" if none
}

// BasicType represents a Kotlin primitive/builtin type like Int, String, Boolean.
type BasicType struct {
	Name string
}

func (t BasicType) String() string     { return t.Name }
func (t BasicType) IsNullable() bool   { return false }
func (t BasicType) BaseName() string   { return t.Name }
func (t BasicType) GetPackage() string { return "" }

// NamedType represents a named class type, potentially package-qualified.
// Unresolved marks references whose declaration could not be found; they
// render with their last-known simple name and are skipped by import
// collection.
type NamedType struct {
	Package    string
	Name       string
	Unresolved bool
}

func (t NamedType) String() string {
	if t.Package != "" {
		return t.Package + "." + t.Name
	}
	return t.Name
}
func (t NamedType) IsNullable() bool   { return false }
func (t NamedType) BaseName() string   { return t.Name }
func (t NamedType) GetPackage() string { return t.Package }

// GenericType represents a parametrized type like List<User> or Map<String, Int>.
type GenericType struct {
	Package    string
	Name       string
	Args       []Type
	Unresolved bool
}

func (t GenericType) String() string {
	var sb strings.Builder
	if t.Package != "" {
		sb.WriteString(t.Package)
		sb.WriteByte('.')
	}
	sb.WriteString(t.Name)
	sb.WriteByte('<')
	for i, a := range t.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if a != nil {
			sb.WriteString(a.String())
		}
	}
	sb.WriteByte('>')
	return sb.String()
}
func (t GenericType) IsNullable() bool   { return false }
func (t GenericType) BaseName() string   { return t.Name }
func (t GenericType) GetPackage() string { return t.Package }

// ParamType represents a reference to a type parameter in scope, like T or R.
type ParamType struct {
	Name string
}

func (t ParamType) String() string     { return t.Name }
func (t ParamType) IsNullable() bool   { return false }
func (t ParamType) BaseName() string   { return t.Name }
func (t ParamType) GetPackage() string { return "" }

// FuncType represents a Kotlin function type like (String) -> User or
// suspend () -> Unit.
type FuncType struct {
	Params  []Type
	Return  Type
	Suspend bool
}

func (t FuncType) String() string {
	var sb strings.Builder
	if t.Suspend {
		sb.WriteString("suspend ")
	}
	sb.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p != nil {
			sb.WriteString(p.String())
		}
	}
	sb.WriteString(") -> ")
	if t.Return != nil {
		sb.WriteString(t.Return.String())
	}
	return sb.String()
}
func (t FuncType) IsNullable() bool   { return false }
func (t FuncType) BaseName() string   { return "Function" }
func (t FuncType) GetPackage() string { return "" }

// NullableType wraps another type with Kotlin nullability. Construct via
// Nullable to keep the no-double-wrapping invariant.
type NullableType struct {
	Inner Type
}

func (t NullableType) String() string {
	if _, ok := t.Inner.(FuncType); ok {
		return "(" + t.Inner.String() + ")?"
	}
	return t.Inner.String() + "?"
}
func (t NullableType) IsNullable() bool   { return true }
func (t NullableType) BaseName() string   { return t.Inner.BaseName() }
func (t NullableType) GetPackage() string { return t.Inner.GetPackage() }

// Nullable wraps inner with nullability. Wrapping an already nullable type
// returns it unchanged, so NullableType never nests.
func Nullable(inner Type) Type {
	if inner == nil {
		return nil
	}
	if inner.IsNullable() {
		return inner
	}
	return NullableType{Inner: inner}
}

// IsPrimitiveType checks if a type name is a Kotlin primitive/builtin type.
// Primitive types are never package-qualified and never imported.
func IsPrimitiveType(name string) bool {
	switch name {
	case "Int", "Long", "Short", "Byte",
		"Float", "Double",
		"Boolean", "Char", "String",
		"Unit", "Nothing", "Any":
		return true
	}
	return false
}

// ContainsParam reports whether t references any of the given type-parameter
// names, recursing through nullable wrappers, function types, and generic
// arguments.
func ContainsParam(t Type, names map[string]bool) bool {
	switch v := t.(type) {
	case ParamType:
		return names[v.Name]
	case NullableType:
		return ContainsParam(v.Inner, names)
	case FuncType:
		for _, p := range v.Params {
			if ContainsParam(p, names) {
				return true
			}
		}
		return ContainsParam(v.Return, names)
	case GenericType:
		for _, a := range v.Args {
			if ContainsParam(a, names) {
				return true
			}
		}
	}
	return false
}
