package metadata

// TypeParameter describes a declared type parameter and its ordered upper
// bounds. An empty bound list means the parameter is unbounded.
type TypeParameter struct {
	Name   string
	Bounds []Type
}

// SoleBound returns the single declared upper bound, or nil when the
// parameter is unbounded or carries several bounds.
func (p TypeParameter) SoleBound() Type {
	if len(p.Bounds) == 1 {
		return p.Bounds[0]
	}
	return nil
}

// Property describes a declared or inherited property. Immutable once built.
type Property struct {
	Name    string
	Type    Type
	Mutable bool
}

// Parameter describes a single function parameter. DefaultText holds the
// source text of a safely renderable default value; it is empty both when
// the parameter has no default and when the default could not be rendered
// safely (HasDefault distinguishes the two).
type Parameter struct {
	Name        string
	Type        Type
	HasDefault  bool
	DefaultText string
	Vararg      bool
}

// Function describes a declared or inherited function, including its own
// type parameters for method-level generics.
type Function struct {
	Name           string
	Parameters     []Parameter
	ReturnType     Type
	Suspend        bool
	Inline         bool
	TypeParameters []TypeParameter
}

// HasTypeParameters reports whether the function declares its own generics.
func (f Function) HasTypeParameters() bool {
	return len(f.TypeParameters) > 0
}

// Interface is the structural metadata of an interface declaration.
// Declared and inherited member sets are disjoint by name; the loader
// de-duplicates with first occurrence winning.
type Interface struct {
	QualifiedName       string
	Name                string
	Package             string
	TypeParameters      []TypeParameter
	Properties          []Property
	Functions           []Function
	InheritedProperties []Property
	InheritedFunctions  []Function
	Source              string
}

// AllProperties returns declared then inherited properties.
func (i *Interface) AllProperties() []Property {
	out := make([]Property, 0, len(i.Properties)+len(i.InheritedProperties))
	out = append(out, i.Properties...)
	return append(out, i.InheritedProperties...)
}

// AllFunctions returns declared then inherited functions.
func (i *Interface) AllFunctions() []Function {
	out := make([]Function, 0, len(i.Functions)+len(i.InheritedFunctions))
	out = append(out, i.Functions...)
	return append(out, i.InheritedFunctions...)
}

// Class is the structural metadata of an open/abstract class declaration.
// Abstract members need explicit configuration in the generated fake; open
// members delegate to the superclass implementation until configured.
type Class struct {
	QualifiedName      string
	Name               string
	Package            string
	TypeParameters     []TypeParameter
	AbstractProperties []Property
	OpenProperties     []Property
	AbstractFunctions  []Function
	OpenFunctions      []Function
	Source             string
}

// AllProperties returns abstract then open properties.
func (c *Class) AllProperties() []Property {
	out := make([]Property, 0, len(c.AbstractProperties)+len(c.OpenProperties))
	out = append(out, c.AbstractProperties...)
	return append(out, c.OpenProperties...)
}

// AllFunctions returns abstract then open functions.
func (c *Class) AllFunctions() []Function {
	out := make([]Function, 0, len(c.AbstractFunctions)+len(c.OpenFunctions))
	out = append(out, c.AbstractFunctions...)
	return append(out, c.OpenFunctions...)
}

// Enum records an enumeration declaration and its ordered entries, used by
// default-value resolution to pick the first entry.
type Enum struct {
	QualifiedName string
	Name          string
	Package       string
	Entries       []string
}
