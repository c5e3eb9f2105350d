package generator

import (
	"martianoff/fakesmith/internal/metadata"
)

// PatternKind classifies where a declaration's type parameters live.
type PatternKind int

const (
	// NoGenerics means neither the declaration nor any function declares
	// type parameters.
	NoGenerics PatternKind = iota
	// ClassLevel means only the declaration itself is generic.
	ClassLevel
	// MethodLevel means only individual functions declare type parameters.
	MethodLevel
	// Mixed means both the declaration and at least one function are generic.
	Mixed
)

func (k PatternKind) String() string {
	switch k {
	case NoGenerics:
		return "NoGenerics"
	case ClassLevel:
		return "ClassLevel"
	case MethodLevel:
		return "MethodLevel"
	case Mixed:
		return "Mixed"
	}
	return "Unknown"
}

// GenericPattern is the classification result. It decides whether the fake
// class is itself generic and whether behavior-slot types must erase
// method-level type parameters.
type GenericPattern struct {
	Kind           PatternKind
	ClassParams    []string // names of declaration-level type parameters
	GenericMethods []string // names of functions declaring their own type parameters
}

// ClassGeneric reports whether the generated fake class carries type
// parameters.
func (p GenericPattern) ClassGeneric() bool {
	return p.Kind == ClassLevel || p.Kind == Mixed
}

// NeedsErasure reports whether any behavior slot must erase method-level
// type parameters, flagging the generated class for unchecked-cast
// suppression.
func (p GenericPattern) NeedsErasure() bool {
	return p.Kind == MethodLevel || p.Kind == Mixed
}

// Classify derives the generic pattern from a declaration's type parameters
// and its functions. Pure and total: every input maps to exactly one kind.
func Classify(classParams []metadata.TypeParameter, functions []metadata.Function) GenericPattern {
	p := GenericPattern{}
	for _, tp := range classParams {
		p.ClassParams = append(p.ClassParams, tp.Name)
	}
	for _, fn := range functions {
		if fn.HasTypeParameters() {
			p.GenericMethods = append(p.GenericMethods, fn.Name)
		}
	}

	switch {
	case len(p.ClassParams) == 0 && len(p.GenericMethods) == 0:
		p.Kind = NoGenerics
	case len(p.ClassParams) > 0 && len(p.GenericMethods) == 0:
		p.Kind = ClassLevel
	case len(p.ClassParams) == 0:
		p.Kind = MethodLevel
	default:
		p.Kind = Mixed
	}
	return p
}
