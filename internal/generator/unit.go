package generator

import (
	"strings"
)

// GeneratedUnit is the ready-to-write output for one declaration: the fake
// implementation class, the factory function, the configuration surface,
// and the import block. Physical file placement is the host writer's
// concern; a unit only knows its target package.
type GeneratedUnit struct {
	QualifiedName  string
	Name           string
	Package        string
	Imports        []string
	Implementation string
	Config         string
	Factory        string
}

// FileName returns the conventional file name for the unit.
func (u *GeneratedUnit) FileName() string {
	return "Fake" + u.Name + ".kt"
}

// Source assembles the complete Kotlin file text.
func (u *GeneratedUnit) Source() string {
	var sb strings.Builder
	sb.WriteString("// Code generated by fakesmith. DO NOT EDIT.\n")
	sb.WriteString("// Fake for " + u.QualifiedName + ".\n")
	sb.WriteString("package " + u.Package + "\n\n")
	for _, imp := range u.Imports {
		sb.WriteString("import " + imp + "\n")
	}
	if len(u.Imports) > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(u.Implementation)
	sb.WriteString("\n")
	sb.WriteString(u.Config)
	sb.WriteString("\n")
	sb.WriteString(u.Factory)
	return sb.String()
}
