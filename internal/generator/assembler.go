// Package generator turns structural declaration metadata into Kotlin fake
// source text: a fake implementation class with per-member behavior slots
// and invocation counters, a configuration class, and a factory function.
package generator

import (
	"strings"

	"martianoff/fakesmith/internal/metadata"
)

const atomicCounterImport = "java.util.concurrent.atomic.AtomicInteger"

// Assembler builds GeneratedUnits from declaration metadata. Safe for
// concurrent use across declarations; all per-declaration state lives in
// the build context.
type Assembler struct {
	store *metadata.Store
}

// NewAssembler creates an assembler backed by the given declaration store.
func NewAssembler(store *metadata.Store) *Assembler {
	return &Assembler{store: store}
}

// build carries the state of one declaration's assembly.
type build struct {
	store        *metadata.Store
	fakeName     string
	configName   string
	pkg          string
	pattern      GenericPattern
	classParams  []metadata.TypeParameter
	imports      *ImportCollector
	impl         strings.Builder
	config       strings.Builder
	erasureCasts bool
}

// AssembleInterface generates the fake for an interface declaration. Every
// member gets a resolver-synthesized safe default.
func (a *Assembler) AssembleInterface(iface *metadata.Interface) *GeneratedUnit {
	pattern := Classify(iface.TypeParameters, iface.AllFunctions())
	b := a.newBuild(iface.Name, iface.Package, iface.TypeParameters, pattern)

	for _, prop := range iface.AllProperties() {
		b.property(prop, memberDefaulted)
	}
	for _, fn := range iface.AllFunctions() {
		b.function(fn, memberDefaulted)
	}

	return b.finish(iface.QualifiedName, iface.Name, superInterface)
}

// AssembleClass generates the fake for a class declaration. Abstract
// members fail loudly until configured; open members delegate to the
// superclass implementation until configured.
func (a *Assembler) AssembleClass(cls *metadata.Class) *GeneratedUnit {
	pattern := Classify(cls.TypeParameters, cls.AllFunctions())
	b := a.newBuild(cls.Name, cls.Package, cls.TypeParameters, pattern)

	for _, prop := range cls.AbstractProperties {
		b.property(prop, memberAbstract)
	}
	for _, prop := range cls.OpenProperties {
		b.property(prop, memberOpen)
	}
	for _, fn := range cls.AbstractFunctions {
		b.function(fn, memberAbstract)
	}
	for _, fn := range cls.OpenFunctions {
		b.function(fn, memberOpen)
	}

	return b.finish(cls.QualifiedName, cls.Name, superClass)
}

func (a *Assembler) newBuild(name, pkg string, classParams []metadata.TypeParameter, pattern GenericPattern) *build {
	b := &build{
		store:       a.store,
		fakeName:    "Fake" + name,
		configName:  "Fake" + name + "Config",
		pkg:         pkg,
		pattern:     pattern,
		classParams: classParams,
		imports:     NewImportCollector(pkg),
	}
	b.imports.Add(atomicCounterImport)
	for _, tp := range classParams {
		for _, bound := range tp.Bounds {
			b.imports.Walk(bound)
		}
	}
	return b
}

// memberKind selects the unconfigured behavior of a member.
type memberKind int

const (
	// memberDefaulted gets a resolver-synthesized safe default.
	memberDefaulted memberKind = iota
	// memberAbstract fails descriptively until configured.
	memberAbstract
	// memberOpen delegates to the superclass until configured.
	memberOpen
)

type superKind int

const (
	superInterface superKind = iota
	superClass
)

// typeParamDecl renders "<T : Bound, R>" plus a trailing where-clause for
// multiply bounded parameters. Either part may be empty.
func typeParamDecl(params []metadata.TypeParameter, r *Renderer) (decl, where string) {
	if len(params) == 0 {
		return "", ""
	}
	var names []string
	var wheres []string
	for _, tp := range params {
		switch len(tp.Bounds) {
		case 0:
			names = append(names, tp.Name)
		case 1:
			names = append(names, tp.Name+" : "+r.Render(tp.Bounds[0], Preserve))
		default:
			names = append(names, tp.Name)
			for _, bound := range tp.Bounds {
				wheres = append(wheres, tp.Name+" : "+r.Render(bound, Preserve))
			}
		}
	}
	decl = "<" + strings.Join(names, ", ") + ">"
	if len(wheres) > 0 {
		where = " where " + strings.Join(wheres, ", ")
	}
	return decl, where
}

// typeParamArgs renders "<T, R>" for a use site.
func typeParamArgs(params []metadata.TypeParameter) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, tp := range params {
		names[i] = tp.Name
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// property emits the behavior slot(s), counter(s), override, and
// configuration hooks for one property. Properties never declare their own
// type parameters, so slot types are always preserved.
func (b *build) property(prop metadata.Property, kind memberKind) {
	b.imports.Walk(prop.Type)

	renderer := NewRenderer(b.classParams, nil)
	resolver := NewDefaultResolver(b.store, renderer, b.pkg, Preserve)

	typeText := renderer.Render(prop.Type, Preserve)
	getterSlotType := "() -> " + typeText
	setterSlotType := "(" + typeText + ") -> Unit"

	slot := prop.Name + "Behavior"
	setSlot := prop.Name + "SetBehavior"
	getCount := prop.Name + "GetCallCount"
	setCount := prop.Name + "SetCallCount"

	switch kind {
	case memberOpen:
		b.implLine("    private var " + slot + ": (" + getterSlotType + ")? = null")
	case memberAbstract:
		b.implLine("    private var " + slot + ": " + getterSlotType + " = { " + b.abstractFailure(prop.Name) + " }")
	default:
		b.implLine("    private var " + slot + ": " + getterSlotType + " = { " + resolver.Resolve(prop.Type) + " }")
	}
	b.implLine("    val " + getCount + " = AtomicInteger(0)")
	if prop.Mutable {
		switch kind {
		case memberOpen:
			b.implLine("    private var " + setSlot + ": (" + setterSlotType + ")? = null")
		case memberAbstract:
			b.implLine("    private var " + setSlot + ": " + setterSlotType + " = { _ -> " + b.abstractFailure(prop.Name) + " }")
		default:
			b.implLine("    private var " + setSlot + ": " + setterSlotType + " = { _ -> Unit }")
		}
		b.implLine("    val " + setCount + " = AtomicInteger(0)")
	}
	b.implLine("")

	keyword := "val"
	if prop.Mutable {
		keyword = "var"
	}
	b.implLine("    override " + keyword + " " + prop.Name + ": " + typeText)
	b.implLine("        get() {")
	b.implLine("            " + getCount + ".incrementAndGet()")
	if kind == memberOpen {
		b.implLine("            val behavior = " + slot)
		b.implLine("            return if (behavior != null) behavior() else super." + prop.Name)
	} else {
		b.implLine("            return " + slot + "()")
	}
	b.implLine("        }")
	if prop.Mutable {
		b.implLine("        set(value) {")
		b.implLine("            " + setCount + ".incrementAndGet()")
		if kind == memberOpen {
			b.implLine("            val behavior = " + setSlot)
			b.implLine("            if (behavior != null) behavior(value) else super." + prop.Name + " = value")
		} else {
			b.implLine("            " + setSlot + "(value)")
		}
		b.implLine("        }")
	}
	b.implLine("")

	hook := "on" + capitalize(prop.Name)
	b.implLine("    fun " + hook + "(behavior: " + getterSlotType + ") {")
	b.implLine("        " + slot + " = behavior")
	b.implLine("    }")
	b.implLine("")
	b.configLine("    fun " + prop.Name + "(behavior: " + getterSlotType + ") = fake." + hook + "(behavior)")
	if prop.Mutable {
		setHook := hook + "Set"
		b.implLine("    fun " + setHook + "(behavior: " + setterSlotType + ") {")
		b.implLine("        " + setSlot + " = behavior")
		b.implLine("    }")
		b.implLine("")
		b.configLine("    fun " + prop.Name + "Set(behavior: " + setterSlotType + ") = fake." + setHook + "(behavior)")
	}

	b.mergeResolverImports(resolver)
}

// function emits the behavior slot, counter, override, and configuration
// hooks for one function. Method-level type parameters cannot appear in a
// class-level slot, so they erase to their bound (or Any?) with
// unchecked-cast flags at the call site.
func (b *build) function(fn metadata.Function, kind memberKind) {
	b.imports.WalkFunction(fn)

	renderer := NewRenderer(b.classParams, fn.TypeParameters)
	slotMode := Preserve
	if fn.HasTypeParameters() {
		slotMode = Erase
	}
	resolver := NewDefaultResolver(b.store, renderer, b.pkg, slotMode)

	methodNames := make(map[string]bool, len(fn.TypeParameters))
	for _, tp := range fn.TypeParameters {
		methodNames[tp.Name] = true
	}

	// Slot type: the member's function-type equivalent, with vararg
	// parameters received as their array aggregate.
	slotParams := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		if p.Vararg {
			slotParams[i] = "Array<out " + renderer.Render(p.Type, slotMode) + ">"
		} else {
			slotParams[i] = renderer.Render(p.Type, slotMode)
		}
	}
	retText := renderer.Render(fn.ReturnType, slotMode)
	slotType := ""
	if fn.Suspend {
		slotType = "suspend "
	}
	slotType += "(" + strings.Join(slotParams, ", ") + ") -> " + retText

	slot := fn.Name + "Behavior"
	count := fn.Name + "CallCount"

	switch kind {
	case memberOpen:
		b.implLine("    private var " + slot + ": (" + slotType + ")? = null")
	case memberAbstract:
		b.implLine("    private var " + slot + ": " + slotType + " = { " + lambdaBlanks(len(fn.Parameters)) + b.abstractFailure(fn.Name) + " }")
	default:
		b.implLine("    private var " + slot + ": " + slotType + " = " + resolver.Resolve(slotFuncType(fn)))
	}
	b.implLine("    val " + count + " = AtomicInteger(0)")
	b.implLine("")

	// Override signature, always in preserving mode.
	sig := "    override "
	if fn.Suspend {
		sig += "suspend "
	}
	sig += "fun "
	methodDecl, methodWhere := typeParamDecl(fn.TypeParameters, renderer)
	if methodDecl != "" {
		sig += methodDecl + " "
	}
	sig += fn.Name + "("
	for i, p := range fn.Parameters {
		if i > 0 {
			sig += ", "
		}
		if p.Vararg {
			sig += "vararg "
		}
		sig += p.Name + ": " + renderer.Render(p.Type, Preserve)
	}
	sig += ")"
	returnsValue := !isUnit(fn.ReturnType)
	preservedRet := renderer.Render(fn.ReturnType, Preserve)
	if returnsValue {
		sig += ": " + preservedRet
	}
	sig += methodWhere + " {"
	b.implLine(sig)
	b.implLine("        " + count + ".incrementAndGet()")

	call := slot + "(" + b.callArguments(fn, renderer, slotMode, methodNames) + ")"
	if kind == memberOpen {
		superCall := "super." + fn.Name + "(" + plainArguments(fn) + ")"
		b.implLine("        val behavior = " + slot)
		expr := "if (behavior != null) behavior(" + b.callArguments(fn, renderer, slotMode, methodNames) + ") else " + superCall
		if returnsValue {
			expr = "return " + b.castIfErased(expr, fn.ReturnType, preservedRet, retText, methodNames)
		}
		b.implLine("        " + expr)
	} else {
		expr := call
		if returnsValue {
			expr = "return " + b.castIfErased(expr, fn.ReturnType, preservedRet, retText, methodNames)
		}
		b.implLine("        " + expr)
	}
	b.implLine("    }")
	b.implLine("")

	hook := "on" + capitalize(fn.Name)
	b.implLine("    fun " + hook + "(behavior: " + slotType + ") {")
	b.implLine("        " + slot + " = behavior")
	b.implLine("    }")
	b.implLine("")
	b.configLine("    fun " + fn.Name + "(behavior: " + slotType + ") = fake." + hook + "(behavior)")

	b.mergeResolverImports(resolver)
}

// callArguments renders the argument list forwarded to the behavior slot,
// casting any argument whose erased slot type cannot be reached by a plain
// upcast.
func (b *build) callArguments(fn metadata.Function, renderer *Renderer, mode RenderMode, methodNames map[string]bool) string {
	args := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		arg := p.Name
		if mode == Erase && metadata.ContainsParam(p.Type, methodNames) {
			if _, bare := p.Type.(metadata.ParamType); !bare {
				// Function and generic shapes are not covariant in the
				// erased direction; force the unchecked cast.
				erased := renderer.Render(p.Type, Erase)
				arg = p.Name + " as " + erased
				b.erasureCasts = true
			}
		}
		args[i] = arg
	}
	return strings.Join(args, ", ")
}

// castIfErased appends an unchecked cast restoring the preserved type when
// the slot's erased result differs from the declared return type.
func (b *build) castIfErased(expr string, ret metadata.Type, preserved, erased string, methodNames map[string]bool) string {
	if preserved == erased || !metadata.ContainsParam(ret, methodNames) {
		return expr
	}
	b.erasureCasts = true
	return expr + " as " + preserved
}

// plainArguments forwards parameters unchanged, with vararg spread.
func plainArguments(fn metadata.Function) string {
	args := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		if p.Vararg {
			args[i] = "*" + p.Name
		} else {
			args[i] = p.Name
		}
	}
	return strings.Join(args, ", ")
}

// slotFuncType builds the function-type descriptor matching a member's
// behavior slot, for default-value synthesis.
func slotFuncType(fn metadata.Function) metadata.Type {
	params := make([]metadata.Type, len(fn.Parameters))
	for i, p := range fn.Parameters {
		if p.Vararg {
			params[i] = metadata.GenericType{Name: "Array", Args: []metadata.Type{p.Type}}
		} else {
			params[i] = p.Type
		}
	}
	return metadata.FuncType{Params: params, Return: fn.ReturnType, Suspend: fn.Suspend}
}

func (b *build) abstractFailure(member string) string {
	return `error("Abstract member ` + member + ` is not configured on ` + b.fakeName + `. Configure it before use.")`
}

func (b *build) mergeResolverImports(resolver *DefaultResolver) {
	for _, imp := range resolver.ExtraImports() {
		b.imports.Add(imp)
	}
}

func (b *build) implLine(line string) {
	b.impl.WriteString(line)
	b.impl.WriteByte('\n')
}

func (b *build) configLine(line string) {
	b.config.WriteString(line)
	b.config.WriteByte('\n')
}

// finish wraps the accumulated member text into the implementation class,
// configuration class, and factory function.
func (b *build) finish(qualifiedName, name string, super superKind) *GeneratedUnit {
	renderer := NewRenderer(b.classParams, nil)
	decl, where := typeParamDecl(b.classParams, renderer)
	args := typeParamArgs(b.classParams)

	superText := name + args
	if super == superClass {
		superText += "()"
	}

	var impl strings.Builder
	if b.erasureCasts {
		impl.WriteString("@Suppress(\"UNCHECKED_CAST\")\n")
	}
	impl.WriteString("class " + b.fakeName + decl + " : " + superText + where + " {\n")
	impl.WriteString(strings.TrimRight(b.impl.String(), "\n"))
	impl.WriteString("\n}\n")

	var config strings.Builder
	config.WriteString("class " + b.configName + decl + " internal constructor(private val fake: " + b.fakeName + args + ")" + where + " {\n")
	config.WriteString(strings.TrimRight(b.config.String(), "\n"))
	config.WriteString("\n}\n")

	factoryName := "fake" + name
	var factory strings.Builder
	factory.WriteString("fun ")
	if decl != "" {
		factory.WriteString(decl + " ")
	}
	factory.WriteString(factoryName + "(configure: " + b.configName + args + ".() -> Unit = {}): " + b.fakeName + args + where + " {\n")
	factory.WriteString("    val fake = " + b.fakeName + args + "()\n")
	factory.WriteString("    " + b.configName + args + "(fake).configure()\n")
	factory.WriteString("    return fake\n")
	factory.WriteString("}\n")

	return &GeneratedUnit{
		QualifiedName:  qualifiedName,
		Name:           name,
		Package:        b.pkg,
		Imports:        b.imports.Result(),
		Implementation: impl.String(),
		Config:         config.String(),
		Factory:        factory.String(),
	}
}

func isUnit(t metadata.Type) bool {
	basic, ok := t.(metadata.BasicType)
	return t == nil || (ok && basic.Name == "Unit")
}

func lambdaBlanks(n int) string {
	if n == 0 {
		return ""
	}
	blanks := make([]string, n)
	for i := range blanks {
		blanks[i] = "_"
	}
	return strings.Join(blanks, ", ") + " -> "
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
