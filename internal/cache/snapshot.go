// Package cache persists analyzed declaration metadata between runs, keyed
// by a content signature of the description inputs. The cache is advisory:
// any corruption, version skew, or signature mismatch is a miss that only
// skips a fast path, never an error.
package cache

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"martianoff/fakesmith/internal/metadata"
)

// FormatVersion is bumped whenever the snapshot layout changes. A snapshot
// written by any other version is discarded entirely; there is no partial
// reuse.
const FormatVersion = 1

// Snapshot is the serialized form of a fully loaded declaration store.
// Types are stored as their Kotlin source text and re-parsed on restore,
// which keeps the format readable and independent of internal type layout.
type Snapshot struct {
	FormatVersion          int             `yaml:"formatVersion"`
	OverallSignature       string          `yaml:"overallSignature"`
	Interfaces             []interfaceSnap `yaml:"interfaces"`
	Classes                []classSnap     `yaml:"classes"`
	Enums                  []enumSnap      `yaml:"enums"`
	GeneratedAtEpochMillis int64           `yaml:"generatedAtEpochMillis"`
}

type typeParamSnap struct {
	Name   string   `yaml:"name"`
	Bounds []string `yaml:"bounds,omitempty"`
}

type propertySnap struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Mutable bool   `yaml:"mutable,omitempty"`
}

type parameterSnap struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	HasDefault bool   `yaml:"hasDefault,omitempty"`
	Default    string `yaml:"default,omitempty"`
	Vararg     bool   `yaml:"vararg,omitempty"`
}

type functionSnap struct {
	Name           string          `yaml:"name"`
	TypeParameters []typeParamSnap `yaml:"typeParameters,omitempty"`
	Parameters     []parameterSnap `yaml:"parameters,omitempty"`
	Returns        string          `yaml:"returns"`
	Suspend        bool            `yaml:"suspend,omitempty"`
	Inline         bool            `yaml:"inline,omitempty"`
}

type interfaceSnap struct {
	QualifiedName       string          `yaml:"qualifiedName"`
	Name                string          `yaml:"name"`
	Package             string          `yaml:"package"`
	TypeParameters      []typeParamSnap `yaml:"typeParameters,omitempty"`
	Properties          []propertySnap  `yaml:"properties,omitempty"`
	Functions           []functionSnap  `yaml:"functions,omitempty"`
	InheritedProperties []propertySnap  `yaml:"inheritedProperties,omitempty"`
	InheritedFunctions  []functionSnap  `yaml:"inheritedFunctions,omitempty"`
	Source              string          `yaml:"source,omitempty"`
}

type classSnap struct {
	QualifiedName      string          `yaml:"qualifiedName"`
	Name               string          `yaml:"name"`
	Package            string          `yaml:"package"`
	TypeParameters     []typeParamSnap `yaml:"typeParameters,omitempty"`
	AbstractProperties []propertySnap  `yaml:"abstractProperties,omitempty"`
	OpenProperties     []propertySnap  `yaml:"openProperties,omitempty"`
	AbstractFunctions  []functionSnap  `yaml:"abstractFunctions,omitempty"`
	OpenFunctions      []functionSnap  `yaml:"openFunctions,omitempty"`
	Source             string          `yaml:"source,omitempty"`
}

type enumSnap struct {
	QualifiedName string   `yaml:"qualifiedName"`
	Name          string   `yaml:"name"`
	Package       string   `yaml:"package"`
	Entries       []string `yaml:"entries"`
}

// NewSnapshot captures the current content of a store under the given
// signature.
func NewSnapshot(signature string, store *metadata.Store) *Snapshot {
	s := &Snapshot{
		FormatVersion:          FormatVersion,
		OverallSignature:       signature,
		GeneratedAtEpochMillis: time.Now().UnixMilli(),
	}
	for _, i := range store.Interfaces() {
		s.Interfaces = append(s.Interfaces, interfaceSnap{
			QualifiedName:       i.QualifiedName,
			Name:                i.Name,
			Package:             i.Package,
			TypeParameters:      typeParamsToSnap(i.TypeParameters),
			Properties:          propertiesToSnap(i.Properties),
			Functions:           functionsToSnap(i.Functions),
			InheritedProperties: propertiesToSnap(i.InheritedProperties),
			InheritedFunctions:  functionsToSnap(i.InheritedFunctions),
			Source:              i.Source,
		})
	}
	for _, c := range store.Classes() {
		s.Classes = append(s.Classes, classSnap{
			QualifiedName:      c.QualifiedName,
			Name:               c.Name,
			Package:            c.Package,
			TypeParameters:     typeParamsToSnap(c.TypeParameters),
			AbstractProperties: propertiesToSnap(c.AbstractProperties),
			OpenProperties:     propertiesToSnap(c.OpenProperties),
			AbstractFunctions:  functionsToSnap(c.AbstractFunctions),
			OpenFunctions:      functionsToSnap(c.OpenFunctions),
			Source:             c.Source,
		})
	}
	for _, e := range store.Enums() {
		s.Enums = append(s.Enums, enumSnap{
			QualifiedName: e.QualifiedName,
			Name:          e.Name,
			Package:       e.Package,
			Entries:       e.Entries,
		})
	}
	return s
}

// Restore re-populates a store from the snapshot, re-parsing all type text.
func (s *Snapshot) Restore(store *metadata.Store) error {
	for _, snap := range s.Interfaces {
		scope := scopeOf(snap.TypeParameters)
		tps, err := typeParamsFromSnap(snap.TypeParameters, scope)
		if err != nil {
			return err
		}
		props, err := propertiesFromSnap(snap.Properties, scope)
		if err != nil {
			return err
		}
		fns, err := functionsFromSnap(snap.Functions, scope)
		if err != nil {
			return err
		}
		inheritedProps, err := propertiesFromSnap(snap.InheritedProperties, scope)
		if err != nil {
			return err
		}
		inheritedFns, err := functionsFromSnap(snap.InheritedFunctions, scope)
		if err != nil {
			return err
		}
		store.PutInterface(&metadata.Interface{
			QualifiedName:       snap.QualifiedName,
			Name:                snap.Name,
			Package:             snap.Package,
			TypeParameters:      tps,
			Properties:          props,
			Functions:           fns,
			InheritedProperties: inheritedProps,
			InheritedFunctions:  inheritedFns,
			Source:              snap.Source,
		})
	}
	for _, snap := range s.Classes {
		scope := scopeOf(snap.TypeParameters)
		tps, err := typeParamsFromSnap(snap.TypeParameters, scope)
		if err != nil {
			return err
		}
		abstractProps, err := propertiesFromSnap(snap.AbstractProperties, scope)
		if err != nil {
			return err
		}
		openProps, err := propertiesFromSnap(snap.OpenProperties, scope)
		if err != nil {
			return err
		}
		abstractFns, err := functionsFromSnap(snap.AbstractFunctions, scope)
		if err != nil {
			return err
		}
		openFns, err := functionsFromSnap(snap.OpenFunctions, scope)
		if err != nil {
			return err
		}
		store.PutClass(&metadata.Class{
			QualifiedName:      snap.QualifiedName,
			Name:               snap.Name,
			Package:            snap.Package,
			TypeParameters:     tps,
			AbstractProperties: abstractProps,
			OpenProperties:     openProps,
			AbstractFunctions:  abstractFns,
			OpenFunctions:      openFns,
			Source:             snap.Source,
		})
	}
	for _, snap := range s.Enums {
		store.PutEnum(&metadata.Enum{
			QualifiedName: snap.QualifiedName,
			Name:          snap.Name,
			Package:       snap.Package,
			Entries:       snap.Entries,
		})
	}
	return nil
}

// Save writes the snapshot to path, creating parent directories as needed.
func (s *Snapshot) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a snapshot and validates it against the expected signature.
// Any read, parse, version, or signature problem is a miss, never an
// error: partial or interrupted prior writes must not corrupt a read.
func Load(path, wantSignature string) (*Snapshot, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, false
	}
	if s.FormatVersion != FormatVersion || s.OverallSignature != wantSignature {
		return nil, false
	}
	return &s, true
}

func scopeOf(params []typeParamSnap) metadata.Scope {
	scope := make(metadata.Scope)
	for _, p := range params {
		scope[p.Name] = true
	}
	return scope
}

func typeParamsToSnap(params []metadata.TypeParameter) []typeParamSnap {
	out := make([]typeParamSnap, 0, len(params))
	for _, p := range params {
		snap := typeParamSnap{Name: p.Name}
		for _, b := range p.Bounds {
			snap.Bounds = append(snap.Bounds, b.String())
		}
		out = append(out, snap)
	}
	return out
}

func typeParamsFromSnap(params []typeParamSnap, scope metadata.Scope) ([]metadata.TypeParameter, error) {
	out := make([]metadata.TypeParameter, 0, len(params))
	for _, snap := range params {
		p := metadata.TypeParameter{Name: snap.Name}
		for _, text := range snap.Bounds {
			b, err := metadata.ParseType(text, scope)
			if err != nil {
				return nil, err
			}
			p.Bounds = append(p.Bounds, b)
		}
		out = append(out, p)
	}
	return out, nil
}

func propertiesToSnap(props []metadata.Property) []propertySnap {
	out := make([]propertySnap, 0, len(props))
	for _, p := range props {
		out = append(out, propertySnap{Name: p.Name, Type: p.Type.String(), Mutable: p.Mutable})
	}
	return out
}

func propertiesFromSnap(props []propertySnap, scope metadata.Scope) ([]metadata.Property, error) {
	out := make([]metadata.Property, 0, len(props))
	for _, snap := range props {
		typ, err := metadata.ParseType(snap.Type, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, metadata.Property{Name: snap.Name, Type: typ, Mutable: snap.Mutable})
	}
	return out, nil
}

func functionsToSnap(fns []metadata.Function) []functionSnap {
	out := make([]functionSnap, 0, len(fns))
	for _, fn := range fns {
		snap := functionSnap{
			Name:           fn.Name,
			TypeParameters: typeParamsToSnap(fn.TypeParameters),
			Returns:        fn.ReturnType.String(),
			Suspend:        fn.Suspend,
			Inline:         fn.Inline,
		}
		for _, p := range fn.Parameters {
			snap.Parameters = append(snap.Parameters, parameterSnap{
				Name:       p.Name,
				Type:       p.Type.String(),
				HasDefault: p.HasDefault,
				Default:    p.DefaultText,
				Vararg:     p.Vararg,
			})
		}
		out = append(out, snap)
	}
	return out
}

func functionsFromSnap(fns []functionSnap, scope metadata.Scope) ([]metadata.Function, error) {
	out := make([]metadata.Function, 0, len(fns))
	for _, snap := range fns {
		fnScope := make(metadata.Scope, len(scope)+len(snap.TypeParameters))
		for name := range scope {
			fnScope[name] = true
		}
		for _, tp := range snap.TypeParameters {
			fnScope[tp.Name] = true
		}
		tps, err := typeParamsFromSnap(snap.TypeParameters, fnScope)
		if err != nil {
			return nil, err
		}
		ret, err := metadata.ParseType(snap.Returns, fnScope)
		if err != nil {
			return nil, err
		}
		fn := metadata.Function{
			Name:           snap.Name,
			TypeParameters: tps,
			ReturnType:     ret,
			Suspend:        snap.Suspend,
			Inline:         snap.Inline,
		}
		for _, ps := range snap.Parameters {
			typ, err := metadata.ParseType(ps.Type, fnScope)
			if err != nil {
				return nil, err
			}
			fn.Parameters = append(fn.Parameters, metadata.Parameter{
				Name:        ps.Name,
				Type:        typ,
				HasDefault:  ps.HasDefault,
				DefaultText: ps.Default,
				Vararg:      ps.Vararg,
			})
		}
		out = append(out, fn)
	}
	return out, nil
}
