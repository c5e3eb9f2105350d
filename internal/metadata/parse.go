package metadata

import (
	"strings"

	"martianoff/fakesmith/fakerr"
)

// Scope is the set of type-parameter names visible at a parse site.
// References to these names parse as ParamType instead of NamedType.
type Scope map[string]bool

// NewScope builds a Scope from one or more type-parameter lists.
func NewScope(paramLists ...[]TypeParameter) Scope {
	s := make(Scope)
	for _, list := range paramLists {
		for _, p := range list {
			s[p.Name] = true
		}
	}
	return s
}

// ParseType parses a Kotlin type expression like "Map<String, User?>",
// "(T) -> R" or "suspend () -> Unit" into a structured Type.
func ParseType(s string, scope Scope) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fakerr.NewLoadError("empty type expression")
	}

	// Suspend prefix applies to the function type that follows.
	if rest, ok := strings.CutPrefix(s, "suspend "); ok {
		inner, err := ParseType(rest, scope)
		if err != nil {
			return nil, err
		}
		switch v := inner.(type) {
		case FuncType:
			v.Suspend = true
			return v, nil
		case NullableType:
			if f, ok := v.Inner.(FuncType); ok {
				f.Suspend = true
				return NullableType{Inner: f}, nil
			}
		}
		return nil, fakerr.NewLoadError("suspend prefix on non-function type: " + s)
	}

	// Trailing top-level '?' wraps the whole expression. When a top-level
	// arrow is present the '?' binds to the return type instead, per Kotlin
	// precedence: "(String) -> User?" is a function returning User?, while
	// "(() -> Unit)?" is a nullable function.
	if strings.HasSuffix(s, "?") && isTopLevelSuffix(s) && topLevelArrowIndex(s[:len(s)-1]) < 0 {
		inner, err := ParseType(s[:len(s)-1], scope)
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	}

	// Redundant outer parentheses, as in "(() -> Unit)". A function type's
	// parameter list never spans the whole expression, so this cannot eat
	// "(A) -> B".
	if strings.HasPrefix(s, "(") && matchingParen(s, 0) == len(s)-1 {
		return ParseType(s[1:len(s)-1], scope)
	}

	// Function type: "(A, B) -> R".
	if idx := topLevelArrowIndex(s); idx >= 0 {
		paramPart := strings.TrimSpace(s[:idx])
		returnPart := strings.TrimSpace(s[idx+2:])
		if !strings.HasPrefix(paramPart, "(") || !strings.HasSuffix(paramPart, ")") {
			return nil, fakerr.NewLoadError("malformed function type: " + s)
		}
		var params []Type
		for _, piece := range splitTopLevel(paramPart[1 : len(paramPart)-1]) {
			p, err := ParseType(piece, scope)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		}
		ret, err := ParseType(returnPart, scope)
		if err != nil {
			return nil, err
		}
		return FuncType{Params: params, Return: ret}, nil
	}

	// Parametrized type: "List<User>" or "com.example.Box<T>".
	if idx := strings.Index(s, "<"); idx >= 0 && strings.HasSuffix(s, ">") {
		pkg, name := splitQualified(s[:idx])
		var args []Type
		for _, piece := range splitTopLevel(s[idx+1 : len(s)-1]) {
			a, err := ParseType(piece, scope)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return GenericType{Package: pkg, Name: name, Args: args}, nil
	}

	if scope[s] {
		return ParamType{Name: s}, nil
	}
	if IsPrimitiveType(s) {
		return BasicType{Name: s}, nil
	}
	pkg, name := splitQualified(s)
	return NamedType{Package: pkg, Name: name}, nil
}

// splitQualified splits "com.example.User" into package and simple name.
func splitQualified(s string) (pkg, name string) {
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return "", s
}

// scanTopLevel walks s tracking bracket depth across (), <> pairs. The '>'
// of an "->" arrow is not a bracket close. visit is called for every
// position with the depth outside that position; returning false stops the
// walk early.
func scanTopLevel(s string, visit func(i, depth int) bool) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '-' && i+1 < len(s) && s[i+1] == '>' {
			if !visit(i, depth) {
				return depth
			}
			i++ // skip the arrow's '>'
			continue
		}
		if !visit(i, depth) {
			return depth
		}
		switch s[i] {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		}
	}
	return depth
}

// splitTopLevel splits a comma-separated list respecting nested (), <>.
func splitTopLevel(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var pieces []string
	start := 0
	scanTopLevel(s, func(i, depth int) bool {
		if s[i] == ',' && depth == 0 {
			pieces = append(pieces, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
		return true
	})
	pieces = append(pieces, strings.TrimSpace(s[start:]))
	return pieces
}

// isTopLevelSuffix reports whether the final character of s sits outside any
// bracket nesting, i.e. the '?' in "List<Int?>" is not top-level.
func isTopLevelSuffix(s string) bool {
	last := 0
	scanTopLevel(s, func(i, depth int) bool {
		if i == len(s)-1 {
			last = depth
		}
		return true
	})
	return last == 0
}

// topLevelArrowIndex returns the index of the first "->" outside any
// bracket nesting, or -1.
func topLevelArrowIndex(s string) int {
	found := -1
	scanTopLevel(s, func(i, depth int) bool {
		if depth == 0 && s[i] == '-' && i+1 < len(s) && s[i+1] == '>' {
			found = i
			return false
		}
		return true
	})
	return found
}

// matchingParen returns the index of the parenthesis closing the one at
// open, or -1.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
