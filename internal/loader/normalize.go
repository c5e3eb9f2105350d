package loader

import (
	"strings"

	"martianoff/fakesmith/internal/metadata"
)

// normalizeDefault rewrites a parameter default expression into the form the
// declared type requires in emitted source: bare integers gain the "L"
// suffix for Long parameters, decimals gain "f" for Float. Only simple
// literals survive; anything referencing other declarations cannot be
// restated safely in a generated file and is dropped to an empty text while
// the parameter keeps its has-default flag.
func normalizeDefault(text string, typ metadata.Type) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	base := typ
	if n, ok := base.(metadata.NullableType); ok {
		if text == "null" {
			return "null"
		}
		base = n.Inner
	}

	switch {
	case isIntegerLiteral(text):
		if b, ok := base.(metadata.BasicType); ok {
			switch b.Name {
			case "Long":
				if !strings.HasSuffix(text, "L") {
					return text + "L"
				}
			case "Float":
				if !hasFloatSuffix(text) {
					return text + "f"
				}
			case "Double":
				return text + ".0"
			}
		}
		return text
	case isDecimalLiteral(text):
		if b, ok := base.(metadata.BasicType); ok && b.Name == "Float" && !hasFloatSuffix(text) {
			return text + "f"
		}
		return text
	case isStringLiteral(text), isCharLiteral(text), text == "true", text == "false":
		return text
	}
	return ""
}

func hasFloatSuffix(s string) bool {
	return strings.HasSuffix(s, "f") || strings.HasSuffix(s, "F")
}

func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "L")
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

func isDecimalLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if hasFloatSuffix(s) {
		s = s[:len(s)-1]
	}
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return false
	}
	return isIntegerLiteral(s[:dot]) && isIntegerLiteral(s[dot+1:])
}

func isStringLiteral(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

func isCharLiteral(s string) bool {
	return len(s) >= 3 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")
}
