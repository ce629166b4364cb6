package mailer

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder names may contain word characters, dots and hyphens; whitespace
// inside the braces is ignored.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([\w.-]+)\s*\}\}`)

// Render substitutes every {{name}} placeholder in template with the string
// form of vars[name]. Missing or nil names render as the empty string. Pure
// and deterministic; text with no placeholders passes through unchanged.
func Render(template string, vars map[string]interface{}) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok || value == nil {
			return ""
		}
		return stringify(value)
	})
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; keep integral values clean.
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}
