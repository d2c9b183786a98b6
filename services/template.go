package services

import (
	"regexp"
)

var templateVarPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// RenderTemplate replaces every {{name}} occurrence with the matching key from
// data. A token whose variable is absent from data is left untouched in the
// output, so misconfigured templates stay visible instead of silently losing
// content.
func RenderTemplate(text string, data map[string]string) string {
	return templateVarPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := templateVarPattern.FindStringSubmatch(token)[1]
		if value, ok := data[name]; ok {
			return value
		}
		return token
	})
}
