// Package formatter wraps compiled markup into a HappyX component file.
package formatter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TemplateDepth is the indentation depth markup must be compiled at to sit
// inside the component's template block.
const TemplateDepth = 2

// Component returns the source of a HappyX component named after title
// whose template is markup. markup is expected to be compiled at
// TemplateDepth and to end with a newline.
func Component(title, markup string) string {
	var sb strings.Builder
	sb.WriteString("import happyx\n\n\n")
	sb.WriteString("component " + TitleCase(title) + ":\n")
	sb.WriteString("  `template`:\n")
	sb.WriteString(markup)
	sb.WriteString("\n")
	return sb.String()
}

// TitleCase lowercases s and upper-cases the first letter of every
// space-separated word. Spaces are kept as they are.
func TitleCase(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
