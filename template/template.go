// Package template renders prompt templates with {{name}} placeholders.
//
// Substitution is single-pass: a bound value is inserted verbatim and never
// re-scanned, so values containing "{{...}}" cannot trigger further expansion.
package template

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kbukum/llmaid/errors"
)

// placeholderRe matches {{name}} with optional whitespace inside the braces.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render substitutes bindings into tmpl.
//
// In strict mode every placeholder must have a binding, otherwise a
// KindTemplate error listing the missing names is returned. In lenient mode
// unbound placeholders are left in the output exactly as written.
func Render(tmpl string, bindings map[string]string, strict bool) (string, error) {
	if strict {
		if missing := Missing(tmpl, bindings); len(missing) > 0 {
			return "", errors.Template(missing)
		}
	}

	matches := placeholderRe.FindAllStringSubmatchIndex(tmpl, -1)
	if len(matches) == 0 {
		return tmpl, nil
	}

	var (
		b    strings.Builder
		last int
	)
	b.Grow(len(tmpl))
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(tmpl[last:start])
		if v, ok := bindings[tmpl[m[2]:m[3]]]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(tmpl[start:end])
		}
		last = end
	}
	b.WriteString(tmpl[last:])
	return b.String(), nil
}

// Placeholders returns the distinct placeholder names in tmpl in order of
// first appearance.
func Placeholders(tmpl string) []string {
	matches := placeholderRe.FindAllStringSubmatch(tmpl, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Missing returns the placeholders in tmpl that have no entry in bindings,
// sorted by name.
func Missing(tmpl string, bindings map[string]string) []string {
	var missing []string
	for _, name := range Placeholders(tmpl) {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
