package chat

import (
	"regexp"
	"strings"
)

// Template is a frontmatter block whose values are {placeholder} tokens.
// It is the single source of the keys a chat document must declare.
type Template string

// DefaultTemplate is the frontmatter written by "chat create" and required by
// the linter.
const DefaultTemplate Template = `---
title: {title}
system: {system}
model: {model}
api_endpoint: {api_endpoint}
created_at: {created_at}
updated_at: {updated_at}
tags: {tags}
summary: {summary}
---`

var placeholderLine = regexp.MustCompile(`(?m)^[ \t]*([^:\s]+):[ \t]*\{([A-Za-z0-9_]+)\}[ \t]*$`)

// Keys returns the frontmatter keys that carry a placeholder, in template
// order.
func (t Template) Keys() []string {
	matches := placeholderLine.FindAllStringSubmatch(string(t), -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, m[1])
	}
	return keys
}

// Render substitutes values into the template. Missing values render empty.
// Multi-line values are written as indented continuation lines, which the
// frontmatter parser trims back off. See FieldValue for how lines the
// frontmatter grammar cannot carry are folded.
func (t Template) Render(values map[string]string) string {
	matches := placeholderLine.FindAllStringSubmatch(string(t), -1)
	pairs := make([]string, 0, 2*len(matches))
	for _, m := range matches {
		value := strings.ReplaceAll(FieldValue(values[m[2]]), "\n", "\n  ")
		pairs = append(pairs, "{"+m[2]+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(string(t))
}

// FieldValue normalizes v into the form ParseFrontmatter returns for it, so a
// rendered block parses back to the same value. Lines are trimmed. A
// continuation line holding a colon would open a new field and one trimming
// to the delimiter would close the block, so such lines are joined onto the
// previous line with a space.
func FieldValue(v string) string {
	lines := strings.Split(strings.TrimSpace(v), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(out) > 0 && (strings.Contains(line, ":") || line == Delimiter) {
			out[len(out)-1] = strings.TrimSpace(out[len(out)-1] + " " + line)
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
