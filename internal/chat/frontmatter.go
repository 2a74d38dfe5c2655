package chat

import (
	"sort"
	"strings"
)

// Delimiter opens and closes the frontmatter block.
const Delimiter = "---"

// Frontmatter keys understood by the ask flow.
const (
	KeyTitle       = "title"
	KeySystem      = "system"
	KeyModel       = "model"
	KeyAPIEndpoint = "api_endpoint"
	KeyCreatedAt   = "created_at"
	KeyUpdatedAt   = "updated_at"
	KeyTags        = "tags"
	KeySummary     = "summary"
)

// Fields maps frontmatter keys to their values.
// Multi-line values keep their embedded newlines.
type Fields map[string]string

// Clone returns a shallow copy of f. A nil receiver yields an empty map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the field keys in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsDelimiter reports whether line is a frontmatter delimiter line.
func IsDelimiter(line string) bool {
	return strings.TrimSpace(line) == Delimiter
}

// ParseFrontmatter consumes the frontmatter block from lines.
//
// Lines before the opening delimiter are skipped. Inside the block a line
// containing a colon starts a new field and a line without one continues the
// previous value. Consumption stops right after the closing delimiter so the
// remaining lines belong to the message section. When no closing delimiter
// exists every line is consumed; this is not an error.
//
// defaults seeds the result; only keys present in the block overwrite it.
// The boolean result reports whether the closing delimiter was seen.
func ParseFrontmatter(lines *Lines, defaults Fields) (Fields, bool) {
	fields := defaults.Clone()

	var (
		inBlock bool
		key     string
		value   strings.Builder
	)

	flush := func() {
		if key != "" {
			fields[key] = strings.TrimSpace(value.String())
		}
	}

	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		if IsDelimiter(line) {
			if inBlock {
				flush()
				return fields, true
			}
			inBlock = true
			continue
		}
		if !inBlock {
			continue
		}

		if k, v, found := strings.Cut(line, ":"); found {
			flush()
			key = strings.TrimSpace(k)
			value.Reset()
			value.WriteString(strings.TrimSpace(v))
			continue
		}
		value.WriteByte('\n')
		value.WriteString(strings.TrimSpace(line))
	}

	flush()
	return fields, false
}
