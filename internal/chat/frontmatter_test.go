package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter_StopsAfterClosingDelimiter(t *testing.T) {
	lines := NewLines("---\ntitle: T\n---\nuser:\nhi\n")
	fields, closed := ParseFrontmatter(lines, nil)

	assert.True(t, closed)
	assert.Equal(t, Fields{"title": "T"}, fields)
	assert.Equal(t, []string{"user:", "hi"}, lines.Remaining())
}

func TestParseFrontmatter_SplitsOnFirstColon(t *testing.T) {
	fields, _ := ParseFrontmatter(NewLines("---\napi_endpoint: https://x.test:8443/v1\n---\n"), nil)
	assert.Equal(t, "https://x.test:8443/v1", fields[KeyAPIEndpoint])
}

func TestParseFrontmatter_ContinuationLines(t *testing.T) {
	text := "---\nsystem: You are helpful.\n  Answer in English.\n    Be brief.\nmodel: m\n---\n"
	fields, _ := ParseFrontmatter(NewLines(text), nil)

	// Three lines joined by two newlines.
	assert.Equal(t, "You are helpful.\nAnswer in English.\nBe brief.", fields[KeySystem])
	assert.Equal(t, 2, strings.Count(fields[KeySystem], "\n"))
	assert.Equal(t, "m", fields[KeyModel])
}

func TestParseFrontmatter_EmptyValue(t *testing.T) {
	fields, _ := ParseFrontmatter(NewLines("---\nsummary:\n---\n"), nil)
	v, ok := fields[KeySummary]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseFrontmatter_LinesBeforeOpeningIgnored(t *testing.T) {
	fields, closed := ParseFrontmatter(NewLines("junk: yes\n---\nmodel: m\n---\n"), nil)
	assert.True(t, closed)
	assert.Equal(t, Fields{"model": "m"}, fields)
}

func TestParseFrontmatter_Unclosed(t *testing.T) {
	lines := NewLines("---\nmodel: m\nuser:\nhi\n")
	fields, closed := ParseFrontmatter(lines, Fields{"system": "s"})

	assert.False(t, closed)
	assert.Equal(t, "m", fields["model"])
	assert.Equal(t, "s", fields["system"])
	assert.Empty(t, lines.Remaining())
}

func TestParseFrontmatter_DelimiterWithWhitespace(t *testing.T) {
	_, closed := ParseFrontmatter(NewLines("  ---  \nmodel: m\n--- \n"), nil)
	assert.True(t, closed)
}

func TestFieldsKeysSorted(t *testing.T) {
	f := Fields{"b": "", "a": "", "c": ""}
	assert.Equal(t, []string{"a", "b", "c"}, f.Keys())
}

func TestFieldsCloneNil(t *testing.T) {
	var f Fields
	c := f.Clone()
	require.NotNil(t, c)
	c["x"] = "y"
	assert.Nil(t, f)
}

func TestLines(t *testing.T) {
	l := NewLines("a\r\nb\n\nc\n")
	assert.Equal(t, 4, l.Len())

	first, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, "a", first)
	assert.Equal(t, 1, l.Pos())
	assert.Equal(t, []string{"b", "", "c"}, l.Remaining())

	l.Reset()
	assert.Equal(t, 0, l.Pos())

	empty := NewLines("")
	_, ok = empty.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}
