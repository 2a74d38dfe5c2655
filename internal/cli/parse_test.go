package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Golden(t *testing.T) {
	opts := newTestOptions(t, "text")
	out, _, err := execute(NewParseCommand(opts), filepath.Join("testdata", "chats", "valid.md"))
	require.NoError(t, err)

	newGoldie(t).Assert(t, "parse_valid", []byte(out))
}

func TestParseJSON_Golden(t *testing.T) {
	opts := newTestOptions(t, "json")
	out, _, err := execute(NewParseCommand(opts), filepath.Join("testdata", "chats", "valid.md"))
	require.NoError(t, err)

	newGoldie(t).Assert(t, "parse_valid_json", []byte(out))
}

func TestParse_AppliesConfigDefaults(t *testing.T) {
	path := writeChat(t, "bare.md", "---\ntitle: Bare\n---\nuser:\nhello\n")

	opts := newTestOptions(t, "json")
	out, _, err := execute(NewParseCommand(opts), path)
	require.NoError(t, err)

	var resp struct {
		Data ParseResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	doc := resp.Data.Document
	require.NotNil(t, doc)
	assert.Equal(t, "Bare", doc.Title())
	assert.Equal(t, "gpt-4o-mini", doc.Model())
	assert.Equal(t, "You are a helpful assistant.", doc.SystemPrompt())
	require.Len(t, doc.Turns, 1)
	assert.Equal(t, "hello", doc.Turns[0].Content)
}

func TestParse_UnreadableReferenceIsAWarning(t *testing.T) {
	path := writeChat(t, "ref.md", "---\ntitle: Ref\n---\nuser:\nsee\n[[gone.txt]]\n")

	opts := newTestOptions(t, "text")
	out, errOut, err := execute(NewParseCommand(opts), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Failed to read file: gone.txt")
	assert.Contains(t, errOut, "warning: failed to read file reference \"gone.txt\"")
}

func TestParse_UnreadableReferenceJSON(t *testing.T) {
	path := writeChat(t, "ref.md", "---\ntitle: Ref\n---\nuser:\n[[a.txt]]\n[[b.txt]]\n")

	opts := newTestOptions(t, "json")
	out, _, err := execute(NewParseCommand(opts), path)
	require.NoError(t, err)

	var resp struct {
		Data ParseResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Warnings, 2)
	assert.Contains(t, resp.Data.Warnings[0], "a.txt")
	assert.Contains(t, resp.Data.Warnings[1], "b.txt")
}

func TestParse_FileNotFound(t *testing.T) {
	opts := newTestOptions(t, "text")
	out, _, err := execute(NewParseCommand(opts), filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "file not found")
}
