package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/samvada/internal/lint"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestLintValidFile(t *testing.T) {
	opts := newTestOptions(t, "text")
	out, _, err := execute(NewLintCommand(opts), filepath.Join("testdata", "chats", "valid.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ testdata/chats/valid.md is valid")
	assert.Contains(t, out, "1 file(s) checked, 0 invalid")
}

func TestLintValidFileJSON(t *testing.T) {
	opts := newTestOptions(t, "json")
	out, _, err := execute(NewLintCommand(opts), filepath.Join("testdata", "chats", "valid.md"))
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   lint.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Files, 1)
	assert.True(t, resp.Data.Files[0].Valid)
}

func TestLintDirectory_Golden(t *testing.T) {
	opts := newTestOptions(t, "text")
	out, _, err := execute(NewLintCommand(opts), filepath.Join("testdata", "chats"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, Reported(err))

	newGoldie(t).Assert(t, "lint_directory", []byte(out))
}

func TestLintMissingReferenceJSON_Golden(t *testing.T) {
	opts := newTestOptions(t, "json")
	out, _, err := execute(NewLintCommand(opts), filepath.Join("testdata", "chats", "missing_ref.md"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 1 file(s) invalid")

	newGoldie(t).Assert(t, "lint_missing_ref_json", []byte(out))
}

func TestLintExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	valid, err := os.ReadFile(filepath.Join("testdata", "chats", "valid.md"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.md"), valid, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "refs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refs", "changelog.txt"), []byte("v1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a chat\n"), 0o644))

	opts := newTestOptions(t, "text")
	out, _, err := execute(NewLintCommand(opts), dir)
	require.Error(t, err, "notes.txt is linted without a filter")
	assert.Contains(t, out, "notes.txt is invalid")

	opts = newTestOptions(t, "text")
	out, _, err = execute(NewLintCommand(opts), dir, "--ext", ".md")
	require.NoError(t, err)
	assert.NotContains(t, out, "notes.txt")
	assert.Contains(t, out, "1 file(s) checked, 0 invalid")
}

func TestLintPathNotFound(t *testing.T) {
	opts := newTestOptions(t, "text")
	out, _, err := execute(NewLintCommand(opts), "/nonexistent/chats")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "path not found")
}

func TestLintEmptyDirectory(t *testing.T) {
	opts := newTestOptions(t, "text")
	out, _, err := execute(NewLintCommand(opts), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "0 file(s) checked, 0 invalid")
}
