package chat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseMetadataComments(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	meta := ResponseMetadata{Model: "gpt-x", ID: "chatcmpl-1", Created: created, TotalTokens: 42}

	want := "<!-- model: gpt-x -->\n" +
		"<!-- id: chatcmpl-1 -->\n" +
		"<!-- created: " + created.Local().Format(CreatedLayout) + " -->\n" +
		"<!-- total_tokens: 42 -->\n"
	assert.Equal(t, want, meta.Comments())
}

func TestAppendAnswer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.md")
	original := "---\nmodel: m\n---\nuser:\nhi\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	meta := ResponseMetadata{Model: "m", ID: "r1", Created: time.Unix(1700000000, 0), TotalTokens: 5}
	require.NoError(t, AppendAnswer(path, "hello", meta))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original+"\n\nassistant:\nhello\n\n"+meta.Comments()+"\nuser:\n", string(data))

	doc, err := NewParser().Parse(string(data), path)
	require.NoError(t, err)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: ""},
	}, doc.Turns)
}

func TestAppendConversation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.md")
	require.NoError(t, os.WriteFile(path, []byte("---\n---\n"), 0o644))

	meta := ResponseMetadata{ID: "r2", TotalTokens: 9}
	require.NoError(t, AppendConversation(path, "q?", "a.", meta))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "---\n---\n\nuser:\nq?\n\nassistant:\na.\n\n<!-- id: r2 -->\n<!-- total_tokens: 9 -->\n\nuser:\n", string(data))
}

func TestAppend_MissingFile(t *testing.T) {
	err := AppendAnswer(filepath.Join(t.TempDir(), "missing.md"), "x", ResponseMetadata{})
	assert.Error(t, err)
}
