package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	assert.Equal(t, DefaultFile, PathFor(""))
	assert.Equal(t, filepath.Join("chats", "plan.log"), PathFor(filepath.Join("chats", "plan.md")))
	assert.Equal(t, "notes.log", PathFor("notes"))
}

func TestNewFileLogger(t *testing.T) {
	chatPath := filepath.Join(t.TempDir(), "plan.md")

	setup, err := NewFileLogger(chatPath)
	require.NoError(t, err)

	Component(setup.Logger, "ask").WithField("model", "gpt-x").Info("sending request")
	require.NoError(t, setup.Close())

	data, err := os.ReadFile(setup.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sending request")
	assert.Contains(t, string(data), "component=ask")
	assert.Contains(t, string(data), "model=gpt-x")
}

func TestNewFileLogger_Truncates(t *testing.T) {
	chatPath := filepath.Join(t.TempDir(), "plan.md")
	require.NoError(t, os.WriteFile(PathFor(chatPath), []byte("old run\n"), 0o644))

	setup, err := NewFileLogger(chatPath)
	require.NoError(t, err)
	require.NoError(t, setup.Close())

	data, err := os.ReadFile(setup.Path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old run")
}

func TestNew_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, logrus.InfoLevel)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	entry := Nop()
	require.NotNil(t, entry)
	entry.Error("discarded")
}
