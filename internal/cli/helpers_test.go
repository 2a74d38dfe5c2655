package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/samvada/internal/config"
	"github.com/roach88/samvada/internal/history"
	"github.com/roach88/samvada/internal/provider"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestOptions returns root options isolated from the user's home
// directory and environment.
func newTestOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	t.Setenv(config.APIKeyEnv, "")
	return &RootOptions{
		Format:      format,
		ConfigDir:   filepath.Join(t.TempDir(), "config"),
		Now:         func() time.Time { return testNow },
		IDGenerator: history.NewFixedGenerator("ex-1", "ex-2", "ex-3"),
	}
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeCompleter records the request and returns a canned response.
type fakeCompleter struct {
	resp     *provider.Response
	err      error
	got      provider.Request
	calls    int
	endpoint string
	apiKey   string
}

func (f *fakeCompleter) Complete(_ context.Context, req provider.Request) (*provider.Response, error) {
	f.calls++
	f.got = req
	return f.resp, f.err
}

func (f *fakeCompleter) install(opts *RootOptions) {
	opts.NewCompleter = func(endpoint, apiKey string, _ *logrus.Entry) provider.Completer {
		f.endpoint = endpoint
		f.apiKey = apiKey
		return f
	}
}

func newFakeCompleter(answer string) *fakeCompleter {
	return &fakeCompleter{resp: &provider.Response{
		ID:      "chatcmpl-9",
		Model:   "gpt-test",
		Created: testNow.Unix(),
		Choices: []provider.Choice{{Message: provider.Message{Role: "assistant", Content: answer}}},
		Usage:   provider.Usage{TotalTokens: 17},
	}}
}

// writeChat writes a chat file into a temp dir and returns its path.
func writeChat(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const askableChat = `---
title: Go
system: Answer briefly.
model: gpt-test
api_endpoint: https://llm.example.com/v1/chat/completions
created_at: 2025-03-01T12:00:00Z
updated_at: 2025-03-01T12:00:00Z
tags: [go]
summary: Questions about Go.
---

user:
What is Go?
`

func mkdirAll(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
